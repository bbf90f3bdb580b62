package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"sessionguard/internal/sessions"
	"sessionguard/internal/sessions/config"
	"sessionguard/internal/shared/eventbus"
	"sessionguard/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container represents a dependency injection container with proper lifecycle management
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)
	// Module instances
	SessionsModule *sessions.SessionsModule
	// Shared infrastructure
	MongoDB  *mongo.Database
	RedisCli *redis.Client
	EventBus eventbus.EventBusInterface
	// Configuration
	SessionsConfig *config.Config
	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer() *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
	}
}

// InitializeSessions initializes the session module and its collaborators
func (c *Container) InitializeSessions(mongoDB *mongo.Database, redisClient *redis.Client, cfg *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Store references
	c.MongoDB = mongoDB
	c.RedisCli = redisClient
	c.SessionsConfig = cfg

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}
	if c.EventBus == nil {
		c.EventBus = eventbus.NewEventBus(c.Logger)
	}

	sessionsModule, err := sessions.NewSessionsModule(mongoDB, redisClient, c.EventBus, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create sessions module: %w", err)
	}

	c.SessionsModule = sessionsModule
	return nil
}

// Register registers a service instance
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()

	// Check if service instance exists
	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}

	// Check if factory exists
	if factory, exists := c.factories[serviceType]; exists {
		c.mu.RUnlock()

		// Create new instance using factory
		service, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}

		// Register the created instance
		c.mu.Lock()
		c.services[serviceType] = service
		c.mu.Unlock()

		return service, nil
	}

	c.mu.RUnlock()
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf(zero)

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}

	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetSessionsModule returns the sessions module instance
func (c *Container) GetSessionsModule() *sessions.SessionsModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SessionsModule
}

// HealthCheck performs health check on all registered services
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Check MongoDB connection
	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}

	// Redis is an optional cache; report it without failing the service
	if c.RedisCli != nil {
		if err := c.RedisCli.Ping(ctx).Err(); err != nil {
			c.Logger.Warn("Redis health check failed, geolocation cache degraded", "error", err)
		}
	}

	return nil
}

// Cleanup performs cleanup of registered services with proper shutdown order
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errors []error

	if c.SessionsModule != nil {
		c.SessionsModule.Stop()
		c.SessionsModule = nil
	}

	c.EventBus = nil

	if c.RedisCli != nil {
		if err := c.RedisCli.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close Redis client: %w", err))
		}
		c.RedisCli = nil
	}

	// Cleanup generic services
	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errors = append(errors, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	// Clear all services
	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errors) > 0 {
		return fmt.Errorf("cleanup errors: %v", errors)
	}

	return nil
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		fmt.Printf("Warning: cleanup errors occurred: %v\n", err)
	}

	return nil
}
