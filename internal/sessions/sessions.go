package sessions

import (
	"context"
	"fmt"
	"time"

	"sessionguard/internal/sessions/adapter/geoip"
	sessionhttp "sessionguard/internal/sessions/adapter/http"
	"sessionguard/internal/sessions/adapter/persistence/mongodb"
	"sessionguard/internal/sessions/adapter/security"
	"sessionguard/internal/sessions/config"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/sessions/usecase"
	"sessionguard/internal/shared/eventbus"
	"sessionguard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// maintenanceInterval is how often the hygiene sweep runs. The TTL index does
// the real reaping; the sweep just keeps drift bounded on deployments where
// TTL monitors are disabled.
const maintenanceInterval = time.Hour

// SessionsModule represents the complete session lifecycle module
type SessionsModule struct {
	repository repository.SessionRepository
	verifier   repository.IdentityVerifier
	users      repository.UserDirectory
	auditSink  *mongodb.MongoAuditSink
	usecase    usecase.SessionUsecaseInterface
	handler    *sessionhttp.SessionHTTPHandler
	config     *config.Config
	logger     logger.Logger
	stopCh     chan struct{}
}

// NewSessionsModule creates and wires a new session module instance. The
// Redis client is optional; when nil (or caching is disabled) geolocation
// lookups go straight to the provider.
func NewSessionsModule(db *mongo.Database, redisClient *redis.Client, bus eventbus.EventBusInterface, cfg *config.Config, log logger.Logger) (*SessionsModule, error) {
	if log == nil {
		log = logger.NewLogger()
	}

	sessionRepo, err := mongodb.NewMongoSessionRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create session repository: %w", err)
	}

	policyRepo, err := mongodb.NewMongoPolicyRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy repository: %w", err)
	}

	auditSink, err := mongodb.NewMongoAuditSink(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit sink: %w", err)
	}
	auditSink.SubscribeToBus(bus)

	users := mongodb.NewMongoUserDirectory(db)

	verifier, err := security.NewJWTIdentityVerifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity verifier: %w", err)
	}

	var geo repository.GeoResolver = geoip.NewHTTPResolver(cfg.GeoProviderURL, cfg.GeoLookupTimeout, log)
	if cfg.GeoCacheEnabled && redisClient != nil {
		cache := geoip.NewRedisGeoCache(redisClient, log)
		geo = geoip.NewCachingResolver(geo, cache, cfg.GeoCacheTTL)
	}

	policyEngine := usecase.NewPolicyEngineWithDefaults(policyRepo, usecase.SessionDefaults{
		MaxConcurrentSessions: cfg.MaxConcurrentSessions,
		SessionTimeout:        cfg.SessionTimeout,
	}, log)
	sessionUsecase := usecase.NewSessionUsecase(sessionRepo, policyEngine, geo, bus, log)

	handler := sessionhttp.NewSessionHTTPHandler(sessionUsecase)

	return &SessionsModule{
		repository: sessionRepo,
		verifier:   verifier,
		users:      users,
		auditSink:  auditSink,
		usecase:    sessionUsecase,
		handler:    handler,
		config:     cfg,
		logger:     log,
		stopCh:     make(chan struct{}),
	}, nil
}

// StartMaintenance launches the periodic sweep of long-expired inactive rows.
func (sm *SessionsModule) StartMaintenance() {
	go func() {
		ticker := time.NewTicker(maintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-sm.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				deleted, err := sm.repository.DeleteExpiredBefore(ctx, time.Now().Add(-mongodb.InactiveRetention))
				cancel()
				if err != nil {
					sm.logger.Warnf("Session hygiene sweep failed: %v", err)
					continue
				}
				if deleted > 0 {
					sm.logger.Infof("Session hygiene sweep removed %d rows", deleted)
				}
			}
		}
	}()
}

// RegisterRoutes registers session routes with the provided router
func (sm *SessionsModule) RegisterRoutes(router fiber.Router) {
	middleware := sm.GetMiddleware()
	sm.handler.SetupSessionRoutesWithMiddleware(router, middleware)
}

// GetUsecase returns the session usecase for external access
func (sm *SessionsModule) GetUsecase() usecase.SessionUsecaseInterface {
	return sm.usecase
}

// GetMiddleware returns the identity middleware
func (sm *SessionsModule) GetMiddleware() *sessionhttp.IdentityMiddleware {
	return sessionhttp.NewIdentityMiddleware(sm.verifier, sm.users, sm.config.IdentityCookieName, sm.logger)
}

// Stop performs cleanup when the module is shut down
func (sm *SessionsModule) Stop() error {
	select {
	case <-sm.stopCh:
	default:
		close(sm.stopCh)
	}
	return nil
}
