package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the sessions module.
type Config struct {
	// MongoDB Configuration
	MongoDBURI   string `env:"MONGODB_URI,required"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"sessionguard_db"`

	// Upstream identity provider (assertion verification only; issuance is
	// out of scope)
	IdentitySecretKey  string `env:"IDENTITY_SECRET_KEY,required"`
	IdentityIssuer     string `env:"IDENTITY_ISSUER" envDefault:"upstream-identity-provider"`
	IdentityCookieName string `env:"IDENTITY_COOKIE_NAME" envDefault:"identity_assertion"`

	// Session defaults, applied when a tenant has no stored policy
	SessionTimeout        time.Duration `env:"SESSION_TIMEOUT" envDefault:"15m"`
	MaxConcurrentSessions int           `env:"MAX_CONCURRENT_SESSIONS" envDefault:"1"`

	// Geolocation provider
	GeoProviderURL   string        `env:"GEO_PROVIDER_URL" envDefault:"http://ip-api.com/json"`
	GeoLookupTimeout time.Duration `env:"GEO_LOOKUP_TIMEOUT" envDefault:"3s"`
	GeoCacheTTL      time.Duration `env:"GEO_CACHE_TTL" envDefault:"1h"`
	GeoCacheEnabled  bool          `env:"GEO_CACHE_ENABLED" envDefault:"true"`

	// Redis (geolocation cache)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDatabase int    `env:"REDIS_DATABASE" envDefault:"0"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisTLS      bool   `env:"REDIS_TLS" envDefault:"false"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	if cfg.IdentitySecretKey == "" {
		return nil, errors.New("identity_secret_key is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, errors.New("mongodb_uri is required")
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 15 * time.Minute
	}
	if cfg.MaxConcurrentSessions <= 0 {
		cfg.MaxConcurrentSessions = 1
	}
	if cfg.GeoLookupTimeout <= 0 {
		cfg.GeoLookupTimeout = 3 * time.Second
	}

	return cfg, nil
}

// RedisAddr returns the host:port address of the Redis instance.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
