package config

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a new Redis client for the geolocation cache using
// the provided configuration.
func NewRedisClient(cfg *Config) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDatabase,
		PoolSize: cfg.RedisPoolSize,

		// A cache lookup must stay well inside the request budget.
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  2 * time.Second,
	}

	if cfg.RedisTLS {
		options.TLSConfig = &tls.Config{
			ServerName: cfg.RedisHost,
		}
	}

	return redis.NewClient(options)
}
