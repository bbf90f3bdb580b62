package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a resolved location is reused. Coarse
// country data moves slowly; an hour keeps provider traffic low without
// letting stale data linger across reassignments.
const DefaultCacheTTL = time.Hour

// GeoCache is the narrow cache surface the caching resolver needs. It is an
// injected component, never module-level state, so a multi-instance
// deployment can point every instance at the same shared store.
type GeoCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// RedisGeoCache implements GeoCache on a shared Redis instance. Cache failures
// degrade to a direct lookup and are logged, never surfaced.
type RedisGeoCache struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisGeoCache creates a Redis-backed geolocation cache.
func NewRedisGeoCache(client *redis.Client, log logger.Logger) *RedisGeoCache {
	if log == nil {
		log = logger.NewLogger()
	}
	return &RedisGeoCache{
		client: client,
		logger: log.WithComponent("geoip-cache"),
	}
}

// Get returns the cached value for key and whether it was present.
func (c *RedisGeoCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnf("Geolocation cache read failed for %s: %v", key, err)
		}
		return "", false
	}
	return val, true
}

// Set stores value under key with the given TTL.
func (c *RedisGeoCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warnf("Geolocation cache write failed for %s: %v", key, err)
	}
}

// CachingResolver decorates a GeoResolver with a TTL-bounded cache. Only
// results carrying a real country signal are cached: degraded lookups must be
// retried, and LOCAL short-circuits are cheaper than a cache round trip.
type CachingResolver struct {
	inner repository.GeoResolver
	cache GeoCache
	ttl   time.Duration
}

// NewCachingResolver wraps inner with cache.
func NewCachingResolver(inner repository.GeoResolver, cache GeoCache, ttl time.Duration) *CachingResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingResolver{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

// Resolve returns the cached location for ip, falling through to the inner
// resolver on miss.
func (r *CachingResolver) Resolve(ctx context.Context, ip string) *model.GeoLocation {
	if IsNonRoutable(ip) {
		return r.inner.Resolve(ctx, ip)
	}

	key := cacheKey(ip)
	if raw, ok := r.cache.Get(ctx, key); ok {
		var location model.GeoLocation
		if err := json.Unmarshal([]byte(raw), &location); err == nil {
			return &location
		}
	}

	location := r.inner.Resolve(ctx, ip)
	if location.HasCountry() && !location.IsLocal() {
		if raw, err := json.Marshal(location); err == nil {
			r.cache.Set(ctx, key, string(raw), r.ttl)
		}
	}
	return location
}

func cacheKey(ip string) string {
	return fmt.Sprintf("geoip:%s", ip)
}

// Ensure CachingResolver implements GeoResolver
var _ repository.GeoResolver = (*CachingResolver)(nil)
