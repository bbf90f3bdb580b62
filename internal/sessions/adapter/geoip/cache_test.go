package geoip_test

import (
	"context"
	"testing"
	"time"

	"sessionguard/internal/sessions/adapter/geoip"
	"sessionguard/internal/sessions/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeoCache is a map-backed GeoCache for decorator tests.
type fakeGeoCache struct {
	entries map[string]string
	sets    int
}

func newFakeGeoCache() *fakeGeoCache {
	return &fakeGeoCache{entries: make(map[string]string)}
}

func (c *fakeGeoCache) Get(ctx context.Context, key string) (string, bool) {
	val, ok := c.entries[key]
	return val, ok
}

func (c *fakeGeoCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.entries[key] = value
	c.sets++
}

// countingResolver records how many lookups reached the inner resolver.
type countingResolver struct {
	result *model.GeoLocation
	calls  int
}

func (r *countingResolver) Resolve(ctx context.Context, ip string) *model.GeoLocation {
	r.calls++
	return r.result
}

func TestCachingResolver_SecondLookupIsServedFromCache(t *testing.T) {
	inner := &countingResolver{result: &model.GeoLocation{
		IP: "203.0.113.10", Country: "France", CountryCode: "FR", City: "Paris",
	}}
	cache := newFakeGeoCache()
	resolver := geoip.NewCachingResolver(inner, cache, time.Hour)

	first := resolver.Resolve(context.Background(), "203.0.113.10")
	second := resolver.Resolve(context.Background(), "203.0.113.10")

	require.NotNil(t, second)
	assert.Equal(t, first.CountryCode, second.CountryCode)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestCachingResolver_DegradedLookupIsNotCached(t *testing.T) {
	inner := &countingResolver{result: model.UnknownLocation("203.0.113.10")}
	cache := newFakeGeoCache()
	resolver := geoip.NewCachingResolver(inner, cache, time.Hour)

	resolver.Resolve(context.Background(), "203.0.113.10")
	resolver.Resolve(context.Background(), "203.0.113.10")

	// Unknown results must be retried, not pinned for the TTL.
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cache.sets)
}

func TestCachingResolver_LocalIPBypassesCache(t *testing.T) {
	inner := &countingResolver{result: model.LocalLocation("192.168.1.50")}
	cache := newFakeGeoCache()
	resolver := geoip.NewCachingResolver(inner, cache, time.Hour)

	location := resolver.Resolve(context.Background(), "192.168.1.50")

	require.NotNil(t, location)
	assert.True(t, location.IsLocal())
	assert.Equal(t, 1, inner.calls)
	assert.Empty(t, cache.entries)
}

func TestCachingResolver_CorruptCacheEntryFallsThrough(t *testing.T) {
	inner := &countingResolver{result: &model.GeoLocation{
		IP: "203.0.113.10", Country: "France", CountryCode: "FR",
	}}
	cache := newFakeGeoCache()
	cache.entries["geoip:203.0.113.10"] = "{not json"
	resolver := geoip.NewCachingResolver(inner, cache, time.Hour)

	location := resolver.Resolve(context.Background(), "203.0.113.10")

	require.NotNil(t, location)
	assert.Equal(t, "FR", location.CountryCode)
	assert.Equal(t, 1, inner.calls)
}
