package geoip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sessionguard/internal/sessions/adapter/geoip"
	"sessionguard/internal/sessions/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SuccessfulLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/203.0.113.10", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","country":"France","countryCode":"FR","city":"Paris"}`))
	}))
	defer server.Close()

	resolver := geoip.NewHTTPResolver(server.URL, time.Second, nil)
	location := resolver.Resolve(context.Background(), "203.0.113.10")

	require.NotNil(t, location)
	assert.Equal(t, "FR", location.CountryCode)
	assert.Equal(t, "France", location.Country)
	assert.Equal(t, "Paris", location.City)
	assert.True(t, location.HasCountry())
	assert.False(t, location.IsLocal())
}

func TestResolve_PrivateIPSkipsProvider(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	resolver := geoip.NewHTTPResolver(server.URL, time.Second, nil)

	for _, ip := range []string{"192.168.1.50", "10.0.0.3", "127.0.0.1", "::1", "", "unknown", "not-an-ip"} {
		location := resolver.Resolve(context.Background(), ip)
		require.NotNil(t, location, ip)
		assert.True(t, location.IsLocal(), ip)
		assert.Equal(t, model.CountryCodeLocal, location.CountryCode, ip)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestResolve_ProviderFailureDegradesToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer server.Close()

	resolver := geoip.NewHTTPResolver(server.URL, time.Second, nil)
	location := resolver.Resolve(context.Background(), "203.0.113.10")

	require.NotNil(t, location)
	assert.False(t, location.HasCountry())
	assert.False(t, location.IsLocal())
}

func TestResolve_ServerErrorDegradesToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	resolver := geoip.NewHTTPResolver(server.URL, time.Second, nil)
	location := resolver.Resolve(context.Background(), "203.0.113.10")

	require.NotNil(t, location)
	assert.False(t, location.HasCountry())
}

func TestResolve_TimeoutIsBoundedAndDegrades(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	resolver := geoip.NewHTTPResolver(server.URL, 50*time.Millisecond, nil)

	start := time.Now()
	location := resolver.Resolve(context.Background(), "203.0.113.10")
	elapsed := time.Since(start)

	require.NotNil(t, location)
	assert.False(t, location.HasCountry())
	assert.Less(t, elapsed, time.Second)
}

func TestResolve_UnreachableProviderDegrades(t *testing.T) {
	resolver := geoip.NewHTTPResolver("http://127.0.0.1:1", 100*time.Millisecond, nil)
	location := resolver.Resolve(context.Background(), "203.0.113.10")

	require.NotNil(t, location)
	assert.False(t, location.HasCountry())
}

func TestIsNonRoutable(t *testing.T) {
	routable := []string{"203.0.113.10", "8.8.8.8", "2001:4860:4860::8888"}
	for _, ip := range routable {
		assert.False(t, geoip.IsNonRoutable(ip), ip)
	}

	nonRoutable := []string{"", "unknown", "garbage", "10.1.2.3", "172.16.0.9", "192.168.0.1", "127.0.0.1", "169.254.1.1", "0.0.0.0", "::1", "fe80::1"}
	for _, ip := range nonRoutable {
		assert.True(t, geoip.IsNonRoutable(ip), ip)
	}
}
