package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-123")
	got, err := GetUserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestUserIDMissing(t *testing.T) {
	_, err := GetUserIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrUserIDNotFound)
}

func TestTenantIDRoundTrip(t *testing.T) {
	ctx := WithTenantID(context.Background(), "tenant-abc")
	got, err := GetTenantIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tenant-abc", got)
}

func TestClientIPRoundTrip(t *testing.T) {
	ctx := WithClientIP(context.Background(), "203.0.113.9")
	got, err := GetClientIPFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", got)

	_, err = GetClientIPFromContext(context.Background())
	assert.ErrorIs(t, err, ErrClientIPNotFound)
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	got, err := GetRequestIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-1", got)
}

func TestOrDefaultGetters(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "anon", GetUserIDOrDefault(ctx, "anon"))
	assert.Equal(t, "default", GetTenantIDOrDefault(ctx, "default"))
	assert.Equal(t, "0.0.0.0", GetClientIPOrDefault(ctx, "0.0.0.0"))

	ctx = WithUserID(ctx, "u1")
	assert.Equal(t, "u1", GetUserIDOrDefault(ctx, "anon"))
}

func TestHasCheckers(t *testing.T) {
	ctx := context.Background()
	assert.False(t, HasUserID(ctx))
	assert.False(t, HasTenantID(ctx))
	assert.False(t, HasClientIP(ctx))

	ctx = WithUserID(WithTenantID(WithClientIP(ctx, "10.0.0.1"), "t1"), "u1")
	assert.True(t, HasUserID(ctx))
	assert.True(t, HasTenantID(ctx))
	assert.True(t, HasClientIP(ctx))
}
