package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidationReason_IsValid(t *testing.T) {
	valid := []InvalidationReason{ReasonUserLogout, ReasonExpired, ReasonIPCountryChanged, ReasonNewLoginLimit}
	for _, reason := range valid {
		assert.True(t, reason.IsValid(), string(reason))
	}

	assert.False(t, InvalidationReason("").IsValid())
	assert.False(t, InvalidationReason("admin_revoked").IsValid())
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	session := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, session.IsExpired(now))
	assert.False(t, session.IsExpired(session.ExpiresAt))
	assert.True(t, session.IsExpired(now.Add(2*time.Minute)))
}

func TestSession_TouchSlidesExpiry(t *testing.T) {
	now := time.Now()
	session := &Session{
		LastActivityAt: now.Add(-10 * time.Minute),
		ExpiresAt:      now.Add(5 * time.Minute),
	}

	session.Touch(now, 15*time.Minute)

	assert.Equal(t, now, session.LastActivityAt)
	assert.Equal(t, now.Add(15*time.Minute), session.ExpiresAt)
}

func TestSession_TokenNeverSerializesToJSON(t *testing.T) {
	session := &Session{ID: "session-1", Token: "super-secret-token", UserID: "user-1"}

	raw, err := json.Marshal(session)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-token")
}

func TestGeoLocation_Classification(t *testing.T) {
	local := LocalLocation("192.168.1.50")
	assert.True(t, local.IsLocal())
	assert.True(t, local.HasCountry())

	unknown := UnknownLocation("203.0.113.10")
	assert.False(t, unknown.IsLocal())
	assert.False(t, unknown.HasCountry())

	foreign := &GeoLocation{IP: "203.0.113.10", CountryCode: "FR"}
	assert.False(t, foreign.IsLocal())
	assert.True(t, foreign.HasCountry())

	var nilLocation *GeoLocation
	assert.False(t, nilLocation.IsLocal())
	assert.False(t, nilLocation.HasCountry())
}

func TestUserAccount_CanAuthenticate(t *testing.T) {
	assert.True(t, (&UserAccount{Status: UserStatusActive}).CanAuthenticate())
	assert.False(t, (&UserAccount{Status: UserStatusDeactivated}).CanAuthenticate())
	assert.False(t, (&UserAccount{Status: UserStatusDeleted}).CanAuthenticate())
}

func TestDefaultTenantPolicy(t *testing.T) {
	policy := DefaultTenantPolicy("tenant-1")

	assert.Equal(t, "tenant-1", policy.TenantID)
	assert.Equal(t, DefaultMaxConcurrentSessions, policy.MaxConcurrentSessions)
	assert.Equal(t, DefaultEnforceIPCountryCheck, policy.EnforceIPCountryCheck)
	assert.Equal(t, DefaultSessionTimeout, policy.SessionTimeout)
}
