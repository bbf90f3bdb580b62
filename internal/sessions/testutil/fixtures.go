package testutil

import (
	"time"

	"sessionguard/internal/sessions/domain/model"
)

// SessionFixture provides test data for the Session model
type SessionFixture struct{}

// NewSessionFixture creates a new SessionFixture instance
func NewSessionFixture() *SessionFixture {
	return &SessionFixture{}
}

// ActiveSession returns a live session for testing
func (f *SessionFixture) ActiveSession() *model.Session {
	now := time.Now()
	return &model.Session{
		ID:             "test-session-id-123",
		Token:          "test-session-token-123",
		UserID:         "test-user-id-123",
		TenantID:       "test-tenant-id-123",
		DeviceInfo:     "Chrome on Windows",
		UserAgent:      "Mozilla/5.0",
		IPAddress:      "203.0.113.10",
		IPCountry:      "US",
		IPCity:         "New York",
		CreatedAt:      now.Add(-time.Hour),
		LastActivityAt: now.Add(-time.Minute),
		ExpiresAt:      now.Add(14 * time.Minute),
		IsActive:       true,
	}
}

// ExpiredSession returns a session whose window has elapsed
func (f *SessionFixture) ExpiredSession() *model.Session {
	session := f.ActiveSession()
	session.ExpiresAt = time.Now().Add(-time.Minute)
	return session
}

// InvalidatedSession returns a session already flipped inactive
func (f *SessionFixture) InvalidatedSession(reason model.InvalidationReason) *model.Session {
	session := f.ActiveSession()
	invalidatedAt := time.Now().Add(-time.Minute)
	session.IsActive = false
	session.InvalidatedAt = &invalidatedAt
	session.InvalidationReason = reason
	return session
}

// SessionFromCountry returns an active session whose origin is the given country
func (f *SessionFixture) SessionFromCountry(countryCode string) *model.Session {
	session := f.ActiveSession()
	session.IPCountry = countryCode
	return session
}

// UserFixture provides test data for the UserAccount model
type UserFixture struct{}

// NewUserFixture creates a new UserFixture instance
func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

// ActiveUser returns an account in good standing
func (f *UserFixture) ActiveUser() *model.UserAccount {
	return &model.UserAccount{
		ID:        "test-user-id-123",
		Email:     "test@example.com",
		TenantID:  "test-tenant-id-123",
		Status:    model.UserStatusActive,
		CreatedAt: time.Now().Add(-24 * time.Hour),
		UpdatedAt: time.Now(),
	}
}

// DeletedUser returns an account removed upstream
func (f *UserFixture) DeletedUser() *model.UserAccount {
	user := f.ActiveUser()
	user.Status = model.UserStatusDeleted
	return user
}

// DeactivatedUser returns an administratively disabled account
func (f *UserFixture) DeactivatedUser() *model.UserAccount {
	user := f.ActiveUser()
	user.Status = model.UserStatusDeactivated
	return user
}

// PolicyFixture provides test data for the TenantPolicy model
type PolicyFixture struct{}

// NewPolicyFixture creates a new PolicyFixture instance
func NewPolicyFixture() *PolicyFixture {
	return &PolicyFixture{}
}

// SingleSessionPolicy returns the strictest concurrency policy
func (f *PolicyFixture) SingleSessionPolicy() *model.TenantPolicy {
	return &model.TenantPolicy{
		TenantID:              "test-tenant-id-123",
		MaxConcurrentSessions: 1,
		EnforceIPCountryCheck: true,
		SessionTimeout:        15 * time.Minute,
	}
}

// RelaxedPolicy returns a multi-session policy with the country check off
func (f *PolicyFixture) RelaxedPolicy(maxSessions int) *model.TenantPolicy {
	return &model.TenantPolicy{
		TenantID:              "test-tenant-id-123",
		MaxConcurrentSessions: maxSessions,
		EnforceIPCountryCheck: false,
		SessionTimeout:        time.Hour,
	}
}
