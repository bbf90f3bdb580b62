package model

import "time"

// Default policy values applied when a tenant has not configured its own.
const (
	DefaultMaxConcurrentSessions = 1
	DefaultEnforceIPCountryCheck = true
	DefaultSessionTimeout        = 15 * time.Minute
)

// TenantPolicy holds the per-tenant knobs governing session behavior. It is
// read-only from this component's perspective; tenant administration writes it
// elsewhere.
type TenantPolicy struct {
	TenantID              string        `json:"tenant_id"`
	MaxConcurrentSessions int           `json:"max_concurrent_sessions"`
	EnforceIPCountryCheck bool          `json:"enforce_ip_country_check"`
	SessionTimeout        time.Duration `json:"session_timeout"`
}

// DefaultTenantPolicy returns the policy applied to tenants with no stored
// configuration.
func DefaultTenantPolicy(tenantID string) *TenantPolicy {
	return &TenantPolicy{
		TenantID:              tenantID,
		MaxConcurrentSessions: DefaultMaxConcurrentSessions,
		EnforceIPCountryCheck: DefaultEnforceIPCountryCheck,
		SessionTimeout:        DefaultSessionTimeout,
	}
}
