package usecase

import (
	"context"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/shared/logger"
)

// SessionDefaults are the operator-configured fallback values applied when a
// tenant has no stored policy, or when a stored policy leaves a field unset.
type SessionDefaults struct {
	MaxConcurrentSessions int
	SessionTimeout        time.Duration
}

// StandardSessionDefaults returns the built-in fallback values.
func StandardSessionDefaults() SessionDefaults {
	return SessionDefaults{
		MaxConcurrentSessions: model.DefaultMaxConcurrentSessions,
		SessionTimeout:        model.DefaultSessionTimeout,
	}
}

// PolicyEngine computes the effective session policy for a tenant. It is a
// pure lookup with defaults applied; a missing tenant is not an error.
type PolicyEngine struct {
	policies repository.PolicyRepository
	defaults SessionDefaults
	logger   logger.Logger
}

// NewPolicyEngine creates a policy engine with the built-in defaults.
func NewPolicyEngine(policies repository.PolicyRepository, log logger.Logger) *PolicyEngine {
	return NewPolicyEngineWithDefaults(policies, StandardSessionDefaults(), log)
}

// NewPolicyEngineWithDefaults creates a policy engine whose fallback values
// come from deployment configuration instead of the built-ins.
func NewPolicyEngineWithDefaults(policies repository.PolicyRepository, defaults SessionDefaults, log logger.Logger) *PolicyEngine {
	if log == nil {
		log = logger.NewLogger()
	}
	if defaults.MaxConcurrentSessions <= 0 {
		defaults.MaxConcurrentSessions = model.DefaultMaxConcurrentSessions
	}
	if defaults.SessionTimeout <= 0 {
		defaults.SessionTimeout = model.DefaultSessionTimeout
	}
	return &PolicyEngine{
		policies: policies,
		defaults: defaults,
		logger:   log.WithComponent("policy-engine"),
	}
}

// EffectivePolicy returns the tenant's stored policy with defaults filled in
// for unset values. A missing tenant, or a store failure, yields the default
// policy; session handling must not fail because policy lookup did.
func (e *PolicyEngine) EffectivePolicy(ctx context.Context, tenantID string) *model.TenantPolicy {
	stored, err := e.policies.GetTenantPolicy(ctx, tenantID)
	if err != nil {
		e.logger.Warnf("Tenant policy lookup failed for %s, applying defaults: %v", tenantID, err)
		return e.defaultPolicy(tenantID)
	}
	if stored == nil {
		return e.defaultPolicy(tenantID)
	}

	policy := *stored
	policy.TenantID = tenantID
	if policy.MaxConcurrentSessions <= 0 {
		policy.MaxConcurrentSessions = e.defaults.MaxConcurrentSessions
	}
	if policy.SessionTimeout <= 0 {
		policy.SessionTimeout = e.defaults.SessionTimeout
	}
	return &policy
}

func (e *PolicyEngine) defaultPolicy(tenantID string) *model.TenantPolicy {
	return &model.TenantPolicy{
		TenantID:              tenantID,
		MaxConcurrentSessions: e.defaults.MaxConcurrentSessions,
		EnforceIPCountryCheck: model.DefaultEnforceIPCountryCheck,
		SessionTimeout:        e.defaults.SessionTimeout,
	}
}
