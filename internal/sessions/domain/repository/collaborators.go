package repository

import (
	"context"

	"sessionguard/internal/sessions/domain/model"
)

// PolicyRepository reads stored tenant policy. "Not found" is reported as
// (nil, nil); the caller applies defaults.
type PolicyRepository interface {
	GetTenantPolicy(ctx context.Context, tenantID string) (*model.TenantPolicy, error)
}

// UserDirectory is the read-only view of accounts maintained by the upstream
// identity provider, used for the pre-check stage.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*model.UserAccount, error)
}

// AuditSink appends security-relevant state transitions. Implementations must
// never mutate or delete existing records.
type AuditSink interface {
	Append(ctx context.Context, event *model.AuditEvent) error
}

// GeoResolver maps a client IP to a coarse location. Implementations never
// return an error for lookup failures; they degrade to a country-less result.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) *model.GeoLocation
}
