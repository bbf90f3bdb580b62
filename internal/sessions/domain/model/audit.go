package model

import "time"

// Audit actions emitted by the session lifecycle service.
const (
	AuditActionSessionsEvicted      = "sessions_evicted_on_login"
	AuditActionCountryChangeFlagged = "session_invalidated_country_change"
)

// AuditEventType is the event bus topic audit records are published on.
const AuditEventType = "audit.record"

// AuditEvent is an append-only record of a security-relevant state transition.
// Writing it is fire-and-forget from the caller's perspective.
type AuditEvent struct {
	ID        string                 `json:"id" bson:"_id,omitempty"`
	TenantID  string                 `json:"tenant_id" bson:"tenant_id"`
	ActorID   string                 `json:"actor_id" bson:"actor_id"`
	Action    string                 `json:"action" bson:"action"`
	TableName string                 `json:"table_name" bson:"table_name"`
	OldValue  map[string]interface{} `json:"old_value,omitempty" bson:"old_value,omitempty"`
	NewValue  map[string]interface{} `json:"new_value,omitempty" bson:"new_value,omitempty"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}
