package model

import "time"

// UserStatus is the account state as maintained by the upstream identity
// provider. Session operations only read it.
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
	UserStatusDeleted     UserStatus = "deleted"
)

// UserAccount is the slice of the user record this component needs for the
// pre-check stage: identity plus account status.
type UserAccount struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Email     string     `json:"email" bson:"email"`
	TenantID  string     `json:"tenant_id" bson:"tenant_id"`
	Status    UserStatus `json:"status" bson:"status"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// CanAuthenticate reports whether the account may use session operations.
func (u *UserAccount) CanAuthenticate() bool {
	return u.Status == UserStatusActive
}
