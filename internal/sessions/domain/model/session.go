package model

import "time"

// InvalidationReason is the closed set of reasons a session leaves the active
// state. A reason is written exactly once, together with isActive=false, and is
// never overwritten afterwards.
type InvalidationReason string

const (
	ReasonUserLogout       InvalidationReason = "user_logout"
	ReasonExpired          InvalidationReason = "expired"
	ReasonIPCountryChanged InvalidationReason = "ip_country_changed"
	ReasonNewLoginLimit    InvalidationReason = "new_login_session_limit"
)

// IsValid reports whether r is one of the known invalidation reasons.
func (r InvalidationReason) IsValid() bool {
	switch r {
	case ReasonUserLogout, ReasonExpired, ReasonIPCountryChanged, ReasonNewLoginLimit:
		return true
	}
	return false
}

// Session represents a server-held record binding an opaque bearer token to an
// authenticated identity for a bounded time window.
type Session struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	Token      string `json:"-" bson:"token"`
	UserID     string `json:"user_id" bson:"user_id"`
	TenantID   string `json:"tenant_id" bson:"tenant_id"`
	DeviceInfo string `json:"device_info,omitempty" bson:"device_info,omitempty"`
	UserAgent  string `json:"user_agent,omitempty" bson:"user_agent,omitempty"`

	// Last-observed network origin; refreshed on validate and heartbeat.
	IPAddress string `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	IPCountry string `json:"ip_country,omitempty" bson:"ip_country,omitempty"`
	IPCity    string `json:"ip_city,omitempty" bson:"ip_city,omitempty"`

	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at" bson:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at" bson:"expires_at"`

	IsActive           bool               `json:"is_active" bson:"is_active"`
	InvalidatedAt      *time.Time         `json:"invalidated_at,omitempty" bson:"invalidated_at,omitempty"`
	InvalidationReason InvalidationReason `json:"invalidation_reason,omitempty" bson:"invalidation_reason,omitempty"`
}

// IsExpired reports whether the session's deadline has elapsed at the given
// instant. Expiry is detected on read; there is no background sweep the
// validator depends on.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch records activity and slides the expiry deadline forward.
func (s *Session) Touch(now time.Time, timeout time.Duration) {
	s.LastActivityAt = now
	s.ExpiresAt = now.Add(timeout)
}
