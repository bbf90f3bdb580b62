package repository

import (
	"context"
	"time"

	"sessionguard/internal/sessions/domain/model"
)

// SessionMutation carries the fields a validate/heartbeat cycle may update on
// an active session. Nil time/string fields are left untouched.
type SessionMutation struct {
	LastActivityAt *time.Time
	ExpiresAt      *time.Time
	IPAddress      *string
	IPCountry      *string
	IPCity         *string
}

// SessionRepository defines the interface for durable session storage. All
// writes are scoped by token or (userID, isActive) predicates; implementations
// never perform unscoped bulk updates.
type SessionRepository interface {
	// CreateSession inserts a new session row. The token must not be returned
	// to a caller unless this succeeds.
	CreateSession(ctx context.Context, session *model.Session) error

	// GetActiveByToken returns the active session carrying token, or nil when
	// no active row matches. Database failures are the only error case.
	GetActiveByToken(ctx context.Context, token string) (*model.Session, error)

	// ListActiveByUser returns all active sessions for a user, oldest first.
	ListActiveByUser(ctx context.Context, userID string) ([]*model.Session, error)

	// CountActiveByUser returns the number of active sessions for a user.
	CountActiveByUser(ctx context.Context, userID string) (int64, error)

	// UpdateActivity applies mut to the active session carrying token.
	// Returns false when no active row matched.
	UpdateActivity(ctx context.Context, token string, mut SessionMutation) (bool, error)

	// Invalidate flips the active session carrying token to inactive with the
	// given reason. Returns false when no active row matched (already
	// invalidated or never existed); that is not an error.
	Invalidate(ctx context.Context, token string, reason model.InvalidationReason, at time.Time) (bool, error)

	// InvalidateByTokenAndUser is Invalidate scoped additionally to the owning
	// user, so a caller can only invalidate their own sessions.
	InvalidateByTokenAndUser(ctx context.Context, token, userID string, reason model.InvalidationReason, at time.Time) (bool, error)

	// InvalidateAllByUser flips every active session for userID to inactive
	// with the given reason and returns how many rows were flipped.
	InvalidateAllByUser(ctx context.Context, userID string, reason model.InvalidationReason, at time.Time) (int64, error)

	// InvalidateOldestByUser flips the n oldest active sessions for userID
	// (by createdAt ascending) and returns how many rows were flipped.
	InvalidateOldestByUser(ctx context.Context, userID string, n int, reason model.InvalidationReason, at time.Time) (int64, error)

	// InvalidateOthersByUser flips every active session for userID except the
	// one carrying keepToken, returning the count.
	InvalidateOthersByUser(ctx context.Context, userID, keepToken string, reason model.InvalidationReason, at time.Time) (int64, error)

	// DeleteExpiredBefore hard-deletes inactive rows whose expiry elapsed
	// before cutoff. Hygiene only; correctness never depends on it.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
