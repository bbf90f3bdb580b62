package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/shared/eventbus"
	"sessionguard/internal/shared/logger"

	"github.com/google/uuid"
)

var (
	ErrUserIDRequired   = errors.New("user ID is required")
	ErrTenantIDRequired = errors.New("tenant ID is required")
	ErrTokenRequired    = errors.New("session token is required")
)

// Validation outcome reasons. These are results the caller branches on, not
// errors; they travel with valid=false over a 200-class response.
const (
	ReasonSessionNotFound  = "session_not_found"
	ReasonSessionExpired   = "session_expired"
	ReasonIPCountryChanged = "ip_country_changed"
)

// SessionUsecaseInterface defines the contract for session lifecycle operations.
type SessionUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error)
	Heartbeat(ctx context.Context, req HeartbeatRequest) (*HeartbeatResult, error)
	Invalidate(ctx context.Context, req InvalidateRequest) error
	InvalidateOthers(ctx context.Context, req InvalidateOthersRequest) (int64, error)
	ListSessions(ctx context.Context, userID string) ([]*model.Session, error)
}

// RegisterRequest carries a new-session registration. Identity fields come
// from the upstream-verified caller, never from the request body.
type RegisterRequest struct {
	UserID     string `json:"-"`
	TenantID   string `json:"-"`
	ClientIP   string `json:"-"`
	DeviceInfo string `json:"deviceInfo,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
}

// RegisterResult is returned once the new session row is durably committed.
type RegisterResult struct {
	SessionToken        string    `json:"sessionToken"`
	ExpiresAt           time.Time `json:"expiresAt"`
	InvalidatedSessions int64     `json:"invalidatedSessions"`
}

// ValidateRequest carries a presented token plus the caller's observed IP.
type ValidateRequest struct {
	Token    string `json:"sessionToken"`
	ClientIP string `json:"-"`
}

// ValidateResult reports whether the presented session is live. When the
// country-change anomaly fires, both country values are included so the caller
// can surface "re-authenticate from this location".
type ValidateResult struct {
	Valid           bool   `json:"valid"`
	Reason          string `json:"reason,omitempty"`
	SessionID       string `json:"sessionId,omitempty"`
	OriginalCountry string `json:"originalCountry,omitempty"`
	CurrentCountry  string `json:"currentCountry,omitempty"`
}

// HeartbeatRequest extends a live session's expiry window.
type HeartbeatRequest struct {
	Token string `json:"sessionToken"`
}

// HeartbeatResult reports the slid deadline, or why the extension was refused.
// "session_not_found" deliberately covers both never-existed and
// already-invalidated so a stale token holder learns nothing about prior state.
type HeartbeatResult struct {
	Success   bool       `json:"success"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Valid     bool       `json:"valid"`
	Reason    string     `json:"reason,omitempty"`
}

// InvalidateRequest terminates the caller's own session. Idempotent.
type InvalidateRequest struct {
	Token  string `json:"sessionToken"`
	UserID string `json:"-"`
}

// InvalidateOthersRequest terminates every other active session of the caller,
// keeping the presented one.
type InvalidateOthersRequest struct {
	Token  string `json:"sessionToken"`
	UserID string `json:"-"`
}

// SessionUsecase orchestrates the session lifecycle: it loads tenant policy,
// resolves the caller's origin, executes the state transition against the
// store, and emits audit events for security-relevant branches.
type SessionUsecase struct {
	sessions repository.SessionRepository
	policy   *PolicyEngine
	geo      repository.GeoResolver
	bus      eventbus.EventBusInterface
	logger   logger.Logger
}

// NewSessionUsecase creates a new instance of SessionUsecase.
func NewSessionUsecase(
	sessions repository.SessionRepository,
	policy *PolicyEngine,
	geo repository.GeoResolver,
	bus eventbus.EventBusInterface,
	log logger.Logger,
) *SessionUsecase {
	if log == nil {
		log = logger.NewLogger()
	}
	return &SessionUsecase{
		sessions: sessions,
		policy:   policy,
		geo:      geo,
		bus:      bus,
		logger:   log.WithComponent("session-usecase"),
	}
}

// Register creates and activates a session for the verified caller, evicting
// surplus sessions first so the per-user active count never ends the operation
// above the tenant's cap.
func (uc *SessionUsecase) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if req.UserID == "" {
		return nil, ErrUserIDRequired
	}
	if req.TenantID == "" {
		return nil, ErrTenantIDRequired
	}

	policy := uc.policy.EffectivePolicy(ctx, req.TenantID)
	now := time.Now()

	activeCount, err := uc.sessions.CountActiveByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	// Evict before inserting, so the cap holds at the end of the operation.
	var evicted int64
	if activeCount >= int64(policy.MaxConcurrentSessions) {
		if policy.MaxConcurrentSessions <= 1 {
			// New login wins: bulk-evict everything else.
			evicted, err = uc.sessions.InvalidateAllByUser(ctx, req.UserID, model.ReasonNewLoginLimit, now)
		} else {
			// Oldest-first partial eviction down to max-1, leaving room for
			// the row inserted below.
			surplus := int(activeCount) - (policy.MaxConcurrentSessions - 1)
			evicted, err = uc.sessions.InvalidateOldestByUser(ctx, req.UserID, surplus, model.ReasonNewLoginLimit, now)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to evict sessions over limit: %w", err)
		}
		if evicted > 0 {
			uc.emitAudit(ctx, &model.AuditEvent{
				TenantID:  req.TenantID,
				ActorID:   req.UserID,
				Action:    model.AuditActionSessionsEvicted,
				TableName: "sessions",
				OldValue:  map[string]interface{}{"active_sessions": activeCount},
				NewValue:  map[string]interface{}{"evicted_sessions": evicted, "max_concurrent_sessions": policy.MaxConcurrentSessions},
			})
		}
	}

	// Best-effort origin lookup; absent geo data never blocks registration.
	location := uc.geo.Resolve(ctx, req.ClientIP)

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:             uuid.New().String(),
		Token:          token,
		UserID:         req.UserID,
		TenantID:       req.TenantID,
		DeviceInfo:     SanitizeClientMeta(req.DeviceInfo, maxDeviceInfoLength),
		UserAgent:      SanitizeClientMeta(req.UserAgent, maxUserAgentLength),
		IPAddress:      req.ClientIP,
		IPCountry:      location.CountryCode,
		IPCity:         location.City,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(policy.SessionTimeout),
		IsActive:       true,
	}

	if err := uc.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"session_id":       session.ID,
		"evicted_sessions": evicted,
		"ip_country":       session.IPCountry,
	}).Info("Session registered")

	return &RegisterResult{
		SessionToken:        token,
		ExpiresAt:           session.ExpiresAt,
		InvalidatedSessions: evicted,
	}, nil
}

// Validate checks whether a presented token corresponds to a live,
// policy-compliant session. Expiry is checked before the country comparison so
// an already-expired session is never reported as a security anomaly.
func (uc *SessionUsecase) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	if req.Token == "" {
		return nil, ErrTokenRequired
	}

	session, err := uc.sessions.GetActiveByToken(ctx, req.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return &ValidateResult{Valid: false, Reason: ReasonSessionNotFound}, nil
	}

	now := time.Now()
	if session.IsExpired(now) {
		if _, err := uc.sessions.Invalidate(ctx, req.Token, model.ReasonExpired, now); err != nil {
			return nil, fmt.Errorf("failed to expire session: %w", err)
		}
		return &ValidateResult{Valid: false, Reason: ReasonSessionExpired, SessionID: session.ID}, nil
	}

	policy := uc.policy.EffectivePolicy(ctx, session.TenantID)
	location := uc.geo.Resolve(ctx, req.ClientIP)

	if uc.countryChanged(policy, session, location) {
		if _, err := uc.sessions.Invalidate(ctx, req.Token, model.ReasonIPCountryChanged, now); err != nil {
			return nil, fmt.Errorf("failed to invalidate session: %w", err)
		}
		uc.emitAudit(ctx, &model.AuditEvent{
			TenantID:  session.TenantID,
			ActorID:   session.UserID,
			Action:    model.AuditActionCountryChangeFlagged,
			TableName: "sessions",
			OldValue:  map[string]interface{}{"ip_country": session.IPCountry, "ip_address": session.IPAddress},
			NewValue:  map[string]interface{}{"ip_country": location.CountryCode, "ip_address": req.ClientIP},
		})
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"session_id":  session.ID,
			"old_country": session.IPCountry,
			"new_country": location.CountryCode,
		}).Warn("Session invalidated: country change detected")

		return &ValidateResult{
			Valid:           false,
			Reason:          ReasonIPCountryChanged,
			SessionID:       session.ID,
			OriginalCountry: session.IPCountry,
			CurrentCountry:  location.CountryCode,
		}, nil
	}

	expiresAt := now.Add(policy.SessionTimeout)
	mut := repository.SessionMutation{
		LastActivityAt: &now,
		ExpiresAt:      &expiresAt,
	}
	if req.ClientIP != "" {
		mut.IPAddress = &req.ClientIP
	}
	// Never overwrite a known country with an unknown one, and never with the
	// local-network sentinel: a hop through a private address must not erase
	// the origin country the hijack check compares against.
	if location.HasCountry() && !location.IsLocal() {
		mut.IPCountry = &location.CountryCode
		mut.IPCity = &location.City
	}
	if _, err := uc.sessions.UpdateActivity(ctx, req.Token, mut); err != nil {
		return nil, fmt.Errorf("failed to update session activity: %w", err)
	}

	return &ValidateResult{Valid: true, SessionID: session.ID}, nil
}

// countryChanged applies the anomaly predicate: enforcement on, both sides
// carry a real country signal, neither side is LOCAL, and they differ.
func (uc *SessionUsecase) countryChanged(policy *model.TenantPolicy, session *model.Session, location *model.GeoLocation) bool {
	if !policy.EnforceIPCountryCheck {
		return false
	}
	if session.IPCountry == "" || session.IPCountry == model.CountryCodeLocal {
		return false
	}
	if !location.HasCountry() || location.IsLocal() {
		return false
	}
	return location.CountryCode != session.IPCountry
}

// Heartbeat slides the expiry window for a live session. A token matching no
// active row gets "session_not_found" whether it never existed or was already
// invalidated.
func (uc *SessionUsecase) Heartbeat(ctx context.Context, req HeartbeatRequest) (*HeartbeatResult, error) {
	if req.Token == "" {
		return nil, ErrTokenRequired
	}

	session, err := uc.sessions.GetActiveByToken(ctx, req.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return &HeartbeatResult{Success: false, Valid: false, Reason: ReasonSessionNotFound}, nil
	}

	now := time.Now()
	if session.IsExpired(now) {
		if _, err := uc.sessions.Invalidate(ctx, req.Token, model.ReasonExpired, now); err != nil {
			return nil, fmt.Errorf("failed to expire session: %w", err)
		}
		return &HeartbeatResult{Success: false, Valid: false, Reason: ReasonSessionExpired}, nil
	}

	policy := uc.policy.EffectivePolicy(ctx, session.TenantID)
	expiresAt := now.Add(policy.SessionTimeout)
	matched, err := uc.sessions.UpdateActivity(ctx, req.Token, repository.SessionMutation{
		LastActivityAt: &now,
		ExpiresAt:      &expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extend session: %w", err)
	}
	if !matched {
		// Invalidated between the read and the write; same answer as a stale token.
		return &HeartbeatResult{Success: false, Valid: false, Reason: ReasonSessionNotFound}, nil
	}

	return &HeartbeatResult{Success: true, Valid: true, ExpiresAt: &expiresAt}, nil
}

// Invalidate terminates the caller's own session. A token matching no active
// row is a no-op success, so repeated logout never errors.
func (uc *SessionUsecase) Invalidate(ctx context.Context, req InvalidateRequest) error {
	if req.Token == "" {
		return ErrTokenRequired
	}
	if req.UserID == "" {
		return ErrUserIDRequired
	}

	_, err := uc.sessions.InvalidateByTokenAndUser(ctx, req.Token, req.UserID, model.ReasonUserLogout, time.Now())
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// InvalidateOthers terminates every active session of the caller except the
// presented one, returning how many were terminated.
func (uc *SessionUsecase) InvalidateOthers(ctx context.Context, req InvalidateOthersRequest) (int64, error) {
	if req.Token == "" {
		return 0, ErrTokenRequired
	}
	if req.UserID == "" {
		return 0, ErrUserIDRequired
	}

	count, err := uc.sessions.InvalidateOthersByUser(ctx, req.UserID, req.Token, model.ReasonUserLogout, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate other sessions: %w", err)
	}
	return count, nil
}

// ListSessions returns the caller's active sessions, oldest first.
func (uc *SessionUsecase) ListSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return uc.sessions.ListActiveByUser(ctx, userID)
}

// emitAudit publishes an audit record fire-and-forget; a sink failure must
// never fail the session operation itself.
func (uc *SessionUsecase) emitAudit(ctx context.Context, event *model.AuditEvent) {
	if uc.bus == nil {
		return
	}
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now()
	uc.bus.PublishAndForget(ctx, eventbus.NewEvent(model.AuditEventType, "session-usecase", event))
}

// Ensure SessionUsecase implements SessionUsecaseInterface
var _ SessionUsecaseInterface = (*SessionUsecase)(nil)
