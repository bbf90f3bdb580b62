package http

import (
	"errors"

	"sessionguard/internal/sessions/usecase"
	"sessionguard/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// Action discriminates the session operation carried by a request to the
// combined sessions endpoint. The set is closed: unknown actions are
// rejected, never defaulted.
type Action string

const (
	ActionRegister         Action = "register"
	ActionValidate         Action = "validate"
	ActionHeartbeat        Action = "heartbeat"
	ActionInvalidate       Action = "invalidate"
	ActionInvalidateOthers Action = "invalidate_others"
)

// IsValid reports whether the action belongs to the closed set.
func (a Action) IsValid() bool {
	switch a {
	case ActionRegister, ActionValidate, ActionHeartbeat, ActionInvalidate, ActionInvalidateOthers:
		return true
	}
	return false
}

// SessionHTTPHandler handles HTTP requests for session lifecycle operations
type SessionHTTPHandler struct {
	usecase usecase.SessionUsecaseInterface
}

// NewSessionHTTPHandler creates a new session HTTP handler
func NewSessionHTTPHandler(uc usecase.SessionUsecaseInterface) *SessionHTTPHandler {
	return &SessionHTTPHandler{usecase: uc}
}

// SetupSessionRoutesWithMiddleware sets up session routes with middleware
func (h *SessionHTTPHandler) SetupSessionRoutesWithMiddleware(router fiber.Router, middleware *IdentityMiddleware) {
	protected := router.Group("/sessions",
		RequestID(),
		SecurityHeaders(),
		RateLimiter(),
		middleware.RequireIdentity(),
	)

	// Combined endpoint dispatching on the action discriminator
	protected.Post("/", h.Dispatch)

	// Per-action routes for clients that prefer explicit paths
	protected.Post("/register", h.Register)
	protected.Post("/validate", h.Validate)
	protected.Post("/heartbeat", h.Heartbeat)
	protected.Post("/invalidate", h.Invalidate)
	protected.Post("/invalidate-others", h.InvalidateOthers)
	protected.Get("/", h.ListSessions)
}

// dispatchEnvelope carries the action discriminator plus the union of all
// per-action request fields.
type dispatchEnvelope struct {
	Action       Action `json:"action"`
	SessionToken string `json:"sessionToken,omitempty"`
	DeviceInfo   string `json:"deviceInfo,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
}

// Dispatch routes a combined-endpoint request to the handler for its action
func (h *SessionHTTPHandler) Dispatch(c *fiber.Ctx) error {
	var envelope dispatchEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !envelope.Action.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown action",
		})
	}

	switch envelope.Action {
	case ActionRegister:
		return h.Register(c)
	case ActionValidate:
		return h.Validate(c)
	case ActionHeartbeat:
		return h.Heartbeat(c)
	case ActionInvalidate:
		return h.Invalidate(c)
	default:
		return h.InvalidateOthers(c)
	}
}

// Register handles new session registration
func (h *SessionHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	identity, err := h.identityFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	req.UserID = identity.userID
	req.TenantID = identity.tenantID
	req.ClientIP = identity.clientIP

	response, err := h.usecase.Register(c.UserContext(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// Validate handles session validation
func (h *SessionHTTPHandler) Validate(c *fiber.Ctx) error {
	var req usecase.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	identity, err := h.identityFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	req.ClientIP = identity.clientIP

	// Validation outcomes are results, not errors: a rejected session still
	// answers 200 with valid=false and an enumerable reason.
	response, err := h.usecase.Validate(c.UserContext(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(response)
}

// Heartbeat handles session activity refresh
func (h *SessionHTTPHandler) Heartbeat(c *fiber.Ctx) error {
	var req usecase.HeartbeatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	response, err := h.usecase.Heartbeat(c.UserContext(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(response)
}

// Invalidate handles explicit logout of a single session
func (h *SessionHTTPHandler) Invalidate(c *fiber.Ctx) error {
	var req usecase.InvalidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	identity, err := h.identityFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	req.UserID = identity.userID

	if err := h.usecase.Invalidate(c.UserContext(), req); err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Session invalidated",
	})
}

// InvalidateOthers terminates every active session of the caller except the
// one presenting the request
func (h *SessionHTTPHandler) InvalidateOthers(c *fiber.Ctx) error {
	var req usecase.InvalidateOthersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	identity, err := h.identityFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	req.UserID = identity.userID

	invalidated, err := h.usecase.InvalidateOthers(c.UserContext(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"invalidatedSessions": invalidated,
	})
}

// ListSessions returns the caller's active sessions
func (h *SessionHTTPHandler) ListSessions(c *fiber.Ctx) error {
	identity, err := h.identityFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sessions, err := h.usecase.ListSessions(c.UserContext(), identity.userID)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

type requestIdentity struct {
	userID   string
	tenantID string
	clientIP string
}

// identityFromContext reads the caller identity injected by RequireIdentity
func (h *SessionHTTPHandler) identityFromContext(c *fiber.Ctx) (requestIdentity, error) {
	ctx := c.UserContext()

	userID, err := utils.GetUserIDFromContext(ctx)
	if err != nil {
		return requestIdentity{}, err
	}
	tenantID, err := utils.GetTenantIDFromContext(ctx)
	if err != nil {
		return requestIdentity{}, err
	}

	return requestIdentity{
		userID:   userID,
		tenantID: tenantID,
		clientIP: utils.GetClientIPOrDefault(ctx, c.IP()),
	}, nil
}

// mapError translates usecase errors into HTTP responses
func (h *SessionHTTPHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUserIDRequired),
		errors.Is(err, usecase.ErrTenantIDRequired),
		errors.Is(err, usecase.ErrTokenRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
