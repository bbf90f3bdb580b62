package http

import (
	"context"
	"strings"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/shared/contextkeys"
	"sessionguard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// IdentityMiddleware authenticates the caller against the upstream identity
// assertion and enforces account-status checks before any session operation.
type IdentityMiddleware struct {
	verifier   repository.IdentityVerifier
	users      repository.UserDirectory
	cookieName string
	logger     logger.Logger
}

// NewIdentityMiddleware creates identity middleware for session endpoints.
func NewIdentityMiddleware(verifier repository.IdentityVerifier, users repository.UserDirectory, cookieName string, log logger.Logger) *IdentityMiddleware {
	if log == nil {
		log = logger.NewLogger()
	}
	return &IdentityMiddleware{
		verifier:   verifier,
		users:      users,
		cookieName: cookieName,
		logger:     log,
	}
}

// SecurityHeaders adds security headers
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter creates rate limiting middleware for session endpoints
func RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               60,              // 60 requests
		Expiration:        1 * time.Minute, // per minute
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// RequireIdentity returns middleware that verifies the upstream identity
// assertion and rejects callers whose account is deleted or deactivated.
// Account status is checked on every request so that a deletion upstream
// takes effect immediately, not at the next session expiry.
func (m *IdentityMiddleware) RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		assertion, err := m.extractAssertion(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := m.verifier.VerifyAssertion(c.Context(), assertion)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid identity assertion",
			})
		}

		account, err := m.users.GetUserByID(c.Context(), claims.UserID)
		if err != nil {
			m.logger.Error("Failed to load user account", "userID", claims.UserID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to verify account status",
			})
		}
		if account == nil || account.Status == model.UserStatusDeleted {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"valid":  false,
				"reason": "user_deleted",
			})
		}
		if !account.CanAuthenticate() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"valid":  false,
				"reason": "user_inactive",
			})
		}

		// Add user context using context.WithValue
		ctx := c.UserContext()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.TenantIDKey, claims.TenantID)
		if claims.Email != "" {
			ctx = context.WithValue(ctx, contextkeys.UserEmailKey, claims.Email)
		}
		ctx = context.WithValue(ctx, contextkeys.ClientIPKey, clientIP(c))

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// extractAssertion extracts the identity assertion from Authorization header or cookie
func (m *IdentityMiddleware) extractAssertion(c *fiber.Ctx) (string, error) {
	// Try Authorization header first
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer "), nil
		}
	}

	// Try cookie
	assertion := c.Cookies(m.cookieName)
	if assertion != "" {
		return assertion, nil
	}

	return "", fiber.NewError(fiber.StatusUnauthorized, "No identity assertion found")
}

// clientIP resolves the caller address, preferring X-Forwarded-For when the
// service sits behind a proxy.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	return c.IP()
}
