package repository

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityVerifier checks assertions minted by the upstream identity
// provider. Credential issuance happens there; this component only verifies
// that a request carries a valid `(userID, tenantID)` identity.
type IdentityVerifier interface {
	VerifyAssertion(ctx context.Context, assertion string) (*Claims, error)
}

// Claims represents the verified identity carried by an upstream assertion.
type Claims struct {
	UserID   string `json:"userID"`
	TenantID string `json:"tenantID"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}
