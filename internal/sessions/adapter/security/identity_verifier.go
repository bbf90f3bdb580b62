package security

import (
	"context"
	"errors"
	"time"

	"sessionguard/internal/sessions/config"
	"sessionguard/internal/sessions/domain/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAssertionInvalid          = errors.New("identity assertion is invalid")
	ErrAssertionExpired          = errors.New("identity assertion is expired")
	ErrAssertionSignatureInvalid = errors.New("identity assertion signature is invalid")
)

// JWTIdentityVerifier verifies HS256 identity assertions minted by the
// upstream identity provider with a shared secret.
type JWTIdentityVerifier struct {
	secretKey []byte
	issuer    string
}

// NewJWTIdentityVerifier creates a new identity verifier.
func NewJWTIdentityVerifier(cfg *config.Config) (*JWTIdentityVerifier, error) {
	if cfg.IdentitySecretKey == "" {
		return nil, errors.New("identity secret key cannot be empty")
	}
	if cfg.IdentityIssuer == "" {
		return nil, errors.New("identity issuer cannot be empty")
	}

	return &JWTIdentityVerifier{
		secretKey: []byte(cfg.IdentitySecretKey),
		issuer:    cfg.IdentityIssuer,
	}, nil
}

// VerifyAssertion validates an upstream assertion and returns its claims.
func (v *JWTIdentityVerifier) VerifyAssertion(ctx context.Context, assertion string) (*repository.Claims, error) {
	if assertion == "" {
		return nil, ErrAssertionInvalid
	}

	token, err := jwt.ParseWithClaims(assertion, &repository.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAssertionSignatureInvalid
		}
		return v.secretKey, nil
	}, jwt.WithIssuer(v.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrAssertionExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrAssertionSignatureInvalid
		}
		return nil, ErrAssertionInvalid
	}

	if !token.Valid {
		return nil, ErrAssertionInvalid
	}

	claims, ok := token.Claims.(*repository.Claims)
	if !ok {
		return nil, ErrAssertionInvalid
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, ErrAssertionInvalid
	}

	return claims, nil
}

// SignAssertion mints an assertion the way the upstream identity provider
// does. Used by seed tooling and tests; production assertions come from the
// identity provider itself.
func (v *JWTIdentityVerifier) SignAssertion(userID, tenantID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &repository.Claims{
		UserID:   userID,
		TenantID: tenantID,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    v.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secretKey)
}

// Ensure JWTIdentityVerifier implements IdentityVerifier
var _ repository.IdentityVerifier = (*JWTIdentityVerifier)(nil)
