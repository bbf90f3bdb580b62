package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Behavior(t *testing.T) {
	err := NewValidationError("invalid input").WithCode("VAL001").WithDetail("field", "deviceInfo").WithComponent("session-router")
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "VAL001", err.Code)
	assert.Equal(t, "session-router", err.Component)
	assert.Equal(t, "deviceInfo", err.Details["field"])
	assert.Equal(t, "invalid input", err.Error())
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := ErrSessionNotFound
	err := NewNotFoundError("session").WithCause(cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "session not found")
}

func TestValidationErrors(t *testing.T) {
	ve := NewValidationErrors()
	ve.Add("userAgent", "too long", "")
	assert.True(t, ve.HasErrors())
	appErr := ve.ToAppError()
	assert.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeValidation, appErr.Type)

	empty := NewValidationErrors()
	assert.Nil(t, empty.ToAppError())
}

func TestClassifiers(t *testing.T) {
	nf := NewNotFoundError("session")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsValidation(nf))
	assert.False(t, IsAuthentication(nf))
	assert.False(t, IsAuthorization(nf))

	val := NewValidationError("bad")
	assert.True(t, IsValidation(val))
	auth := NewAuthenticationError("bad")
	assert.True(t, IsAuthentication(auth))
	authz := NewAuthorizationError("bad")
	assert.True(t, IsAuthorization(authz))
	conflict := NewConflictError("dup")
	assert.True(t, IsConflict(conflict))
}

func TestClassifiers_SentinelErrors(t *testing.T) {
	assert.True(t, IsNotFound(ErrSessionNotFound))
	assert.True(t, IsNotFound(ErrPolicyNotFound))
	assert.True(t, IsAuthentication(ErrUserDeleted))
	assert.True(t, IsAuthentication(ErrUserInactive))
}

func TestWrapError(t *testing.T) {
	appErr := NewInternalError("boom")
	assert.Equal(t, appErr, WrapError(appErr, "ignored"))

	wrapped := WrapError(ErrInternalServer, "store write failed")
	assert.Equal(t, ErrorTypeInternal, wrapped.Type)
	assert.Equal(t, ErrInternalServer, wrapped.Unwrap())
}
