package utils

import (
	"context"
	"errors"

	"sessionguard/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrUserIDNotFound     = errors.New("userID not found in context")
	ErrUserIDNotString    = errors.New("userID in context is not a string")
	ErrTenantIDNotFound   = errors.New("tenantID not found in context")
	ErrTenantIDNotString  = errors.New("tenantID in context is not a string")
	ErrUserEmailNotFound  = errors.New("userEmail not found in context")
	ErrUserEmailNotString = errors.New("userEmail in context is not a string")
	ErrClientIPNotFound   = errors.New("clientIP not found in context")
	ErrClientIPNotString  = errors.New("clientIP in context is not a string")
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
)

// GetUserIDFromContext retrieves the authenticated user ID from the context.
// It returns an error if the user ID is not found or is not a string.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.UserIDKey)
	if val == nil {
		return "", ErrUserIDNotFound
	}
	userID, ok := val.(string)
	if !ok {
		return "", ErrUserIDNotString
	}
	return userID, nil
}

// GetTenantIDFromContext retrieves the tenant ID from the context.
func GetTenantIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.TenantIDKey)
	if val == nil {
		return "", ErrTenantIDNotFound
	}
	tenantID, ok := val.(string)
	if !ok {
		return "", ErrTenantIDNotString
	}
	return tenantID, nil
}

// GetUserEmailFromContext retrieves the user email from the context.
func GetUserEmailFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.UserEmailKey)
	if val == nil {
		return "", ErrUserEmailNotFound
	}
	userEmail, ok := val.(string)
	if !ok {
		return "", ErrUserEmailNotString
	}
	return userEmail, nil
}

// GetClientIPFromContext retrieves the observed client IP from the context.
func GetClientIPFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.ClientIPKey)
	if val == nil {
		return "", ErrClientIPNotFound
	}
	clientIP, ok := val.(string)
	if !ok {
		return "", ErrClientIPNotString
	}
	return clientIP, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.RequestIDKey)
	if val == nil {
		return "", ErrRequestIDNotFound
	}
	requestID, ok := val.(string)
	if !ok {
		return "", ErrRequestIDNotString
	}
	return requestID, nil
}

// Context builder functions

// WithUserID adds the authenticated user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextkeys.UserIDKey, userID)
}

// WithTenantID adds tenant ID to context
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextkeys.TenantIDKey, tenantID)
}

// WithUserEmail adds user email to context
func WithUserEmail(ctx context.Context, userEmail string) context.Context {
	return context.WithValue(ctx, contextkeys.UserEmailKey, userEmail)
}

// WithClientIP adds the observed client IP to context
func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, contextkeys.ClientIPKey, clientIP)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithComponent adds component name to context
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation adds operation name to context
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// Optional getters that return default values instead of errors

// GetUserIDOrDefault retrieves the user ID from context or returns a default value
func GetUserIDOrDefault(ctx context.Context, def string) string {
	if v, err := GetUserIDFromContext(ctx); err == nil {
		return v
	}
	return def
}

// GetTenantIDOrDefault retrieves the tenant ID from context or returns a default value
func GetTenantIDOrDefault(ctx context.Context, def string) string {
	if v, err := GetTenantIDFromContext(ctx); err == nil {
		return v
	}
	return def
}

// GetClientIPOrDefault retrieves the client IP from context or returns a default value
func GetClientIPOrDefault(ctx context.Context, def string) string {
	if v, err := GetClientIPFromContext(ctx); err == nil {
		return v
	}
	return def
}

// HasX checks
func HasUserID(ctx context.Context) bool {
	_, err := GetUserIDFromContext(ctx)
	return err == nil
}

func HasTenantID(ctx context.Context) bool {
	_, err := GetTenantIDFromContext(ctx)
	return err == nil
}

func HasClientIP(ctx context.Context) bool {
	_, err := GetClientIPFromContext(ctx)
	return err == nil
}
