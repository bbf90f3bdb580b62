package logger

import (
	"context"
	"testing"

	"sessionguard/internal/shared/utils"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	log := NewLogger()
	assert.NotNil(t, log)
}

func TestNewLoggerWithConfig(t *testing.T) {
	log := NewLoggerWithConfig("debug", "json")
	assert.NotNil(t, log)

	// Unknown level falls back to info without failing
	log = NewLoggerWithConfig("bogus", "text")
	assert.NotNil(t, log)
}

func TestWithFields(t *testing.T) {
	log := NewLogger().WithFields(map[string]interface{}{"session_id": "s-1"})
	assert.NotNil(t, log)
}

func TestWithComponent(t *testing.T) {
	log := NewLogger().WithComponent("session-usecase")
	assert.NotNil(t, log)
}

func TestWithContext_ExtractsIdentityFields(t *testing.T) {
	ctx := utils.WithUserID(context.Background(), "user-1")
	ctx = utils.WithTenantID(ctx, "tenant-1")
	ctx = utils.WithClientIP(ctx, "203.0.113.9")

	log := NewLogger().WithContext(ctx)
	assert.NotNil(t, log)

	entry := log.(*LogrusLogger).entry
	assert.Equal(t, "user-1", entry.Data["user_id"])
	assert.Equal(t, "tenant-1", entry.Data["tenant_id"])
	assert.Equal(t, "203.0.113.9", entry.Data["client_ip"])
}

func TestWithContext_EmptyContext(t *testing.T) {
	log := NewLogger().WithContext(context.Background())
	entry := log.(*LogrusLogger).entry
	assert.Empty(t, entry.Data)
}
