package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)
	var called bool
	bus.Subscribe("session.evicted", func(ctx context.Context, event Event) error {
		called = true
		assert.Equal(t, "session.evicted", event.Type())
		return nil
	})
	err := bus.Publish(context.Background(), NewEvent("session.evicted", "test", nil))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestEventBus_NoHandlers(t *testing.T) {
	bus := NewEventBus(nil)
	err := bus.Publish(context.Background(), NewEvent("unknown", "test", nil))
	assert.NoError(t, err)
}

func TestEventBus_RetriesThenFails(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	attempts := 0
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		attempts++
		return errors.New("sink down")
	})
	err := bus.Publish(context.Background(), NewEvent("flaky", "test", nil))
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestEventBus_RetriesThenSucceeds(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	attempts := 0
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	err := bus.Publish(context.Background(), NewEvent("flaky", "test", nil))
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := NewEventBus(nil)
	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("async", func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	})
	bus.PublishAndForget(context.Background(), NewEvent("async", "test", nil))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("x", func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount("x"))
	bus.Unsubscribe("x")
	assert.Equal(t, 0, bus.GetSubscriberCount("x"))
}

func TestBaseEvent_Fields(t *testing.T) {
	ev := NewEvent("audit.record", "session-usecase", map[string]string{"k": "v"})
	assert.Equal(t, "audit.record", ev.Type())
	assert.Equal(t, "session-usecase", ev.Source())
	assert.WithinDuration(t, time.Now(), ev.Timestamp(), time.Second)
	assert.NotNil(t, ev.Data())
}
