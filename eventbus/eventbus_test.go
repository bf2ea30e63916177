package eventbus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/nimbus/message"
	"github.com/GoCodeAlone/nimbus/nimbuserr"
	"github.com/GoCodeAlone/nimbus/observability"
)

func newTestEvent(t *testing.T, eventType string, data any) message.Event {
	t.Helper()
	evt, err := message.NewEvent(message.Input{
		Source:  "https://x/api",
		Type:    eventType,
		Subject: "order-1",
		Data:    data,
	})
	require.NoError(t, err)
	return evt
}

// S4 — Event fan-out.
func TestPublish_FanOutToAllSubscriptions(t *testing.T) {
	bus := New("default")
	var count int32
	bus.Subscribe("test.event.multi", func(ctx context.Context, evt Event) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	bus.Subscribe("test.event.multi", func(ctx context.Context, evt Event) error {
		atomic.AddInt32(&count, 1)
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(t, "test.event.multi", map[string]any{"x": 1})))
	bus.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&count))
}

// S5 — Retry success.
func TestDeliver_RetrySucceedsBeforeExhaustion(t *testing.T) {
	bus := New("default", WithDefaultRetryPolicy(RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  5 * time.Millisecond,
		MaxDelay:   20 * time.Millisecond,
		UseJitter:  false,
	}))

	var attempts int32
	var onErrorCalled int32
	bus.Subscribe("test.event.retry", func(ctx context.Context, evt Event) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return errors.New("transient failure")
		}
		return nil
	}, WithOnError(func(err error, evt Event) {
		atomic.AddInt32(&onErrorCalled, 1)
	}))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(t, "test.event.retry", map[string]any{"x": 1})))
	bus.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(0), atomic.LoadInt32(&onErrorCalled))
}

// Property 8 — Retry exhaustion.
func TestDeliver_RetryExhaustionCallsOnErrorOnce(t *testing.T) {
	bus := New("default", WithDefaultRetryPolicy(RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		UseJitter:  false,
	}))

	var attempts int32
	var onErrorCalls int32
	var lastErr error
	var mu sync.Mutex
	bus.Subscribe("test.event.fails", func(ctx context.Context, evt Event) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, WithOnError(func(err error, evt Event) {
		atomic.AddInt32(&onErrorCalls, 1)
		mu.Lock()
		lastErr = err
		mu.Unlock()
	}))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(t, "test.event.fails", map[string]any{"x": 1})))
	bus.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&onErrorCalls))

	mu.Lock()
	defer mu.Unlock()
	kind, ok := nimbuserr.KindOf(lastErr)
	require.True(t, ok)
	assert.Equal(t, nimbuserr.Generic, kind)
	assert.Contains(t, lastErr.Error(), "Failed to handle event")
}

// Property 12 — Isolation.
func TestDeliver_IsolatesFailureBetweenSubscriptions(t *testing.T) {
	meter := &observability.SpyMeter{}
	bus := New("default", WithMeter(meter), WithDefaultRetryPolicy(RetryPolicy{
		MaxRetries: 0,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
	}))

	bus.Subscribe("test.event.isolation", func(ctx context.Context, evt Event) error {
		return errors.New("A fails")
	}, WithOnError(func(err error, evt Event) {}))
	bus.Subscribe("test.event.isolation", func(ctx context.Context, evt Event) error {
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(t, "test.event.isolation", map[string]any{"x": 1})))
	bus.Wait()

	assert.Equal(t, 1, meter.CountWhere(observability.MetricEventBusEventsDeliveredTotal, map[string]string{"status": observability.StatusSuccess}))
	assert.Equal(t, 1, meter.CountWhere(observability.MetricEventBusEventsDeliveredTotal, map[string]string{"status": observability.StatusError}))
}

// S6 — Oversize event.
func TestPublish_OversizeEventRejected(t *testing.T) {
	bus := New("default")
	big := strings.Repeat("x", 65*1024)
	evt := newTestEvent(t, "test.event.big", map[string]any{"bigData": big})

	err := bus.Publish(context.Background(), evt)
	require.Error(t, err)
	kind, ok := nimbuserr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, nimbuserr.Generic, kind)
	assert.Contains(t, err.Error(), "Event size exceeds the limit of 64KB")
}

func TestPublish_NoSubscribersIsNotAnError(t *testing.T) {
	bus := New("default")
	require.NoError(t, bus.Publish(context.Background(), newTestEvent(t, "nobody.listens", "x")))
	bus.Wait()
}

func TestClose_AbandonsPendingRetrySleep(t *testing.T) {
	bus := New("default", WithDefaultRetryPolicy(RetryPolicy{
		MaxRetries: 100,
		BaseDelay:  time.Hour,
		MaxDelay:   time.Hour,
	}))
	started := make(chan struct{})
	bus.Subscribe("test.event.slow", func(ctx context.Context, evt Event) error {
		close(started)
		return errors.New("always fails")
	})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(t, "test.event.slow", "x")))
	<-started
	bus.Close()

	done := make(chan struct{})
	go func() {
		bus.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not abandon the pending retry sleep in time")
	}
}
