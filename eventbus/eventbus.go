// Package eventbus implements the Event Bus: a per-name, in-process
// publish/subscribe engine that enforces the CloudEvents size cap, fans
// events out to every subscriber concurrently, and retries a failing
// subscriber with capped exponential backoff before funneling the
// exhausted error to its error sink. It generalizes the teacher's
// modules/eventbus in-memory engine (memory.go's channel-per-subscription
// fan-out) by adding the retry/backoff loop the teacher's engine never had,
// and by dropping the teacher's synchronous/asynchronous delivery-mode
// duality, TTL/retention-history bookkeeping, and pluggable
// Kafka/Redis/Kinesis engines — none of which this system needs.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/nimbus/nimbuserr"
	"github.com/GoCodeAlone/nimbus/nimbuslog"
	"github.com/GoCodeAlone/nimbus/observability"
)

// maxEventSizeBytes is the CloudEvents JSON-encoded, UTF-8 byte length cap
// enforced at publish time.
const maxEventSizeBytes = 65536

// Event is the subset of a published envelope the bus needs: a dispatch
// key, the CloudEvents id/source pair used for span attributes, a
// correlation id for log/span context, and the JSON encoding used for the
// size check. message.Event (and message.Command/Query, though only
// events are expected here) satisfy this through their embedded
// message.Envelope.
type Event interface {
	ID() string
	Source() string
	Type() string
	CorrelationID() string
	MarshalJSON() ([]byte, error)
}

// Handler processes one delivery of an event to one subscription.
type Handler func(ctx context.Context, evt Event) error

// ErrorSink receives the wrapped error once a subscription's retries are
// exhausted. If a subscription supplies none, the bus logs at error level
// instead.
type ErrorSink func(err error, evt Event)

type subscription struct {
	id      string
	handler Handler
	onError ErrorSink
	retry   RetryPolicy
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscription)

// WithOnError installs the subscription's error sink.
func WithOnError(fn ErrorSink) SubscribeOption { return func(s *subscription) { s.onError = fn } }

// WithSubscriptionRetryPolicy overrides the bus-level default retry policy
// for this subscription only.
func WithSubscriptionRetryPolicy(p RetryPolicy) SubscribeOption {
	return func(s *subscription) { s.retry = p }
}

// Bus is a named pub/sub engine. The zero value is not usable; construct
// with New.
type Bus struct {
	name         string
	logger       nimbuslog.Logger
	tracer       observability.Tracer
	meter        observability.Meter
	defaultRetry RetryPolicy

	mu   sync.RWMutex
	subs map[string][]*subscription

	wg           sync.WaitGroup
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithLogger overrides the default no-op logger.
func WithLogger(l nimbuslog.Logger) Option { return func(b *Bus) { b.logger = l } }

// WithTracer overrides the default no-op tracer.
func WithTracer(t observability.Tracer) Option { return func(b *Bus) { b.tracer = t } }

// WithMeter overrides the default no-op meter.
func WithMeter(m observability.Meter) Option { return func(b *Bus) { b.meter = m } }

// WithDefaultRetryPolicy overrides the bus-wide default retry policy
// subscriptions inherit unless they override it themselves.
func WithDefaultRetryPolicy(p RetryPolicy) Option {
	return func(b *Bus) { b.defaultRetry = p }
}

// New constructs a named Bus. name identifies the instance in spans,
// metrics, and log records.
func New(name string, opts ...Option) *Bus {
	b := &Bus{
		name:         name,
		logger:       nimbuslog.Nop{},
		tracer:       observability.NoopTracer{},
		meter:        observability.NoopMeter{},
		defaultRetry: DefaultRetryPolicy(),
		subs:         make(map[string][]*subscription),
		shutdown:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe appends a subscription for eventType. Multiple subscriptions
// per type are allowed and are invoked in registration order when
// scheduling, though they execute concurrently thereafter. Subscribe
// returns no handle — dynamic unsubscribe is out of scope.
func (b *Bus) Subscribe(eventType string, handler Handler, opts ...SubscribeOption) {
	sub := &subscription{id: uuid.NewString(), handler: handler, retry: b.defaultRetry}
	for _, opt := range opts {
		opt(sub)
	}

	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], sub)
	b.mu.Unlock()

	b.logger.Info(nimbuslog.Record{
		Message:  "subscription registered",
		Category: "eventbus.subscribe",
		Data: map[string]any{
			"eventbus_name":   b.name,
			"event_type":      eventType,
			"subscription_id": sub.id,
		},
	})
}

// Publish serializes evt, rejects it if oversize, and schedules one
// goroutine per matching subscription to deliver it. Publish returns once
// delivery is scheduled; it never waits for (or observes failures from)
// subscriber handlers.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	payload, err := evt.MarshalJSON()
	if err != nil {
		return nimbuserr.FromError(nimbuserr.Generic, err)
	}
	size := len(payload)
	if size > maxEventSizeBytes {
		return nimbuserr.New(nimbuserr.Generic, "Event size exceeds the limit of 64KB").
			WithDetails(map[string]any{
				"eventType":      evt.Type(),
				"eventSource":    evt.Source(),
				"eventSizeBytes": size,
				"maxSizeBytes":   maxEventSizeBytes,
			})
	}

	attrs := map[string]any{
		observability.AttrMessagingSystem:     observability.MessagingSystemEventBus,
		observability.AttrMessagingBusName:     b.name,
		observability.AttrMessagingOperation:   observability.OperationPublish,
		observability.AttrMessagingDestination: evt.Type(),
		observability.AttrCloudEventID:         evt.ID(),
		observability.AttrCloudEventSource:     evt.Source(),
	}
	if cid := evt.CorrelationID(); cid != "" {
		attrs[observability.AttrCorrelationID] = cid
	}

	ctx, span := b.tracer.StartSpan(ctx, observability.SpanEventBusPublish, observability.SpanKindProducer, attrs)
	defer span.End()

	labels := map[string]string{"eventbus_name": b.name, "event_type": evt.Type()}
	b.meter.Counter(observability.MetricEventBusEventsPublishedTotal).Add(ctx, 1, labels)
	b.meter.Histogram(observability.MetricEventBusEventSizeBytes).Observe(ctx, float64(size), labels)

	b.logger.Info(nimbuslog.Record{
		Message:       "event published",
		Category:      "eventbus.publish",
		CorrelationID: evt.CorrelationID(),
		Data:          map[string]any{"eventbus_name": b.name, "event_type": evt.Type()},
	})

	b.mu.RLock()
	subs := append([]*subscription(nil), b.subs[evt.Type()]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub := sub
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.deliver(ctx, sub, evt)
		}()
	}

	return nil
}

// Close signals every in-flight retry loop to abandon its pending sleep
// and return, for use during process shutdown. It is safe to call more
// than once.
func (b *Bus) Close() {
	b.shutdownOnce.Do(func() { close(b.shutdown) })
}

// Wait blocks until every scheduled delivery (successful, exhausted, or
// abandoned by Close) has returned. Intended for tests that need to
// observe delivery completion deterministically.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// deliver runs the subscriber task algorithm for a single (subscription,
// event) pair: invoke the handler, and on failure retry with capped
// exponential backoff until the policy's retry budget is exhausted.
func (b *Bus) deliver(ctx context.Context, sub *subscription, evt Event) {
	attrs := map[string]any{
		observability.AttrMessagingSystem:     observability.MessagingSystemEventBus,
		observability.AttrMessagingBusName:     b.name,
		observability.AttrMessagingOperation:   observability.OperationProcess,
		observability.AttrMessagingDestination: evt.Type(),
		observability.AttrCloudEventID:         evt.ID(),
		observability.AttrCloudEventSource:     evt.Source(),
	}
	if cid := evt.CorrelationID(); cid != "" {
		attrs[observability.AttrCorrelationID] = cid
	}

	ctx, span := b.tracer.StartSpan(ctx, observability.SpanEventBusHandle, observability.SpanKindConsumer, attrs)
	start := time.Now()
	defer span.End()

	labels := map[string]string{"eventbus_name": b.name, "event_type": evt.Type()}

	attempt := 0
	for {
		err := sub.handler(ctx, evt)
		if err == nil {
			b.meter.Counter(observability.MetricEventBusEventsDeliveredTotal).Add(ctx, 1, withStatus(labels, observability.StatusSuccess))
			b.meter.Histogram(observability.MetricEventBusEventHandlingDurationSecs).Observe(ctx, time.Since(start).Seconds(), labels)
			return
		}

		attempt++
		if attempt > int(sub.retry.MaxRetries) {
			b.meter.Counter(observability.MetricEventBusEventsDeliveredTotal).Add(ctx, 1, withStatus(labels, observability.StatusError))
			b.meter.Histogram(observability.MetricEventBusEventHandlingDurationSecs).Observe(ctx, time.Since(start).Seconds(), labels)
			span.SetError(err.Error())
			span.RecordError(err)

			wrapped := wrapRetryExhausted(evt, err)
			if sub.onError != nil {
				sub.onError(wrapped, evt)
			} else {
				b.logger.Error(nimbuslog.Record{
					Message:       wrapped.Message,
					Category:      "eventbus.handle.error",
					Err:           wrapped,
					CorrelationID: evt.CorrelationID(),
					Data: map[string]any{
					"eventbus_name":   b.name,
					"event_type":      evt.Type(),
					"subscription_id": sub.id,
					"attempts":        attempt,
				},
				})
			}
			return
		}

		delay := backoffDelay(sub.retry, attempt)
		b.meter.Counter(observability.MetricEventBusRetryAttemptsTotal).Add(ctx, 1, labels)
		span.AddEvent("retry", map[string]any{"attempt": attempt, "delay_ms": delay.Milliseconds()})

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-b.shutdown:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// wrapRetryExhausted builds the Generic error the spec requires once a
// subscription's retries are exhausted, preserving the original cause's
// captured stack when the cause is itself part of the taxonomy.
func wrapRetryExhausted(evt Event, cause error) *nimbuserr.Error {
	wrapped := nimbuserr.New(nimbuserr.Generic, fmt.Sprintf("Failed to handle event: %s from %s", evt.Type(), evt.Source()))
	var original *nimbuserr.Error
	if errors.As(cause, &original) {
		wrapped.Stack = original.Stack
	}
	return wrapped.WithDetails(map[string]any{"cause": cause.Error()})
}

func withStatus(labels map[string]string, status string) map[string]string {
	out := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		out[k] = v
	}
	out["status"] = status
	return out
}
