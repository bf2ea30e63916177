// Package router implements the Message Router: a per-name registry of
// (message type → handler + schema) that validates and dispatches commands
// and queries, instrumenting every route with a span and a pair of metrics.
// It generalizes the teacher's map-of-named-services registry shape
// (registry/registry.go's ServiceRegistry) from "one thing per name" to
// "one handler+schema pair per message type".
package router

import (
	"context"
	"sync"
	"time"

	"github.com/GoCodeAlone/nimbus/nimbuserr"
	"github.com/GoCodeAlone/nimbus/nimbuslog"
	"github.com/GoCodeAlone/nimbus/observability"
)

// Message is the subset of a command/query envelope the router needs: a
// dispatch key, a correlation id for span/log context, and a data payload
// to hand the schema validator. message.Command and message.Query (via
// their embedded message.Envelope) satisfy this implicitly.
type Message interface {
	Type() string
	CorrelationID() string
	DataAs(obj any) error
}

// Handler processes a validated message and returns a result.
type Handler func(ctx context.Context, msg Message) (any, error)

// SchemaValidator checks a decoded data payload against a registered
// schema. A nil or empty return means the payload is valid.
type SchemaValidator interface {
	Validate(data any) []nimbuserr.Issue
}

type entry struct {
	handler Handler
	schema  SchemaValidator
}

// Router is a named, type-keyed dispatch table. The zero value is not
// usable; construct with New.
type Router struct {
	name   string
	logger nimbuslog.Logger
	tracer observability.Tracer
	meter  observability.Meter

	logInput  func(Message)
	logOutput func(any)

	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures a Router at construction time.
type Option func(*Router)

// WithLogger overrides the default no-op logger.
func WithLogger(l nimbuslog.Logger) Option { return func(r *Router) { r.logger = l } }

// WithTracer overrides the default no-op tracer.
func WithTracer(t observability.Tracer) Option { return func(r *Router) { r.tracer = t } }

// WithMeter overrides the default no-op meter.
func WithMeter(m observability.Meter) Option { return func(r *Router) { r.meter = m } }

// WithInputLogger installs a hook invoked with every inbound message before
// validation, per §4.D step 2's optional logInput hook.
func WithInputLogger(fn func(Message)) Option { return func(r *Router) { r.logInput = fn } }

// WithOutputLogger installs a hook invoked with every successful handler
// result, per §4.D step 7's optional logOutput hook.
func WithOutputLogger(fn func(any)) Option { return func(r *Router) { r.logOutput = fn } }

// New constructs a named Router. name identifies the instance in spans,
// metrics, and log records.
func New(name string, opts ...Option) *Router {
	r := &Router{
		name:    name,
		logger:  nimbuslog.Nop{},
		tracer:  observability.NoopTracer{},
		meter:   observability.NoopMeter{},
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register idempotently replaces any previous registration for msgType and
// logs an informational record. Replacing an existing registration is
// additionally flagged in the log data so operators can spot an
// unintentional re-registration.
func (r *Router) Register(msgType string, handler Handler, schema SchemaValidator) {
	r.mu.Lock()
	_, replacing := r.entries[msgType]
	r.entries[msgType] = entry{handler: handler, schema: schema}
	r.mu.Unlock()

	r.logger.Info(nimbuslog.Record{
		Message:  "route registered",
		Category: "router.register",
		Data: map[string]any{
			"router_name":  r.name,
			"message_type": msgType,
			"replacing":    replacing,
		},
	})
}

// Route validates and dispatches msg per §4.D's routing algorithm: a
// missing type attribute fails InvalidInput, an unregistered type fails
// NotFound, a schema validation failure fails InvalidInput with the issue
// list attached, and any handler error propagates unchanged. The span is
// always ended and the routed/duration metrics are always emitted,
// regardless of which exit path is taken.
func (r *Router) Route(ctx context.Context, msg Message) (any, error) {
	msgType := ""
	var correlationID string
	if msg != nil {
		msgType = msg.Type()
		correlationID = msg.CorrelationID()
	}
	destination := msgType
	if destination == "" {
		destination = "unknown"
	}

	attrs := map[string]any{
		observability.AttrMessagingSystem:      observability.MessagingSystemRouter,
		observability.AttrMessagingRouterName:  r.name,
		observability.AttrMessagingOperation:   observability.OperationRoute,
		observability.AttrMessagingDestination: destination,
	}
	if correlationID != "" {
		attrs[observability.AttrCorrelationID] = correlationID
	}

	ctx, span := r.tracer.StartSpan(ctx, observability.SpanRouterRoute, observability.SpanKindInternal, attrs)
	start := time.Now()
	status := observability.StatusSuccess

	defer func() {
		r.meter.Counter(observability.MetricRouterMessagesRoutedTotal).Add(ctx, 1, map[string]string{
			"router_name":  r.name,
			"message_type": msgType,
			"status":       status,
		})
		r.meter.Histogram(observability.MetricRouterRoutingDurationSeconds).Observe(ctx, time.Since(start).Seconds(), map[string]string{
			"router_name":  r.name,
			"message_type": msgType,
		})
		span.End()
	}()

	if r.logInput != nil {
		r.logInput(msg)
	}

	if msgType == "" {
		err := nimbuserr.New(nimbuserr.InvalidInput, "The provided input has no type attribute")
		status = observability.StatusError
		span.SetError(err.Error())
		span.RecordError(err)
		return nil, err
	}

	r.mu.RLock()
	e, ok := r.entries[msgType]
	r.mu.RUnlock()
	if !ok {
		err := nimbuserr.New(nimbuserr.NotFound, "Message handler not found").
			WithDetails(map[string]any{"message_type": msgType})
		status = observability.StatusError
		span.SetError(err.Error())
		span.RecordError(err)
		return nil, err
	}

	if e.schema != nil {
		var payload any
		if derr := msg.DataAs(&payload); derr != nil {
			err := nimbuserr.FromError(nimbuserr.InvalidInput, derr)
			status = observability.StatusError
			span.SetError(err.Error())
			span.RecordError(err)
			return nil, err
		}
		if issues := e.schema.Validate(payload); len(issues) > 0 {
			err := nimbuserr.FromSchemaIssues("The provided input is invalid", issues)
			status = observability.StatusError
			span.SetError(err.Error())
			span.RecordError(err)
			return nil, err
		}
	}

	result, err := e.handler(ctx, msg)
	if err != nil {
		status = observability.StatusError
		span.SetError(err.Error())
		span.RecordError(err)
		return nil, err
	}

	if r.logOutput != nil {
		r.logOutput(result)
	}
	return result, nil
}
