// Package observability defines the narrow Tracer/Meter capabilities the
// router and event bus depend on, so neither hard-binds to one tracing or
// metrics SDK. Concrete adapters (OpenTelemetry for tracing, OpenTelemetry
// plus Prometheus for metrics) live alongside a Noop adapter used by tests.
package observability

import "context"

// SpanKind mirrors the subset of OpenTelemetry span kinds the contract
// names explicitly.
type SpanKind int

const (
	SpanKindInternal SpanKind = iota
	SpanKindProducer
	SpanKindConsumer
)

// Span is the capability a started span exposes back to the caller.
type Span interface {
	SetAttributes(attrs map[string]any)
	AddEvent(name string, attrs map[string]any)
	RecordError(err error)
	SetError(message string)
	End()
}

// EndFunc ends the span it closes over.
type EndFunc func()

// Tracer starts spans. StartSpan returns the derived context (carrying the
// new span) and the Span handle; callers must always call the returned
// Span's End exactly once, on every exit path.
type Tracer interface {
	StartSpan(ctx context.Context, name string, kind SpanKind, attrs map[string]any) (context.Context, Span)
}

// Counter accumulates a monotonic count, labeled per call.
type Counter interface {
	Add(ctx context.Context, value float64, labels map[string]string)
}

// Histogram records a distribution of observed values, labeled per call.
type Histogram interface {
	Observe(ctx context.Context, value float64, labels map[string]string)
}

// Meter creates (or returns the cached) counter/histogram for a metric
// name. Implementations must create each named instrument once per process
// and reuse it, per the resource model's "metric handles are created once"
// requirement.
type Meter interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// Provider bundles the two capabilities the core actually depends on.
type Provider struct {
	Tracer Tracer
	Meter  Meter
}
