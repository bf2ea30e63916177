package observability

import "context"

// noopSpan implements Span by doing nothing.
type noopSpan struct{}

func (noopSpan) SetAttributes(map[string]any)    {}
func (noopSpan) AddEvent(string, map[string]any) {}
func (noopSpan) RecordError(error)               {}
func (noopSpan) SetError(string)                 {}
func (noopSpan) End()                            {}

// NoopTracer discards every span. Used as the default when no tracer is
// configured, and by tests that don't assert on span content.
type NoopTracer struct{}

func (NoopTracer) StartSpan(ctx context.Context, _ string, _ SpanKind, _ map[string]any) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopInstrument struct{}

func (noopInstrument) Add(context.Context, float64, map[string]string)     {}
func (noopInstrument) Observe(context.Context, float64, map[string]string) {}

// NoopMeter discards every counter/histogram observation.
type NoopMeter struct{}

func (NoopMeter) Counter(string) Counter     { return noopInstrument{} }
func (NoopMeter) Histogram(string) Histogram { return noopInstrument{} }

// NewNoopProvider returns a Provider that records nothing, useful for unit
// tests that don't care about telemetry.
func NewNoopProvider() Provider {
	return Provider{Tracer: NoopTracer{}, Meter: NoopMeter{}}
}
