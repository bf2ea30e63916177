package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// OtelTracer adapts an OpenTelemetry trace.Tracer to the Tracer capability.
// This is the default production tracing backend; wire it to any
// OpenTelemetry SDK TracerProvider at the edge (the core never imports an
// exporter directly).
type OtelTracer struct {
	tracer oteltrace.Tracer
}

// NewOtelTracer builds an OtelTracer from a trace.TracerProvider, naming
// the instrumentation scope "nimbus".
func NewOtelTracer(provider oteltrace.TracerProvider) *OtelTracer {
	return &OtelTracer{tracer: provider.Tracer("nimbus")}
}

func toOtelKind(kind SpanKind) oteltrace.SpanKind {
	switch kind {
	case SpanKindProducer:
		return oteltrace.SpanKindProducer
	case SpanKindConsumer:
		return oteltrace.SpanKindConsumer
	default:
		return oteltrace.SpanKindInternal
	}
}

func toOtelAttrs(attrs map[string]any) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			kvs = append(kvs, attribute.String(k, val))
		case int:
			kvs = append(kvs, attribute.Int(k, val))
		case int64:
			kvs = append(kvs, attribute.Int64(k, val))
		case float64:
			kvs = append(kvs, attribute.Float64(k, val))
		case bool:
			kvs = append(kvs, attribute.Bool(k, val))
		default:
			kvs = append(kvs, attribute.String(k, toString(val)))
		}
	}
	return kvs
}

func toString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

func (t *OtelTracer) StartSpan(ctx context.Context, name string, kind SpanKind, attrs map[string]any) (context.Context, Span) {
	spanCtx, span := t.tracer.Start(ctx, name,
		oteltrace.WithSpanKind(toOtelKind(kind)),
		oteltrace.WithAttributes(toOtelAttrs(attrs)...),
	)
	return spanCtx, &otelSpan{span: span}
}

type otelSpan struct {
	span oteltrace.Span
}

func (s *otelSpan) SetAttributes(attrs map[string]any) {
	s.span.SetAttributes(toOtelAttrs(attrs)...)
}

func (s *otelSpan) AddEvent(name string, attrs map[string]any) {
	s.span.AddEvent(name, oteltrace.WithAttributes(toOtelAttrs(attrs)...))
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func (s *otelSpan) SetError(message string) {
	s.span.SetStatus(codes.Error, message)
}

func (s *otelSpan) End() {
	s.span.End()
}
