package observability

import (
	"context"
	"sync"
)

// RecordedSpan captures everything a test needs to assert about one
// StartSpan call.
type RecordedSpan struct {
	Name      string
	Kind      SpanKind
	Attrs     map[string]any
	Events    []RecordedEvent
	Errors    []error
	ErrorMsgs []string
	Ended     bool
}

// RecordedEvent captures one AddEvent call.
type RecordedEvent struct {
	Name  string
	Attrs map[string]any
}

// SpyTracer records every span it starts, for assertions in router/eventbus
// tests without depending on a real OpenTelemetry exporter.
type SpyTracer struct {
	mu    sync.Mutex
	Spans []*RecordedSpan
}

type spySpan struct {
	tracer *SpyTracer
	rec    *RecordedSpan
}

func (t *SpyTracer) StartSpan(ctx context.Context, name string, kind SpanKind, attrs map[string]any) (context.Context, Span) {
	t.mu.Lock()
	rec := &RecordedSpan{Name: name, Kind: kind, Attrs: attrs}
	t.Spans = append(t.Spans, rec)
	t.mu.Unlock()
	return ctx, &spySpan{tracer: t, rec: rec}
}

func (s *spySpan) SetAttributes(attrs map[string]any) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	if s.rec.Attrs == nil {
		s.rec.Attrs = map[string]any{}
	}
	for k, v := range attrs {
		s.rec.Attrs[k] = v
	}
}

func (s *spySpan) AddEvent(name string, attrs map[string]any) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.rec.Events = append(s.rec.Events, RecordedEvent{Name: name, Attrs: attrs})
}

func (s *spySpan) RecordError(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.rec.Errors = append(s.rec.Errors, err)
}

func (s *spySpan) SetError(msg string) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.rec.ErrorMsgs = append(s.rec.ErrorMsgs, msg)
}

func (s *spySpan) End() {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.rec.Ended = true
}

// RecordedSample captures one Add/Observe call against a named instrument.
type RecordedSample struct {
	Instrument string
	Value      float64
	Labels     map[string]string
}

// SpyMeter records every counter/histogram sample, for assertions about the
// status=success/status=error label contract.
type SpyMeter struct {
	mu      sync.Mutex
	Samples []RecordedSample
}

type spyInstrument struct {
	meter *SpyMeter
	name  string
}

func (m *SpyMeter) Counter(name string) Counter     { return &spyInstrument{meter: m, name: name} }
func (m *SpyMeter) Histogram(name string) Histogram { return &spyInstrument{meter: m, name: name} }

func (i *spyInstrument) Add(_ context.Context, value float64, labels map[string]string) {
	i.record(value, labels)
}

func (i *spyInstrument) Observe(_ context.Context, value float64, labels map[string]string) {
	i.record(value, labels)
}

func (i *spyInstrument) record(value float64, labels map[string]string) {
	i.meter.mu.Lock()
	defer i.meter.mu.Unlock()
	i.meter.Samples = append(i.meter.Samples, RecordedSample{Instrument: i.name, Value: value, Labels: labels})
}

// CountWhere returns the number of recorded samples for instrument whose
// labels match every key/value in want.
func (m *SpyMeter) CountWhere(instrument string, want map[string]string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Samples {
		if s.Instrument != instrument {
			continue
		}
		match := true
		for k, v := range want {
			if s.Labels[k] != v {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}
