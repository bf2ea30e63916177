package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// OtelMeter adapts an OpenTelemetry metric.Meter to the Meter capability,
// caching each named instrument so it is created exactly once per process
// and reused thereafter, per the resource model.
type OtelMeter struct {
	meter      otelmetric.Meter
	counters   sync.Map // name -> otelmetric.Float64Counter
	histograms sync.Map // name -> otelmetric.Float64Histogram
}

// NewOtelMeter builds an OtelMeter from a metric.MeterProvider, naming the
// instrumentation scope "nimbus".
func NewOtelMeter(provider otelmetric.MeterProvider) *OtelMeter {
	return &OtelMeter{meter: provider.Meter("nimbus")}
}

func toOtelMetricAttrs(labels map[string]string) otelmetric.MeasurementOption {
	kvs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		kvs = append(kvs, attribute.String(k, v))
	}
	return otelmetric.WithAttributes(kvs...)
}

func (m *OtelMeter) Counter(name string) Counter {
	if c, ok := m.counters.Load(name); ok {
		return &otelCounter{counter: c.(otelmetric.Float64Counter)}
	}
	c, err := m.meter.Float64Counter(name)
	if err != nil {
		return noopInstrument{}
	}
	actual, _ := m.counters.LoadOrStore(name, c)
	return &otelCounter{counter: actual.(otelmetric.Float64Counter)}
}

func (m *OtelMeter) Histogram(name string) Histogram {
	if h, ok := m.histograms.Load(name); ok {
		return &otelHistogram{histogram: h.(otelmetric.Float64Histogram)}
	}
	h, err := m.meter.Float64Histogram(name)
	if err != nil {
		return noopInstrument{}
	}
	actual, _ := m.histograms.LoadOrStore(name, h)
	return &otelHistogram{histogram: actual.(otelmetric.Float64Histogram)}
}

type otelCounter struct {
	counter otelmetric.Float64Counter
}

func (c *otelCounter) Add(ctx context.Context, value float64, labels map[string]string) {
	c.counter.Add(ctx, value, toOtelMetricAttrs(labels))
}

type otelHistogram struct {
	histogram otelmetric.Float64Histogram
}

func (h *otelHistogram) Observe(ctx context.Context, value float64, labels map[string]string) {
	h.histogram.Record(ctx, value, toOtelMetricAttrs(labels))
}
