package observability

import (
	"context"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMeter adapts a prometheus.Registerer to the Meter capability.
// It is offered alongside OtelMeter because several of the retrieved
// reference services (cuemby-warren, the haproxy ingress controller) scrape
// Prometheus directly rather than going through an OpenTelemetry collector.
//
// A prometheus.CounterVec/HistogramVec must declare its label names up
// front, but this capability's Add/Observe calls supply an arbitrary label
// map per call. Since every call site for a given metric name always
// supplies the same label keys (see observability/contract.go), each vector
// is created lazily from the label names seen on its first sample and
// reused for every subsequent sample of that metric.
type PrometheusMeter struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMeter builds a PrometheusMeter registered against reg. Pass
// prometheus.DefaultRegisterer to use the global registry.
func NewPrometheusMeter(reg prometheus.Registerer) *PrometheusMeter {
	return &PrometheusMeter{
		registerer: reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (m *PrometheusMeter) Counter(name string) Counter {
	return &prometheusCounter{meter: m, name: name}
}

func (m *PrometheusMeter) Histogram(name string) Histogram {
	return &prometheusHistogram{meter: m, name: name}
}

func (m *PrometheusMeter) counterVec(name string, labels map[string]string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vec, ok := m.counters[name]; ok {
		return vec
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labelNames(labels))
	m.counters[name] = vec
	_ = m.registerer.Register(vec)
	return vec
}

func (m *PrometheusMeter) histogramVec(name string, labels map[string]string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vec, ok := m.histograms[name]; ok {
		return vec
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name}, labelNames(labels))
	m.histograms[name] = vec
	_ = m.registerer.Register(vec)
	return vec
}

type prometheusCounter struct {
	meter *PrometheusMeter
	name  string
}

func (c *prometheusCounter) Add(_ context.Context, value float64, labels map[string]string) {
	c.meter.counterVec(c.name, labels).With(prometheus.Labels(labels)).Add(value)
}

type prometheusHistogram struct {
	meter *PrometheusMeter
	name  string
}

func (h *prometheusHistogram) Observe(_ context.Context, value float64, labels map[string]string) {
	h.meter.histogramVec(h.name, labels).With(prometheus.Labels(labels)).Observe(value)
}
