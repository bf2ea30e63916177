package observability

import "context"

// MultiMeter fans every sample out to all of its underlying meters. Used to
// feed both an OtelMeter and a PrometheusMeter from the same call sites
// without the router/eventbus packages knowing there are two backends.
type MultiMeter struct {
	meters []Meter
}

// NewMultiMeter builds a MultiMeter over the given meters.
func NewMultiMeter(meters ...Meter) *MultiMeter {
	return &MultiMeter{meters: meters}
}

func (m *MultiMeter) Counter(name string) Counter {
	counters := make([]Counter, 0, len(m.meters))
	for _, meter := range m.meters {
		counters = append(counters, meter.Counter(name))
	}
	return multiCounter(counters)
}

func (m *MultiMeter) Histogram(name string) Histogram {
	histograms := make([]Histogram, 0, len(m.meters))
	for _, meter := range m.meters {
		histograms = append(histograms, meter.Histogram(name))
	}
	return multiHistogram(histograms)
}

type multiCounter []Counter

func (c multiCounter) Add(ctx context.Context, value float64, labels map[string]string) {
	for _, counter := range c {
		counter.Add(ctx, value, labels)
	}
}

type multiHistogram []Histogram

func (h multiHistogram) Observe(ctx context.Context, value float64, labels map[string]string) {
	for _, histogram := range h {
		histogram.Observe(ctx, value, labels)
	}
}
