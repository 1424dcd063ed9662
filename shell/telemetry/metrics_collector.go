package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

// MetricsCollector implements lending.ContextualMetricsCollector with an OpenTelemetry meter.
// Durations go to float64 histograms in seconds, counters to int64 counters and values to gauges.
// Instruments are created on first use and cached by name.
type MetricsCollector struct {
	meter metric.Meter

	mu         sync.Mutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func (m *MetricsCollector) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), name, duration, labels)
}

func (m *MetricsCollector) RecordDurationContext(ctx context.Context, name string, duration time.Duration, labels map[string]string) {
	histogram, ok := instrument(m, m.histograms, name, func(name string) (metric.Float64Histogram, error) {
		return m.meter.Float64Histogram(name, metric.WithDescription("lending operation duration"), metric.WithUnit("s"))
	})
	if !ok {
		return
	}

	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
}

func (m *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), name, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, name string, labels map[string]string) {
	counter, ok := instrument(m, m.counters, name, func(name string) (metric.Int64Counter, error) {
		return m.meter.Int64Counter(name, metric.WithDescription("lending operation counter"))
	})
	if !ok {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
}

func (m *MetricsCollector) RecordValue(name string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), name, value, labels)
}

func (m *MetricsCollector) RecordValueContext(ctx context.Context, name string, value float64, labels map[string]string) {
	gauge, ok := instrument(m, m.gauges, name, func(name string) (metric.Float64Gauge, error) {
		return m.meter.Float64Gauge(name, metric.WithDescription("lending current value"))
	})
	if !ok {
		return
	}

	gauge.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
}

// instrument returns the cached instrument for name or creates it.
// A meter that refuses the instrument yields ok == false and the measurement is dropped.
func instrument[T any](m *MetricsCollector, cache map[string]T, name string, create func(string) (T, error)) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, found := cache[name]; found {
		return existing, true
	}

	created, err := create(name)
	if err != nil {
		var zero T
		return zero, false
	}

	cache[name] = created

	return created, true
}

var (
	_ lending.MetricsCollector           = (*MetricsCollector)(nil)
	_ lending.ContextualMetricsCollector = (*MetricsCollector)(nil)
)
