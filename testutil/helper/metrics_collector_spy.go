package helper

import (
	"maps"
	"sync"
	"time"
)

// SpyMetricKind tells which MetricsCollector method produced a record.
type SpyMetricKind string

const (
	SpyDuration SpyMetricKind = "duration"
	SpyCounter  SpyMetricKind = "counter"
	SpyValue    SpyMetricKind = "value"
)

type SpyMetricRecord struct {
	Kind     SpyMetricKind
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy implements lending.MetricsCollector and captures every call.
type MetricsCollectorSpy struct {
	mu          sync.Mutex
	records     []SpyMetricRecord
	recordCalls bool
}

// NewMetricsCollectorSpy creates a spy; with recordCalls false it only satisfies the interface.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyDuration, Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyCounter, Metric: metric, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyValue, Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) add(record SpyMetricRecord) {
	if !s.recordCalls {
		return
	}

	record.Labels = maps.Clone(record.Labels)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
}

func (s *MetricsCollectorSpy) GetRecords() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyMetricRecord, len(s.records))
	copy(records, s.records)

	return records
}

// Count returns the number of records of the given kind for metric.
func (s *MetricsCollectorSpy) Count(kind SpyMetricKind, metric string) int {
	return len(s.HasRecord(kind, metric).candidates)
}

func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	return s.HasRecord(SpyDuration, metric)
}

func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	return s.HasRecord(SpyCounter, metric)
}

func (s *MetricsCollectorSpy) HasRecord(kind SpyMetricKind, metric string) *MetricRecordMatcher {
	matcher := &MetricRecordMatcher{}

	for _, record := range s.GetRecords() {
		if record.Kind == kind && record.Metric == metric {
			matcher.candidates = append(matcher.candidates, record)
		}
	}

	return matcher
}

// MetricRecordMatcher narrows down captured metric records by label.
type MetricRecordMatcher struct {
	candidates []SpyMetricRecord
}

func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	kept := make([]SpyMetricRecord, 0, len(m.candidates))

	for _, record := range m.candidates {
		if record.Labels[key] == value {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

func (m *MetricRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}
