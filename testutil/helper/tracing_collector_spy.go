package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

// SpySpanContext implements lending.SpanContext.
type SpySpanContext struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}

	c.attributes[key] = value
}

func (c *SpySpanContext) GetStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
	SpanContext     *SpySpanContext
}

// TracingCollectorSpy implements lending.TracingCollector and captures every span.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []*SpySpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, lending.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{}
	s.spans = append(s.spans, &SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx lending.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, span := range s.spans {
		if span.SpanContext == spanCtx {
			span.Status = status
			span.EndAttributes = maps.Clone(attrs)
			span.Finished = true

			return
		}
	}
}

// GetSpanRecords returns copies of all spans started so far.
func (s *TracingCollectorSpy) GetSpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, 0, len(s.spans))
	for _, span := range s.spans {
		records = append(records, *span)
	}

	return records
}

// FinishedSpan returns the first finished span with name.
func (s *TracingCollectorSpy) FinishedSpan(name string) (SpySpanRecord, bool) {
	for _, span := range s.GetSpanRecords() {
		if span.Name == name && span.Finished {
			return span, true
		}
	}

	return SpySpanRecord{}, false
}
