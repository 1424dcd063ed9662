package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/shell"
)

// TracingCollector implements lending.TracingCollector with an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, lending.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan adds the final attrs, maps status onto the span status and ends the span.
// Span contexts from other collectors are ignored.
func (t *TracingCollector) FinishSpan(spanCtx lending.SpanContext, status string, attrs map[string]string) {
	otelSpan, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	otelSpan.span.SetAttributes(toAttributes(attrs)...)
	otelSpan.SetStatus(status)
	otelSpan.span.End()
}

var _ lending.TracingCollector = (*TracingCollector)(nil)

// SpanContext wraps an OpenTelemetry span.
type SpanContext struct {
	span trace.Span
}

// SetStatus maps the operation statuses of package shell onto OpenTelemetry status codes.
// Business rejections leave the span unset: the operation worked, the request was refused.
func (s *SpanContext) SetStatus(status string) {
	s.span.SetAttributes(attribute.String(shell.LogAttrStatus, status))

	switch status {
	case shell.StatusSuccess:
		s.span.SetStatus(codes.Ok, "")
	case shell.StatusError:
		s.span.SetStatus(codes.Error, "operation failed")
	case shell.StatusCanceled:
		s.span.SetStatus(codes.Error, "operation canceled")
	case shell.StatusTimeout:
		s.span.SetStatus(codes.Error, "operation timed out")
	case shell.StatusConcurrencyConflict:
		s.span.SetStatus(codes.Error, "concurrency conflict")
	}
}

func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ lending.SpanContext = (*SpanContext)(nil)
