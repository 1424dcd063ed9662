package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/shell"
	"github.com/AntonStoeckl/library-loans-go/shell/telemetry"
)

func newTracing(t *testing.T) (*telemetry.TracingCollector, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return telemetry.NewTracingCollector(provider.Tracer("test")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_When_SpanSucceeds(t *testing.T) {
	// setup
	collector, exporter := newTracing(t)

	// act
	ctx, span := collector.StartSpan(context.Background(), "lending.operation.approve_loan", map[string]string{"operation": "approve_loan"})
	span.AddAttribute("loan_id", "42")
	collector.FinishSpan(span, shell.StatusSuccess, map[string]string{"retry_attempts": "1"})

	// assert
	assert.NotNil(t, ctx)
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "lending.operation.approve_loan", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, want := range map[string]string{"operation": "approve_loan", "loan_id": "42", "retry_attempts": "1", "status": "success"} {
		got, found := spanAttribute(spans[0], key)
		assert.True(t, found, key)
		assert.Equal(t, want, got, key)
	}
}

func Test_TracingCollector_When_StatusIsMapped(t *testing.T) {
	cases := map[string]codes.Code{
		shell.StatusError:               codes.Error,
		shell.StatusCanceled:            codes.Error,
		shell.StatusTimeout:             codes.Error,
		shell.StatusConcurrencyConflict: codes.Error,
		shell.StatusRejected:            codes.Unset,
	}

	for status, want := range cases {
		t.Run(status, func(t *testing.T) {
			// setup
			collector, exporter := newTracing(t)

			// act
			_, span := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(span, status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, want, spans[0].Status.Code)
		})
	}
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func Test_TracingCollector_When_SpanContextIsForeign(t *testing.T) {
	// setup
	collector, exporter := newTracing(t)

	// act
	var span lending.SpanContext = foreignSpan{}
	collector.FinishSpan(span, shell.StatusSuccess, nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}

func Test_Execute_When_TracingCollectorIsWired(t *testing.T) {
	// setup
	collector, exporter := newTracing(t)
	observability := shell.Observability{Tracing: collector}

	// act
	err := shell.Execute(context.Background(), observability, "get_loan", nil, func(context.Context) error {
		return lending.ErrNotFound
	})

	// assert
	require.ErrorIs(t, err, lending.ErrNotFound)
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, shell.SpanNamePrefix+"get_loan", spans[0].Name)

	status, _ := spanAttribute(spans[0], "status")
	assert.Equal(t, shell.StatusRejected, status)
}
