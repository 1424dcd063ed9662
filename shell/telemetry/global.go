package telemetry

import (
	"go.opentelemetry.io/otel"
)

// InstrumentationName names the tracer, meter and log bridge of this module.
const InstrumentationName = "github.com/AntonStoeckl/library-loans-go"

// Collectors pairs a TracingCollector with a MetricsCollector.
type Collectors struct {
	Tracing *TracingCollector
	Metrics *MetricsCollector
}

// FromGlobal builds the collectors on the globally registered OpenTelemetry providers.
// Install the SDK providers with otel.SetTracerProvider and otel.SetMeterProvider before calling it.
func FromGlobal() Collectors {
	return Collectors{
		Tracing: NewTracingCollector(otel.Tracer(InstrumentationName)),
		Metrics: NewMetricsCollector(otel.Meter(InstrumentationName)),
	}
}
