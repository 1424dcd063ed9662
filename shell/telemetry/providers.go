package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultMetricInterval = 15 * time.Second

// ExportConfig points the SDK providers at OTLP/gRPC receivers.
// An empty endpoint leaves the corresponding global provider untouched.
type ExportConfig struct {
	ServiceName     string
	ServiceVersion  string
	TracesEndpoint  string
	MetricsEndpoint string
	Insecure        bool
	MetricInterval  time.Duration
}

// Providers are the SDK providers installed by Setup.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

// Setup creates OTLP exporters and SDK providers for cfg and registers them globally,
// together with the W3C trace context propagator.
func Setup(ctx context.Context, cfg ExportConfig) (*Providers, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, err
	}

	providers := &Providers{}

	if cfg.TracesEndpoint != "" {
		options := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.TracesEndpoint)}
		if cfg.Insecure {
			options = append(options, otlptracegrpc.WithInsecure())
		}

		exporter, err := otlptracegrpc.New(ctx, options...)
		if err != nil {
			return nil, err
		}

		providers.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(providers.TracerProvider)
	}

	if cfg.MetricsEndpoint != "" {
		options := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.MetricsEndpoint)}
		if cfg.Insecure {
			options = append(options, otlpmetricgrpc.WithInsecure())
		}

		exporter, err := otlpmetricgrpc.New(ctx, options...)
		if err != nil {
			_ = providers.Shutdown(ctx)
			return nil, err
		}

		interval := cfg.MetricInterval
		if interval <= 0 {
			interval = defaultMetricInterval
		}

		providers.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(providers.MeterProvider)
	}

	otel.SetTextMapPropagator(propagation.TraceContext{})

	return providers, nil
}

// Shutdown flushes and stops the installed providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		errs = append(errs, p.TracerProvider.Shutdown(ctx))
	}

	if p.MeterProvider != nil {
		errs = append(errs, p.MeterProvider.Shutdown(ctx))
	}

	return errors.Join(errs...)
}
