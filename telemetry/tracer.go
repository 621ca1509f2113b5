package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ServiceName identifies redsim in trace resources.
const ServiceName = "redsim"

// NewLogTracerProvider creates a TracerProvider whose spans are written to
// logger as soon as they end.
//
// The provider uses a SimpleSpanProcessor so every step span is logged in
// order with the step log line. Callers must Shutdown the provider.
func NewLogTracerProvider(logger *slog.Logger, version string) *sdktrace.TracerProvider {
	if logger == nil {
		logger = slog.Default()
	}
	exporter := NewLogSpanExporter(logger)
	processor := sdktrace.NewSimpleSpanProcessor(exporter)

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
}
