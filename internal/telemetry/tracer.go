// Package telemetry wires OpenTelemetry tracing for inbound requests and the
// outbound n8n calls.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/tjfontaine/n8n-gateway/internal/pkg/config"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracer installs a global tracer provider exporting spans to stdout.
// When tracing is disabled it installs nothing and returns a no-op shutdown.
func InitTracer(cfg config.TelemetryConfig, logger *slog.Logger) (ShutdownFunc, error) {
	return initTracer(cfg, logger, os.Stdout)
}

func initTracer(cfg config.TelemetryConfig, logger *slog.Logger, w io.Writer) (ShutdownFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		logger.Debug("tracing disabled")
		return noopShutdown, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	// Propagate trace context on the outbound n8n hop.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("OpenTelemetry initialized", slog.String("service", cfg.ServiceName))

	return tp.Shutdown, nil
}
