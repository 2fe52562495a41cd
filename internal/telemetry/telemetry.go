// Package telemetry installs the global OpenTelemetry trace and metric
// providers. Services record spans and counters through the global API,
// so nothing is exported unless Init selects an exporter.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultEndpoint is the OTLP gRPC collector used when none is configured.
const DefaultEndpoint = "localhost:4317"

// metricInterval is how often metrics are pushed. Shutdown pushes the rest.
const metricInterval = 30 * time.Second

// Config selects where telemetry goes.
type Config struct {
	Exporter    domain.TelemetryExporter
	Endpoint    string
	ServiceName string
	Version     string

	// Output receives the stdout exporter's records. Defaults to stderr so
	// command output stays clean.
	Output io.Writer

	// SpanProcessor and MetricReader replace the exporter when set.
	SpanProcessor sdktrace.SpanProcessor
	MetricReader  sdkmetric.Reader
}

// Shutdown flushes and stops the installed providers.
type Shutdown func(context.Context) error

// Init installs the trace and meter providers described by cfg. With the
// "none" exporter and no overrides it installs nothing.
func Init(ctx context.Context, cfg Config) (Shutdown, error) {
	if cfg.Exporter == "" {
		cfg.Exporter = domain.TelemetryNone
	}
	if !cfg.Exporter.IsValid() {
		return nil, fmt.Errorf("%w: telemetry exporter %q", domain.ErrInvalidInput, cfg.Exporter)
	}
	if cfg.Exporter == domain.TelemetryNone && cfg.SpanProcessor == nil && cfg.MetricReader == nil {
		return func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "docqa"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	spans := cfg.SpanProcessor
	if spans == nil {
		exporter, err := spanExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		spans = sdktrace.NewBatchSpanProcessor(exporter)
	}

	reader := cfg.MetricReader
	if reader == nil {
		exporter, err := metricExporter(ctx, cfg)
		if err != nil {
			_ = spans.Shutdown(ctx)
			return nil, err
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricInterval))
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(spans),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger.Debug("Telemetry exporting to %s", describe(cfg))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func spanExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case domain.TelemetryStdout:
		return stdouttrace.New(stdouttrace.WithWriter(cfg.Output))
	case domain.TelemetryOTLP:
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint(cfg)),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, fmt.Errorf("%w: telemetry exporter %q needs a span processor", domain.ErrInvalidInput, cfg.Exporter)
	}
}

func metricExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	switch cfg.Exporter {
	case domain.TelemetryStdout:
		return stdoutmetric.New(stdoutmetric.WithWriter(cfg.Output))
	case domain.TelemetryOTLP:
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(endpoint(cfg)),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create OTLP metric exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, fmt.Errorf("%w: telemetry exporter %q needs a metric reader", domain.ErrInvalidInput, cfg.Exporter)
	}
}

func endpoint(cfg Config) string {
	if cfg.Endpoint == "" {
		return DefaultEndpoint
	}
	return cfg.Endpoint
}

func describe(cfg Config) string {
	if cfg.Exporter == domain.TelemetryOTLP {
		return "otlp " + endpoint(cfg)
	}
	return string(cfg.Exporter)
}
