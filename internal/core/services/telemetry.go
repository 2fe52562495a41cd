package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/docqa/internal/logger"
)

const instrumentationName = "github.com/custodia-labs/docqa/internal/core/services"

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// counter returns a named counter from the global meter provider,
// falling back to a no-op counter if the instrument cannot be created.
func counter(name, description string) metric.Int64Counter {
	c, err := otel.Meter(instrumentationName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Debug("Metric %s unavailable: %v", name, err)
		return noop.Int64Counter{}
	}
	return c
}
