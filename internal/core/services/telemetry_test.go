package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/custodia-labs/docqa/internal/telemetry"
)

func TestAnswerService_ExportsThroughInstalledProviders(t *testing.T) {
	ctx := context.Background()
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()

	shutdown, err := telemetry.Init(ctx, telemetry.Config{SpanProcessor: spans, MetricReader: reader})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	// Instruments are created with the services, after the providers exist.
	f := newFixture(t, 20)
	f.mustIngest(t, "alice", "doc-1", animals)

	_, err = f.answers.Answer(ctx, ask("alice", "doc-1", "What did the dog do?", 1))
	require.NoError(t, err)

	names := map[string]bool{}
	var answer attribute.Set
	for _, s := range spans.Ended() {
		names[s.Name()] = true
		if s.Name() == "answer" {
			answer = attribute.NewSet(s.Attributes()...)
		}
	}
	assert.True(t, names["ingest"])
	assert.True(t, names["index.build"])
	require.True(t, names["answer"])

	model, ok := answer.Value("llm.model")
	require.True(t, ok)
	assert.Equal(t, "openai/gpt-3.5-turbo", model.AsString())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	var answered int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == "docqa.answers" {
				for _, dp := range sum.DataPoints {
					answered += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), answered)
}
