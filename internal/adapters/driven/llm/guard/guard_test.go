package guard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type stubLLM struct {
	calls  atomic.Int32
	reply  string
	err    error
	pinged bool
	closed bool
}

func (s *stubLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.calls.Add(1)
	return s.reply, s.err
}
func (s *stubLLM) ModelName() string { return "stub-model" }
func (s *stubLLM) Ping(context.Context) error {
	s.pinged = true
	return nil
}
func (s *stubLLM) Close() error {
	s.closed = true
	return nil
}

func recorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	return rec, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

var userMsg = []driven.ChatMessage{{Role: driven.RoleUser, Content: "What did the dog do?"}}

func TestChat_PassesThroughAndTraces(t *testing.T) {
	rec, tp := recorder()
	next := &stubLLM{reply: "It ran."}
	g := New(next, Config{TracerProvider: tp})

	reply, err := g.Chat(context.Background(), userMsg, driven.ChatOptions{Model: "google/gemini-pro"})

	require.NoError(t, err)
	assert.Equal(t, "It ran.", reply)
	assert.Equal(t, int32(1), next.calls.Load())

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "llm.chat", spans[0].Name())
	model, ok := attr(spans[0], "llm.model")
	require.True(t, ok)
	assert.Equal(t, "google/gemini-pro", model.AsString())
}

func TestChat_DefaultModelAttribute(t *testing.T) {
	rec, tp := recorder()
	g := New(&stubLLM{reply: "x"}, Config{TracerProvider: tp})

	_, err := g.Chat(context.Background(), userMsg, driven.ChatOptions{})
	require.NoError(t, err)

	model, ok := attr(rec.Ended()[0], "llm.model")
	require.True(t, ok)
	assert.Equal(t, "stub-model", model.AsString())
}

func TestChat_ErrorIsNotRetried(t *testing.T) {
	rec, tp := recorder()
	boom := errors.New("upstream 500")
	next := &stubLLM{err: boom}
	g := New(next, Config{TracerProvider: tp})

	_, err := g.Chat(context.Background(), userMsg, driven.ChatOptions{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, codes.Error, rec.Ended()[0].Status().Code)
}

func TestChat_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	next := &stubLLM{err: errors.New("down")}
	g := New(next, Config{OpenTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.Chat(ctx, userMsg, driven.ChatOptions{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := g.Chat(ctx, userMsg, driven.ChatOptions{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestChat_CancellationDoesNotTripBreaker(t *testing.T) {
	next := &stubLLM{err: context.Canceled}
	g := New(next, Config{})

	for i := 0; i < 5; i++ {
		_, err := g.Chat(context.Background(), userMsg, driven.ChatOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestChat_RateLimitHonoursDeadline(t *testing.T) {
	next := &stubLLM{reply: "ok"}
	g := New(next, Config{RequestsPerMinute: 1})

	_, err := g.Chat(context.Background(), userMsg, driven.ChatOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Chat(ctx, userMsg, driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestPassthroughs(t *testing.T) {
	next := &stubLLM{}
	g := New(next, Config{})

	assert.Equal(t, "stub-model", g.ModelName())
	require.NoError(t, g.Ping(context.Background()))
	require.NoError(t, g.Close())
	assert.True(t, next.pinged)
	assert.True(t, next.closed)
}
