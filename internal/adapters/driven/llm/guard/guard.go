// Package guard wraps any driven.LLMService with a circuit breaker, a
// client-side rate limiter and tracing. It never retries: a failed call
// is reported once and the caller decides what to do.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("llm circuit breaker open")

const tracerName = "github.com/custodia-labs/docqa/llm"

// Config tunes the guard.
type Config struct {
	// Name labels the breaker and spans (default: "llm").
	Name string

	// RequestsPerMinute caps outgoing calls; <= 0 disables limiting.
	RequestsPerMinute int

	// Interval is the breaker's closed-state counting window (default: 10s).
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open (default: 60s).
	OpenTimeout time.Duration

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// LLMService decorates another LLMService.
type LLMService struct {
	next    driven.LLMService
	name    string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// New wraps next.
func New(next driven.LLMService, cfg Config) *LLMService {
	if cfg.Name == "" {
		cfg.Name = "llm"
	}
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// A caller giving up is not a provider fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
				return
			}
			logger.Debug("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.RequestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	return &LLMService{
		next:    next,
		name:    cfg.Name,
		breaker: breaker,
		limiter: limiter,
		tracer:  cfg.TracerProvider.Tracer(tracerName),
	}
}

// Chat waits for the limiter, then calls through the breaker.
func (g *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = g.next.ModelName()
	}

	ctx, span := g.tracer.Start(ctx, "llm.chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.name", g.name),
		attribute.String("llm.model", model),
		attribute.Int("llm.messages", len(messages)),
	)

	if err := g.limiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("llm.rate_limited", true))
		span.SetStatus(codes.Error, "rate limited")
		return "", fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Chat(ctx, messages, opts)
	})
	span.SetAttributes(attribute.Int64("llm.latency_ms", time.Since(start).Milliseconds()))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("llm.circuit_breaker_open", true))
			err = fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	reply := result.(string)
	span.SetAttributes(attribute.Int("llm.reply_chars", len(reply)))
	return reply, nil
}

// State reports the breaker state.
func (g *LLMService) State() gobreaker.State {
	return g.breaker.State()
}

// ModelName returns the wrapped service's default model.
func (g *LLMService) ModelName() string {
	return g.next.ModelName()
}

// Ping bypasses the breaker and the limiter.
func (g *LLMService) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}

// Close closes the wrapped service.
func (g *LLMService) Close() error {
	return g.next.Close()
}
