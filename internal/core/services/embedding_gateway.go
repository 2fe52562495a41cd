package services

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// EmbeddingGateway fronts an embedding provider.
//
// It pins the vector dimension to the first one the provider returns and
// rejects anything else afterwards, so every index built in a process run
// agrees on dimensionality. Provider failures surface as
// domain.ErrEmbeddingUnavailable and are never retried here.
type EmbeddingGateway struct {
	provider driven.EmbeddingService

	mu   sync.Mutex
	dims int

	// queries caches single-text embeddings. Nil when disabled.
	queries *lru.Cache[string, []float32]
}

// NewEmbeddingGateway wraps provider. cacheSize bounds the query cache;
// zero or less disables it.
func NewEmbeddingGateway(provider driven.EmbeddingService, cacheSize int) *EmbeddingGateway {
	g := &EmbeddingGateway{provider: provider}
	if cacheSize > 0 {
		cache, err := lru.New[string, []float32](cacheSize)
		if err == nil {
			g.queries = cache
		}
	}
	return g
}

// Embed returns the embedding for a single text, typically a question.
func (g *EmbeddingGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.provider == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}
	if g.queries != nil {
		if vec, ok := g.queries.Get(text); ok {
			return append([]float32(nil), vec...), nil
		}
	}

	vec, err := g.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if err := g.pin(len(vec)); err != nil {
		return nil, err
	}

	if g.queries != nil {
		g.queries.Add(text, append([]float32(nil), vec...))
	}
	return vec, nil
}

// EmbedBatch returns one embedding per text, in order.
func (g *EmbeddingGateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if g.provider == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	done := logger.Timed("embed batch")
	vecs, err := g.provider.EmbedBatch(ctx, texts)
	done()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrEmbeddingUnavailable, len(vecs), len(texts))
	}
	for _, vec := range vecs {
		if err := g.pin(len(vec)); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

// Dimensions returns the pinned dimension, or zero before the first embedding.
func (g *EmbeddingGateway) Dimensions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dims
}

// ModelName returns the provider's model name.
func (g *EmbeddingGateway) ModelName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.ModelName()
}

func (g *EmbeddingGateway) pin(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingUnavailable)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dims == 0 {
		g.dims = n
		logger.Debug("Embedding dimension pinned to %d", n)
		return nil
	}
	if g.dims != n {
		return fmt.Errorf("%w: embedding dimension %d, expected %d",
			domain.ErrEmbeddingUnavailable, n, g.dims)
	}
	return nil
}
