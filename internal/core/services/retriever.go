package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultK is the number of chunks retrieved when none is configured.
const DefaultK = 3

// Retriever finds the chunks of one document most similar to a question.
type Retriever struct {
	indexes  *IndexManager
	embedder *EmbeddingGateway
	defaultK int
}

// NewRetriever creates a retriever. defaultK applies when a request does
// not specify k; zero or less uses DefaultK.
func NewRetriever(indexes *IndexManager, embedder *EmbeddingGateway, defaultK int) *Retriever {
	if defaultK <= 0 {
		defaultK = DefaultK
	}
	return &Retriever{indexes: indexes, embedder: embedder, defaultK: defaultK}
}

// Retrieve returns up to k chunks of documentID ranked by distance to the
// question. Only chunks of that document are ever considered.
func (r *Retriever) Retrieve(ctx context.Context, documentID, question string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		k = r.defaultK
	}

	handle, err := r.indexes.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if handle.Len() == 0 {
		logger.Debug("Document %s has no chunks", documentID)
		return []domain.Chunk{}, nil
	}

	query, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	chunks, err := handle.Search(query, k)
	if err != nil {
		return nil, err
	}
	logger.Debug("Retrieved %d of %d chunks (k=%d)", len(chunks), handle.Len(), k)
	return chunks, nil
}

// JoinContext joins chunk texts in rank order, one per line.
func JoinContext(chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n")
}
