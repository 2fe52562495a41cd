package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentStore persists documents and their chunk text.
// Vectors are never stored; indexes are rebuilt from chunk text.
type DocumentStore interface {
	// SaveDocument stores or replaces a document together with its full
	// chunk set. Previous chunks for the document are discarded in the
	// same operation.
	SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves a document's chunks ordered by ordinal.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// UpdateSummary stores the cached summary of a document.
	UpdateSummary(ctx context.Context, id, summary string, at time.Time) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns an owner's documents, newest first.
	ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error)
}
