package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService manages an owner's ingested documents.
type DocumentService interface {
	// List returns the owner's documents, newest first.
	List(ctx context.Context, ownerID string) ([]domain.Document, error)

	// Get retrieves one of the owner's documents.
	Get(ctx context.Context, ownerID, documentID string) (*domain.Document, error)

	// Chunks returns the document's chunks in order.
	Chunks(ctx context.Context, ownerID, documentID string) ([]domain.Chunk, error)

	// Delete removes the document, its chunks and its vector index.
	Delete(ctx context.Context, ownerID, documentID string) error

	// Summarize returns the cached summary, generating it when missing or when force is set.
	Summarize(ctx context.Context, ownerID, documentID string, model domain.Model, force bool) (string, error)

	// Entities extracts an entity/relationship graph from the document.
	Entities(ctx context.Context, ownerID, documentID string, model domain.Model) (*domain.EntityGraph, error)
}
