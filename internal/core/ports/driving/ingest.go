package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService turns extracted document text into retrievable chunks.
type IngestService interface {
	// IngestDocument chunks rawText and stores it under documentID for ownerID.
	// An empty documentID is assigned a new one. Re-ingesting a document
	// replaces its chunks and discards its vector index.
	IngestDocument(ctx context.Context, ownerID, documentID, title, rawText string) (*domain.IngestResult, error)
}
