package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// Chunker splits document text into ordered chunks.
type Chunker interface {
	// Chunk splits text into chunks tagged with the owner and document.
	// Returns domain.ErrInvalidInput for text that is not valid UTF-8.
	Chunk(ownerID, documentID, text string) ([]domain.Chunk, error)
}
