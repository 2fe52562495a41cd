package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerService answers questions about a single document.
type AnswerService interface {
	// Answer retrieves context from the document, asks the selected model
	// and records the exchange in the owner's history.
	Answer(ctx context.Context, req domain.AnswerRequest) (*domain.Answer, error)
}
