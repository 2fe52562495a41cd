package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// HistoryService exposes an owner's conversation history.
type HistoryService interface {
	// Get returns the owner's turns in order.
	Get(ctx context.Context, ownerID string) ([]domain.Turn, error)

	// Save replaces the owner's history with turns.
	Save(ctx context.Context, ownerID string, turns []domain.Turn) error

	// Clear removes every turn of the owner's history.
	Clear(ctx context.Context, ownerID string) error

	// QuestionCount returns the number of user turns.
	QuestionCount(ctx context.Context, ownerID string) (int, error)

	// ModelUsage returns assistant turn counts per model.
	ModelUsage(ctx context.Context, ownerID string) ([]domain.ModelUsage, error)
}
