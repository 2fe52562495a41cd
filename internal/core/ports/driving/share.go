package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ShareService publishes assistant answers under opaque tokens.
type ShareService interface {
	// Share publishes the assistant turn at turnIndex of the owner's history.
	Share(ctx context.Context, ownerID string, turnIndex int) (*domain.SharedAnswer, error)

	// Resolve returns the answer published under token.
	Resolve(ctx context.Context, token string) (*domain.SharedAnswer, error)
}
