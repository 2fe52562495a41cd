package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// HistoryStore persists one ordered conversation history per owner.
type HistoryStore interface {
	// Append adds turns to the end of the owner's history as one atomic unit.
	// Concurrent appends for the same owner are serialised; appends for
	// different owners do not contend.
	Append(ctx context.Context, ownerID string, turns []domain.Turn) error

	// Replace discards the owner's history and stores turns in its place.
	Replace(ctx context.Context, ownerID string, turns []domain.Turn) error

	// Read returns the owner's history in order. An unknown owner has an
	// empty history.
	Read(ctx context.Context, ownerID string) ([]domain.Turn, error)
}

// ShareStore persists shared answers by token.
type ShareStore interface {
	// SaveShare stores a shared answer.
	SaveShare(ctx context.Context, share domain.SharedAnswer) error

	// GetShare retrieves a shared answer.
	// Returns domain.ErrNotFound for an unknown token.
	GetShare(ctx context.Context, token string) (*domain.SharedAnswer, error)
}
