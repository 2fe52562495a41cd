package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure ShareService implements the interface.
var _ driving.ShareService = (*ShareService)(nil)

// ShareService publishes assistant answers under opaque tokens.
type ShareService struct {
	history driven.HistoryStore
	shares  driven.ShareStore
	now     func() time.Time
}

// NewShareService creates a new share service.
func NewShareService(history driven.HistoryStore, shares driven.ShareStore) *ShareService {
	return &ShareService{history: history, shares: shares, now: time.Now}
}

// Share publishes the assistant turn at turnIndex of the owner's history.
func (s *ShareService) Share(ctx context.Context, ownerID string, turnIndex int) (*domain.SharedAnswer, error) {
	ownerID, err := requireOwner(ownerID)
	if err != nil {
		return nil, err
	}

	turns, err := s.history.Read(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if turnIndex < 0 || turnIndex >= len(turns) {
		return nil, fmt.Errorf("%w: turn %d out of range (history has %d turns)",
			domain.ErrInvalidInput, turnIndex, len(turns))
	}
	turn := turns[turnIndex]
	if turn.EffectiveType() != domain.RoleAssistant {
		return nil, fmt.Errorf("%w: turn %d is not an answer", domain.ErrInvalidInput, turnIndex)
	}

	share := domain.SharedAnswer{
		Token:     uuid.NewString(),
		OwnerID:   ownerID,
		Answer:    turn.Content,
		Model:     turn.Model,
		CreatedAt: s.now(),
	}
	if err := s.shares.SaveShare(ctx, share); err != nil {
		return nil, fmt.Errorf("save share: %w", err)
	}
	logger.Debug("Shared turn %d of %s as %s", turnIndex, ownerID, share.Token)
	return &share, nil
}

// Resolve returns the answer published under token.
func (s *ShareService) Resolve(ctx context.Context, token string) (*domain.SharedAnswer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}
	return s.shares.GetShare(ctx, token)
}
