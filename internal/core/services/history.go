package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService exposes an owner's conversation history and views over it.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Get returns the owner's turns in order. Unknown owners have an empty history.
func (s *HistoryService) Get(ctx context.Context, ownerID string) ([]domain.Turn, error) {
	ownerID, err := requireOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return s.store.Read(ctx, ownerID)
}

// Save replaces the owner's history with turns.
func (s *HistoryService) Save(ctx context.Context, ownerID string, turns []domain.Turn) error {
	ownerID, err := requireOwner(ownerID)
	if err != nil {
		return err
	}
	for i, t := range turns {
		if !t.Role.IsValid() {
			return fmt.Errorf("%w: turn %d has role %q", domain.ErrInvalidInput, i, t.Role)
		}
		if t.Type != "" && !t.Type.IsValid() {
			return fmt.Errorf("%w: turn %d has type %q", domain.ErrInvalidInput, i, t.Type)
		}
	}
	return s.store.Replace(ctx, ownerID, turns)
}

// Clear removes every turn of the owner.
func (s *HistoryService) Clear(ctx context.Context, ownerID string) error {
	ownerID, err := requireOwner(ownerID)
	if err != nil {
		return err
	}
	return s.store.Replace(ctx, ownerID, nil)
}

// QuestionCount returns how many user turns the owner has.
func (s *HistoryService) QuestionCount(ctx context.Context, ownerID string) (int, error) {
	turns, err := s.Get(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range turns {
		if t.EffectiveType() == domain.RoleUser {
			n++
		}
	}
	return n, nil
}

// ModelUsage counts the owner's assistant turns per model, most used first.
// Turns without a model are counted as domain.UnknownModel.
func (s *HistoryService) ModelUsage(ctx context.Context, ownerID string) ([]domain.ModelUsage, error) {
	turns, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, t := range turns {
		if t.EffectiveType() != domain.RoleAssistant {
			continue
		}
		model := t.Model
		if model == "" {
			model = domain.UnknownModel
		}
		counts[model]++
	}

	usage := make([]domain.ModelUsage, 0, len(counts))
	for model, n := range counts {
		usage = append(usage, domain.ModelUsage{Model: model, Count: n})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		return usage[i].Model < usage[j].Model
	})
	return usage, nil
}

func requireOwner(ownerID string) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return "", fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	return ownerID, nil
}
