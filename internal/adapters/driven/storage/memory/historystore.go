package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/keylock"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
// Each owner's read-modify-write runs under that owner's lock; the map
// lock only guards the lookup and the final swap.
type HistoryStore struct {
	owners keylock.Map

	mu        sync.RWMutex
	histories map[string][]domain.Turn
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		histories: make(map[string][]domain.Turn),
	}
}

// Append adds turns to the end of the owner's history atomically.
func (s *HistoryStore) Append(_ context.Context, ownerID string, turns []domain.Turn) error {
	unlock := s.owners.Lock(ownerID)
	defer unlock()

	s.mu.RLock()
	existing := s.histories[ownerID]
	s.mu.RUnlock()

	next := make([]domain.Turn, 0, len(existing)+len(turns))
	next = append(next, existing...)
	next = append(next, turns...)

	s.mu.Lock()
	s.histories[ownerID] = next
	s.mu.Unlock()
	return nil
}

// Replace discards the owner's history and stores turns in its place.
func (s *HistoryStore) Replace(_ context.Context, ownerID string, turns []domain.Turn) error {
	unlock := s.owners.Lock(ownerID)
	defer unlock()

	next := make([]domain.Turn, len(turns))
	copy(next, turns)

	s.mu.Lock()
	s.histories[ownerID] = next
	s.mu.Unlock()
	return nil
}

// Read returns a copy of the owner's history.
func (s *HistoryStore) Read(_ context.Context, ownerID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.histories[ownerID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}
