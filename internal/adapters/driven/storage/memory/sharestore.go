package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ShareStore implements the interface.
var _ driven.ShareStore = (*ShareStore)(nil)

// ShareStore is an in-memory implementation of driven.ShareStore.
type ShareStore struct {
	mu     sync.RWMutex
	shares map[string]domain.SharedAnswer
}

// NewShareStore creates a new in-memory share store.
func NewShareStore() *ShareStore {
	return &ShareStore{shares: make(map[string]domain.SharedAnswer)}
}

// SaveShare stores a shared answer.
func (s *ShareStore) SaveShare(_ context.Context, share domain.SharedAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares[share.Token] = share
	return nil
}

// GetShare retrieves a shared answer by token.
func (s *ShareStore) GetShare(_ context.Context, token string) (*domain.SharedAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	share, ok := s.shares[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &share, nil
}
