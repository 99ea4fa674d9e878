package memory

import (
	"context"
	"sync"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

// Ensure IdentityStore implements the interface.
var _ driven.IdentityStore = (*IdentityStore)(nil)

// IdentityStore is an in-memory driven.IdentityStore for tests.
type IdentityStore struct {
	mu   sync.RWMutex
	user *domain.User
}

// NewIdentityStore creates an empty identity store.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{}
}

// SavedUser returns the cached identity, or nil.
func (s *IdentityStore) SavedUser(ctx context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

// SaveUser caches the identity, replacing any previous one.
func (s *IdentityStore) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

// ClearUser removes the cached identity.
func (s *IdentityStore) ClearUser(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
