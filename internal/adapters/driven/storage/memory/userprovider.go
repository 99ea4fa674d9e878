package memory

import (
	"context"
	"sync"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

// Ensure UserProvider implements the interface.
var _ driven.CurrentUserProvider = (*UserProvider)(nil)

// UserProvider is an in-memory implementation of driven.CurrentUserProvider.
// A nil user means anonymous.
type UserProvider struct {
	mu   sync.RWMutex
	user *domain.User
}

// NewUserProvider creates a provider with the given user (nil for anonymous).
func NewUserProvider(user *domain.User) *UserProvider {
	return &UserProvider{user: user}
}

// SetUser replaces the current user.
func (p *UserProvider) SetUser(user *domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = user
}

// CurrentUser returns the signed-in user, or nil for anonymous.
func (p *UserProvider) CurrentUser(_ context.Context) (*domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return nil, nil
	}
	out := *p.user
	return &out, nil
}
