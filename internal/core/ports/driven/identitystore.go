package driven

import (
	"context"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// IdentityStore caches the signed-in user identity on the local machine,
// so the client knows who it is without a network round trip at startup.
type IdentityStore interface {
	// SavedUser returns the cached identity, or nil and no error when
	// no user is cached.
	SavedUser(ctx context.Context) (*domain.User, error)

	// SaveUser caches the identity, replacing any previous one.
	SaveUser(ctx context.Context, user domain.User) error

	// ClearUser removes the cached identity.
	ClearUser(ctx context.Context) error
}
