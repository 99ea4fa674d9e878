package driving

import (
	"context"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// AuthService manages the client's backend identity: token storage,
// verification, and the cached user.
type AuthService interface {
	// Login verifies the token against the backend, stores it, and
	// caches the resolved identity. Returns the signed-in user.
	Login(ctx context.Context, token string) (*domain.User, error)

	// Logout discards the stored token and cached identity.
	Logout(ctx context.Context) error

	// Status returns the cached identity, or nil when signed out.
	Status(ctx context.Context) (*domain.User, error)
}
