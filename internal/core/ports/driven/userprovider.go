package driven

import (
	"context"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// CurrentUserProvider exposes the authenticated user, if any.
// Core services only branch on presence or absence; token handling
// and refresh live entirely in the adapter.
type CurrentUserProvider interface {
	// CurrentUser returns the signed-in user, or nil and no error
	// when the client is anonymous.
	CurrentUser(ctx context.Context) (*domain.User, error)
}
