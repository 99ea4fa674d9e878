package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
	"github.com/metatext-labs/metatext-cli/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// TokenVerifier resolves the user a token belongs to, typically by
// calling the backend with that token.
type TokenVerifier func(ctx context.Context, token string) (*domain.User, error)

// AuthService stores the backend token in config and the verified
// identity in the local identity store. Verification happens once at
// login; later commands trust the cache.
type AuthService struct {
	config   driven.ConfigStore
	identity driven.IdentityStore
	verify   TokenVerifier
}

// NewAuthService creates an auth service.
func NewAuthService(config driven.ConfigStore, identity driven.IdentityStore, verify TokenVerifier) *AuthService {
	return &AuthService{config: config, identity: identity, verify: verify}
}

// Login verifies the token, stores it, and caches the identity.
func (s *AuthService) Login(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token: %w", domain.ErrInvalidInput)
	}

	user, err := s.verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}

	if err := s.config.Set(driven.ConfigKeyAPIToken, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	if err := s.identity.SaveUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("cache identity: %w", err)
	}

	return user, nil
}

// Logout discards the stored token and cached identity.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.config.Delete(driven.ConfigKeyAPIToken); err != nil {
		return fmt.Errorf("discard token: %w", err)
	}
	if err := s.identity.ClearUser(ctx); err != nil {
		// Token is already gone, the stale cache entry is harmless.
		logger.Warn("clear cached identity: %v", err)
	}
	return nil
}

// Status returns the cached identity, or nil when signed out.
func (s *AuthService) Status(ctx context.Context) (*domain.User, error) {
	if s.config.GetString(driven.ConfigKeyAPIToken) == "" {
		return nil, nil
	}
	return s.identity.SavedUser(ctx)
}
