package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

var _ driven.SessionAPI = (*Client)(nil)

// GetChunkSession retrieves the stored chunk session for a user and
// metatext. A 404 means the user has no session yet, not an error.
func (c *Client) GetChunkSession(ctx context.Context, userID, metaTextID int64) (*domain.ChunkSession, error) {
	query := url.Values{
		"user_id":      {strconv.FormatInt(userID, 10)},
		"meta_text_id": {strconv.FormatInt(metaTextID, 10)},
	}
	var payload chunkSessionPayload
	if err := c.do(ctx, http.MethodGet, "/user-chunk-session", query, nil, &payload); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chunk session for user %d metatext %d: %w", userID, metaTextID, err)
	}
	return &domain.ChunkSession{
		UserID:            payload.UserID,
		MetaTextID:        payload.MetaTextID,
		LastActiveChunkID: payload.LastActiveChunkID,
	}, nil
}

// PutChunkSession creates or updates the session record.
func (c *Client) PutChunkSession(ctx context.Context, session domain.ChunkSession) error {
	body := chunkSessionPayload{
		UserID:            session.UserID,
		MetaTextID:        session.MetaTextID,
		LastActiveChunkID: session.LastActiveChunkID,
	}
	if err := c.do(ctx, http.MethodPut, "/user-chunk-session", nil, body, nil); err != nil {
		return fmt.Errorf("put chunk session for user %d metatext %d: %w", session.UserID, session.MetaTextID, err)
	}
	return nil
}

// UserProvider resolves the authenticated user from the backend once
// and memoises the result for the process lifetime. Anonymous clients
// (no token configured) resolve to nil without a network call.
type UserProvider struct {
	client        *Client
	authenticated bool

	once sync.Once
	user *domain.User
	err  error
}

var _ driven.CurrentUserProvider = (*UserProvider)(nil)

// NewUserProvider creates a provider backed by the given client.
// authenticated should be false when no token is configured.
func NewUserProvider(client *Client, authenticated bool) *UserProvider {
	return &UserProvider{client: client, authenticated: authenticated}
}

// CurrentUser returns the signed-in user, or nil when anonymous.
func (p *UserProvider) CurrentUser(ctx context.Context) (*domain.User, error) {
	if !p.authenticated {
		return nil, nil
	}
	p.once.Do(func() {
		var payload userPayload
		if err := p.client.do(ctx, http.MethodGet, "/users/me", nil, nil, &payload); err != nil {
			p.err = fmt.Errorf("resolve current user: %w", err)
			return
		}
		p.user = &domain.User{ID: payload.ID, Email: payload.Email}
	})
	return p.user, p.err
}
