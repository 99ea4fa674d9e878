package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driven/storage/memory"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

// mapConfigStore is a minimal in-memory driven.ConfigStore.
type mapConfigStore struct {
	mu   sync.Mutex
	data map[string]any
}

func newMapConfigStore() *mapConfigStore {
	return &mapConfigStore{data: make(map[string]any)}
}

func (s *mapConfigStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *mapConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *mapConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	n, _ := v.(int)
	return n
}

func (s *mapConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

func (s *mapConfigStore) GetDuration(key string) time.Duration {
	d, err := time.ParseDuration(s.GetString(key))
	if err != nil {
		return 0
	}
	return d
}

func (s *mapConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapConfigStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *mapConfigStore) Save() error { return nil }
func (s *mapConfigStore) Load() error { return nil }
func (s *mapConfigStore) Path() string {
	return ""
}

func TestAuthService_Login(t *testing.T) {
	config := newMapConfigStore()
	identity := memory.NewIdentityStore()
	svc := NewAuthService(config, identity, func(ctx context.Context, token string) (*domain.User, error) {
		assert.Equal(t, "secret", token)
		return &domain.User{ID: 3, Email: "reader@example.com"}, nil
	})

	user, err := svc.Login(context.Background(), "secret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "reader@example.com", user.Email)

	// Token stored, identity cached
	assert.Equal(t, "secret", config.GetString(driven.ConfigKeyAPIToken))
	cached, err := identity.SavedUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, int64(3), cached.ID)
}

func TestAuthService_Login_TrimsToken(t *testing.T) {
	config := newMapConfigStore()
	svc := NewAuthService(config, memory.NewIdentityStore(), func(ctx context.Context, token string) (*domain.User, error) {
		return &domain.User{ID: 1}, nil
	})

	_, err := svc.Login(context.Background(), "  secret\n")
	require.NoError(t, err)
	assert.Equal(t, "secret", config.GetString(driven.ConfigKeyAPIToken))
}

func TestAuthService_Login_EmptyToken(t *testing.T) {
	svc := NewAuthService(newMapConfigStore(), memory.NewIdentityStore(), nil)

	_, err := svc.Login(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthService_Login_VerificationFails(t *testing.T) {
	config := newMapConfigStore()
	svc := NewAuthService(config, memory.NewIdentityStore(), func(ctx context.Context, token string) (*domain.User, error) {
		return nil, errors.New("backend says no")
	})

	_, err := svc.Login(context.Background(), "bad")
	require.Error(t, err)

	// Rejected tokens are never stored
	assert.Empty(t, config.GetString(driven.ConfigKeyAPIToken))
}

func TestAuthService_LogoutAndStatus(t *testing.T) {
	config := newMapConfigStore()
	identity := memory.NewIdentityStore()
	svc := NewAuthService(config, identity, func(ctx context.Context, token string) (*domain.User, error) {
		return &domain.User{ID: 3, Email: "reader@example.com"}, nil
	})
	ctx := context.Background()

	// Signed out initially
	user, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = svc.Login(ctx, "secret")
	require.NoError(t, err)

	user, err = svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)

	require.NoError(t, svc.Logout(ctx))

	user, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Empty(t, config.GetString(driven.ConfigKeyAPIToken))
}
