package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driven/storage/memory"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

func newCompressionFixture(t *testing.T) (*CompressionService, []domain.Chunk) {
	t.Helper()
	backend := memory.NewChunkBackend()
	seeded := backend.SeedChunks(7, []domain.Chunk{{Text: "the original chunk text"}})
	return NewCompressionService(backend, nil), seeded
}

func TestCompressionService_PreviewThenSave(t *testing.T) {
	svc, seeded := newCompressionFixture(t)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, seeded[0].ID, "like I'm 5")
	require.NoError(t, err)
	assert.Zero(t, preview.ID)
	assert.Equal(t, "like I'm 5", preview.Title)

	saved, err := svc.Save(ctx, *preview)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	list, err := svc.List(ctx, seeded[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
}

func TestCompressionService_Preview_Validation(t *testing.T) {
	svc, seeded := newCompressionFixture(t)
	ctx := context.Background()

	_, err := svc.Preview(ctx, 0, "style")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Preview(ctx, seeded[0].ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompressionService_Save_Validation(t *testing.T) {
	svc, _ := newCompressionFixture(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.ChunkCompression{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Save(ctx, domain.ChunkCompression{ChunkID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompressionService_NilAPI(t *testing.T) {
	svc := NewCompressionService(nil, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	_, err = svc.Preview(ctx, 1, "style")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	_, err = svc.Save(ctx, domain.ChunkCompression{ChunkID: 1, Title: "t"})
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestCompressionService_Preview_UnknownChunk(t *testing.T) {
	svc, _ := newCompressionFixture(t)
	_, err := svc.Preview(context.Background(), 9999, "style")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type stubStyleStore struct {
	styles []domain.CompressionStyle
}

func (s *stubStyleStore) List() ([]domain.CompressionStyle, error) { return s.styles, nil }
func (s *stubStyleStore) Describe(title string) (string, error) {
	for _, style := range s.styles {
		if style.Title == title {
			return style.Description, nil
		}
	}
	return "", domain.ErrNotFound
}
func (s *stubStyleStore) Reload()     {}
func (s *stubStyleStore) Dir() string { return "" }

func TestCompressionService_Styles(t *testing.T) {
	store := &stubStyleStore{styles: []domain.CompressionStyle{
		{Title: "headline", Description: "one sentence"},
	}}
	svc := NewCompressionService(nil, store)

	styles, err := svc.Styles()
	require.NoError(t, err)
	require.Len(t, styles, 1)
	assert.Equal(t, "headline", styles[0].Title)

	// Without a store there are simply no styles to offer.
	empty := NewCompressionService(nil, nil)
	styles, err = empty.Styles()
	require.NoError(t, err)
	assert.Empty(t, styles)
}
