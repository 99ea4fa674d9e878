package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

func seedThree(t *testing.T, b *ChunkBackend) []domain.Chunk {
	t.Helper()
	return b.SeedChunks(7, []domain.Chunk{
		{Text: "one two three", Position: 0},
		{Text: "four five", Position: 1},
		{Text: "six", Position: 2},
	})
}

func TestChunkBackend_ListChunks_PositionOrder(t *testing.T) {
	b := NewChunkBackend()
	b.SeedChunks(7, []domain.Chunk{
		{ID: 3, Text: "c", Position: 2},
		{ID: 1, Text: "a", Position: 0},
		{ID: 2, Text: "b", Position: 1},
	})

	chunks, err := b.ListChunks(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, int64(1), chunks[0].ID)
	assert.Equal(t, int64(2), chunks[1].ID)
	assert.Equal(t, int64(3), chunks[2].ID)
}

func TestChunkBackend_UpdateChunk_IgnoresClientOwnership(t *testing.T) {
	b := NewChunkBackend()
	seeded := seedThree(t, b)
	ctx := context.Background()

	edit := seeded[1]
	edit.Notes = "annotated"
	edit.MetaTextID = 999 // client cannot move a chunk
	edit.Position = 42    // or reorder it

	updated, err := b.UpdateChunk(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "annotated", updated.Notes)
	assert.Equal(t, int64(7), updated.MetaTextID)
	assert.Equal(t, seeded[1].Position, updated.Position)
}

func TestChunkBackend_SplitChunk(t *testing.T) {
	b := NewChunkBackend()
	seeded := seedThree(t, b)
	ctx := context.Background()

	parts, err := b.SplitChunk(ctx, seeded[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, seeded[0].ID, parts[0].ID, "first half keeps the original ID")
	assert.Equal(t, "one two", parts[0].Text)
	assert.Equal(t, "three", parts[1].Text)
	assert.NotZero(t, parts[1].ID)

	chunks, err := b.ListChunks(ctx, 7)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	assert.Equal(t, parts[0].ID, chunks[0].ID)
	assert.Equal(t, parts[1].ID, chunks[1].ID)
}

func TestChunkBackend_SplitChunk_OutOfRange(t *testing.T) {
	b := NewChunkBackend()
	seeded := seedThree(t, b)
	ctx := context.Background()

	_, err := b.SplitChunk(ctx, seeded[2].ID, 1) // "six" has one word
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.SplitChunk(ctx, seeded[0].ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkBackend_CombineChunks(t *testing.T) {
	b := NewChunkBackend()
	seeded := seedThree(t, b)
	ctx := context.Background()

	combined, err := b.CombineChunks(ctx, seeded[0].ID, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded[0].ID, combined.ID, "combined chunk keeps the first ID")
	assert.Equal(t, "one two three four five", combined.Text)

	chunks, err := b.ListChunks(ctx, 7)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, seeded[0].ID, chunks[0].ID)
	assert.Equal(t, seeded[2].ID, chunks[1].ID)
}

func TestChunkBackend_CombineChunks_NotAdjacent(t *testing.T) {
	b := NewChunkBackend()
	seeded := seedThree(t, b)

	_, err := b.CombineChunks(context.Background(), seeded[0].ID, seeded[2].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkBackend_Sessions(t *testing.T) {
	b := NewChunkBackend()
	ctx := context.Background()

	session, err := b.GetChunkSession(ctx, 1, 7)
	require.NoError(t, err)
	assert.Nil(t, session, "missing session returns nil, nil")

	require.NoError(t, b.PutChunkSession(ctx, domain.ChunkSession{UserID: 1, MetaTextID: 7, LastActiveChunkID: 3}))

	session, err = b.GetChunkSession(ctx, 1, 7)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, int64(3), session.LastActiveChunkID)
}

func TestChunkBackend_Compressions(t *testing.T) {
	b := NewChunkBackend()
	seeded := seedThree(t, b)
	ctx := context.Background()

	preview, err := b.GenerateCompression(ctx, seeded[0].ID, "like I'm 5")
	require.NoError(t, err)
	assert.Zero(t, preview.ID, "preview is not persisted")
	assert.Contains(t, preview.CompressedText, "like I'm 5")

	saved, err := b.SaveCompression(ctx, *preview)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	list, err := b.ListCompressions(ctx, seeded[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
}
