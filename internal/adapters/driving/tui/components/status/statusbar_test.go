package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/keymap"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilDefaults(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotEmpty(t, bar.View())
}

func TestBar_ReadyState(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Contains(t, bar.View(), "Ready")
	assert.Contains(t, bar.View(), "anonymous")
}

func TestBar_ChunkCount(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetChunkCount(5)

	assert.Equal(t, 5, bar.ChunkCount())
	assert.Contains(t, bar.View(), "5 chunks")
}

func TestBar_LoadingState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateLoading)

	assert.Contains(t, bar.View(), "Loading...")
}

func TestBar_MutatingState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateMutating)

	assert.Contains(t, bar.View(), "Working...")
}

func TestBar_ErrorState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("backend unreachable")

	view := bar.View()
	assert.Contains(t, view, "Error")
	assert.Contains(t, view, "backend unreachable")
}

func TestBar_Identity(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetIdentity("reader@example.com")

	assert.Equal(t, "reader@example.com", bar.Identity())
	assert.Contains(t, bar.View(), "reader@example.com")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetChunkCount(3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ChunkCount())
}

func TestBar_WidthPadding(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	assert.Equal(t, 120, bar.Width())
	assert.NotEmpty(t, bar.View())
}
