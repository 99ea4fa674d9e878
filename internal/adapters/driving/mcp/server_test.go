package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driven/storage/memory"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/services"
)

// newTestServer builds a server over an in-memory backend with a seeded
// metatext. The metatext is not opened; tests call open_metatext or
// load the workspace themselves.
func newTestServer(t *testing.T) (*Server, []domain.Chunk) {
	t.Helper()

	backend := memory.NewChunkBackend()
	seeded := backend.SeedChunks(7, []domain.Chunk{
		{Text: "alpha beta gamma delta"},
		{Text: "epsilon zeta", Notes: "note on two"},
		{Text: "eta theta iota"},
	})

	bridge := services.NewSessionBridge(memory.NewSelectionStore(), backend, memory.NewUserProvider(nil))
	ws := services.NewChunkWorkspace(backend, bridge)
	t.Cleanup(func() {
		_ = ws.Close()
	})

	server, err := NewServer(&Ports{
		Workspace:    ws,
		Compressions: services.NewCompressionService(backend, nil),
	})
	require.NoError(t, err)

	return server, seeded
}

// openTestServer is newTestServer with the metatext already open.
func openTestServer(t *testing.T) (*Server, []domain.Chunk) {
	t.Helper()

	server, seeded := newTestServer(t)
	_, _, err := server.handleOpenMetaText(context.Background(), nil, OpenMetaTextInput{MetaTextID: 7})
	require.NoError(t, err)
	return server, seeded
}

func TestNewServer(t *testing.T) {
	t.Run("nil workspace returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingWorkspace)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, _ := newTestServer(t)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil workspace returns error", func(t *testing.T) {
		err := (&Ports{}).Validate()
		assert.ErrorIs(t, err, ErrMissingWorkspace)
	})

	t.Run("workspace only is valid", func(t *testing.T) {
		backend := memory.NewChunkBackend()
		bridge := services.NewSessionBridge(memory.NewSelectionStore(), backend, memory.NewUserProvider(nil))
		ws := services.NewChunkWorkspace(backend, bridge)
		defer func() {
			_ = ws.Close()
		}()

		err := (&Ports{Workspace: ws}).Validate()
		assert.NoError(t, err)
	})
}
