package driving

import (
	"context"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// ChunkWorkspace coordinates the chunk list for one open metatext:
// loading, selection, field edits, and structural mutations (split and
// merge). All list reconciliation happens here; frontends only render
// snapshots and forward user intents.
type ChunkWorkspace interface {
	// Load opens a metatext: fetches its chunks and restores the last
	// active chunk (backend session, then local store, then the first
	// chunk). A later Load supersedes an in-flight one; the superseded
	// response is discarded.
	Load(ctx context.Context, metaTextID int64) error

	// Reload refetches the open metatext's chunks. The active chunk and
	// tabs are preserved when the chunk still exists; otherwise the
	// selection heals to the first chunk, or clears if the list is empty.
	Reload(ctx context.Context) error

	// Snapshot returns a copy of the current workspace state.
	Snapshot() WorkspaceSnapshot

	// ActiveChunk returns a copy of the active chunk, or nil.
	ActiveChunk() *domain.Chunk

	// SetActiveChunk makes the given chunk active and persists the
	// selection locally (always) and to the backend session (best
	// effort, authenticated users only).
	SetActiveChunk(ctx context.Context, chunkID int64) error

	// SetActiveTabs replaces the open tool tabs for the active chunk.
	SetActiveTabs(tabs []domain.ChunkTab) error

	// UpdateField applies a field edit to the local chunk immediately
	// and schedules a debounced whole-record write to the backend.
	// Edits to different chunks never coalesce into each other's writes.
	UpdateField(ctx context.Context, chunkID int64, field domain.ChunkField, value string) error

	// SplitAt splits the chunk at list index after the given word
	// (0-based; the split point is wordIndex+1 words in). The two
	// returned records replace the original slot and the slot after it.
	SplitAt(ctx context.Context, chunkIndex, wordIndex int) error

	// Merge combines the chunks at list index and index+1, keeping the
	// first chunk's identity. Fails with domain.ErrNoNeighbour when no
	// following chunk exists.
	Merge(ctx context.Context, chunkIndex int) error

	// Reset clears the list, selection, error, and pending debounced
	// writes, so one metatext's state never bleeds into the next.
	Reset()

	// Close flushes pending debounced writes and releases timers.
	// The workspace serves no operations afterwards.
	Close() error
}

// WorkspaceSnapshot is an immutable copy of workspace state for rendering.
type WorkspaceSnapshot struct {
	// MetaTextID is the open metatext, or 0 when the workspace is empty.
	MetaTextID int64

	// Chunks is the chunk list in position order.
	Chunks []domain.Chunk

	// Selection is the active chunk and open tabs.
	Selection domain.Selection

	// Loading is true while a chunk-list fetch is in flight.
	Loading bool

	// Mutating is true while a split or merge is in flight.
	Mutating bool

	// LastError is a display string from the most recent failed load,
	// empty after a success.
	LastError string
}

// CompressionService manages chunk compressions.
type CompressionService interface {
	// Styles returns the compression styles available to the user.
	Styles() ([]domain.CompressionStyle, error)

	// List returns all saved compressions for a chunk.
	List(ctx context.Context, chunkID int64) ([]domain.ChunkCompression, error)

	// Preview generates a compression in the given style without saving.
	Preview(ctx context.Context, chunkID int64, styleTitle string) (*domain.ChunkCompression, error)

	// Save persists a previewed compression and returns the stored version.
	Save(ctx context.Context, compression domain.ChunkCompression) (*domain.ChunkCompression, error)
}
