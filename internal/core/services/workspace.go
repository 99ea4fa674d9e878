package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
	"github.com/metatext-labs/metatext-cli/internal/logger"
)

// Ensure ChunkWorkspace implements the interface.
var _ driving.ChunkWorkspace = (*ChunkWorkspace)(nil)

// ChunkWorkspace holds the chunk list for one open metatext and
// coordinates loads, selection, field edits, and structural mutations.
//
// The list is only reconciled after the backend confirms a mutation;
// there is no optimistic splice. At most one structural mutation may be
// in flight at a time, and a superseded load can never overwrite the
// state of a fresher one (each load carries a monotonic token).
type ChunkWorkspace struct {
	chunkAPI  driven.ChunkAPI
	sessions  *SessionBridge
	debouncer *FieldDebouncer

	mu         sync.Mutex
	metaTextID int64
	chunks     []domain.Chunk
	selection  domain.Selection
	loading    bool
	mutating   bool
	lastError  string
	loadToken  uint64
	closed     bool
}

// WorkspaceOption configures a ChunkWorkspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	debounceWindow time.Duration
}

// WithDebounceWindow overrides the field-edit quiet window.
func WithDebounceWindow(window time.Duration) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.debounceWindow = window
	}
}

// NewChunkWorkspace creates a workspace. The debouncer it owns sends
// coalesced whole-record writes through chunkAPI.UpdateChunk.
func NewChunkWorkspace(chunkAPI driven.ChunkAPI, sessions *SessionBridge, opts ...WorkspaceOption) *ChunkWorkspace {
	options := workspaceOptions{debounceWindow: DefaultDebounceWindow}
	for _, opt := range opts {
		opt(&options)
	}

	w := &ChunkWorkspace{
		chunkAPI: chunkAPI,
		sessions: sessions,
	}
	w.debouncer = NewFieldDebouncer(options.debounceWindow, func(ctx context.Context, chunk domain.Chunk) error {
		_, err := chunkAPI.UpdateChunk(ctx, chunk)
		return err
	})
	return w
}

// Load opens a metatext and restores the last active chunk.
func (w *ChunkWorkspace) Load(ctx context.Context, metaTextID int64) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkspaceClosed
	}
	w.loadToken++
	token := w.loadToken
	w.metaTextID = metaTextID
	w.loading = true
	w.lastError = ""
	hadActive := w.selection.HasActive()
	w.mu.Unlock()

	chunks, err := w.chunkAPI.ListChunks(ctx, metaTextID)

	// Selection restore needs its own lookups; resolve before taking
	// the lock back so the backend session call never blocks state.
	var restoreID int64
	if err == nil && !hadActive && len(chunks) > 0 && w.sessions != nil {
		restoreID = w.sessions.Restore(ctx, metaTextID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || token != w.loadToken {
		// A newer Load or Reset owns the state now.
		logger.Debug("discarding superseded load for metatext %d", metaTextID)
		return nil
	}
	w.loading = false

	if err != nil {
		// The list stays untouched and the selection unset.
		w.lastError = displayMessage(err)
		return fmt.Errorf("load chunks for metatext %d: %w", metaTextID, err)
	}

	w.chunks = chunks
	if !hadActive {
		w.applyAutoSelection(restoreID)
	}
	return nil
}

// Reload refetches the open metatext's chunks, always replacing the
// list. The selection is preserved when the active chunk survives and
// heals to the first chunk otherwise.
func (w *ChunkWorkspace) Reload(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkspaceClosed
	}
	if w.metaTextID == 0 {
		w.mu.Unlock()
		return domain.ErrNoMetaTextOpen
	}
	metaTextID := w.metaTextID
	w.loadToken++
	token := w.loadToken
	w.loading = true
	w.lastError = ""
	w.mu.Unlock()

	chunks, err := w.chunkAPI.ListChunks(ctx, metaTextID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || token != w.loadToken {
		logger.Debug("discarding superseded reload for metatext %d", metaTextID)
		return nil
	}
	w.loading = false

	if err != nil {
		w.lastError = displayMessage(err)
		return fmt.Errorf("reload chunks for metatext %d: %w", metaTextID, err)
	}

	w.chunks = chunks
	if !w.chunkPresent(w.selection.ActiveChunkID) {
		w.applyAutoSelection(0)
	}
	return nil
}

// applyAutoSelection activates preferredID when present, otherwise the
// first chunk, otherwise nothing. Tabs reset to the default set, or
// clear with the selection. Caller must hold the lock.
func (w *ChunkWorkspace) applyAutoSelection(preferredID int64) {
	if len(w.chunks) == 0 {
		w.selection = domain.Selection{}
		return
	}
	id := w.chunks[0].ID
	if preferredID != 0 && w.chunkPresent(preferredID) {
		id = preferredID
	}
	w.selection = domain.Selection{ActiveChunkID: id, Tabs: domain.DefaultTabs()}
}

// chunkPresent reports whether id references a chunk in the current
// list. Caller must hold the lock. Zero is never present.
func (w *ChunkWorkspace) chunkPresent(id int64) bool {
	if id == 0 {
		return false
	}
	for i := range w.chunks {
		if w.chunks[i].ID == id {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current workspace state.
func (w *ChunkWorkspace) Snapshot() driving.WorkspaceSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	chunks := make([]domain.Chunk, len(w.chunks))
	copy(chunks, w.chunks)
	tabs := make([]domain.ChunkTab, len(w.selection.Tabs))
	copy(tabs, w.selection.Tabs)

	return driving.WorkspaceSnapshot{
		MetaTextID: w.metaTextID,
		Chunks:     chunks,
		Selection:  domain.Selection{ActiveChunkID: w.selection.ActiveChunkID, Tabs: tabs},
		Loading:    w.loading,
		Mutating:   w.mutating,
		LastError:  w.lastError,
	}
}

// ActiveChunk returns a copy of the active chunk, or nil.
func (w *ChunkWorkspace) ActiveChunk() *domain.Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.chunks {
		if w.chunks[i].ID == w.selection.ActiveChunkID {
			chunk := w.chunks[i]
			return &chunk
		}
	}
	return nil
}

// SetActiveChunk makes the given chunk active and persists the
// selection through the session bridge.
func (w *ChunkWorkspace) SetActiveChunk(ctx context.Context, chunkID int64) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkspaceClosed
	}
	if !w.chunkPresent(chunkID) {
		w.mu.Unlock()
		return fmt.Errorf("chunk %d: %w", chunkID, domain.ErrNotFound)
	}
	w.selection.ActiveChunkID = chunkID
	if len(w.selection.Tabs) == 0 {
		w.selection.Tabs = domain.DefaultTabs()
	}
	metaTextID := w.metaTextID
	w.mu.Unlock()

	if w.sessions == nil {
		return nil
	}
	return w.sessions.Save(ctx, metaTextID, chunkID)
}

// SetActiveTabs replaces the open tool tabs for the active chunk.
func (w *ChunkWorkspace) SetActiveTabs(tabs []domain.ChunkTab) error {
	for _, tab := range tabs {
		if !tab.IsValid() {
			return fmt.Errorf("tab %q: %w", tab, domain.ErrInvalidInput)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return domain.ErrWorkspaceClosed
	}
	w.selection.Tabs = append([]domain.ChunkTab(nil), tabs...)
	return nil
}

// UpdateField applies a field edit locally and queues a debounced
// whole-record backend write. Two fields edited close together on the
// same chunk ride in the same coalesced write, since the record is
// captured at send time.
func (w *ChunkWorkspace) UpdateField(_ context.Context, chunkID int64, field domain.ChunkField, value string) error {
	if !field.IsValid() {
		return fmt.Errorf("field %q: %w", field, domain.ErrInvalidInput)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkspaceClosed
	}

	idx := -1
	for i := range w.chunks {
		if w.chunks[i].ID == chunkID {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("chunk %d: %w", chunkID, domain.ErrNotFound)
	}

	// Replace the element wholesale rather than mutating in place.
	updated := w.chunks[idx]
	if err := field.Apply(&updated, value); err != nil {
		w.mu.Unlock()
		return err
	}
	w.chunks[idx] = updated
	w.mu.Unlock()

	w.debouncer.Schedule(updated)
	return nil
}

// SplitAt splits the chunk at list index after the given word.
func (w *ChunkWorkspace) SplitAt(ctx context.Context, chunkIndex, wordIndex int) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkspaceClosed
	}
	if chunkIndex < 0 || chunkIndex >= len(w.chunks) {
		w.mu.Unlock()
		return fmt.Errorf("chunk index %d: %w", chunkIndex, domain.ErrInvalidInput)
	}
	if wordIndex < 0 {
		w.mu.Unlock()
		return fmt.Errorf("word index %d: %w", wordIndex, domain.ErrInvalidInput)
	}
	if w.mutating {
		w.mu.Unlock()
		return domain.ErrMutationInFlight
	}
	w.mutating = true
	target := w.chunks[chunkIndex]
	w.mu.Unlock()

	// A queued edit for this chunk must land before the record is
	// replaced, or it would race the split against a retiring ID.
	if err := w.debouncer.Flush(ctx, target.ID); err != nil {
		logger.Error("flushing edits before split of chunk %d: %v", target.ID, err)
	}

	// Split after the clicked word.
	parts, err := w.chunkAPI.SplitChunk(ctx, target.ID, wordIndex+1)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.mutating = false

	if w.closed {
		return domain.ErrWorkspaceClosed
	}
	if err != nil {
		return fmt.Errorf("split chunk %d: %w", target.ID, err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("split chunk %d returned %d records: %w", target.ID, len(parts), domain.ErrMalformedResponse)
	}

	// The list may have been replaced by a reload while the split was
	// in flight; splice only if the original still sits where it was.
	if chunkIndex >= len(w.chunks) || w.chunks[chunkIndex].ID != target.ID {
		return fmt.Errorf("chunk %d moved during split: %w", target.ID, domain.ErrNotFound)
	}

	updated := make([]domain.Chunk, 0, len(w.chunks)+1)
	updated = append(updated, w.chunks[:chunkIndex]...)
	updated = append(updated, parts[0], parts[1])
	updated = append(updated, w.chunks[chunkIndex+1:]...)
	w.chunks = updated
	return nil
}

// Merge combines the chunks at list index and index+1.
func (w *ChunkWorkspace) Merge(ctx context.Context, chunkIndex int) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkspaceClosed
	}
	if chunkIndex < 0 || chunkIndex >= len(w.chunks) {
		w.mu.Unlock()
		return fmt.Errorf("chunk index %d: %w", chunkIndex, domain.ErrInvalidInput)
	}
	if chunkIndex+1 >= len(w.chunks) {
		w.mu.Unlock()
		return domain.ErrNoNeighbour
	}
	if w.mutating {
		w.mu.Unlock()
		return domain.ErrMutationInFlight
	}
	w.mutating = true
	first := w.chunks[chunkIndex]
	second := w.chunks[chunkIndex+1]
	w.mu.Unlock()

	for _, id := range []int64{first.ID, second.ID} {
		if err := w.debouncer.Flush(ctx, id); err != nil {
			logger.Error("flushing edits before merge of chunk %d: %v", id, err)
		}
	}

	combined, err := w.chunkAPI.CombineChunks(ctx, first.ID, second.ID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.mutating = false

	if w.closed {
		return domain.ErrWorkspaceClosed
	}
	if err != nil {
		return fmt.Errorf("merge chunks %d and %d: %w", first.ID, second.ID, err)
	}
	if combined == nil {
		return fmt.Errorf("merge chunks %d and %d returned nothing: %w", first.ID, second.ID, domain.ErrMalformedResponse)
	}

	if chunkIndex+1 >= len(w.chunks) ||
		w.chunks[chunkIndex].ID != first.ID || w.chunks[chunkIndex+1].ID != second.ID {
		return fmt.Errorf("chunks moved during merge: %w", domain.ErrNotFound)
	}

	updated := make([]domain.Chunk, 0, len(w.chunks)-1)
	updated = append(updated, w.chunks[:chunkIndex]...)
	updated = append(updated, *combined)
	updated = append(updated, w.chunks[chunkIndex+2:]...)
	w.chunks = updated

	// The merge retired the second chunk; heal a selection pointing at it.
	if w.selection.ActiveChunkID == second.ID {
		w.selection.ActiveChunkID = combined.ID
	}
	return nil
}

// Reset clears all workspace state so the next Load starts clean.
// Pending debounced writes are dropped, not sent, and an in-flight
// load's response will be discarded when it lands.
func (w *ChunkWorkspace) Reset() {
	w.debouncer.CancelAll()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.loadToken++
	w.metaTextID = 0
	w.chunks = nil
	w.selection = domain.Selection{}
	w.loading = false
	w.mutating = false
	w.lastError = ""
}

// Close flushes pending debounced writes, drains best-effort session
// writes, and retires the workspace.
func (w *ChunkWorkspace) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.debouncer.Close(context.Background())
	if w.sessions != nil {
		w.sessions.Wait()
	}
	return err
}

// messageProvider is implemented by transport errors that carry a
// backend-supplied detail message.
type messageProvider interface {
	Message() string
}

// displayMessage renders an error as a human-readable string, preferring
// a backend detail message over the raw error chain.
func displayMessage(err error) string {
	if err == nil {
		return ""
	}
	var mp messageProvider
	if errors.As(err, &mp) {
		if msg := mp.Message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
