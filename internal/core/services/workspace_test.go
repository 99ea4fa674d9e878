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

// stubChunkAPI overrides selected ChunkAPI calls, delegating the rest.
type stubChunkAPI struct {
	driven.ChunkAPI

	listFn    func(ctx context.Context, metaTextID int64) ([]domain.Chunk, error)
	splitFn   func(ctx context.Context, id int64, wordIndex int) ([]domain.Chunk, error)
	combineFn func(ctx context.Context, firstID, secondID int64) (*domain.Chunk, error)
	updateFn  func(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error)
}

func (s *stubChunkAPI) ListChunks(ctx context.Context, metaTextID int64) ([]domain.Chunk, error) {
	if s.listFn != nil {
		return s.listFn(ctx, metaTextID)
	}
	return s.ChunkAPI.ListChunks(ctx, metaTextID)
}

func (s *stubChunkAPI) SplitChunk(ctx context.Context, id int64, wordIndex int) ([]domain.Chunk, error) {
	if s.splitFn != nil {
		return s.splitFn(ctx, id, wordIndex)
	}
	return s.ChunkAPI.SplitChunk(ctx, id, wordIndex)
}

func (s *stubChunkAPI) CombineChunks(ctx context.Context, firstID, secondID int64) (*domain.Chunk, error) {
	if s.combineFn != nil {
		return s.combineFn(ctx, firstID, secondID)
	}
	return s.ChunkAPI.CombineChunks(ctx, firstID, secondID)
}

func (s *stubChunkAPI) UpdateChunk(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, chunk)
	}
	return s.ChunkAPI.UpdateChunk(ctx, chunk)
}

// testWorkspace wires a workspace over an in-memory backend.
type testWorkspace struct {
	backend    *memory.ChunkBackend
	selections *memory.SelectionStore
	users      *memory.UserProvider
	bridge     *SessionBridge
	ws         *ChunkWorkspace
}

func newTestWorkspace(t *testing.T, user *domain.User, opts ...WorkspaceOption) *testWorkspace {
	t.Helper()

	backend := memory.NewChunkBackend()
	selections := memory.NewSelectionStore()
	users := memory.NewUserProvider(user)
	bridge := NewSessionBridge(selections, backend, users)
	ws := NewChunkWorkspace(backend, bridge, opts...)
	t.Cleanup(func() {
		_ = ws.Close()
	})

	return &testWorkspace{
		backend:    backend,
		selections: selections,
		users:      users,
		bridge:     bridge,
		ws:         ws,
	}
}

func seedWorkspace(tw *testWorkspace, metaTextID int64) []domain.Chunk {
	return tw.backend.SeedChunks(metaTextID, []domain.Chunk{
		{Text: "alpha beta gamma", Position: 0},
		{Text: "delta epsilon", Position: 1},
		{Text: "zeta", Position: 2},
	})
}

func TestWorkspace_Load_AutoSelectsFirstChunk(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))

	snap := tw.ws.Snapshot()
	assert.Equal(t, int64(7), snap.MetaTextID)
	require.Len(t, snap.Chunks, 3)
	assert.Equal(t, seeded[0].ID, snap.Selection.ActiveChunkID)
	assert.Equal(t, []domain.ChunkTab{domain.TabNotesSummary}, snap.Selection.Tabs)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.LastError)
}

func TestWorkspace_Load_EmptyListSelectsNothing(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))

	snap := tw.ws.Snapshot()
	assert.Empty(t, snap.Chunks)
	assert.False(t, snap.Selection.HasActive())
	assert.Empty(t, snap.Selection.Tabs)
}

func TestWorkspace_Load_RestoresLocalSelection(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.selections.SaveLastActiveChunk(ctx, 7, seeded[1].ID))

	require.NoError(t, tw.ws.Load(ctx, 7))
	assert.Equal(t, seeded[1].ID, tw.ws.Snapshot().Selection.ActiveChunkID)
}

func TestWorkspace_Load_BackendSessionTakesPrecedence(t *testing.T) {
	user := &domain.User{ID: 1, Email: "reader@example.com"}
	tw := newTestWorkspace(t, user)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	// Local store says chunk 0, backend session says chunk 2.
	require.NoError(t, tw.selections.SaveLastActiveChunk(ctx, 7, seeded[0].ID))
	require.NoError(t, tw.backend.PutChunkSession(ctx, domain.ChunkSession{
		UserID: 1, MetaTextID: 7, LastActiveChunkID: seeded[2].ID,
	}))

	require.NoError(t, tw.ws.Load(ctx, 7))
	assert.Equal(t, seeded[2].ID, tw.ws.Snapshot().Selection.ActiveChunkID)
}

func TestWorkspace_Load_StaleStoredSelectionFallsBackToFirst(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	// Stored id no longer exists (e.g. retired by a merge elsewhere).
	require.NoError(t, tw.selections.SaveLastActiveChunk(ctx, 7, 9999))

	require.NoError(t, tw.ws.Load(ctx, 7))
	assert.Equal(t, seeded[0].ID, tw.ws.Snapshot().Selection.ActiveChunkID)
}

func TestWorkspace_Load_FetchFailureLeavesStateUntouched(t *testing.T) {
	backend := memory.NewChunkBackend()
	api := &stubChunkAPI{ChunkAPI: backend}
	api.listFn = func(context.Context, int64) ([]domain.Chunk, error) {
		return nil, errors.New("backend down")
	}
	ws := NewChunkWorkspace(api, nil)
	t.Cleanup(func() { _ = ws.Close() })

	err := ws.Load(context.Background(), 7)
	require.Error(t, err)

	snap := ws.Snapshot()
	assert.Empty(t, snap.Chunks)
	assert.False(t, snap.Selection.HasActive())
	assert.False(t, snap.Loading)
	assert.Equal(t, "backend down", snap.LastError)
}

func TestWorkspace_Load_SupersededResponseDiscarded(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seedWorkspace(tw, 7)
	stale := []domain.Chunk{{ID: 999, MetaTextID: 8, Text: "stale"}}

	release := make(chan struct{})
	api := &stubChunkAPI{ChunkAPI: tw.backend}
	api.listFn = func(ctx context.Context, metaTextID int64) ([]domain.Chunk, error) {
		if metaTextID == 8 {
			<-release
			return stale, nil
		}
		return tw.backend.ListChunks(ctx, metaTextID)
	}
	ws := NewChunkWorkspace(api, tw.bridge)
	t.Cleanup(func() { _ = ws.Close() })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// First load blocks inside the backend until released.
		_ = ws.Load(context.Background(), 8)
	}()

	// Give the first load time to pass its token allocation.
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, ws.Load(context.Background(), 7))
	close(release)
	wg.Wait()

	snap := ws.Snapshot()
	assert.Equal(t, int64(7), snap.MetaTextID, "fresher load owns the state")
	require.Len(t, snap.Chunks, 3)
	assert.NotEqual(t, int64(999), snap.Chunks[0].ID)
}

func TestWorkspace_Reload_PreservesSurvivingSelection(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.SetActiveChunk(ctx, seeded[1].ID))
	require.NoError(t, tw.ws.SetActiveTabs([]domain.ChunkTab{domain.TabComparison, domain.TabAIImage}))

	require.NoError(t, tw.ws.Reload(ctx))

	snap := tw.ws.Snapshot()
	assert.Equal(t, seeded[1].ID, snap.Selection.ActiveChunkID)
	assert.Equal(t, []domain.ChunkTab{domain.TabComparison, domain.TabAIImage}, snap.Selection.Tabs,
		"tabs untouched when the active chunk survives")
}

func TestWorkspace_Reload_HealsStaleSelection(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.SetActiveChunk(ctx, seeded[2].ID))

	// The active chunk disappears behind the client's back.
	tw.backend.SeedChunks(7, []domain.Chunk{seeded[0], seeded[1]})

	require.NoError(t, tw.ws.Reload(ctx))

	snap := tw.ws.Snapshot()
	assert.Equal(t, seeded[0].ID, snap.Selection.ActiveChunkID, "selection heals to the first chunk")
	assert.Equal(t, []domain.ChunkTab{domain.TabNotesSummary}, snap.Selection.Tabs)
}

func TestWorkspace_Reload_EmptyListClearsSelection(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	tw.backend.SeedChunks(7, nil)

	require.NoError(t, tw.ws.Reload(ctx))

	snap := tw.ws.Snapshot()
	assert.False(t, snap.Selection.HasActive())
	assert.Empty(t, snap.Selection.Tabs)
}

func TestWorkspace_Reload_WithoutOpenMetaText(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	err := tw.ws.Reload(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoMetaTextOpen)
}

func TestWorkspace_SetActiveChunk_PersistsLocally(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.SetActiveChunk(ctx, seeded[1].ID))

	stored, err := tw.selections.LastActiveChunk(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, seeded[1].ID, stored)
}

func TestWorkspace_SetActiveChunk_PersistsBackendSessionWhenAuthenticated(t *testing.T) {
	user := &domain.User{ID: 3}
	tw := newTestWorkspace(t, user)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.SetActiveChunk(ctx, seeded[2].ID))
	tw.bridge.Wait()

	session, err := tw.backend.GetChunkSession(ctx, 3, 7)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, seeded[2].ID, session.LastActiveChunkID)
}

func TestWorkspace_SetActiveChunk_UnknownID(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	err := tw.ws.SetActiveChunk(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspace_UpdateField_AppliesLocallyAndCoalesces(t *testing.T) {
	var mu sync.Mutex
	var sent []domain.Chunk

	backend := memory.NewChunkBackend()
	seeded := backend.SeedChunks(7, []domain.Chunk{{Text: "alpha beta"}})
	api := &stubChunkAPI{ChunkAPI: backend}
	api.updateFn = func(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error) {
		mu.Lock()
		sent = append(sent, chunk)
		mu.Unlock()
		return backend.UpdateChunk(ctx, chunk)
	}

	ws := NewChunkWorkspace(api, nil, WithDebounceWindow(30*time.Millisecond))
	t.Cleanup(func() { _ = ws.Close() })
	ctx := context.Background()

	require.NoError(t, ws.Load(ctx, 7))

	// A burst of edits across two fields of the same chunk.
	require.NoError(t, ws.UpdateField(ctx, seeded[0].ID, domain.FieldNotes, "n1"))
	require.NoError(t, ws.UpdateField(ctx, seeded[0].ID, domain.FieldNotes, "n2"))
	require.NoError(t, ws.UpdateField(ctx, seeded[0].ID, domain.FieldSummary, "s1"))

	// Local state reflects every edit immediately.
	snap := ws.Snapshot()
	assert.Equal(t, "n2", snap.Chunks[0].Notes)
	assert.Equal(t, "s1", snap.Chunks[0].Summary)

	// Exactly one coalesced remote write carrying both fields.
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(sent) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.Equal(t, "n2", sent[0].Notes)
	assert.Equal(t, "s1", sent[0].Summary)
}

func TestWorkspace_UpdateField_InvalidField(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	err := tw.ws.UpdateField(ctx, seeded[0].ID, domain.ChunkField("bogus"), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWorkspace_SplitAt_RoundTrip(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))

	// Click the first word of "alpha beta gamma": split after word 0.
	require.NoError(t, tw.ws.SplitAt(ctx, 0, 0))

	snap := tw.ws.Snapshot()
	require.Len(t, snap.Chunks, 4)
	assert.Equal(t, seeded[0].ID, snap.Chunks[0].ID)
	assert.Equal(t, "alpha", snap.Chunks[0].Text)
	assert.Equal(t, "beta gamma", snap.Chunks[1].Text)
	assert.Equal(t, seeded[1].ID, snap.Chunks[2].ID, "later chunks keep their relative order")
	assert.Equal(t, seeded[2].ID, snap.Chunks[3].ID)
}

func TestWorkspace_SplitAt_MalformedResponse(t *testing.T) {
	backend := memory.NewChunkBackend()
	seeded := backend.SeedChunks(7, []domain.Chunk{{Text: "alpha beta"}})
	api := &stubChunkAPI{ChunkAPI: backend}
	api.splitFn = func(context.Context, int64, int) ([]domain.Chunk, error) {
		return []domain.Chunk{{ID: 50}}, nil // one record instead of two
	}
	ws := NewChunkWorkspace(api, nil)
	t.Cleanup(func() { _ = ws.Close() })
	ctx := context.Background()

	require.NoError(t, ws.Load(ctx, 7))
	err := ws.SplitAt(ctx, 0, 0)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	snap := ws.Snapshot()
	require.Len(t, snap.Chunks, 1, "list untouched on malformed response")
	assert.Equal(t, seeded[0].ID, snap.Chunks[0].ID)
}

func TestWorkspace_SplitAt_RejectsConcurrentMutation(t *testing.T) {
	backend := memory.NewChunkBackend()
	backend.SeedChunks(7, []domain.Chunk{
		{Text: "alpha beta"},
		{Text: "gamma delta"},
	})

	entered := make(chan struct{})
	release := make(chan struct{})
	api := &stubChunkAPI{ChunkAPI: backend}
	api.splitFn = func(ctx context.Context, id int64, wordIndex int) ([]domain.Chunk, error) {
		close(entered)
		<-release
		return backend.SplitChunk(ctx, id, wordIndex)
	}

	ws := NewChunkWorkspace(api, nil)
	t.Cleanup(func() { _ = ws.Close() })
	ctx := context.Background()
	require.NoError(t, ws.Load(ctx, 7))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = ws.SplitAt(ctx, 0, 0)
	}()

	<-entered
	err := ws.SplitAt(ctx, 1, 0)
	assert.ErrorIs(t, err, domain.ErrMutationInFlight)

	close(release)
	wg.Wait()
}

func TestWorkspace_Merge_RoundTrip(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.Merge(ctx, 0))

	snap := tw.ws.Snapshot()
	require.Len(t, snap.Chunks, 2)
	assert.Equal(t, seeded[0].ID, snap.Chunks[0].ID, "merged chunk keeps the first ID")
	assert.Equal(t, "alpha beta gamma delta epsilon", snap.Chunks[0].Text)
	assert.Equal(t, seeded[2].ID, snap.Chunks[1].ID)

	for _, chunk := range snap.Chunks {
		assert.NotEqual(t, seeded[1].ID, chunk.ID, "second chunk no longer appears")
	}
}

func TestWorkspace_Merge_HealsSelectionOnRetiredChunk(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.SetActiveChunk(ctx, seeded[1].ID))

	require.NoError(t, tw.ws.Merge(ctx, 0))

	snap := tw.ws.Snapshot()
	assert.Equal(t, seeded[0].ID, snap.Selection.ActiveChunkID,
		"selection moves to the combined chunk")
}

func TestWorkspace_Merge_NoNeighbour(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	err := tw.ws.Merge(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNoNeighbour)
}

func TestWorkspace_Reset_ClearsEverything(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	tw.ws.Reset()

	snap := tw.ws.Snapshot()
	assert.Zero(t, snap.MetaTextID)
	assert.Empty(t, snap.Chunks)
	assert.False(t, snap.Selection.HasActive())
	assert.Empty(t, snap.Selection.Tabs)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.LastError)
}

func TestWorkspace_Reset_IsolatesMetaTexts(t *testing.T) {
	tw := newTestWorkspace(t, nil)
	seededA := seedWorkspace(tw, 7)
	seededB := tw.backend.SeedChunks(8, []domain.Chunk{
		{Text: "other text"},
	})
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.SetActiveChunk(ctx, seededA[2].ID))
	tw.ws.Reset()

	// Opening a different metatext must not read metatext 7's selection.
	require.NoError(t, tw.ws.Load(ctx, 8))
	assert.Equal(t, seededB[0].ID, tw.ws.Snapshot().Selection.ActiveChunkID)
}

func TestWorkspace_Reset_DropsPendingEdits(t *testing.T) {
	var mu sync.Mutex
	updates := 0

	backend := memory.NewChunkBackend()
	seeded := backend.SeedChunks(7, []domain.Chunk{{Text: "alpha beta"}})
	api := &stubChunkAPI{ChunkAPI: backend}
	api.updateFn = func(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error) {
		mu.Lock()
		updates++
		mu.Unlock()
		return backend.UpdateChunk(ctx, chunk)
	}

	ws := NewChunkWorkspace(api, nil, WithDebounceWindow(30*time.Millisecond))
	t.Cleanup(func() { _ = ws.Close() })
	ctx := context.Background()

	require.NoError(t, ws.Load(ctx, 7))
	require.NoError(t, ws.UpdateField(ctx, seeded[0].ID, domain.FieldNotes, "doomed"))
	ws.Reset()

	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, updates, "reset cancels queued debounced writes")
}

func TestWorkspace_SplitAt_FlushesPendingEditFirst(t *testing.T) {
	tw := newTestWorkspace(t, nil, WithDebounceWindow(time.Hour))
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.UpdateField(ctx, seeded[0].ID, domain.FieldNotes, "before the cut"))
	require.NoError(t, tw.ws.SplitAt(ctx, 0, 0))

	// The edit must land on the original record before the split
	// retires it, so the first half still carries the note.
	snap := tw.ws.Snapshot()
	require.Len(t, snap.Chunks, 4)
	assert.Equal(t, "alpha", snap.Chunks[0].Text)
	assert.Equal(t, "before the cut", snap.Chunks[0].Notes)
}

func TestWorkspace_Close_FlushesPendingEdits(t *testing.T) {
	tw := newTestWorkspace(t, nil, WithDebounceWindow(time.Hour))
	seeded := seedWorkspace(tw, 7)
	ctx := context.Background()

	require.NoError(t, tw.ws.Load(ctx, 7))
	require.NoError(t, tw.ws.UpdateField(ctx, seeded[0].ID, domain.FieldNotes, "keep me"))
	require.NoError(t, tw.ws.Close())

	stored, err := tw.backend.GetChunk(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stored.Notes)

	assert.ErrorIs(t, tw.ws.Load(ctx, 7), domain.ErrWorkspaceClosed)
}

func TestDisplayMessage(t *testing.T) {
	assert.Empty(t, displayMessage(nil))
	assert.Equal(t, "plain failure", displayMessage(errors.New("plain failure")))
}
