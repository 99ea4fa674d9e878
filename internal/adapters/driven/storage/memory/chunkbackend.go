package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

// Ensure ChunkBackend implements the backend interfaces.
var (
	_ driven.ChunkAPI       = (*ChunkBackend)(nil)
	_ driven.SessionAPI     = (*ChunkBackend)(nil)
	_ driven.CompressionAPI = (*ChunkBackend)(nil)
)

// sessionKey identifies a chunk session by user and metatext.
type sessionKey struct {
	userID     int64
	metaTextID int64
}

// ChunkBackend is an in-memory stand-in for the metatext backend. It
// implements the chunk, session, and compression APIs with real
// split/merge semantics: splits divide text at a word boundary and mint
// new IDs, merges keep the first chunk's identity and concatenate text.
type ChunkBackend struct {
	mu           sync.Mutex
	chunks       map[int64][]domain.Chunk // keyed by metatext ID, position order
	sessions     map[sessionKey]domain.ChunkSession
	compressions map[int64][]domain.ChunkCompression // keyed by chunk ID
	nextID       int64
}

// NewChunkBackend creates an empty in-memory backend.
func NewChunkBackend() *ChunkBackend {
	return &ChunkBackend{
		chunks:       make(map[int64][]domain.Chunk),
		sessions:     make(map[sessionKey]domain.ChunkSession),
		compressions: make(map[int64][]domain.ChunkCompression),
		nextID:       1,
	}
}

// SeedChunks installs a chunk list for a metatext, assigning IDs where
// missing, and returns the stored list.
func (b *ChunkBackend) SeedChunks(metaTextID int64, chunks []domain.Chunk) []domain.Chunk {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]domain.Chunk, len(chunks))
	for i, chunk := range chunks {
		if chunk.ID == 0 {
			chunk.ID = b.nextID
			b.nextID++
		} else if chunk.ID >= b.nextID {
			b.nextID = chunk.ID + 1
		}
		chunk.MetaTextID = metaTextID
		if chunk.Position == 0 && i > 0 {
			chunk.Position = stored[i-1].Position + 1
		}
		stored[i] = chunk
	}
	b.chunks[metaTextID] = stored

	out := make([]domain.Chunk, len(stored))
	copy(out, stored)
	return out
}

// ListChunks returns all chunks for a metatext in position order.
func (b *ChunkBackend) ListChunks(_ context.Context, metaTextID int64) ([]domain.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := b.chunks[metaTextID]
	out := make([]domain.Chunk, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// GetChunk retrieves a chunk by ID.
func (b *ChunkBackend) GetChunk(_ context.Context, id int64) (*domain.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chunk, _, _, ok := b.find(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := chunk
	return &out, nil
}

// UpdateChunk replaces the stored record and returns it.
func (b *ChunkBackend) UpdateChunk(_ context.Context, chunk domain.Chunk) (*domain.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, metaTextID, idx, ok := b.find(chunk.ID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	// Position and ownership are backend-controlled; ignore client values.
	chunk.MetaTextID = metaTextID
	chunk.Position = stored.Position
	b.chunks[metaTextID][idx] = chunk

	out := chunk
	return &out, nil
}

// SplitChunk splits a chunk after wordIndex words. Returns the updated
// original followed by the newly created second half.
func (b *ChunkBackend) SplitChunk(_ context.Context, id int64, wordIndex int) ([]domain.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chunk, metaTextID, idx, ok := b.find(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	words := strings.Fields(chunk.Text)
	if wordIndex <= 0 || wordIndex >= len(words) {
		return nil, fmt.Errorf("word index %d out of range: %w", wordIndex, domain.ErrInvalidInput)
	}

	first := chunk
	first.Text = strings.Join(words[:wordIndex], " ")

	second := domain.Chunk{
		ID:         b.nextID,
		MetaTextID: metaTextID,
		Text:       strings.Join(words[wordIndex:], " "),
		Position:   chunk.Position + 1,
	}
	b.nextID++

	list := b.chunks[metaTextID]
	// Shift positions after the split point so ordering stays strict.
	for i := idx + 1; i < len(list); i++ {
		list[i].Position++
	}
	updated := make([]domain.Chunk, 0, len(list)+1)
	updated = append(updated, list[:idx]...)
	updated = append(updated, first, second)
	updated = append(updated, list[idx+1:]...)
	b.chunks[metaTextID] = updated

	return []domain.Chunk{first, second}, nil
}

// CombineChunks merges two adjacent chunks, keeping the first's identity.
func (b *ChunkBackend) CombineChunks(_ context.Context, firstID, secondID int64) (*domain.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	first, metaTextID, firstIdx, ok := b.find(firstID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	list := b.chunks[metaTextID]
	if firstIdx+1 >= len(list) || list[firstIdx+1].ID != secondID {
		return nil, fmt.Errorf("chunks %d and %d are not adjacent: %w", firstID, secondID, domain.ErrInvalidInput)
	}

	second := list[firstIdx+1]
	combined := first
	combined.Text = first.Text + " " + second.Text
	combined.Notes = joinNonEmpty(first.Notes, second.Notes)
	combined.Summary = joinNonEmpty(first.Summary, second.Summary)

	updated := make([]domain.Chunk, 0, len(list)-1)
	updated = append(updated, list[:firstIdx]...)
	updated = append(updated, combined)
	updated = append(updated, list[firstIdx+2:]...)
	b.chunks[metaTextID] = updated

	delete(b.compressions, second.ID)

	out := combined
	return &out, nil
}

// GetChunkSession retrieves the session for a user and metatext.
func (b *ChunkBackend) GetChunkSession(_ context.Context, userID, metaTextID int64) (*domain.ChunkSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[sessionKey{userID: userID, metaTextID: metaTextID}]
	if !ok {
		return nil, nil
	}
	out := session
	return &out, nil
}

// PutChunkSession creates or updates a session record.
func (b *ChunkBackend) PutChunkSession(_ context.Context, session domain.ChunkSession) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[sessionKey{userID: session.UserID, metaTextID: session.MetaTextID}] = session
	return nil
}

// ListCompressions returns all saved compressions for a chunk.
func (b *ChunkBackend) ListCompressions(_ context.Context, chunkID int64) ([]domain.ChunkCompression, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := b.compressions[chunkID]
	out := make([]domain.ChunkCompression, len(stored))
	copy(out, stored)
	return out, nil
}

// GenerateCompression produces a canned preview without saving it.
func (b *ChunkBackend) GenerateCompression(_ context.Context, chunkID int64, styleTitle string) (*domain.ChunkCompression, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chunk, _, _, ok := b.find(chunkID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.ChunkCompression{
		ChunkID:        chunkID,
		Title:          styleTitle,
		CompressedText: fmt.Sprintf("[%s] %s", styleTitle, chunk.Text),
	}, nil
}

// SaveCompression persists a compression, assigning it an ID.
func (b *ChunkBackend) SaveCompression(_ context.Context, compression domain.ChunkCompression) (*domain.ChunkCompression, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, _, _, ok := b.find(compression.ChunkID); !ok {
		return nil, domain.ErrNotFound
	}
	compression.ID = b.nextID
	b.nextID++
	b.compressions[compression.ChunkID] = append(b.compressions[compression.ChunkID], compression)

	out := compression
	return &out, nil
}

// find locates a chunk by ID. Caller must hold the lock.
func (b *ChunkBackend) find(id int64) (domain.Chunk, int64, int, bool) {
	for metaTextID, list := range b.chunks {
		for i, chunk := range list {
			if chunk.ID == id {
				return chunk, metaTextID, i, true
			}
		}
	}
	return domain.Chunk{}, 0, 0, false
}

// joinNonEmpty joins two annotation strings, skipping empties.
func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}
