package driven

import (
	"context"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// ChunkAPI is the backend contract for chunk reads and mutations.
// All chunk creation and destruction happens behind this interface;
// the client only reconciles its local list with what comes back.
type ChunkAPI interface {
	// ListChunks returns all chunks for a metatext, in position order.
	ListChunks(ctx context.Context, metaTextID int64) ([]domain.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	GetChunk(ctx context.Context, id int64) (*domain.Chunk, error)

	// UpdateChunk writes the whole chunk record and returns the stored version.
	UpdateChunk(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error)

	// SplitChunk splits a chunk after the given word index (0-based count
	// of words kept in the first half). Returns exactly two chunks: the
	// updated original followed by the new second half.
	SplitChunk(ctx context.Context, id int64, wordIndex int) ([]domain.Chunk, error)

	// CombineChunks merges two adjacent chunks into one. The combined
	// chunk keeps the first chunk's identity; the second is destroyed.
	CombineChunks(ctx context.Context, firstID, secondID int64) (*domain.Chunk, error)
}

// CompressionAPI is the backend contract for chunk compressions.
type CompressionAPI interface {
	// ListCompressions returns all saved compressions for a chunk.
	ListCompressions(ctx context.Context, chunkID int64) ([]domain.ChunkCompression, error)

	// GenerateCompression produces a preview compression in the given
	// style without saving it. The returned record has no ID.
	GenerateCompression(ctx context.Context, chunkID int64, styleTitle string) (*domain.ChunkCompression, error)

	// SaveCompression persists a compression and returns the stored version.
	SaveCompression(ctx context.Context, compression domain.ChunkCompression) (*domain.ChunkCompression, error)
}

// SessionAPI is the backend contract for per-user chunk sessions.
// Writes are best-effort: callers log failures but never surface them,
// since the local SelectionStore remains the client's source of truth.
type SessionAPI interface {
	// GetChunkSession retrieves the session for a user and metatext.
	// Returns nil and no error if no session exists.
	GetChunkSession(ctx context.Context, userID, metaTextID int64) (*domain.ChunkSession, error)

	// PutChunkSession creates or updates a session record.
	PutChunkSession(ctx context.Context, session domain.ChunkSession) error
}
