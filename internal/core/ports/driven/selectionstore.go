package driven

import "context"

// SelectionStore persists the last active chunk per metatext on the
// local machine. It is the client-side source of truth for selection
// restore; backend sessions only take precedence when present.
//
// Entries are keyed by metatext ID, so one metatext's selection can
// never bleed into another's.
type SelectionStore interface {
	// LastActiveChunk returns the stored chunk ID for a metatext.
	// Returns 0 and no error if nothing is stored.
	LastActiveChunk(ctx context.Context, metaTextID int64) (int64, error)

	// SaveLastActiveChunk stores the chunk ID for a metatext,
	// replacing any previous value.
	SaveLastActiveChunk(ctx context.Context, metaTextID, chunkID int64) error

	// ClearMetaText removes the stored selection for a metatext.
	ClearMetaText(ctx context.Context, metaTextID int64) error
}
