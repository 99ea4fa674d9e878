// Package memory provides in-memory implementations of the driven
// storage and backend ports, used by tests and by offline demo mode.
package memory

import (
	"context"
	"sync"

	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

// Ensure SelectionStore implements the interface.
var _ driven.SelectionStore = (*SelectionStore)(nil)

// SelectionStore is an in-memory implementation of driven.SelectionStore.
type SelectionStore struct {
	mu         sync.RWMutex
	selections map[int64]int64
}

// NewSelectionStore creates a new in-memory selection store.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		selections: make(map[int64]int64),
	}
}

// LastActiveChunk returns the stored chunk ID for a metatext, or 0.
func (s *SelectionStore) LastActiveChunk(_ context.Context, metaTextID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selections[metaTextID], nil
}

// SaveLastActiveChunk stores the chunk ID for a metatext.
func (s *SelectionStore) SaveLastActiveChunk(_ context.Context, metaTextID, chunkID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[metaTextID] = chunkID
	return nil
}

// ClearMetaText removes the stored selection for a metatext.
func (s *SelectionStore) ClearMetaText(_ context.Context, metaTextID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, metaTextID)
	return nil
}
