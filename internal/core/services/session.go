package services

import (
	"context"
	"sync"
	"time"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
	"github.com/metatext-labs/metatext-cli/internal/logger"
)

// backendWriteTimeout bounds the best-effort backend session write.
const backendWriteTimeout = 5 * time.Second

// SessionBridge reconciles the two "last active chunk" records: the
// authenticated backend session and the local selection store.
//
// Precedence at restore time: backend session first (authenticated
// users only), then the local store. Writes always go to the local
// store synchronously; the backend write is asynchronous best-effort,
// with failures logged rather than surfaced, since the local store is
// the client's own source of truth for its next load.
type SessionBridge struct {
	selections driven.SelectionStore
	sessionAPI driven.SessionAPI
	users      driven.CurrentUserProvider

	// pending tracks in-flight backend writes so Wait can drain them.
	pending sync.WaitGroup
}

// NewSessionBridge creates a session bridge. sessionAPI and users may
// be nil, in which case only the local store is consulted.
func NewSessionBridge(
	selections driven.SelectionStore,
	sessionAPI driven.SessionAPI,
	users driven.CurrentUserProvider,
) *SessionBridge {
	return &SessionBridge{
		selections: selections,
		sessionAPI: sessionAPI,
		users:      users,
	}
}

// Restore returns the chunk ID to reactivate for a metatext, or 0 when
// neither record yields one. Lookup failures fall through to the next
// source rather than failing the open.
func (b *SessionBridge) Restore(ctx context.Context, metaTextID int64) int64 {
	if user := b.currentUser(ctx); user != nil && b.sessionAPI != nil {
		session, err := b.sessionAPI.GetChunkSession(ctx, user.ID, metaTextID)
		switch {
		case err != nil:
			logger.Warn("backend session lookup for metatext %d failed: %v", metaTextID, err)
		case session != nil && session.LastActiveChunkID != 0:
			return session.LastActiveChunkID
		}
	}

	if b.selections == nil {
		return 0
	}
	chunkID, err := b.selections.LastActiveChunk(ctx, metaTextID)
	if err != nil {
		logger.Warn("local selection lookup for metatext %d failed: %v", metaTextID, err)
		return 0
	}
	return chunkID
}

// Save persists the selection locally and, for authenticated users,
// schedules a best-effort backend session write. Only the local write
// can fail the call.
func (b *SessionBridge) Save(ctx context.Context, metaTextID, chunkID int64) error {
	if b.selections != nil {
		if err := b.selections.SaveLastActiveChunk(ctx, metaTextID, chunkID); err != nil {
			return err
		}
	}

	user := b.currentUser(ctx)
	if user == nil || b.sessionAPI == nil {
		return nil
	}

	b.pending.Add(1)
	go func() {
		defer b.pending.Done()

		writeCtx, cancel := context.WithTimeout(context.Background(), backendWriteTimeout)
		defer cancel()

		err := b.sessionAPI.PutChunkSession(writeCtx, domain.ChunkSession{
			UserID:            user.ID,
			MetaTextID:        metaTextID,
			LastActiveChunkID: chunkID,
		})
		if err != nil {
			logger.Error("backend session write for metatext %d failed: %v", metaTextID, err)
		}
	}()

	return nil
}

// Clear removes the local selection for a metatext.
func (b *SessionBridge) Clear(ctx context.Context, metaTextID int64) error {
	if b.selections == nil {
		return nil
	}
	return b.selections.ClearMetaText(ctx, metaTextID)
}

// Wait blocks until all pending backend writes have finished.
// Called on shutdown so a quick exit doesn't drop the final write.
func (b *SessionBridge) Wait() {
	b.pending.Wait()
}

// currentUser resolves the signed-in user, treating lookup failures as
// anonymous.
func (b *SessionBridge) currentUser(ctx context.Context) *domain.User {
	if b.users == nil {
		return nil
	}
	user, err := b.users.CurrentUser(ctx)
	if err != nil {
		logger.Warn("current user lookup failed: %v", err)
		return nil
	}
	return user
}
