// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChunkList is the chunk list for the open metatext.
	ViewChunkList ViewType = iota
	// ViewChunkDetail shows a single chunk with its tool tabs.
	ViewChunkDetail
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChunkList:
		return "chunk_list"
	case ViewChunkDetail:
		return "chunk_detail"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// WorkspaceLoaded signals that the initial metatext load finished.
type WorkspaceLoaded struct {
	MetaTextID int64
	Err        error
}

// WorkspaceReloaded signals that a chunk-list refetch finished.
type WorkspaceReloaded struct {
	Err error
}

// ChunkActivated signals that the active chunk changed.
type ChunkActivated struct {
	ChunkID int64
	Err     error
}

// FieldSaved signals that a field edit was applied to the workspace.
type FieldSaved struct {
	ChunkID int64
	Field   domain.ChunkField
	Err     error
}

// SplitCompleted signals that a chunk split finished.
type SplitCompleted struct {
	Err error
}

// MergeCompleted signals that a chunk merge finished.
type MergeCompleted struct {
	Err error
}

// CompressionStylesLoaded carries the available compression styles.
type CompressionStylesLoaded struct {
	Styles []domain.CompressionStyle
	Err    error
}

// CompressionsLoaded carries the saved compressions for a chunk.
type CompressionsLoaded struct {
	ChunkID      int64
	Compressions []domain.ChunkCompression
	Err          error
}

// CompressionPreviewed carries a generated, unsaved compression.
type CompressionPreviewed struct {
	ChunkID     int64
	Compression *domain.ChunkCompression
	Err         error
}

// CompressionSaved signals that a previewed compression was persisted.
type CompressionSaved struct {
	Compression *domain.ChunkCompression
	Err         error
}

// IdentityLoaded carries the signed-in user, or nil when anonymous.
type IdentityLoaded struct {
	User *domain.User
	Err  error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
