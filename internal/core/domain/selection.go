package domain

const unknownDescription = "Unknown"

// ChunkTab identifies a tool panel that can be open for the active chunk.
type ChunkTab string

// Available tool tabs.
const (
	// TabNotesSummary is the combined notes and summary panel.
	TabNotesSummary ChunkTab = "notes-summary"

	// TabComparison is the AI comparison panel.
	TabComparison ChunkTab = "comparison"

	// TabAIImage is the generated image panel.
	TabAIImage ChunkTab = "ai-image"

	// TabCompression is the compression panel.
	TabCompression ChunkTab = "compression"

	// TabExplanation is the explanation panel.
	TabExplanation ChunkTab = "explanation"
)

// IsValid returns true if the tab is recognised.
func (t ChunkTab) IsValid() bool {
	switch t {
	case TabNotesSummary, TabComparison, TabAIImage, TabCompression, TabExplanation:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ChunkTab) String() string {
	return string(t)
}

// Description returns a human-readable description of the tab.
func (t ChunkTab) Description() string {
	switch t {
	case TabNotesSummary:
		return "Notes & Summary"
	case TabComparison:
		return "Comparison"
	case TabAIImage:
		return "AI Image"
	case TabCompression:
		return "Compression"
	case TabExplanation:
		return "Explanation"
	default:
		return unknownDescription
	}
}

// AllChunkTabs returns all tool tabs in display order.
func AllChunkTabs() []ChunkTab {
	return []ChunkTab{
		TabNotesSummary,
		TabComparison,
		TabAIImage,
		TabCompression,
		TabExplanation,
	}
}

// DefaultTabs returns the tab set applied when a chunk is auto-selected.
func DefaultTabs() []ChunkTab {
	return []ChunkTab{TabNotesSummary}
}

// Selection is the transient per-metatext focus state: which chunk is
// active and which tool tabs are open. A zero ActiveChunkID means no
// chunk is active.
type Selection struct {
	// ActiveChunkID references a chunk in the current chunk list, or 0.
	ActiveChunkID int64

	// Tabs are the open tool tabs for the active chunk.
	Tabs []ChunkTab
}

// HasActive returns true if a chunk is active.
func (s Selection) HasActive() bool {
	return s.ActiveChunkID != 0
}

// HasTab returns true if the given tab is open.
func (s Selection) HasTab(tab ChunkTab) bool {
	for _, t := range s.Tabs {
		if t == tab {
			return true
		}
	}
	return false
}
