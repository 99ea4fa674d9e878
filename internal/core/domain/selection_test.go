package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkTab_IsValid(t *testing.T) {
	for _, tab := range AllChunkTabs() {
		assert.True(t, tab.IsValid(), "tab %s should be valid", tab)
	}
	assert.False(t, ChunkTab("").IsValid())
	assert.False(t, ChunkTab("settings").IsValid())
}

func TestChunkTab_Description(t *testing.T) {
	assert.Equal(t, "Notes & Summary", TabNotesSummary.Description())
	assert.Equal(t, "Compression", TabCompression.Description())
	assert.Equal(t, unknownDescription, ChunkTab("bogus").Description())
}

func TestDefaultTabs(t *testing.T) {
	assert.Equal(t, []ChunkTab{TabNotesSummary}, DefaultTabs())
}

func TestSelection_HasActive(t *testing.T) {
	assert.False(t, Selection{}.HasActive())
	assert.True(t, Selection{ActiveChunkID: 42}.HasActive())
}

func TestSelection_HasTab(t *testing.T) {
	sel := Selection{Tabs: []ChunkTab{TabNotesSummary, TabAIImage}}
	assert.True(t, sel.HasTab(TabNotesSummary))
	assert.True(t, sel.HasTab(TabAIImage))
	assert.False(t, sel.HasTab(TabComparison))
	assert.False(t, Selection{}.HasTab(TabNotesSummary))
}
