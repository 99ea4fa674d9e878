// Package chunkdetail provides the chunk detail view component for the TUI.
// It renders one chunk with its tool tabs: notes & summary, comparison,
// AI images, compressions, and explanation.
package chunkdetail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/messages"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/styles"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
)

// View is the chunk detail view.
type View struct {
	styles       *styles.Styles
	workspace    driving.ChunkWorkspace
	compressions driving.CompressionService

	chunk      *domain.Chunk
	chunkIndex int
	tabs       []domain.ChunkTab
	activeTab  int

	viewport viewport.Model

	// editing is true while the textarea editor is open.
	editing   bool
	editField domain.ChunkField
	editor    textarea.Model

	saved        []domain.ChunkCompression
	compStyles   []domain.CompressionStyle
	styleIndex   int
	preview      *domain.ChunkCompression
	previewBusy  bool
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new chunk detail view.
func NewView(s *styles.Styles, workspace driving.ChunkWorkspace, compressions driving.CompressionService) *View {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	return &View{
		styles:       s,
		workspace:    workspace,
		compressions: compressions,
		tabs:         domain.AllChunkTabs(),
		editor:       ta,
		viewport:     viewport.New(0, 0),
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetChunk sets the chunk to display and loads its tool data.
func (v *View) SetChunk(chunk *domain.Chunk, index int) tea.Cmd {
	v.chunk = chunk
	v.chunkIndex = index
	v.activeTab = 0
	v.editing = false
	v.preview = nil
	v.saved = nil
	v.err = nil
	v.refreshContent()

	if chunk == nil {
		return nil
	}
	return tea.Batch(v.loadCompressions(chunk.ID), v.loadStyles())
}

// RefreshChunk replaces the displayed chunk record, preserving tab state.
func (v *View) RefreshChunk(chunk *domain.Chunk) {
	v.chunk = chunk
	v.refreshContent()
}

// Update handles messages for the chunk detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditorKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.CompressionsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else if v.chunk != nil && msg.ChunkID == v.chunk.ID {
			v.saved = msg.Compressions
			v.err = nil
		}
		v.refreshContent()
		return v, nil

	case messages.CompressionStylesLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.compStyles = msg.Styles
			if v.styleIndex >= len(v.compStyles) {
				v.styleIndex = 0
			}
		}
		v.refreshContent()
		return v, nil

	case messages.CompressionPreviewed:
		v.previewBusy = false
		if msg.Err != nil {
			v.err = msg.Err
		} else if v.chunk != nil && msg.ChunkID == v.chunk.ID {
			v.preview = msg.Compression
			v.err = nil
		}
		v.refreshContent()
		return v, nil

	case messages.CompressionSaved:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.preview = nil
			if msg.Compression != nil {
				v.saved = append(v.saved, *msg.Compression)
			}
			v.err = nil
		}
		v.refreshContent()
		return v, nil

	case messages.FieldSaved:
		if msg.Err != nil {
			v.err = msg.Err
		}
		v.refreshContent()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in browse mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab", "l", "right":
		v.activeTab = (v.activeTab + 1) % len(v.tabs)
		v.refreshContent()
		return v, v.persistTabs()

	case "shift+tab", "h", "left":
		v.activeTab = (v.activeTab + len(v.tabs) - 1) % len(v.tabs)
		v.refreshContent()
		return v, v.persistTabs()

	case "up", "k":
		if v.currentTab() == domain.TabCompression && len(v.compStyles) > 0 {
			v.styleIndex = (v.styleIndex + len(v.compStyles) - 1) % len(v.compStyles)
			v.refreshContent()
			return v, nil
		}
		v.viewport.LineUp(1)
		return v, nil

	case "down", "j":
		if v.currentTab() == domain.TabCompression && len(v.compStyles) > 0 {
			v.styleIndex = (v.styleIndex + 1) % len(v.compStyles)
			v.refreshContent()
			return v, nil
		}
		v.viewport.LineDown(1)
		return v, nil

	case "pgup", "ctrl+u":
		v.viewport.HalfViewUp()
		return v, nil

	case "pgdown", "ctrl+d":
		v.viewport.HalfViewDown()
		return v, nil

	case "n":
		if v.currentTab() == domain.TabNotesSummary {
			return v, v.openEditor(domain.FieldNotes)
		}

	case "s":
		if v.currentTab() == domain.TabNotesSummary {
			return v, v.openEditor(domain.FieldSummary)
		}

	case "e":
		if v.currentTab() == domain.TabComparison {
			return v, v.openEditor(domain.FieldComparison)
		}

	case "g":
		if v.currentTab() == domain.TabCompression && v.chunk != nil && len(v.compStyles) > 0 {
			v.previewBusy = true
			return v, v.generatePreview(v.chunk.ID, v.compStyles[v.styleIndex].Title)
		}

	case "w":
		if v.currentTab() == domain.TabCompression && v.preview != nil {
			return v, v.savePreview(*v.preview)
		}
	}

	return v, nil
}

// handleEditorKeyMsg handles key presses while the editor is open.
func (v *View) handleEditorKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.editing = false
		v.editor.Blur()
		v.refreshContent()
		return v, nil
	case "ctrl+s":
		v.editing = false
		v.editor.Blur()
		value := v.editor.Value()
		if v.chunk == nil {
			return v, nil
		}
		// Reflect the edit locally right away; the workspace schedules
		// the backend write.
		_ = v.editField.Apply(v.chunk, value)
		v.refreshContent()
		return v, v.saveField(v.chunk.ID, v.editField, value)
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

// openEditor opens the textarea editor on the given field.
func (v *View) openEditor(field domain.ChunkField) tea.Cmd {
	if v.chunk == nil {
		return nil
	}

	value := ""
	switch field {
	case domain.FieldNotes:
		value = v.chunk.Notes
	case domain.FieldSummary:
		value = v.chunk.Summary
	case domain.FieldComparison:
		value = v.chunk.Comparison
	}

	v.editing = true
	v.editField = field
	v.editor.SetValue(value)
	return v.editor.Focus()
}

// persistTabs records the focused tab in the workspace selection.
func (v *View) persistTabs() tea.Cmd {
	tab := v.currentTab()
	return func() tea.Msg {
		if err := v.workspace.SetActiveTabs([]domain.ChunkTab{tab}); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

// saveField returns a command that applies a field edit.
func (v *View) saveField(chunkID int64, field domain.ChunkField, value string) tea.Cmd {
	return func() tea.Msg {
		err := v.workspace.UpdateField(context.Background(), chunkID, field, value)
		return messages.FieldSaved{ChunkID: chunkID, Field: field, Err: err}
	}
}

// loadCompressions returns a command that loads saved compressions.
func (v *View) loadCompressions(chunkID int64) tea.Cmd {
	return func() tea.Msg {
		saved, err := v.compressions.List(context.Background(), chunkID)
		return messages.CompressionsLoaded{ChunkID: chunkID, Compressions: saved, Err: err}
	}
}

// loadStyles returns a command that loads the compression styles.
func (v *View) loadStyles() tea.Cmd {
	return func() tea.Msg {
		loaded, err := v.compressions.Styles()
		return messages.CompressionStylesLoaded{Styles: loaded, Err: err}
	}
}

// generatePreview returns a command that generates an unsaved compression.
func (v *View) generatePreview(chunkID int64, styleTitle string) tea.Cmd {
	return func() tea.Msg {
		preview, err := v.compressions.Preview(context.Background(), chunkID, styleTitle)
		return messages.CompressionPreviewed{ChunkID: chunkID, Compression: preview, Err: err}
	}
}

// savePreview returns a command that persists a previewed compression.
func (v *View) savePreview(compression domain.ChunkCompression) tea.Cmd {
	return func() tea.Msg {
		stored, err := v.compressions.Save(context.Background(), compression)
		return messages.CompressionSaved{Compression: stored, Err: err}
	}
}

// currentTab returns the focused tool tab.
func (v *View) currentTab() domain.ChunkTab {
	return v.tabs[v.activeTab]
}

// refreshContent re-renders the viewport for the focused tab.
func (v *View) refreshContent() {
	v.viewport.SetContent(v.renderTabContent())
	v.viewport.GotoTop()
}

// View renders the chunk detail view.
func (v *View) View() string {
	var b strings.Builder

	if v.chunk == nil {
		b.WriteString(v.styles.Muted.Render("No chunk selected."))
		return b.String()
	}

	b.WriteString(v.styles.Title.Render(
		fmt.Sprintf("Chunk %d (%d words)", v.chunkIndex+1, v.chunk.WordCount())))
	b.WriteString("\n\n")
	b.WriteString(v.renderTabBar())
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.editing {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Editing %s", v.editField)))
		b.WriteString("\n")
		b.WriteString(v.styles.InputField.Render(v.editor.View()))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[ctrl+s] save  [esc] cancel"))
		return b.String()
	}

	b.WriteString(v.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderTabBar renders the tool tab bar.
func (v *View) renderTabBar() string {
	parts := make([]string, 0, len(v.tabs))
	for i, tab := range v.tabs {
		if i == v.activeTab {
			parts = append(parts, v.styles.ActiveTab.Render(tab.Description()))
		} else {
			parts = append(parts, v.styles.Tab.Render(tab.Description()))
		}
	}
	return strings.Join(parts, " ")
}

// renderTabContent renders the body of the focused tab.
func (v *View) renderTabContent() string {
	if v.chunk == nil {
		return ""
	}

	var b strings.Builder

	switch v.currentTab() {
	case domain.TabNotesSummary:
		b.WriteString(v.styles.Normal.Render(v.chunk.Text))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render("Notes"))
		b.WriteString("\n")
		b.WriteString(v.renderOptional(v.chunk.Notes, "No notes yet. Press n to add some."))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(v.renderOptional(v.chunk.Summary, "No summary yet. Press s to write one."))

	case domain.TabComparison:
		b.WriteString(v.styles.Subtitle.Render("Comparison"))
		b.WriteString("\n")
		b.WriteString(v.renderOptional(v.chunk.Comparison, "No comparison yet. Press e to write one."))

	case domain.TabAIImage:
		b.WriteString(v.styles.Subtitle.Render("AI Images"))
		b.WriteString("\n")
		if len(v.chunk.AIImages) == 0 {
			b.WriteString(v.styles.Muted.Render("No images generated for this chunk."))
		}
		for _, img := range v.chunk.AIImages {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("• %s", img.Prompt)))
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s", img.Path)))
			b.WriteString("\n")
		}

	case domain.TabCompression:
		b.WriteString(v.renderCompressionTab())

	case domain.TabExplanation:
		b.WriteString(v.styles.Subtitle.Render("Explanation"))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Explanations are generated on demand in the web app."))
	}

	return b.String()
}

// renderCompressionTab renders styles, the preview, and saved compressions.
func (v *View) renderCompressionTab() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Styles"))
	b.WriteString("\n")
	if len(v.compStyles) == 0 {
		b.WriteString(v.styles.Muted.Render("No compression styles available."))
		b.WriteString("\n")
	}
	for i, style := range v.compStyles {
		indicator := "  "
		if i == v.styleIndex {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%s", indicator, style.Title)
		if i == v.styleIndex {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.previewBusy {
		b.WriteString(v.styles.Muted.Render("Generating..."))
		b.WriteString("\n")
	} else if v.preview != nil {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Preview (%s)", v.preview.Title)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(v.preview.CompressedText))
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render("Unsaved. Press w to keep it."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Saved (%d)", len(v.saved))))
	b.WriteString("\n")
	for _, comp := range v.saved {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("• %s: %s", comp.Title, comp.CompressedText)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderOptional renders a value or a muted placeholder.
func (v *View) renderOptional(value, placeholder string) string {
	if value == "" {
		return v.styles.Muted.Render(placeholder)
	}
	return v.styles.Normal.Render(value)
}

// renderHelp renders the help footer for the focused tab.
func (v *View) renderHelp() string {
	common := "[tab] switch tool  [esc] back"
	switch v.currentTab() {
	case domain.TabNotesSummary:
		return v.styles.Help.Render("[n] edit notes  [s] edit summary  " + common)
	case domain.TabComparison:
		return v.styles.Help.Render("[e] edit comparison  " + common)
	case domain.TabCompression:
		return v.styles.Help.Render("[↑/↓] style  [g] generate  [w] save  " + common)
	default:
		return v.styles.Help.Render("[↑/↓] scroll  " + common)
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	vpWidth := width - 2
	if vpWidth < 20 {
		vpWidth = 20
	}
	vpHeight := height - 10
	if vpHeight < 3 {
		vpHeight = 3
	}
	v.viewport.Width = vpWidth
	v.viewport.Height = vpHeight

	editorWidth := vpWidth - 4
	if editorWidth < 20 {
		editorWidth = 20
	}
	v.editor.SetWidth(editorWidth)
	v.editor.SetHeight(min(10, vpHeight))
	v.refreshContent()
}

// Chunk returns the displayed chunk.
func (v *View) Chunk() *domain.Chunk {
	return v.chunk
}

// ActiveTab returns the focused tool tab.
func (v *View) ActiveTab() domain.ChunkTab {
	return v.currentTab()
}

// IsEditing returns true if the editor is open.
func (v *View) IsEditing() bool {
	return v.editing
}

// StyleIndex returns the selected compression style index.
func (v *View) StyleIndex() int {
	return v.styleIndex
}

// Preview returns the unsaved compression preview, or nil.
func (v *View) Preview() *domain.ChunkCompression {
	return v.preview
}

// SavedCompressions returns the saved compressions for the chunk.
func (v *View) SavedCompressions() []domain.ChunkCompression {
	return v.saved
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
