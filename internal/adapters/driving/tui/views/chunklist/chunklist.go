// Package chunklist provides the chunk list view component for the TUI.
package chunklist

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/messages"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/styles"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
)

// excerptWords is how many leading words of a chunk appear in the list.
const excerptWords = 8

// View is the chunk list view.
type View struct {
	styles    *styles.Styles
	workspace driving.ChunkWorkspace

	snapshot     driving.WorkspaceSnapshot
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error

	spinner spinner.Model

	// splitting is true while the word-number prompt is open.
	splitting  bool
	splitInput textinput.Model
}

// NewView creates a new chunk list view.
func NewView(s *styles.Styles, workspace driving.ChunkWorkspace) *View {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	ti := textinput.New()
	ti.Placeholder = "word number"
	ti.CharLimit = 6
	ti.Width = 12

	return &View{
		styles:     s,
		workspace:  workspace,
		spinner:    sp,
		splitInput: ti,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// SetSnapshot replaces the rendered workspace state.
func (v *View) SetSnapshot(snap driving.WorkspaceSnapshot) {
	v.snapshot = snap
	if v.selected >= len(snap.Chunks) {
		v.selected = len(snap.Chunks) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
	// Follow the active chunk when the selection has not wandered.
	for i := range snap.Chunks {
		if snap.Chunks[i].ID == snap.Selection.ActiveChunkID {
			v.selected = i
			break
		}
	}
	v.adjustScroll()
}

// Update handles messages for the chunk list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case spinner.TickMsg:
		if !v.snapshot.Loading && !v.snapshot.Mutating {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.splitting {
			return v.handleSplitKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.WorkspaceReloaded:
		v.err = msg.Err
		return v, nil

	case messages.SplitCompleted:
		v.err = msg.Err
		return v, nil

	case messages.MergeCompleted:
		v.err = msg.Err
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.snapshot.Chunks)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if chunk := v.SelectedChunk(); chunk != nil {
			return v, v.activateChunk(chunk.ID)
		}
	case "s":
		if chunk := v.SelectedChunk(); chunk != nil {
			v.splitting = true
			v.splitInput.Reset()
			return v, v.splitInput.Focus()
		}
	case "m":
		if len(v.snapshot.Chunks) > 0 {
			return v, v.mergeChunk(v.selected)
		}
	case "r":
		return v, v.reload()
	}

	return v, nil
}

// handleSplitKeyMsg handles key presses while the split prompt is open.
func (v *View) handleSplitKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.splitting = false
		v.splitInput.Blur()
		return v, nil
	case "enter":
		v.splitting = false
		v.splitInput.Blur()
		word, err := strconv.Atoi(strings.TrimSpace(v.splitInput.Value()))
		if err != nil || word < 1 {
			v.err = fmt.Errorf("split needs a word number of at least 1")
			return v, nil
		}
		return v, v.splitChunk(v.selected, word)
	}

	var cmd tea.Cmd
	v.splitInput, cmd = v.splitInput.Update(msg)
	return v, cmd
}

// activateChunk returns a command that makes the chunk active and opens
// the detail view.
func (v *View) activateChunk(chunkID int64) tea.Cmd {
	return func() tea.Msg {
		err := v.workspace.SetActiveChunk(context.Background(), chunkID)
		return messages.ChunkActivated{ChunkID: chunkID, Err: err}
	}
}

// splitChunk returns a command that splits the chunk after the given
// 1-based word number.
func (v *View) splitChunk(index, wordNumber int) tea.Cmd {
	return func() tea.Msg {
		err := v.workspace.SplitAt(context.Background(), index, wordNumber-1)
		return messages.SplitCompleted{Err: err}
	}
}

// mergeChunk returns a command that merges the chunk with its successor.
func (v *View) mergeChunk(index int) tea.Cmd {
	return func() tea.Msg {
		err := v.workspace.Merge(context.Background(), index)
		return messages.MergeCompleted{Err: err}
	}
}

// reload returns a command that refetches the chunk list.
func (v *View) reload() tea.Cmd {
	return func() tea.Msg {
		err := v.workspace.Reload(context.Background())
		return messages.WorkspaceReloaded{Err: err}
	}
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, separator, help, and padding
	reserved := 8
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the chunk list.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Metatext %d (%d chunks)", v.snapshot.MetaTextID, len(v.snapshot.Chunks))
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.snapshot.Loading || v.snapshot.Mutating {
		b.WriteString(v.spinner.View())
		b.WriteString(v.styles.Muted.Render(" Working..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.snapshot.LastError != "" {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.snapshot.LastError)))
		b.WriteString("\n\n")
	}

	if len(v.snapshot.Chunks) == 0 {
		b.WriteString(v.styles.Muted.Render("This metatext has no chunks."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.splitting {
		b.WriteString(v.renderSplitPrompt())
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.snapshot.Chunks) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderChunk(i, &v.snapshot.Chunks[i]))
		b.WriteString("\n")
	}

	if len(v.snapshot.Chunks) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.snapshot.Chunks)),
			len(v.snapshot.Chunks))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderChunk renders a single chunk line.
func (v *View) renderChunk(index int, chunk *domain.Chunk) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	active := " "
	if chunk.ID == v.snapshot.Selection.ActiveChunkID {
		active = "*"
	}

	annotated := ""
	if chunk.Notes != "" || chunk.Summary != "" {
		annotated = " [annotated]"
	}

	line := fmt.Sprintf("%s%s %3d  %s (%d words)%s",
		indicator, active, index+1, excerpt(chunk.Text), chunk.WordCount(), annotated)

	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

// renderSplitPrompt renders the word-number prompt for a split.
func (v *View) renderSplitPrompt() string {
	var b strings.Builder

	chunk := v.SelectedChunk()
	if chunk != nil {
		b.WriteString(v.styles.Subtitle.Render(
			fmt.Sprintf("Split chunk %d after word:", v.selected+1)))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render(excerpt(chunk.Text)))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.InputField.Render(v.splitInput.View()))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] split  [esc] cancel"))

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] open  [s] split  [m] merge  [r] reload  [q] quit")
}

// excerpt returns the first few words of the chunk text.
func excerpt(text string) string {
	words := strings.Fields(text)
	if len(words) <= excerptWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:excerptWords], " ") + "..."
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// SelectedIndex returns the currently selected chunk index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedChunk returns the currently selected chunk, or nil.
func (v *View) SelectedChunk() *domain.Chunk {
	if v.selected < len(v.snapshot.Chunks) {
		return &v.snapshot.Chunks[v.selected]
	}
	return nil
}

// IsSplitting returns true if the split prompt is open.
func (v *View) IsSplitting() bool {
	return v.splitting
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
