package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/components/status"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/keymap"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/messages"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/styles"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/views/chunkdetail"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui/views/chunklist"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// metaTextID is the metatext opened in this session.
	metaTextID int64

	// styles holds the TUI styles.
	styles *styles.Styles

	// chunkListView is the chunk list view component.
	chunkListView *chunklist.View

	// chunkDetailView is the chunk detail view component.
	chunkDetailView *chunkdetail.View

	// statusBar shows workspace state and keybinding hints.
	statusBar *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application for one metatext.
func NewApp(ports *Ports, metaTextID int64) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if metaTextID <= 0 {
		return nil, ErrInvalidMetaTextID
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		metaTextID:      metaTextID,
		styles:          s,
		chunkListView:   chunklist.NewView(s, ports.Workspace),
		chunkDetailView: chunkdetail.NewView(s, ports.Workspace, ports.Compressions),
		statusBar:       status.NewBar(s, km),
		currentView:     messages.ViewChunkList,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	a.statusBar.SetState(status.StateLoading)
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("metatext"),
		a.chunkListView.Init(),
		a.loadWorkspace(),
		a.loadIdentity(),
	)
}

// loadWorkspace returns a command that opens the metatext.
func (a *App) loadWorkspace() tea.Cmd {
	return func() tea.Msg {
		err := a.ports.Workspace.Load(a.ctx, a.metaTextID)
		return messages.WorkspaceLoaded{MetaTextID: a.metaTextID, Err: err}
	}
}

// loadIdentity returns a command that resolves the signed-in user.
func (a *App) loadIdentity() tea.Cmd {
	return func() tea.Msg {
		if a.ports.Auth == nil {
			return messages.IdentityLoaded{}
		}
		user, err := a.ports.Auth.Status(a.ctx)
		return messages.IdentityLoaded{User: user, Err: err}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.chunkListView.SetDimensions(msg.Width, msg.Height)
		a.chunkDetailView.SetDimensions(msg.Width, msg.Height)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.WorkspaceLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.syncSnapshot()
		return a, nil

	case messages.WorkspaceReloaded, messages.SplitCompleted, messages.MergeCompleted:
		a.chunkListView, cmd = a.chunkListView.Update(msg)
		a.syncSnapshot()
		return a, cmd

	case messages.ChunkActivated:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.syncSnapshot()
		a.currentView = messages.ViewChunkDetail
		chunk, index := a.activeChunk()
		return a, a.chunkDetailView.SetChunk(chunk, index)

	case messages.FieldSaved:
		a.chunkDetailView, cmd = a.chunkDetailView.Update(msg)
		a.syncSnapshot()
		return a, cmd

	case messages.CompressionsLoaded, messages.CompressionStylesLoaded,
		messages.CompressionPreviewed, messages.CompressionSaved:
		a.chunkDetailView, cmd = a.chunkDetailView.Update(msg)
		return a, cmd

	case messages.IdentityLoaded:
		if msg.Err == nil && msg.User != nil {
			a.statusBar.SetIdentity(msg.User.Email)
		}
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (spinner ticks and the like) to the active view.
	switch a.currentView {
	case messages.ViewChunkList:
		a.chunkListView, cmd = a.chunkListView.Update(msg)
	case messages.ViewChunkDetail:
		a.chunkDetailView, cmd = a.chunkDetailView.Update(msg)
	case messages.ViewHelp:
		// Help view has no message handling.
	}

	return a, cmd
}

// handleKeyMsg routes key presses to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewChunkList:
		if !a.chunkListView.IsSplitting() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "?":
				a.currentView = messages.ViewHelp
				return a, nil
			}
		}
		a.chunkListView, cmd = a.chunkListView.Update(msg)
		return a, cmd

	case messages.ViewChunkDetail:
		if !a.chunkDetailView.IsEditing() {
			switch msg.String() {
			case "esc":
				a.currentView = messages.ViewChunkList
				a.syncSnapshot()
				return a, nil
			case "q":
				return a, tea.Quit
			case "?":
				a.currentView = messages.ViewHelp
				return a, nil
			}
		}
		a.chunkDetailView, cmd = a.chunkDetailView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		if msg.String() == "esc" || msg.String() == "q" {
			a.currentView = messages.ViewChunkList
		}
		return a, nil
	}

	return a, nil
}

// syncSnapshot pushes the current workspace state into the views and
// status bar.
func (a *App) syncSnapshot() {
	snap := a.ports.Workspace.Snapshot()
	a.chunkListView.SetSnapshot(snap)
	a.statusBar.SetChunkCount(len(snap.Chunks))

	switch {
	case snap.Loading:
		a.statusBar.SetState(status.StateLoading)
	case snap.Mutating:
		a.statusBar.SetState(status.StateMutating)
	case snap.LastError != "":
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(snap.LastError)
	default:
		a.statusBar.SetState(status.StateReady)
		a.statusBar.SetMessage("")
	}

	if a.currentView == messages.ViewChunkDetail {
		if chunk, _ := a.activeChunk(); chunk != nil {
			a.chunkDetailView.RefreshChunk(chunk)
		}
	}
}

// activeChunk returns a copy of the active chunk and its list index.
func (a *App) activeChunk() (*domain.Chunk, int) {
	snap := a.ports.Workspace.Snapshot()
	for i := range snap.Chunks {
		if snap.Chunks[i].ID == snap.Selection.ActiveChunkID {
			chunk := snap.Chunks[i]
			return &chunk, i
		}
	}
	return nil, 0
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewChunkList:
		body = a.chunkListView.View()
	case messages.ViewChunkDetail:
		body = a.chunkDetailView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.chunkListView.View()
	}

	return body + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Chunk list:
  j/k, ↑/↓    Navigate chunks
  enter       Open chunk
  s           Split chunk (asks for a word number)
  m           Merge chunk with the next one
  r           Reload from the backend
  q           Quit

Chunk detail:
  tab         Next tool tab
  shift+tab   Previous tool tab
  n / s       Edit notes / summary (Notes & Summary tab)
  e           Edit comparison (Comparison tab)
  ↑/↓, g, w   Pick style, generate, save (Compression tab)
  esc         Back to the chunk list

Editor:
  ctrl+s      Save
  esc         Discard

[esc] back`
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chunkListView.SetDimensions(width, height)
	a.chunkDetailView.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
}
