package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [metatext-id]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

The TUI shows the open metatext's chunks, lets you move between them,
and edit annotations in the tool tabs. Without an argument it opens the
metatext remembered by 'metatext open'.

Controls:
  ↑/k, ↓/j - Move between chunks
  Enter     - Open chunk detail
  Tab       - Cycle tool tabs
  Esc       - Back
  q         - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	metaTextID, err := tuiMetaTextID(args)
	if err != nil {
		return err
	}

	ports := &tui.Ports{
		Workspace:    workspace,
		Compressions: compressionService,
		Auth:         authService,
	}

	app, err := tui.NewApp(ports, metaTextID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Set up context from command
	app.WithContext(cmd.Context())

	// Create and run the bubbletea program
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// tuiMetaTextID resolves the metatext to show: the argument when
// given, otherwise the one remembered by 'metatext open'.
func tuiMetaTextID(args []string) (int64, error) {
	if len(args) == 1 {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid metatext id: %s", args[0])
		}
		return id, nil
	}
	return currentMetaText()
}
