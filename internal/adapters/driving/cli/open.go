package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

var openCmd = &cobra.Command{
	Use:   "open [metatext-id]",
	Short: "Open a metatext for chunk commands",
	Long: `Open a metatext: fetch its chunks, restore the last active chunk,
and remember the metatext for subsequent chunk commands.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	if workspace == nil {
		return errors.New("workspace not configured")
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	metaTextID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || metaTextID <= 0 {
		return fmt.Errorf("invalid metatext id: %s", args[0])
	}

	ctx := cmd.Context()
	if err := workspace.Load(ctx, metaTextID); err != nil {
		return fmt.Errorf("failed to open metatext: %w", err)
	}

	if err := configStore.Set(driven.ConfigKeyCurrentMetaText, metaTextID); err != nil {
		return fmt.Errorf("failed to remember metatext: %w", err)
	}

	snapshot := workspace.Snapshot()
	cmd.Printf("Opened metatext %d: %d chunks\n", metaTextID, len(snapshot.Chunks))
	if snapshot.Selection.HasActive() {
		cmd.Printf("Active chunk: %d\n", snapshot.Selection.ActiveChunkID)
	}
	return nil
}
