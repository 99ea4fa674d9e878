package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var compressionCmd = &cobra.Command{
	Use:   "compression",
	Short: "Generate and manage chunk compressions",
	Long: `Compressions are alternate renderings of a chunk's text in a named
style. Preview a compression without saving, then save the ones worth
keeping.`,
}

var compressionStylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List available compression styles",
	RunE:  runCompressionStyles,
}

var compressionListCmd = &cobra.Command{
	Use:   "list [chunk-number]",
	Short: "List saved compressions for a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompressionList,
}

var compressionPreviewCmd = &cobra.Command{
	Use:   "preview [chunk-number]",
	Short: "Generate a compression without saving it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompressionPreview,
}

var compressionSaveCmd = &cobra.Command{
	Use:   "save [chunk-number]",
	Short: "Generate a compression and save it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompressionSave,
}

// compressionStyle is the style flag shared by preview and save.
var compressionStyle string

func init() {
	for _, cmd := range []*cobra.Command{compressionPreviewCmd, compressionSaveCmd} {
		cmd.Flags().StringVarP(&compressionStyle, "style", "s", "", "Compression style title")
		_ = cmd.MarkFlagRequired("style")
	}

	compressionCmd.AddCommand(compressionStylesCmd)
	compressionCmd.AddCommand(compressionListCmd)
	compressionCmd.AddCommand(compressionPreviewCmd)
	compressionCmd.AddCommand(compressionSaveCmd)
	rootCmd.AddCommand(compressionCmd)
}

// chunkIDFromArg resolves a 1-based chunk number to the chunk's ID.
func chunkIDFromArg(cmd *cobra.Command, arg string) (int64, error) {
	if err := loadOpenMetaText(cmd.Context()); err != nil {
		return 0, err
	}
	snapshot := workspace.Snapshot()
	idx, err := chunkNumber(arg, len(snapshot.Chunks))
	if err != nil {
		return 0, err
	}
	return snapshot.Chunks[idx].ID, nil
}

func runCompressionStyles(cmd *cobra.Command, _ []string) error {
	if compressionService == nil {
		return errors.New("compression service not configured")
	}

	styles, err := compressionService.Styles()
	if err != nil {
		return fmt.Errorf("failed to list styles: %w", err)
	}
	if len(styles) == 0 {
		cmd.Println("No compression styles available.")
		return nil
	}

	cmd.Println("Available compression styles:")
	cmd.Println()
	for _, style := range styles {
		cmd.Printf("  %s\n", style.Title)
		cmd.Printf("    %s\n", style.Description)
	}
	return nil
}

func runCompressionList(cmd *cobra.Command, args []string) error {
	if compressionService == nil {
		return errors.New("compression service not configured")
	}

	chunkID, err := chunkIDFromArg(cmd, args[0])
	if err != nil {
		return err
	}

	compressions, err := compressionService.List(cmd.Context(), chunkID)
	if err != nil {
		return fmt.Errorf("failed to list compressions: %w", err)
	}
	if len(compressions) == 0 {
		cmd.Printf("Chunk %s has no saved compressions.\n", args[0])
		return nil
	}

	cmd.Printf("Compressions for chunk %s:\n\n", args[0])
	for i := range compressions {
		cmd.Printf("  %s\n", compressions[i].Title)
		cmd.Printf("    %s\n", excerpt(compressions[i].CompressedText, 12))
		cmd.Println()
	}
	return nil
}

func runCompressionPreview(cmd *cobra.Command, args []string) error {
	if compressionService == nil {
		return errors.New("compression service not configured")
	}

	chunkID, err := chunkIDFromArg(cmd, args[0])
	if err != nil {
		return err
	}

	compression, err := compressionService.Preview(cmd.Context(), chunkID, compressionStyle)
	if err != nil {
		return fmt.Errorf("failed to generate compression: %w", err)
	}

	cmd.Printf("%s (preview, not saved):\n\n", compression.Title)
	cmd.Println(compression.CompressedText)
	return nil
}

func runCompressionSave(cmd *cobra.Command, args []string) error {
	if compressionService == nil {
		return errors.New("compression service not configured")
	}

	chunkID, err := chunkIDFromArg(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	compression, err := compressionService.Preview(ctx, chunkID, compressionStyle)
	if err != nil {
		return fmt.Errorf("failed to generate compression: %w", err)
	}

	stored, err := compressionService.Save(ctx, *compression)
	if err != nil {
		return fmt.Errorf("failed to save compression: %w", err)
	}

	cmd.Printf("Saved %q compression for chunk %s.\n\n", stored.Title, args[0])
	cmd.Println(stored.CompressedText)
	return nil
}
