package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Work with the open metatext's chunks",
	Long: `List, inspect, annotate, split, and merge the chunks of the
currently open metatext. Chunks are addressed by their list number as
printed by 'chunk list'.`,
}

var chunkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chunks of the open metatext",
	RunE:  runChunkList,
}

var chunkShowCmd = &cobra.Command{
	Use:   "show [chunk-number]",
	Short: "Print a chunk with its annotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkShow,
}

var chunkAnnotateCmd = &cobra.Command{
	Use:   "annotate [chunk-number]",
	Short: "Set an annotation field on a chunk",
	Long: `Set the notes, summary, or comparison field of a chunk. The write
is sent to the backend as a whole-record update.

Examples:
  metatext chunk annotate 2 --field notes --value "key passage"
  metatext chunk annotate 2 --field summary --value "the hero departs"`,
	Args: cobra.ExactArgs(1),
	RunE: runChunkAnnotate,
}

var chunkSplitCmd = &cobra.Command{
	Use:   "split [chunk-number] [word-number]",
	Short: "Split a chunk after the given word",
	Long: `Split a chunk into two. The first part keeps the words up to and
including the given word number; the rest becomes a new chunk placed
directly after it.`,
	Args: cobra.ExactArgs(2),
	RunE: runChunkSplit,
}

var chunkMergeCmd = &cobra.Command{
	Use:   "merge [chunk-number]",
	Short: "Merge a chunk with the one after it",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkMerge,
}

// Flags for chunk annotate.
var (
	annotateField string
	annotateValue string
)

func init() {
	chunkAnnotateCmd.Flags().StringVarP(&annotateField, "field", "f", "", "Field to set: notes, summary, or comparison")
	chunkAnnotateCmd.Flags().StringVar(&annotateValue, "value", "", "New field value")
	_ = chunkAnnotateCmd.MarkFlagRequired("field")

	chunkCmd.AddCommand(chunkListCmd)
	chunkCmd.AddCommand(chunkShowCmd)
	chunkCmd.AddCommand(chunkAnnotateCmd)
	chunkCmd.AddCommand(chunkSplitCmd)
	chunkCmd.AddCommand(chunkMergeCmd)
	rootCmd.AddCommand(chunkCmd)
}

// loadOpenMetaText loads the remembered metatext into the workspace.
func loadOpenMetaText(ctx context.Context) error {
	if workspace == nil {
		return errors.New("workspace not configured")
	}
	metaTextID, err := currentMetaText()
	if err != nil {
		return err
	}
	if err := workspace.Load(ctx, metaTextID); err != nil {
		return fmt.Errorf("failed to load metatext %d: %w", metaTextID, err)
	}
	return nil
}

// chunkNumber parses a 1-based chunk number against the loaded list
// and returns the 0-based index.
func chunkNumber(arg string, total int) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid chunk number: %s", arg)
	}
	if n > total {
		return 0, fmt.Errorf("chunk %d does not exist (metatext has %d chunks)", n, total)
	}
	return n - 1, nil
}

// excerpt returns the first few words of a chunk's text.
func excerpt(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + " ..."
}

func runChunkList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := loadOpenMetaText(ctx); err != nil {
		return err
	}

	snapshot := workspace.Snapshot()
	if len(snapshot.Chunks) == 0 {
		cmd.Printf("Metatext %d has no chunks.\n", snapshot.MetaTextID)
		return nil
	}

	cmd.Printf("Chunks of metatext %d:\n\n", snapshot.MetaTextID)
	for i := range snapshot.Chunks {
		chunk := &snapshot.Chunks[i]
		marker := " "
		if chunk.ID == snapshot.Selection.ActiveChunkID {
			marker = "*"
		}
		annotated := ""
		if chunk.Notes != "" || chunk.Summary != "" || chunk.Comparison != "" {
			annotated = " [annotated]"
		}
		cmd.Printf("%s %3d. (%d words) %s%s\n", marker, i+1, chunk.WordCount(), excerpt(chunk.Text, 8), annotated)
	}

	cmd.Printf("\nTotal: %d chunks\n", len(snapshot.Chunks))
	return nil
}

func runChunkShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := loadOpenMetaText(ctx); err != nil {
		return err
	}

	snapshot := workspace.Snapshot()
	idx, err := chunkNumber(args[0], len(snapshot.Chunks))
	if err != nil {
		return err
	}
	chunk := snapshot.Chunks[idx]

	// Showing a chunk makes it the active one, like clicking it in a UI.
	if err := workspace.SetActiveChunk(ctx, chunk.ID); err != nil {
		return fmt.Errorf("failed to activate chunk: %w", err)
	}

	cmd.Printf("Chunk %d of metatext %d (%d words)\n\n", idx+1, snapshot.MetaTextID, chunk.WordCount())
	cmd.Println(chunk.Text)
	if chunk.Notes != "" {
		cmd.Printf("\nNotes:\n%s\n", chunk.Notes)
	}
	if chunk.Summary != "" {
		cmd.Printf("\nSummary:\n%s\n", chunk.Summary)
	}
	if chunk.Comparison != "" {
		cmd.Printf("\nComparison:\n%s\n", chunk.Comparison)
	}
	if len(chunk.AIImages) > 0 {
		cmd.Printf("\nImages: %d\n", len(chunk.AIImages))
	}
	return nil
}

func runChunkAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := loadOpenMetaText(ctx); err != nil {
		return err
	}

	field := domain.ChunkField(annotateField)
	if !field.IsValid() {
		return fmt.Errorf("unknown field %q (want notes, summary, or comparison)", annotateField)
	}

	snapshot := workspace.Snapshot()
	idx, err := chunkNumber(args[0], len(snapshot.Chunks))
	if err != nil {
		return err
	}
	chunk := snapshot.Chunks[idx]

	if err := workspace.UpdateField(ctx, chunk.ID, field, annotateValue); err != nil {
		return fmt.Errorf("failed to update %s: %w", field, err)
	}

	cmd.Printf("Updated %s on chunk %d.\n", field, idx+1)
	return nil
}

func runChunkSplit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := loadOpenMetaText(ctx); err != nil {
		return err
	}

	snapshot := workspace.Snapshot()
	idx, err := chunkNumber(args[0], len(snapshot.Chunks))
	if err != nil {
		return err
	}

	wordNumber, err := strconv.Atoi(args[1])
	if err != nil || wordNumber < 1 {
		return fmt.Errorf("invalid word number: %s", args[1])
	}
	total := snapshot.Chunks[idx].WordCount()
	if wordNumber >= total {
		return fmt.Errorf("word %d leaves nothing to split off (chunk has %d words)", wordNumber, total)
	}

	// The workspace takes the 0-based index of the last word kept.
	if err := workspace.SplitAt(ctx, idx, wordNumber-1); err != nil {
		return fmt.Errorf("failed to split chunk: %w", err)
	}

	cmd.Printf("Split chunk %d after word %d.\n", idx+1, wordNumber)
	return nil
}

func runChunkMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := loadOpenMetaText(ctx); err != nil {
		return err
	}

	snapshot := workspace.Snapshot()
	idx, err := chunkNumber(args[0], len(snapshot.Chunks))
	if err != nil {
		return err
	}

	if err := workspace.Merge(ctx, idx); err != nil {
		if errors.Is(err, domain.ErrNoNeighbour) {
			return fmt.Errorf("chunk %d is the last chunk; nothing to merge with", idx+1)
		}
		return fmt.Errorf("failed to merge chunks: %w", err)
	}

	cmd.Printf("Merged chunks %d and %d.\n", idx+1, idx+2)
	return nil
}
