package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// OpenMetaTextInput is the input schema for the open_metatext tool.
type OpenMetaTextInput struct {
	MetaTextID int64 `json:"metatext_id" jsonschema:"the metatext to open"`
}

// OpenMetaTextOutput is the output schema for the open_metatext tool.
type OpenMetaTextOutput struct {
	MetaTextID    int64 `json:"metatext_id"`
	ChunkCount    int   `json:"chunk_count"`
	ActiveChunkID int64 `json:"active_chunk_id,omitempty"`
}

// AnnotateChunkInput is the input schema for the annotate_chunk tool.
type AnnotateChunkInput struct {
	ChunkID int64  `json:"chunk_id" jsonschema:"the chunk to annotate"`
	Field   string `json:"field" jsonschema:"the field to set: notes, summary, or comparison"`
	Value   string `json:"value" jsonschema:"the new field value"`
}

// AnnotateChunkOutput is the output schema for the annotate_chunk tool.
type AnnotateChunkOutput struct {
	ChunkID int64  `json:"chunk_id"`
	Field   string `json:"field"`
}

// SplitChunkInput is the input schema for the split_chunk tool.
type SplitChunkInput struct {
	ChunkNumber int `json:"chunk_number" jsonschema:"1-based position of the chunk in the list"`
	WordNumber  int `json:"word_number" jsonschema:"1-based word after which the chunk is split"`
}

// SplitChunkOutput is the output schema for the split_chunk tool.
type SplitChunkOutput struct {
	ChunkCount int `json:"chunk_count"`
}

// MergeChunksInput is the input schema for the merge_chunks tool.
type MergeChunksInput struct {
	ChunkNumber int `json:"chunk_number" jsonschema:"1-based position of the chunk merged with its successor"`
}

// MergeChunksOutput is the output schema for the merge_chunks tool.
type MergeChunksOutput struct {
	ChunkCount int `json:"chunk_count"`
}

// CompressChunkInput is the input schema for the compress_chunk tool.
type CompressChunkInput struct {
	ChunkID int64  `json:"chunk_id" jsonschema:"the chunk to compress"`
	Style   string `json:"style" jsonschema:"the compression style title"`
	Save    bool   `json:"save,omitempty" jsonschema:"persist the generated compression (default false)"`
}

// CompressChunkOutput is the output schema for the compress_chunk tool.
type CompressChunkOutput struct {
	ID             int64  `json:"id,omitempty"`
	Title          string `json:"title"`
	CompressedText string `json:"compressed_text"`
	Saved          bool   `json:"saved"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "open_metatext",
		Description: "Open a metatext and load its chunks",
	}, s.handleOpenMetaText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotate_chunk",
		Description: "Set the notes, summary, or comparison field of a chunk",
	}, s.handleAnnotateChunk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "split_chunk",
		Description: "Split a chunk in two after the given word",
	}, s.handleSplitChunk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "merge_chunks",
		Description: "Merge a chunk with the one that follows it",
	}, s.handleMergeChunks)

	if s.ports.Compressions != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "compress_chunk",
			Description: "Generate an alternate rendering of a chunk in a named style",
		}, s.handleCompressChunk)
	}
}

// handleOpenMetaText handles the open_metatext tool invocation.
func (s *Server) handleOpenMetaText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OpenMetaTextInput,
) (*mcp.CallToolResult, OpenMetaTextOutput, error) {
	if input.MetaTextID <= 0 {
		return nil, OpenMetaTextOutput{}, fmt.Errorf("metatext id must be positive")
	}

	if err := s.ports.Workspace.Load(ctx, input.MetaTextID); err != nil {
		return nil, OpenMetaTextOutput{}, fmt.Errorf("opening metatext %d: %w", input.MetaTextID, err)
	}

	snap := s.ports.Workspace.Snapshot()
	return nil, OpenMetaTextOutput{
		MetaTextID:    snap.MetaTextID,
		ChunkCount:    len(snap.Chunks),
		ActiveChunkID: snap.Selection.ActiveChunkID,
	}, nil
}

// handleAnnotateChunk handles the annotate_chunk tool invocation.
func (s *Server) handleAnnotateChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotateChunkInput,
) (*mcp.CallToolResult, AnnotateChunkOutput, error) {
	if err := s.requireOpen(); err != nil {
		return nil, AnnotateChunkOutput{}, err
	}

	field := domain.ChunkField(input.Field)
	if !field.IsValid() {
		return nil, AnnotateChunkOutput{}, fmt.Errorf("unknown field %q; use notes, summary, or comparison", input.Field)
	}

	if err := s.ports.Workspace.UpdateField(ctx, input.ChunkID, field, input.Value); err != nil {
		return nil, AnnotateChunkOutput{}, fmt.Errorf("annotating chunk %d: %w", input.ChunkID, err)
	}

	return nil, AnnotateChunkOutput{ChunkID: input.ChunkID, Field: input.Field}, nil
}

// handleSplitChunk handles the split_chunk tool invocation.
func (s *Server) handleSplitChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SplitChunkInput,
) (*mcp.CallToolResult, SplitChunkOutput, error) {
	if err := s.requireOpen(); err != nil {
		return nil, SplitChunkOutput{}, err
	}

	snap := s.ports.Workspace.Snapshot()
	if input.ChunkNumber < 1 || input.ChunkNumber > len(snap.Chunks) {
		return nil, SplitChunkOutput{}, fmt.Errorf("chunk %d does not exist", input.ChunkNumber)
	}
	if input.WordNumber < 1 {
		return nil, SplitChunkOutput{}, fmt.Errorf("word number must be at least 1")
	}

	if err := s.ports.Workspace.SplitAt(ctx, input.ChunkNumber-1, input.WordNumber-1); err != nil {
		return nil, SplitChunkOutput{}, fmt.Errorf("splitting chunk %d: %w", input.ChunkNumber, err)
	}

	return nil, SplitChunkOutput{ChunkCount: len(s.ports.Workspace.Snapshot().Chunks)}, nil
}

// handleMergeChunks handles the merge_chunks tool invocation.
func (s *Server) handleMergeChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeChunksInput,
) (*mcp.CallToolResult, MergeChunksOutput, error) {
	if err := s.requireOpen(); err != nil {
		return nil, MergeChunksOutput{}, err
	}

	snap := s.ports.Workspace.Snapshot()
	if input.ChunkNumber < 1 || input.ChunkNumber > len(snap.Chunks) {
		return nil, MergeChunksOutput{}, fmt.Errorf("chunk %d does not exist", input.ChunkNumber)
	}

	if err := s.ports.Workspace.Merge(ctx, input.ChunkNumber-1); err != nil {
		return nil, MergeChunksOutput{}, fmt.Errorf("merging chunk %d: %w", input.ChunkNumber, err)
	}

	return nil, MergeChunksOutput{ChunkCount: len(s.ports.Workspace.Snapshot().Chunks)}, nil
}

// handleCompressChunk handles the compress_chunk tool invocation.
func (s *Server) handleCompressChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompressChunkInput,
) (*mcp.CallToolResult, CompressChunkOutput, error) {
	preview, err := s.ports.Compressions.Preview(ctx, input.ChunkID, input.Style)
	if err != nil {
		return nil, CompressChunkOutput{}, fmt.Errorf("compressing chunk %d: %w", input.ChunkID, err)
	}

	if !input.Save {
		return nil, CompressChunkOutput{
			Title:          preview.Title,
			CompressedText: preview.CompressedText,
		}, nil
	}

	stored, err := s.ports.Compressions.Save(ctx, *preview)
	if err != nil {
		return nil, CompressChunkOutput{}, fmt.Errorf("saving compression: %w", err)
	}

	return nil, CompressChunkOutput{
		ID:             stored.ID,
		Title:          stored.Title,
		CompressedText: stored.CompressedText,
		Saved:          true,
	}, nil
}

// requireOpen fails when no metatext has been opened yet.
func (s *Server) requireOpen() error {
	if s.ports.Workspace.Snapshot().MetaTextID == 0 {
		return ErrNoMetaTextOpen
	}
	return nil
}
