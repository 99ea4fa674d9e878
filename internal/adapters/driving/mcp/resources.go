package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// uriScheme is the custom URI scheme for metatext resources.
const uriScheme = "metatext://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the open metatext's chunk list.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chunks",
		Name:        "chunks",
		Description: "Chunks of the currently open metatext",
		MIMEType:    "application/json",
	}, s.handleChunksResource)

	// Template for a single chunk record.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{chunkId}",
		Name:        "chunk",
		Description: "A single chunk with its text and annotations",
		MIMEType:    "application/json",
	}, s.handleChunkResource)

	// Template for a chunk's saved compressions.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{chunkId}/compressions",
		Name:        "chunk-compressions",
		Description: "Saved compressions of a chunk",
		MIMEType:    "application/json",
	}, s.handleCompressionsResource)
}

// chunkInfo is the wire form of a chunk in resource payloads.
type chunkInfo struct {
	ID         int64  `json:"id"`
	Position   int    `json:"position"`
	Text       string `json:"text"`
	Notes      string `json:"notes,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Comparison string `json:"comparison,omitempty"`
	Active     bool   `json:"active,omitempty"`
}

// handleChunksResource returns the open metatext's chunk list.
func (s *Server) handleChunksResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	snap := s.ports.Workspace.Snapshot()
	if snap.MetaTextID == 0 {
		return nil, ErrNoMetaTextOpen
	}

	infos := make([]chunkInfo, len(snap.Chunks))
	for i := range snap.Chunks {
		infos[i] = toChunkInfo(&snap.Chunks[i], snap.Selection.ActiveChunkID)
	}

	return jsonResource(req.Params.URI, infos)
}

// handleChunkResource returns a single chunk record.
func (s *Server) handleChunkResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	chunkID, ok := extractChunkID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snap := s.ports.Workspace.Snapshot()
	for i := range snap.Chunks {
		if snap.Chunks[i].ID == chunkID {
			info := toChunkInfo(&snap.Chunks[i], snap.Selection.ActiveChunkID)
			return jsonResource(req.Params.URI, info)
		}
	}

	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// handleCompressionsResource returns a chunk's saved compressions.
func (s *Server) handleCompressionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Compressions == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunkID, ok := extractCompressionsChunkID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	saved, err := s.ports.Compressions.List(ctx, chunkID)
	if err != nil {
		return nil, fmt.Errorf("listing compressions: %w", err)
	}

	type compressionInfo struct {
		ID             int64  `json:"id"`
		Title          string `json:"title"`
		CompressedText string `json:"compressed_text"`
	}

	infos := make([]compressionInfo, len(saved))
	for i, comp := range saved {
		infos[i] = compressionInfo{
			ID:             comp.ID,
			Title:          comp.Title,
			CompressedText: comp.CompressedText,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// toChunkInfo converts a chunk to its wire form.
func toChunkInfo(chunk *domain.Chunk, activeID int64) chunkInfo {
	return chunkInfo{
		ID:         chunk.ID,
		Position:   chunk.Position,
		Text:       chunk.Text,
		Notes:      chunk.Notes,
		Summary:    chunk.Summary,
		Comparison: chunk.Comparison,
		Active:     chunk.ID == activeID,
	}
}

// jsonResource marshals v into a JSON resource result.
func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractChunkID extracts the chunk ID from a URI like metatext://chunks/{chunkId}.
func extractChunkID(uri string) (int64, bool) {
	const prefix = uriScheme + "chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	raw := strings.TrimPrefix(uri, prefix)
	if strings.Contains(raw, "/") {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// extractCompressionsChunkID extracts the chunk ID from a URI like
// metatext://chunks/{chunkId}/compressions.
func extractCompressionsChunkID(uri string) (int64, bool) {
	const prefix = uriScheme + "chunks/"
	const suffix = "/compressions"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0, false
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
