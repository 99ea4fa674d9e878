package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/metatext-labs/metatext-cli/internal/cache"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

var _ driven.CompressionAPI = (*Client)(nil)

const keyListCompressions = "listCompressions"

// ListCompressions returns all saved compressions for a chunk.
func (c *Client) ListCompressions(ctx context.Context, chunkID int64) ([]domain.ChunkCompression, error) {
	payloads, err := cachedGet[[]compressionPayload](ctx, c,
		cache.Key(keyListCompressions, chunkID),
		fmt.Sprintf("/chunk/%d/compressions", chunkID), nil)
	if err != nil {
		return nil, fmt.Errorf("list compressions for chunk %d: %w", chunkID, err)
	}
	compressions := make([]domain.ChunkCompression, 0, len(payloads))
	for _, p := range payloads {
		compressions = append(compressions, p.toDomain())
	}
	return compressions, nil
}

// GenerateCompression produces a preview compression in the given style.
// Generation is never cached: each call may produce different text.
func (c *Client) GenerateCompression(ctx context.Context, chunkID int64, styleTitle string) (*domain.ChunkCompression, error) {
	query := url.Values{"style_title": {styleTitle}}
	var payload compressionPayload
	path := fmt.Sprintf("/generate-chunk-compression/%d", chunkID)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &payload); err != nil {
		return nil, fmt.Errorf("generate %q compression for chunk %d: %w", styleTitle, chunkID, err)
	}
	compression := payload.toDomain()
	return &compression, nil
}

// SaveCompression persists a compression and returns the stored version.
func (c *Client) SaveCompression(ctx context.Context, compression domain.ChunkCompression) (*domain.ChunkCompression, error) {
	body := compressionPayload{
		ChunkID:        compression.ChunkID,
		Title:          compression.Title,
		CompressedText: compression.CompressedText,
	}
	var payload compressionPayload
	path := fmt.Sprintf("/chunk/%d/compressions", compression.ChunkID)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &payload); err != nil {
		return nil, fmt.Errorf("save compression for chunk %d: %w", compression.ChunkID, err)
	}
	c.invalidate(cache.Key(keyListCompressions, compression.ChunkID))
	stored := payload.toDomain()
	return &stored, nil
}
