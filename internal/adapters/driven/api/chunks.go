package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/metatext-labs/metatext-cli/internal/cache"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

var _ driven.ChunkAPI = (*Client)(nil)

// Cache key prefixes for chunk reads. Mutations invalidate by prefix.
const (
	keyListChunks = "listChunks"
	keyGetChunk   = "getChunk"
)

// ListChunks returns all chunks of a metatext in position order.
func (c *Client) ListChunks(ctx context.Context, metaTextID int64) ([]domain.Chunk, error) {
	payloads, err := cachedGet[[]chunkPayload](ctx, c,
		cache.Key(keyListChunks, metaTextID),
		fmt.Sprintf("/chunks/all/%d", metaTextID), nil)
	if err != nil {
		return nil, fmt.Errorf("list chunks for metatext %d: %w", metaTextID, err)
	}
	return chunksToDomain(payloads), nil
}

// GetChunk returns a single chunk by ID.
func (c *Client) GetChunk(ctx context.Context, chunkID int64) (*domain.Chunk, error) {
	payload, err := cachedGet[chunkPayload](ctx, c,
		cache.Key(keyGetChunk, chunkID),
		fmt.Sprintf("/chunk/%d", chunkID), nil)
	if err != nil {
		return nil, fmt.Errorf("get chunk %d: %w", chunkID, err)
	}
	chunk := payload.toDomain()
	return &chunk, nil
}

// UpdateChunk writes the whole chunk record back to the backend and
// returns the stored version.
func (c *Client) UpdateChunk(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error) {
	path := fmt.Sprintf("/chunk/%d", chunk.ID)
	var payload chunkPayload
	if err := c.do(ctx, http.MethodPut, path, nil, chunkToPayload(chunk), &payload); err != nil {
		return nil, fmt.Errorf("update chunk %d: %w", chunk.ID, err)
	}
	c.invalidate(cache.Key(keyGetChunk, chunk.ID), cache.Key(keyListChunks, chunk.MetaTextID))
	stored := payload.toDomain()
	return &stored, nil
}

// SplitChunk splits a chunk before the given word index. The backend
// returns the two replacement records; the first keeps the original ID.
func (c *Client) SplitChunk(ctx context.Context, chunkID int64, wordIndex int) ([]domain.Chunk, error) {
	query := url.Values{"word_index": {strconv.Itoa(wordIndex)}}
	var payloads []chunkPayload
	path := fmt.Sprintf("/chunk/%d/split", chunkID)
	if err := c.do(ctx, http.MethodPost, path, query, nil, &payloads); err != nil {
		return nil, fmt.Errorf("split chunk %d at word %d: %w", chunkID, wordIndex, err)
	}
	c.invalidate(keyGetChunk, keyListChunks)
	return chunksToDomain(payloads), nil
}

// CombineChunks merges two adjacent chunks. The combined record keeps
// the first chunk's ID.
func (c *Client) CombineChunks(ctx context.Context, firstID, secondID int64) (*domain.Chunk, error) {
	query := url.Values{
		"first_chunk_id":  {strconv.FormatInt(firstID, 10)},
		"second_chunk_id": {strconv.FormatInt(secondID, 10)},
	}
	var payload chunkPayload
	if err := c.do(ctx, http.MethodPost, "/chunk/combine", query, nil, &payload); err != nil {
		return nil, fmt.Errorf("combine chunks %d and %d: %w", firstID, secondID, err)
	}
	c.invalidate(keyGetChunk, keyListChunks)
	combined := payload.toDomain()
	return &combined, nil
}
