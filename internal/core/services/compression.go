package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
)

// Ensure CompressionService implements the interface.
var _ driving.CompressionService = (*CompressionService)(nil)

// CompressionService manages the alternate AI renderings of a chunk.
// Preview and save are distinct backend calls: a preview is generated
// without persisting, and only an explicit save stores it.
type CompressionService struct {
	api    driven.CompressionAPI
	styles driven.StyleStore
}

// NewCompressionService creates a compression service. styles may be
// nil, in which case Styles reports nothing available.
func NewCompressionService(api driven.CompressionAPI, styles driven.StyleStore) *CompressionService {
	return &CompressionService{api: api, styles: styles}
}

// Styles returns the compression styles available to the user.
func (s *CompressionService) Styles() ([]domain.CompressionStyle, error) {
	if s.styles == nil {
		return nil, nil
	}
	return s.styles.List()
}

// List returns all saved compressions for a chunk.
func (s *CompressionService) List(ctx context.Context, chunkID int64) ([]domain.ChunkCompression, error) {
	if s.api == nil {
		return nil, domain.ErrNotImplemented
	}
	if chunkID == 0 {
		return nil, fmt.Errorf("chunk id: %w", domain.ErrInvalidInput)
	}
	return s.api.ListCompressions(ctx, chunkID)
}

// Preview generates a compression in the given style without saving it.
func (s *CompressionService) Preview(ctx context.Context, chunkID int64, styleTitle string) (*domain.ChunkCompression, error) {
	if s.api == nil {
		return nil, domain.ErrNotImplemented
	}
	if chunkID == 0 {
		return nil, fmt.Errorf("chunk id: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(styleTitle) == "" {
		return nil, fmt.Errorf("style title: %w", domain.ErrInvalidInput)
	}
	return s.api.GenerateCompression(ctx, chunkID, styleTitle)
}

// Save persists a compression and returns the stored version.
func (s *CompressionService) Save(ctx context.Context, compression domain.ChunkCompression) (*domain.ChunkCompression, error) {
	if s.api == nil {
		return nil, domain.ErrNotImplemented
	}
	if compression.ChunkID == 0 {
		return nil, fmt.Errorf("chunk id: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(compression.Title) == "" {
		return nil, fmt.Errorf("title: %w", domain.ErrInvalidInput)
	}
	return s.api.SaveCompression(ctx, compression)
}
