package api

import "github.com/metatext-labs/metatext-cli/internal/core/domain"

// Wire payloads mirror the backend's JSON shapes. Kept separate from
// the domain types so backend field renames stay contained here.

type chunkPayload struct {
	ID         int64            `json:"id"`
	MetaTextID int64            `json:"meta_text_id"`
	Text       string           `json:"text"`
	Position   int              `json:"position"`
	Notes      string           `json:"notes"`
	Summary    string           `json:"summary"`
	Comparison string           `json:"comparison"`
	AIImages   []aiImagePayload `json:"ai_images"`
}

type aiImagePayload struct {
	ID     int64  `json:"id"`
	Prompt string `json:"prompt"`
	Path   string `json:"path"`
}

type compressionPayload struct {
	ID             int64  `json:"id"`
	ChunkID        int64  `json:"chunk_id"`
	Title          string `json:"title"`
	CompressedText string `json:"compressed_text"`
}

type chunkSessionPayload struct {
	UserID            int64 `json:"user_id"`
	MetaTextID        int64 `json:"meta_text_id"`
	LastActiveChunkID int64 `json:"last_active_chunk_id"`
}

type userPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (p chunkPayload) toDomain() domain.Chunk {
	images := make([]domain.AIImage, 0, len(p.AIImages))
	for _, img := range p.AIImages {
		images = append(images, domain.AIImage{ID: img.ID, Prompt: img.Prompt, Path: img.Path})
	}
	return domain.Chunk{
		ID:         p.ID,
		MetaTextID: p.MetaTextID,
		Text:       p.Text,
		Position:   p.Position,
		Notes:      p.Notes,
		Summary:    p.Summary,
		Comparison: p.Comparison,
		AIImages:   images,
	}
}

func chunkToPayload(c domain.Chunk) chunkPayload {
	images := make([]aiImagePayload, 0, len(c.AIImages))
	for _, img := range c.AIImages {
		images = append(images, aiImagePayload{ID: img.ID, Prompt: img.Prompt, Path: img.Path})
	}
	return chunkPayload{
		ID:         c.ID,
		MetaTextID: c.MetaTextID,
		Text:       c.Text,
		Position:   c.Position,
		Notes:      c.Notes,
		Summary:    c.Summary,
		Comparison: c.Comparison,
		AIImages:   images,
	}
}

func chunksToDomain(payloads []chunkPayload) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(payloads))
	for _, p := range payloads {
		chunks = append(chunks, p.toDomain())
	}
	return chunks
}

func (p compressionPayload) toDomain() domain.ChunkCompression {
	return domain.ChunkCompression{
		ID:             p.ID,
		ChunkID:        p.ChunkID,
		Title:          p.Title,
		CompressedText: p.CompressedText,
	}
}
