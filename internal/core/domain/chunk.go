package domain

// SourceDocument is the original uploaded text a metatext is derived from.
type SourceDocument struct {
	// ID is the backend-assigned identifier.
	ID int64

	// Title is the human-readable title.
	Title string

	// Text is the full original text.
	Text string
}

// MetaText is a user-curated derivative of a source document,
// composed of ordered chunks.
type MetaText struct {
	// ID is the backend-assigned identifier.
	ID int64

	// SourceDocumentID links to the originating source document.
	SourceDocumentID int64

	// Title is the human-readable title.
	Title string
}

// Chunk is a contiguous span of a metatext's content with user annotations.
// Chunks are created and destroyed exclusively by the backend (ingestion,
// split, merge); the client only reconciles its local list afterwards.
type Chunk struct {
	// ID is the backend-assigned identifier. The client never mints IDs.
	ID int64

	// MetaTextID links to the owning metatext.
	MetaTextID int64

	// Text is the chunk's span of the metatext content.
	Text string

	// Position orders the chunk within its metatext. Positions are
	// monotonically increasing but not required to be contiguous.
	Position int

	// Notes holds free-form user notes.
	Notes string

	// Summary holds the user or AI written summary.
	Summary string

	// Comparison holds the AI-generated comparison text.
	Comparison string

	// AIImages are generated images attached to this chunk, in creation order.
	AIImages []AIImage
}

// AIImage is a generated image attached to a chunk.
type AIImage struct {
	// ID is the backend-assigned identifier.
	ID int64

	// Prompt is the generation prompt.
	Prompt string

	// Path is the backend-relative path to the image file.
	Path string
}

// ChunkField identifies an editable text field on a chunk.
type ChunkField string

// Editable chunk fields.
const (
	// FieldNotes is the free-form notes field.
	FieldNotes ChunkField = "notes"

	// FieldSummary is the summary field.
	FieldSummary ChunkField = "summary"

	// FieldComparison is the AI comparison field.
	FieldComparison ChunkField = "comparison"
)

// IsValid returns true if the field is recognised.
func (f ChunkField) IsValid() bool {
	switch f {
	case FieldNotes, FieldSummary, FieldComparison:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f ChunkField) String() string {
	return string(f)
}

// Apply sets the field's value on the chunk.
// Returns ErrInvalidInput for an unrecognised field.
func (f ChunkField) Apply(c *Chunk, value string) error {
	switch f {
	case FieldNotes:
		c.Notes = value
	case FieldSummary:
		c.Summary = value
	case FieldComparison:
		c.Comparison = value
	default:
		return ErrInvalidInput
	}
	return nil
}

// AllChunkFields returns all editable chunk fields.
func AllChunkFields() []ChunkField {
	return []ChunkField{FieldNotes, FieldSummary, FieldComparison}
}

// WordCount returns the number of whitespace-separated words in the chunk.
func (c *Chunk) WordCount() int {
	count := 0
	inWord := false
	for _, r := range c.Text {
		switch r {
		case ' ', '\t', '\n', '\r':
			inWord = false
		default:
			if !inWord {
				count++
			}
			inWord = true
		}
	}
	return count
}
