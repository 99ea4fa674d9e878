package driven

import "github.com/metatext-labs/metatext-cli/internal/core/domain"

// Built-in compression style titles.
const (
	StyleLikeImFive = "like-im-5"
	StyleAcademic   = "academic"
	StyleHeadline   = "headline"
)

// StyleStore provides the compression styles available to the user.
// Implementations load user-editable style files with embedded defaults.
type StyleStore interface {
	// List returns all available styles, sorted by title.
	List() ([]domain.CompressionStyle, error)

	// Describe returns the description for a style title.
	Describe(title string) (string, error)

	// Reload drops any cached styles, forcing fresh loads from disk.
	Reload()

	// Dir returns the directory user style files live in.
	Dir() string
}
