package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

// Ensure StyleStore implements the interface.
var _ driven.StyleStore = (*StyleStore)(nil)

// StyleStore loads compression styles from user-editable files on disk.
// Each .txt file in the style directory is one style: the file name is
// the title, the content is the description. Embedded defaults are
// written out on first use and serve as fallback when reads fail.
//
// The store uses lazy initialisation - files are only created when first
// accessed, not in the constructor. This makes testing easier and avoids
// unexpected I/O.
type StyleStore struct {
	mu       sync.RWMutex
	styleDir string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

// defaultStyles contains the embedded default compression styles.
// These are used when user files don't exist and as the initial content
// for new files.
var defaultStyles = map[string]string{
	driven.StyleLikeImFive: "Rewrites the chunk in the simplest possible terms, as if explaining to a five year old.",
	driven.StyleAcademic:   "Condenses the chunk into a formal abstract with precise terminology.",
	driven.StyleHeadline:   "Reduces the chunk to a single headline-length sentence.",
}

// NewStyleStore creates a new file-based style store.
// If styleDir is empty, defaults to ~/.metatext/styles/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first access.
func NewStyleStore(styleDir string) (*StyleStore, error) {
	if styleDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		styleDir = filepath.Join(home, ".metatext", "styles")
	}

	return &StyleStore{
		styleDir: styleDir,
		cache:    make(map[string]string),
	}, nil
}

// List returns every style in the style directory, sorted by title.
// Falls back to the embedded defaults when the directory is unreadable.
func (s *StyleStore) List() ([]domain.CompressionStyle, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return defaultStyleList(), nil
	}

	entries, err := os.ReadDir(s.styleDir)
	if err != nil {
		return defaultStyleList(), nil
	}

	styles := make([]domain.CompressionStyle, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		title := strings.TrimSuffix(entry.Name(), ".txt")
		description, err := s.Describe(title)
		if err != nil {
			continue
		}
		styles = append(styles, domain.CompressionStyle{Title: title, Description: description})
	}

	sort.Slice(styles, func(i, j int) bool { return styles[i].Title < styles[j].Title })
	return styles, nil
}

// Describe returns the description for the given style title.
// Returns cached value if available, otherwise loads from file.
// Falls back to the embedded default if the file doesn't exist.
func (s *StyleStore) Describe(title string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if description, ok := defaultStyles[title]; ok {
			return description, nil
		}
		return "", fmt.Errorf("style store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if description, ok := s.cache[title]; ok {
		s.mu.RUnlock()
		return description, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	description, err := s.loadFromFile(title)
	if err != nil {
		// Fall back to embedded default
		if defaultDescription, ok := defaultStyles[title]; ok {
			return defaultDescription, nil
		}
		return "", fmt.Errorf("load style %q: %w", title, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[title]; !ok {
		s.cache[title] = description
	} else {
		// Another goroutine loaded it first, use their value
		description = s.cache[title]
	}
	s.mu.Unlock()

	return description, nil
}

// Reload clears the style cache, forcing fresh loads from disk.
func (s *StyleStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the style directory path.
func (s *StyleStore) Dir() string {
	return s.styleDir
}

// initialise creates the style directory and default files.
// Called once via sync.Once on first access.
func (s *StyleStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.styleDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create style directory: %w", err)
		return
	}

	// Create default style files (only if they don't exist)
	for title, description := range defaultStyles {
		path := filepath.Join(s.styleDir, title+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(description), 0600); err != nil {
				s.initErr = fmt.Errorf("create default style %q: %w", title, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a style description from disk.
func (s *StyleStore) loadFromFile(title string) (string, error) {
	path := filepath.Join(s.styleDir, title+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the styles directory.
func (s *StyleStore) createReadme() error {
	path := filepath.Join(s.styleDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Metatext Compression Styles

This directory defines the compression styles offered when generating
an alternate rendering of a chunk.

## Format

Each ` + "`.txt`" + ` file is one style. The file name (without extension) is the
style title sent to the backend; the file content is the description
shown when listing styles.

## Customisation

Edit a file to change a style's description, or add a new ` + "`.txt`" + ` file
to offer a new style. Changes take effect on the next command or after
restarting the TUI.
`
	return os.WriteFile(path, []byte(content), 0600)
}

func defaultStyleList() []domain.CompressionStyle {
	styles := make([]domain.CompressionStyle, 0, len(defaultStyles))
	for title, description := range defaultStyles {
		styles = append(styles, domain.CompressionStyle{Title: title, Description: description})
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].Title < styles[j].Title })
	return styles
}
