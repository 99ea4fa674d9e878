package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/metatext-labs/metatext-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// local persistence interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.metatext/data/local.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".metatext", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "local.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SelectionStore returns a SelectionStore interface backed by this store.
func (s *Store) SelectionStore() driven.SelectionStore {
	return &selectionStore{store: s}
}

// IdentityStore returns an IdentityStore interface backed by this store.
func (s *Store) IdentityStore() driven.IdentityStore {
	return &identityStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Selection Store ====================

// selectionStore implements driven.SelectionStore.
type selectionStore struct {
	store *Store
}

var _ driven.SelectionStore = (*selectionStore)(nil)

// LastActiveChunk returns the stored chunk ID for a metatext, or 0.
func (s *selectionStore) LastActiveChunk(ctx context.Context, metaTextID int64) (int64, error) {
	var chunkID int64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT chunk_id FROM selections WHERE meta_text_id = ?
	`, metaTextID).Scan(&chunkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("scanning selection: %w", err)
	}
	return chunkID, nil
}

// SaveLastActiveChunk stores the chunk ID for a metatext.
func (s *selectionStore) SaveLastActiveChunk(ctx context.Context, metaTextID, chunkID int64) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO selections (meta_text_id, chunk_id, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(meta_text_id) DO UPDATE SET
			chunk_id = excluded.chunk_id,
			updated_at = excluded.updated_at
	`, metaTextID, chunkID)
	if err != nil {
		return fmt.Errorf("saving selection: %w", err)
	}
	return nil
}

// ClearMetaText removes the stored selection for a metatext.
func (s *selectionStore) ClearMetaText(ctx context.Context, metaTextID int64) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM selections WHERE meta_text_id = ?", metaTextID)
	if err != nil {
		return fmt.Errorf("clearing selection: %w", err)
	}
	return nil
}

// ==================== Identity Store ====================

// identityStore implements driven.IdentityStore. A single row caches
// the signed-in user.
type identityStore struct {
	store *Store
}

var _ driven.IdentityStore = (*identityStore)(nil)

// SavedUser returns the cached identity, or nil when no user is cached.
func (s *identityStore) SavedUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	err := s.store.db.QueryRowContext(ctx, `
		SELECT user_id, email FROM identity WHERE id = 1
	`).Scan(&user.ID, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning identity: %w", err)
	}
	return &user, nil
}

// SaveUser caches the identity, replacing any previous one.
func (s *identityStore) SaveUser(ctx context.Context, user domain.User) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO identity (id, user_id, email, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			updated_at = excluded.updated_at
	`, user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	return nil
}

// ClearUser removes the cached identity.
func (s *identityStore) ClearUser(ctx context.Context) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM identity WHERE id = 1")
	if err != nil {
		return fmt.Errorf("clearing identity: %w", err)
	}
	return nil
}
