package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageBackend = (*Store)(nil)

// FileName is the database file inside the data directory.
const FileName = "records.db"

// Store is a SQLite-backed StorageBackend.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.contentbuilder/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".contentbuilder", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
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

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
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

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

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

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

// GetItem retrieves a record by key.
func (s *Store) GetItem(ctx context.Context, key string) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, kind, value, updated_at FROM records WHERE key = ?
	`, key)

	var (
		rec       domain.Record
		value     string
		updatedAt int64
	)
	err := row.Scan(&rec.Key, &rec.Kind, &value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("get "+key, err)
	}
	rec.Value = []byte(value)
	rec.Timestamp = time.UnixMilli(updatedAt).UTC()
	return &rec, nil
}

// SetItem sanitises and stores a value, replacing any existing row.
func (s *Store) SetItem(ctx context.Context, key string, value any, kind domain.RecordKind) error {
	rec, err := storage.NewRecord(key, value, kind, s.now())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (key, kind, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			kind = excluded.kind,
			value = excluded.value,
			updated_at = excluded.updated_at
	`, rec.Key, string(rec.Kind), string(rec.Value), rec.Timestamp.UnixMilli())
	if err != nil {
		return wrapErr("set "+key, err)
	}
	return nil
}

// RemoveItem deletes a record.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
		return wrapErr("remove "+key, err)
	}
	return nil
}

// Keys returns the keys of all records of the given kind, sorted.
func (s *Store) Keys(ctx context.Context, kind domain.RecordKind) ([]string, error) {
	query := "SELECT key FROM records ORDER BY key"
	args := []any{}
	if kind != "" {
		query = "SELECT key FROM records WHERE kind = ? ORDER BY key"
		args = append(args, string(kind))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list keys", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, wrapErr("scan key", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list keys", err)
	}
	// ORDER BY uses SQLite collation; keep Go ordering for parity with other backends.
	return storage.SortedKeys(keys), nil
}

// wrapErr maps a closed database to ErrStorageUnavailable.
func wrapErr(op string, err error) error {
	if strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%s: %w", op, domain.ErrStorageUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
