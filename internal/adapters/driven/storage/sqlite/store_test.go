package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore(t *testing.T) {
	storagetest.RunBackend(t, func(t *testing.T) driven.StorageBackend {
		return setupTestStore(t)
	})
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	_, err := NewStore("/dev/null/cannot/create")
	assert.Error(t, err)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SetItem(ctx, domain.KeyAutosave, map[string]any{"n": 1}, domain.RecordKindAutosave))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.GetItem(ctx, domain.KeyAutosave)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(rec.Value))

	// Migrations are not re-applied.
	version, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestStore_Migrate_AppliesNewVersionsInOrder(t *testing.T) {
	store := setupTestStore(t)

	extra := fstest.MapFS{
		"002_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
		"003_more.up.sql":    {Data: []byte("ALTER TABLE notes ADD COLUMN body TEXT;")},
		"003_more.down.sql":  {Data: []byte("ALTER TABLE notes DROP COLUMN body;")},
		"README.md":          {Data: []byte("ignored")},
		"bad_name.up.sql":    {Data: []byte("this is not sql")},
		"001_initial.up.sql": {Data: []byte("this would fail if re-run")},
	}
	require.NoError(t, store.migrate(extra))

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	_, err = store.db.Exec("INSERT INTO notes (id, body) VALUES ('a', 'b')")
	assert.NoError(t, err)
}

func TestStore_Migrate_FailingMigration(t *testing.T) {
	store := setupTestStore(t)

	err := store.migrate(fstest.MapFS{"002_broken.up.sql": {Data: []byte("NOT SQL AT ALL")}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")
}

func TestStore_TimestampRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SetItem(ctx, "k", 1, domain.RecordKindGeneric))

	rec, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, rec.Timestamp.IsZero())
	assert.Equal(t, rec.Timestamp, rec.Timestamp.UTC())
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.GetItem(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, store.SetItem(ctx, "k", 1, domain.RecordKindGeneric), domain.ErrStorageUnavailable)
	_, err = store.Keys(ctx, "")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
