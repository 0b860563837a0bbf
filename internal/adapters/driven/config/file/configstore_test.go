package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".contentbuilder"), dir)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.backend", "sqlite"))
	require.NoError(t, store.Set("autosave.debounce_ms", 250))
	require.NoError(t, store.Set("ui.enabled", true))
	require.NoError(t, store.Set("tagging.rules", []string{"go=golang", "sql=database"}))

	assert.Equal(t, "sqlite", store.GetString("storage.backend"))
	assert.Equal(t, 250, store.GetInt("autosave.debounce_ms"))
	assert.True(t, store.GetBool("ui.enabled"))
	assert.Equal(t, []string{"go=golang", "sql=database"}, store.GetStringSlice("tagging.rules"))

	// Wrong types read as zero values.
	assert.Equal(t, "", store.GetString("autosave.debounce_ms"))
	assert.Equal(t, 0, store.GetInt("storage.backend"))
	assert.False(t, store.GetBool("storage.backend"))
	assert.Nil(t, store.GetStringSlice("storage.backend"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("chunking.size", 800))
	require.NoError(t, store1.Set("chunking.mode", "sentences"))
	require.NoError(t, store1.Set("log.level", "debug"))
	require.NoError(t, store1.Set("tagging.rules", []string{"go=golang"}))

	raw, err := os.ReadFile(store1.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[chunking]")
	assert.Contains(t, string(raw), "[log]")

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 800, store2.GetInt("chunking.size"))
	assert.Equal(t, "sentences", store2.GetString("chunking.mode"))
	assert.Equal(t, "debug", store2.GetString("log.level"))
	assert.Equal(t, []string{"go=golang"}, store2.GetStringSlice("tagging.rules"))
	assert.Equal(t, []string{"chunking.mode", "chunking.size", "log.level", "tagging.rules"}, store2.Keys())
}

func TestConfigStore_Load_HandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[autosave]
debounce_ms = 500

[storage]
backend = "memory"
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 500, store.GetInt("autosave.debounce_ms"))
	assert.Equal(t, "memory", store.GetString("storage.backend"))
}

func TestConfigStore_EmptyAndCommentOnlyFile(t *testing.T) {
	for _, content := range []string{"", "# just a comment\n\n"} {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(tmpDir)
		require.NoError(t, err)
		assert.Empty(t, store.Keys())
	}
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("log.format", "json"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_Set_RollsBackOnEncodeFailure(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("log.level", "info"))

	err = store.Set("log.level", make(chan int))
	require.Error(t, err)
	assert.Equal(t, "info", store.GetString("log.level"))

	err = store.Set("fresh.key", make(chan int))
	require.Error(t, err)
	_, ok := store.Get("fresh.key")
	assert.False(t, ok)
}

func TestConfigStore_Set_WriteError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("log.level", "info"))

	// A directory at the temp path makes the write fail.
	require.NoError(t, os.Mkdir(store.Path()+".tmp", 0700))

	assert.Error(t, store.Set("log.level", "debug"))
	assert.Equal(t, "info", store.GetString("log.level"))
}

func TestConfigStore_ScalarAndTableCollision(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("log", "plain"))
	require.NoError(t, store.Set("log.level", "warn"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "plain", reloaded.GetString("log"))
	assert.Equal(t, "warn", reloaded.GetString("log.level"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "scroll.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Len(t, store.Keys(), 10)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a.b":   1,
		"a.c":   2,
		"top":   "x",
		"d.e.f": true,
	})

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": 1, "c": 2},
		"top": "x",
		"d":   map[string]any{"e": map[string]any{"f": true}},
	}, nested)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c": 2, "top": "x", "d.e.f": true}, flattenMap(nested, ""))
}
