package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/services"
	"github.com/custodia-labs/contentbuilder/internal/normalisers"
	"github.com/custodia-labs/contentbuilder/internal/postprocessors"
)

// testEnv holds the real services behind the commands.
type testEnv struct {
	chunks     *services.ChunkStore
	categories *services.CategoryStore
	versions   *services.VersionStore
	autosave   *services.AutosaveService
	workspace  *services.WorkspaceService
	backend    *memory.Backend
	local      *memory.LocalStore
	config     *memory.ConfigStore
	settings   *services.SettingsService
}

func testAutosaveConfig() services.AutosaveConfig {
	return services.AutosaveConfig{
		Debounce:   10 * time.Millisecond,
		MaxRetries: 1,
	}
}

// newEnv builds services over the given stores, so a second env can
// share storage with the first the way two process runs do.
func newEnv(t *testing.T, backend *memory.Backend, local *memory.LocalStore, rules []string) *testEnv {
	t.Helper()

	env := &testEnv{
		chunks:     services.NewChunkStore(),
		categories: services.NewCategoryStore(),
		backend:    backend,
		local:      local,
		config:     memory.NewConfigStore(nil),
	}
	env.versions = services.NewVersionStore(backend, local)
	env.autosave = services.NewAutosaveService(backend, local, testAutosaveConfig())
	t.Cleanup(env.autosave.Close)
	env.workspace = services.NewWorkspaceService(env.chunks, env.categories, env.autosave)
	env.settings = services.NewSettingsService(env.config)

	splitter, err := postprocessors.NewSplitter(domain.DefaultAppSettings().Chunking)
	require.NoError(t, err)

	tagRules, err := services.ParseTagRules(rules)
	require.NoError(t, err)

	SetServices(Services{
		Chunks:     env.chunks,
		Categories: env.categories,
		Versions:   env.versions,
		Autosave:   env.autosave,
		Workspace:  env.workspace,
		Import:     services.NewImportService(normalisers.NewDefaultRegistry(), splitter, env.chunks),
		Export:     services.NewExportService(env.chunks, env.categories, env.versions),
		AutoTag:    services.NewAutoTagService(env.chunks, tagRules),
		Settings:   env.settings,
		Backend:    backend,
	})
	t.Cleanup(func() { SetServices(Services{}) })
	return env
}

func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	return newEnv(t, memory.NewBackend(), memory.NewLocalStore(), []string{"goroutine=go", "postgres=database"})
}

// resetCommands clears flag values and contexts left by earlier runs.
func resetCommands(c *cobra.Command, ctx context.Context) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	c.SetContext(ctx)
	for _, sub := range c.Commands() {
		resetCommands(sub, ctx)
	}
}

func executeContext(ctx context.Context, t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	resetCommands(rootCmd, ctx)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeContext(context.Background(), t, "", args...)
	return out, err
}

func savedWorkspace(t *testing.T, env *testEnv) domain.Workspace {
	t.Helper()
	data, err := env.autosave.LoadData(context.Background(), domain.KeyAutosave)
	require.NoError(t, err)
	require.NotNil(t, data, "no autosave record")

	var ws domain.Workspace
	require.NoError(t, services.DecodePayload(data, &ws))
	return ws
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "contentbuilder", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestRootCmd_RestoresSavedWorkspace(t *testing.T) {
	backend, local := memory.NewBackend(), memory.NewLocalStore()

	first := newEnv(t, backend, local, nil)
	_, err := execute(t, "chunk", "add", "persisted across runs", "--source", "a.md")
	require.NoError(t, err)
	require.Len(t, first.chunks.Chunks(), 1)

	// A fresh set of services over the same storage is a new process run.
	second := newEnv(t, backend, local, nil)
	require.Empty(t, second.chunks.Chunks())

	out, err := execute(t, "chunk", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "persisted across runs")
	assert.Equal(t, domain.RestoreAutosave, restoredFrom)
}

func TestRootCmd_RestoresEmergencySaveAndPersistsIt(t *testing.T) {
	backend, local := memory.NewBackend(), memory.NewLocalStore()
	env := newEnv(t, backend, local, nil)

	require.NoError(t, env.autosave.EmergencySave(domain.Workspace{
		Chunks: []domain.ContentChunk{{ID: "c1", Content: "saved on exit"}},
	}))

	out, err := execute(t, "autosave", "recover")
	require.NoError(t, err)
	assert.Contains(t, out, "emergency save")
	assert.Contains(t, out, "1 chunks restored")
	assert.False(t, local.Has(domain.KeyEmergencySave))

	ws := savedWorkspace(t, env)
	require.Len(t, ws.Chunks, 1)
	assert.Equal(t, "saved on exit", ws.Chunks[0].Content)
}

func TestRootCmd_FallbackSurvivesReadOnlyRun(t *testing.T) {
	backend, local := memory.NewBackend(), memory.NewLocalStore()

	// An earlier run could only reach the local fallback store.
	payload, err := json.Marshal(domain.Workspace{
		Chunks: []domain.ContentChunk{{ID: "c1", Content: "only in fallback"}},
	})
	require.NoError(t, err)
	require.NoError(t, local.SetItem(domain.FallbackKey(domain.KeyAutosave), payload))

	newEnv(t, backend, local, nil)
	out, err := execute(t, "chunk", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "only in fallback")
	assert.Equal(t, domain.RestoreFallback, restoredFrom)

	// The next run still sees the workspace.
	third := newEnv(t, backend, local, nil)
	out, err = execute(t, "chunk", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "only in fallback")
	assert.Equal(t, domain.RestoreAutosave, restoredFrom)
	assert.Len(t, third.chunks.Chunks(), 1)
}

func TestRootCmd_SkipsRestoreForVersion(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.autosave.EmergencySave(domain.Workspace{
		Chunks: []domain.ContentChunk{{Content: "untouched"}},
	}))

	_, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, env.local.Has(domain.KeyEmergencySave))
	assert.Equal(t, domain.RestoreNone, restoredFrom)
}

func TestRootCmd_ServicesNotConfigured(t *testing.T) {
	SetServices(Services{})

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"chunk", "list"}, "chunk service not configured"},
		{[]string{"category", "list"}, "category service not configured"},
		{[]string{"versions", "list"}, "version service not configured"},
		{[]string{"import", "x.md"}, "import service not configured"},
		{[]string{"export"}, "export service not configured"},
		{[]string{"autotag"}, "auto-tagging not configured"},
		{[]string{"autosave", "status"}, "autosave service not configured"},
		{[]string{"storage", "keys"}, "storage backend not configured"},
		{[]string{"settings", "show"}, "settings service not configured"},
		{[]string{"metrics"}, "metrics not configured"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPersist_WithoutWorkspace(t *testing.T) {
	SetServices(Services{Chunks: services.NewChunkStore()})
	t.Cleanup(func() { SetServices(Services{}) })

	_, err := execute(t, "chunk", "add", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace service not configured")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n b\tc", 10))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
	assert.Equal(t, "(manual)", sourceLabel(""))
	assert.Equal(t, "localhost:8080", displayAddr(":8080"))
	assert.Equal(t, "0.0.0.0:1", displayAddr("0.0.0.0:1"))
}
