package cli

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/mcp"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

func TestAutosaveStatus(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "chunk", "add", "hello world")
	require.NoError(t, err)

	out, err := execute(t, "autosave", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Key:            contentbuilder_autosave")
	assert.Contains(t, out, "State:          idle")
	assert.Contains(t, out, "Saves:          1")

	out, err = execute(t, "autosave", "status", "--json")
	require.NoError(t, err)
	var status struct {
		State domain.AutosaveState `json:"state"`
		Stats domain.AutosaveStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, domain.AutosaveIdle, status.State)
	assert.Equal(t, 1, status.Stats.SaveCount)
}

func TestAutosaveRecover_NothingToRecover(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "autosave", "recover")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to recover.")
}

func TestStorageKeys(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	out, err := execute(t, "storage", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "No records stored.")

	require.NoError(t, env.workspace.SaveNow(ctx))
	_, err = env.versions.SaveVersion(ctx, domain.VersionPayload{Chunks: []domain.ContentChunk{}}, "", false)
	require.NoError(t, err)

	out, err = execute(t, "storage", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, domain.KeyAutosave)
	assert.Contains(t, out, domain.KeyVersions)

	out, err = execute(t, "storage", "keys", "--kind", "version")
	require.NoError(t, err)
	assert.Contains(t, out, domain.KeyVersions)
	assert.NotContains(t, out, domain.KeyAutosave)

	_, err = execute(t, "storage", "keys", "--kind", "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBrowse_RequiresTerminal(t *testing.T) {
	setupTestServices(t)
	original := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = original })

	_, err := execute(t, "browse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestMCP_RequiresChunkService(t *testing.T) {
	SetServices(Services{})

	_, err := execute(t, "mcp")
	assert.ErrorIs(t, err, mcp.ErrMissingChunkService)
}

type fakeMetricsServer struct {
	addr string
}

func (f *fakeMetricsServer) Serve(_ context.Context, addr string) error {
	f.addr = addr
	return nil
}

func TestMetrics_ServesOnAddr(t *testing.T) {
	setupTestServices(t)
	fake := &fakeMetricsServer{}
	metricsServer = fake

	_, errOut, err := executeContext(context.Background(), t, "", "metrics", "--addr", ":9191")
	require.NoError(t, err)
	assert.Equal(t, ":9191", fake.addr)
	assert.Contains(t, errOut, "http://localhost:9191/metrics")

	_, err = execute(t, "metrics")
	require.NoError(t, err)
	assert.Equal(t, ":9090", fake.addr)
}
