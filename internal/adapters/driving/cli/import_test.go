package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestImport_Files(t *testing.T) {
	env := setupTestServices(t)
	dir := t.TempDir()
	md := writeFile(t, dir, "notes.md", "# Title\n\nGoroutines are cheap. Channels connect them.\n")
	txt := writeFile(t, dir, "plain.txt", "Plain text content for the workspace.")

	out, err := execute(t, "import", md, txt)
	require.NoError(t, err)
	assert.Contains(t, out, "from notes.md")
	assert.Contains(t, out, "from plain.txt")

	chunks := env.chunks.Chunks()
	require.NotEmpty(t, chunks)
	sources := env.chunks.Sources()
	assert.Contains(t, sources, "notes.md")
	assert.Contains(t, sources, "plain.txt")
	for _, c := range chunks {
		assert.Equal(t, domain.ChunkOriginDocument, c.Metadata.Type)
	}

	ws := savedWorkspace(t, env)
	assert.Len(t, ws.Chunks, len(chunks))
}

func TestImport_ReportsFailuresAndKeepsGoing(t *testing.T) {
	env := setupTestServices(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "Some text.")

	_, errOut, err := executeContext(context.Background(), t, "", "import", filepath.Join(dir, "missing.txt"), good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import 1 of 2 files")
	assert.Contains(t, errOut, "Failed to import")
	assert.NotEmpty(t, env.chunks.Chunks())
}

func TestImport_NothingToImport(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to import")
}

func TestImport_WatchImportsNewFiles(t *testing.T) {
	env := setupTestServices(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, _, err := executeContext(ctx, t, "", "import", "--watch", dir, "--ext", "md")
		done <- result{out, err}
	}()

	// Rewrite until the watcher is running and has picked the file up.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "fresh.md"), []byte("Watched content arrives."), 0600)
		_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("Not an accepted extension."), 0600)
		return env.chunks.Stats().TotalChunks > 0
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Watching "+dir)
	assert.Contains(t, res.out, "from fresh.md")

	for _, c := range env.chunks.Chunks() {
		assert.Equal(t, "fresh.md", c.Source)
	}
	ws := savedWorkspace(t, env)
	assert.NotEmpty(t, ws.Chunks)
	assert.True(t, strings.Contains(ws.Chunks[0].Content, "Watched"))
}

func TestImport_WatchMissingDirectory(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "import", "--watch", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
