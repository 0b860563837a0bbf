package cli

import (
	"bytes"
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

func TestVersionsSave_DefaultsToChunks(t *testing.T) {
	env := setupTestServices(t)
	env.chunks.AddChunk(domain.ContentChunk{Content: "alpha", Source: "a.md"})
	env.categories.AddCategory("FAQ")

	out, err := execute(t, "versions", "save")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved Version 1")
	assert.Contains(t, out, "chunks)")

	versions, err := env.versions.Versions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.VersionTypeChunks, versions[0].Type)
	assert.Equal(t, 1, versions[0].ChunkCount)
	assert.Equal(t, 1, versions[0].CategoryCount)
	assert.False(t, versions[0].IsAutoSave)
}

func TestVersionsSave_CategoriesAndAuto(t *testing.T) {
	env := setupTestServices(t)
	env.chunks.AddChunk(domain.ContentChunk{Content: "alpha"})

	_, err := execute(t, "versions", "save", "--type", "categories", "--name", "Before import", "--auto")
	require.NoError(t, err)

	versions, err := env.versions.Versions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "Before import", versions[0].Name)
	assert.Equal(t, domain.VersionTypeCategories, versions[0].Type)
	assert.Nil(t, versions[0].Chunks)
	assert.True(t, versions[0].IsAutoSave)

	_, err = execute(t, "versions", "save", "--type", "exported")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVersionsList(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	_, err := env.versions.SaveVersion(ctx, domain.VersionPayload{Chunks: []domain.ContentChunk{{Content: "a"}}}, "manual one", false)
	require.NoError(t, err)
	_, err = env.versions.SaveVersion(ctx, domain.VersionPayload{Categories: []domain.Category{{Name: "c"}}}, "auto one", true)
	require.NoError(t, err)

	out, err := execute(t, "versions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "manual one")
	assert.Contains(t, out, "auto one")
	assert.Contains(t, out, "1 chunks from 1 sources")
	assert.Contains(t, out, "2 versions")
	// Newest first.
	assert.Less(t, bytes.Index([]byte(out), []byte("auto one")), bytes.Index([]byte(out), []byte("manual one")))

	out, err = execute(t, "versions", "list", "--auto", "--json")
	require.NoError(t, err)
	var listed []domain.Version
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "auto one", listed[0].Name)
}

func TestVersionsList_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "versions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No versions saved.")
}

func TestVersionsShow(t *testing.T) {
	env := setupTestServices(t)
	v, err := env.versions.SaveVersion(context.Background(),
		domain.VersionPayload{Categories: []domain.Category{{Name: "c", Questions: []domain.Question{{Question: "q"}}}}}, "", false)
	require.NoError(t, err)

	out, err := execute(t, "versions", "show", v.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:      Version 1")
	assert.Contains(t, out, "1 categories, 1 questions")

	_, err = execute(t, "versions", "show", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVersionsRestore(t *testing.T) {
	env := setupTestServices(t)
	env.chunks.AddChunk(domain.ContentChunk{Content: "original"})
	env.categories.AddCategory("Kept")
	v, err := env.versions.SaveVersion(context.Background(),
		domain.VersionPayload{Chunks: env.chunks.Chunks()}, "snapshot", false)
	require.NoError(t, err)

	env.chunks.AddChunk(domain.ContentChunk{Content: "added later"})

	out, err := execute(t, "versions", "restore", v.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored snapshot: 1 chunks, 1 categories")

	chunks := env.chunks.Chunks()
	require.Len(t, chunks, 1)
	assert.Equal(t, "original", chunks[0].Content)
	// The version held no categories, so they are left alone.
	assert.Len(t, env.categories.Categories(), 1)

	ws := savedWorkspace(t, env)
	assert.Len(t, ws.Chunks, 1)
}

func TestVersionsRestore_EmptyCategoriesInLaterRun(t *testing.T) {
	backend, local := memory.NewBackend(), memory.NewLocalStore()

	first := newEnv(t, backend, local, nil)
	_, err := execute(t, "chunk", "add", "before categories")
	require.NoError(t, err)
	_, err = execute(t, "versions", "save", "--name", "no categories")
	require.NoError(t, err)
	_, err = execute(t, "category", "add", "Added later")
	require.NoError(t, err)
	versions, err := first.versions.Versions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 1)

	second := newEnv(t, backend, local, nil)
	out, err := execute(t, "versions", "restore", versions[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored no categories: 1 chunks, 0 categories")
	assert.Empty(t, second.categories.Categories())
	assert.Len(t, second.chunks.Chunks(), 1)
}

func TestVersionsRestore_ExportedBundle(t *testing.T) {
	env := setupTestServices(t)
	env.chunks.AddChunk(domain.ContentChunk{Content: "exported chunk"})

	var buf bytes.Buffer
	require.NoError(t, exportService.Export(context.Background(), &buf, domain.ExportOptions{
		Format:      domain.ExportFormatJSON,
		SaveVersion: true,
		VersionName: "release",
	}))
	env.chunks.Clear()

	versions, err := env.versions.Versions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, domain.VersionTypeExported, versions[0].Type)

	_, err = execute(t, "versions", "restore", versions[0].ID)
	require.NoError(t, err)
	chunks := env.chunks.Chunks()
	require.Len(t, chunks, 1)
	assert.Equal(t, "exported chunk", chunks[0].Content)
}

func TestVersionsDeleteAndStats(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	v1, err := env.versions.SaveVersion(ctx, domain.VersionPayload{Chunks: []domain.ContentChunk{}}, "", false)
	require.NoError(t, err)
	_, err = env.versions.SaveVersion(ctx, domain.VersionPayload{Chunks: []domain.ContentChunk{}}, "", true)
	require.NoError(t, err)

	out, err := execute(t, "versions", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:   2 (max 50)")
	assert.Contains(t, out, "Auto:    1")

	out, err = execute(t, "versions", "delete", v1.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted version")

	_, err = execute(t, "versions", "delete", v1.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err = execute(t, "versions", "stats", "--json")
	require.NoError(t, err)
	var stats domain.VersionStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Manual)
}
