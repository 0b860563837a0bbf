package mcp

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/services"
)

type fixture struct {
	server     *Server
	chunks     *services.ChunkStore
	categories *services.CategoryStore
	versions   *services.VersionStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		chunks:     services.NewChunkStore(),
		categories: services.NewCategoryStore(),
		versions:   services.NewVersionStore(memory.NewBackend(), memory.NewLocalStore()),
	}
	server, err := NewServer(&Ports{
		Chunks:     f.chunks,
		Categories: f.categories,
		Versions:   f.versions,
	})
	require.NoError(t, err)
	f.server = server
	return f
}

func (f *fixture) addChunk(content, source string, tags ...string) domain.ContentChunk {
	return f.chunks.AddChunk(domain.ContentChunk{Content: content, Source: source, Tags: tags})
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}
