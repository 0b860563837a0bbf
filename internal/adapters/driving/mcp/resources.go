package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

const (
	uriScheme = "contentbuilder://"
	mimeJSON  = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chunks",
		Name:        "chunks",
		Description: "Every content chunk in the workspace",
		MIMEType:    mimeJSON,
	}, s.handleChunksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{chunkId}",
		Name:        "chunk",
		Description: "A single content chunk",
		MIMEType:    mimeJSON,
	}, s.handleChunkResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "versions",
		Name:        "versions",
		Description: "Saved versions without their payloads",
		MIMEType:    mimeJSON,
	}, s.handleVersionsResource)
}

func (s *Server) handleChunksResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	chunks := s.ports.Chunks.Chunks()
	if chunks == nil {
		chunks = []domain.ContentChunk{}
	}
	return jsonResult(req.Params.URI, chunks)
}

func (s *Server) handleChunkResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractChunkID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	chunk, err := s.ports.Chunks.Get(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting chunk: %w", err)
	}
	return jsonResult(req.Params.URI, chunk)
}

func (s *Server) handleVersionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	out := []VersionOutput{}
	if s.ports.Versions != nil {
		versions, err := s.ports.Versions.Versions(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing versions: %w", err)
		}
		for i := range versions {
			out = append(out, toVersionOutput(&versions[i]))
		}
	}
	return jsonResult(req.Params.URI, out)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

// extractChunkID extracts the chunk ID from contentbuilder://chunks/{chunkId}.
func extractChunkID(uri string) string {
	const prefix = uriScheme + "chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
