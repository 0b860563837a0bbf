package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

const defaultSearchLimit = 10

// errNoVersions is returned by version tools when no version store is wired.
var errNoVersions = errors.New("version history is not available")

// SearchChunksInput is the input schema for the search_chunks tool.
type SearchChunksInput struct {
	Query string `json:"query" jsonschema:"text to find in chunk content, source or tags (case insensitive)"`
	Tag   string `json:"tag,omitempty" jsonschema:"only return chunks carrying this tag"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchChunksOutput is the output schema for the search_chunks tool.
type SearchChunksOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
	Total  int           `json:"total"`
}

// ChunkOutput is one chunk as returned to the client.
type ChunkOutput struct {
	ID      string   `json:"id"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
	Words   int      `json:"words"`
}

// ListVersionsInput is the input schema for the list_versions tool.
type ListVersionsInput struct {
	AutoSaves bool `json:"auto_saves,omitempty" jsonschema:"include automatic saves"`
}

// ListVersionsOutput is the output schema for the list_versions tool.
type ListVersionsOutput struct {
	Versions []VersionOutput `json:"versions"`
	Count    int             `json:"count"`
}

// VersionOutput summarises one version without its payload.
type VersionOutput struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	IsAutoSave bool      `json:"is_auto_save"`
	Chunks     int       `json:"chunks"`
	Categories int       `json:"categories"`
	Questions  int       `json:"questions"`
}

// SaveVersionInput is the input schema for the save_version tool.
type SaveVersionInput struct {
	Name string `json:"name,omitempty" jsonschema:"version name (defaults to a timestamped name)"`
	Type string `json:"type,omitempty" jsonschema:"what to snapshot: chunks (default) or categories"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_chunks",
		Description: "Search content chunks by text and tag",
	}, s.handleSearchChunks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_versions",
		Description: "List saved versions of the workspace, newest first",
	}, s.handleListVersions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_version",
		Description: "Save the current chunks or categories as a named version",
	}, s.handleSaveVersion)
}

// handleSearchChunks matches against a copy of the collection so the user's
// active filter is left alone.
func (s *Server) handleSearchChunks(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchChunksInput,
) (*mcp.CallToolResult, SearchChunksOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	needle := strings.ToLower(strings.TrimSpace(input.Query))

	output := SearchChunksOutput{Chunks: []ChunkOutput{}}
	for _, c := range s.ports.Chunks.Chunks() {
		if input.Tag != "" && !c.HasTag(input.Tag) {
			continue
		}
		if needle != "" && !matchesChunk(&c, needle) {
			continue
		}
		output.Total++
		if len(output.Chunks) < limit {
			output.Chunks = append(output.Chunks, toChunkOutput(&c))
		}
	}
	output.Count = len(output.Chunks)
	return nil, output, nil
}

func matchesChunk(c *domain.ContentChunk, needle string) bool {
	if strings.Contains(strings.ToLower(c.Content), needle) ||
		strings.Contains(strings.ToLower(c.Source), needle) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func toChunkOutput(c *domain.ContentChunk) ChunkOutput {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return ChunkOutput{
		ID:      c.ID,
		Source:  c.Source,
		Tags:    tags,
		Content: c.Content,
		Words:   c.Stats.Words,
	}
}

func (s *Server) handleListVersions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListVersionsInput,
) (*mcp.CallToolResult, ListVersionsOutput, error) {
	if s.ports.Versions == nil {
		return nil, ListVersionsOutput{}, errNoVersions
	}
	versions, err := s.ports.Versions.Versions(ctx)
	if err != nil {
		return nil, ListVersionsOutput{}, fmt.Errorf("listing versions: %w", err)
	}

	output := ListVersionsOutput{Versions: []VersionOutput{}}
	for i := range versions {
		if versions[i].IsAutoSave && !input.AutoSaves {
			continue
		}
		output.Versions = append(output.Versions, toVersionOutput(&versions[i]))
	}
	output.Count = len(output.Versions)
	return nil, output, nil
}

func toVersionOutput(v *domain.Version) VersionOutput {
	return VersionOutput{
		ID:         v.ID,
		Name:       v.Name,
		Type:       string(v.Type),
		Timestamp:  v.Timestamp,
		IsAutoSave: v.IsAutoSave,
		Chunks:     v.ChunkCount,
		Categories: v.CategoryCount,
		Questions:  v.QuestionCount,
	}
}

func (s *Server) handleSaveVersion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveVersionInput,
) (*mcp.CallToolResult, VersionOutput, error) {
	if s.ports.Versions == nil {
		return nil, VersionOutput{}, errNoVersions
	}

	var payload domain.VersionPayload
	switch domain.VersionType(input.Type) {
	case "", domain.VersionTypeChunks:
		payload.Chunks = s.ports.Chunks.Chunks()
		if payload.Chunks == nil {
			payload.Chunks = []domain.ContentChunk{}
		}
	case domain.VersionTypeCategories:
		if s.ports.Categories == nil {
			return nil, VersionOutput{}, errors.New("categories are not available")
		}
		payload.Categories = s.ports.Categories.Categories()
		if payload.Categories == nil {
			payload.Categories = []domain.Category{}
		}
	default:
		return nil, VersionOutput{}, fmt.Errorf("unknown version type %q", input.Type)
	}

	v, err := s.ports.Versions.SaveVersion(ctx, payload, input.Name, false)
	if err != nil {
		return nil, VersionOutput{}, fmt.Errorf("saving version: %w", err)
	}
	return nil, toVersionOutput(v), nil
}
