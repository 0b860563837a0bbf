// Package mcp provides an MCP (Model Context Protocol) server adapter for
// contentbuilder. It lets AI pipelines read chunks and manage versions.
package mcp

import "errors"

// ErrMissingChunkService is returned when the chunk service is not provided.
var ErrMissingChunkService = errors.New("mcp: chunk service is required")
