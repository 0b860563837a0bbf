package mcp

import (
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server uses.
type Ports struct {
	// Chunks is the chunk store. Required.
	Chunks driving.ChunkService

	// Categories is included in saved versions when set.
	Categories driving.CategoryService

	// Versions enables the version tools and resource.
	Versions driving.VersionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chunks == nil {
		return ErrMissingChunkService
	}
	return nil
}
