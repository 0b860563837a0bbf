// Package tui provides the interactive chunk browser. It implements a
// driving adapter over the chunk store and the virtual scroll engine.
package tui

import (
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
)

// Ports aggregates the driving ports the browser uses.
type Ports struct {
	// Chunks is the browsed collection. Required.
	Chunks driving.ChunkService

	// Autosave, when set, has its state shown in the status bar.
	Autosave driving.AutosaveService

	// AutosaveKey is the key whose state is shown.
	AutosaveKey string

	// Scroll is the list geometry. Zero values take the defaults.
	Scroll domain.ScrollSettings
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Chunks == nil {
		return ErrMissingChunkService
	}
	return nil
}

func (p *Ports) scrollSettings() domain.ScrollSettings {
	s := p.Scroll
	defaults := domain.DefaultAppSettings().Scroll
	if s.ItemHeight <= 0 {
		s.ItemHeight = defaults.ItemHeight
	}
	if s.Buffer <= 0 {
		s.Buffer = defaults.Buffer
	}
	if s.Overscan <= 0 {
		s.Overscan = defaults.Overscan
	}
	return s
}
