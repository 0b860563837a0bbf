package postprocessors

import (
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in chunking modes.
func RegisterDefaults(r *Registry) {
	for _, mode := range []domain.ChunkingMode{
		domain.ChunkingModeCharacters,
		domain.ChunkingModeSentences,
		domain.ChunkingModeParagraphs,
	} {
		r.Register(mode.String(), buildChunker)
	}
}

// NewSplitter builds the splitter for settings with the default registry.
func NewSplitter(settings domain.ChunkingSettings) (driven.ChunkSplitter, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Build(settings)
}

// buildChunker creates a chunker from settings. Zero size and negative
// overlap fall back to the chunker defaults.
func buildChunker(settings domain.ChunkingSettings) (driven.ChunkSplitter, error) {
	if settings.Mode == "" {
		settings.Mode = domain.ChunkingModeCharacters
	}
	return chunker.New(chunker.FromSettings(settings)...), nil
}
