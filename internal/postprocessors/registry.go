// Package postprocessors builds chunk splitters from chunking settings.
package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// BuilderFunc creates a ChunkSplitter from chunking settings.
type BuilderFunc func(settings domain.ChunkingSettings) (driven.ChunkSplitter, error)

// Registry maps chunking mode names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new splitter registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder under name, replacing any previous one.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates the splitter for settings.Mode. An empty mode means
// characters.
func (r *Registry) Build(settings domain.ChunkingSettings) (driven.ChunkSplitter, error) {
	name := settings.Mode.String()
	if name == "" {
		name = domain.ChunkingModeCharacters.String()
	}
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown chunking mode %q", domain.ErrInvalidInput, name)
	}
	return builder(settings)
}

// Has returns true if a builder with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
