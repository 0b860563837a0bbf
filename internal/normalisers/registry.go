package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/normalisers/docx"
	"github.com/custodia-labs/contentbuilder/internal/normalisers/html"
	"github.com/custodia-labs/contentbuilder/internal/normalisers/markdown"
	"github.com/custodia-labs/contentbuilder/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches documents to the highest-priority normaliser that
// handles their MIME type. Equal priorities keep registration order.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry holding every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers the built-in normalisers.
func RegisterDefaults(r driven.NormaliserRegistry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
}

// Register adds a normaliser.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// lookup returns the preferred normaliser for mimeType, or nil.
func (r *Registry) lookup(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.normalisers {
		for _, mt := range n.SupportedMIMETypes() {
			if mt == mimeType {
				return n
			}
		}
	}
	return nil
}

// Normalise transforms a raw document with the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	n := r.lookup(raw.MIMEType)
	if n == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedType, raw.MIMEType)
	}
	return n.Normalise(ctx, raw)
}

// SupportedMIMETypes returns every MIME type some normaliser handles, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, mt := range n.SupportedMIMETypes() {
			seen[mt] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for mt := range seen {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

// DetectMIMEType guesses the MIME type of a named document.
func (r *Registry) DetectMIMEType(name string, content []byte) string {
	return DetectMIMEType(name, content)
}
