package driven

import (
	"context"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// Normaliser extracts plain text from an imported document.
// Each normaliser handles specific MIME types (e.g., Markdown, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the text and filename from a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalisedDocument, error)
}
