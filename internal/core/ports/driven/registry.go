package driven

import (
	"context"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	// Returns domain.ErrUnsupportedType if no normaliser handles the MIME type.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalisedDocument, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string

	// DetectMIMEType guesses the MIME type of a named document.
	DetectMIMEType(name string, content []byte) string
}
