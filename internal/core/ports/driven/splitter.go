package driven

import (
	"context"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// ChunkSplitter turns a normalised document into content chunks.
// Returned chunks have no IDs; the chunk store assigns them on insert.
type ChunkSplitter interface {
	// Name returns the splitter name for logging.
	Name() string

	// Split divides the document into chunks of the configured size.
	Split(ctx context.Context, doc *domain.NormalisedDocument) ([]domain.ContentChunk, error)
}
