package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
	"github.com/custodia-labs/contentbuilder/internal/sanitize"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService serialises the workspace for downstream pipelines.
type ExportService struct {
	chunks     *ChunkStore
	categories *CategoryStore
	versions   driving.VersionService
	now        func() time.Time
}

// NewExportService creates an export service. versions may be nil, in which
// case exports cannot be recorded as versions.
func NewExportService(chunks *ChunkStore, categories *CategoryStore, versions driving.VersionService) *ExportService {
	return &ExportService{
		chunks:     chunks,
		categories: categories,
		versions:   versions,
		now:        time.Now,
	}
}

// Bundle assembles the export document.
func (s *ExportService) Bundle(filteredOnly bool) domain.ExportBundle {
	chunks := s.chunks.Chunks()
	categories := s.categories.Categories()
	if filteredOnly {
		chunks = s.chunks.FilteredChunks()
		categories = s.categories.FilteredCategories()
	}
	if chunks == nil {
		chunks = []domain.ContentChunk{}
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	return domain.ExportBundle{
		Schema:     domain.SchemaVersion,
		ExportedAt: s.now().UTC().Truncate(time.Millisecond),
		Categories: categories,
		Chunks:     chunks,
		Stats: domain.ExportStats{
			Chunks:     len(chunks),
			Sources:    domain.CountSources(chunks),
			Categories: len(categories),
			Questions:  domain.CountQuestions(categories),
		},
	}
}

// Export writes the workspace to w in the requested format.
func (s *ExportService) Export(ctx context.Context, w io.Writer, opts domain.ExportOptions) error {
	if opts.Format == "" {
		opts.Format = domain.ExportFormatJSON
	}
	if !opts.Format.IsValid() {
		return fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, opts.Format)
	}
	if opts.SaveVersion && s.versions == nil {
		return fmt.Errorf("%w: no version store configured", domain.ErrInvalidInput)
	}

	bundle := s.Bundle(opts.FilteredOnly)

	out := w
	var zw *xz.Writer
	if opts.Compress {
		var err error
		zw, err = xz.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to start xz stream: %w", err)
		}
		out = zw
	}

	buf := bufio.NewWriter(out)
	if err := writeBundle(buf, &bundle, opts.Format); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to finish xz stream: %w", err)
		}
	}

	logger.Info("exported %d chunks as %s", bundle.Stats.Chunks, opts.Format)

	if opts.SaveVersion {
		payload := domain.VersionPayload{ExportedData: sanitize.Value(bundle)}
		if _, err := s.versions.SaveVersion(ctx, payload, opts.VersionName, false); err != nil {
			return fmt.Errorf("failed to record export version: %w", err)
		}
	}
	return nil
}

func writeBundle(w io.Writer, bundle *domain.ExportBundle, format domain.ExportFormat) error {
	switch format {
	case domain.ExportFormatJSONL:
		enc := json.NewEncoder(w)
		for i := range bundle.Chunks {
			if err := enc.Encode(&bundle.Chunks[i]); err != nil {
				return fmt.Errorf("failed to encode chunk %s: %w", bundle.Chunks[i].ID, err)
			}
		}
		return nil

	case domain.ExportFormatYAML:
		// Encoded from the sanitised form so field names match the JSON export.
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sanitize.Value(bundle)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundle); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}
