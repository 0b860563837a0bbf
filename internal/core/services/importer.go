package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// ImportService runs files through normalisation and splitting and appends
// the resulting chunks to the chunk store.
type ImportService struct {
	registry driven.NormaliserRegistry
	splitter driven.ChunkSplitter
	chunks   *ChunkStore
}

// NewImportService creates an import service.
func NewImportService(
	registry driven.NormaliserRegistry,
	splitter driven.ChunkSplitter,
	chunks *ChunkStore,
) *ImportService {
	return &ImportService{
		registry: registry,
		splitter: splitter,
		chunks:   chunks,
	}
}

// ImportFile reads path and imports its content.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*domain.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.ImportBytes(ctx, path, data)
}

// ImportBytes imports an in-memory document. All chunks it yields are added
// with one store notification.
func (s *ImportService) ImportBytes(ctx context.Context, name string, data []byte) (*domain.ImportResult, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mimeType := s.registry.DetectMIMEType(name, data)
	logger.Debug("import %s as %s", name, mimeType)

	doc, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:      name,
		MIMEType: mimeType,
		Content:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to normalise %s: %w", name, err)
	}
	if doc.Filename == "" {
		doc.Filename = filepath.Base(name)
	}

	parts, err := s.splitter.Split(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to split %s with %s: %w", name, s.splitter.Name(), err)
	}
	for i := range parts {
		if parts[i].Source == "" {
			parts[i].Source = doc.Filename
		}
		parts[i].Metadata.Type = domain.ChunkOriginDocument
		if parts[i].Metadata.Title == "" {
			parts[i].Metadata.Title = doc.Title
		}
	}

	added := s.chunks.AddChunks(parts)
	logger.Info("imported %s: %d chunks", doc.Filename, len(added))

	return &domain.ImportResult{
		Filename: doc.Filename,
		MIMEType: mimeType,
		Chunks:   added,
	}, nil
}
