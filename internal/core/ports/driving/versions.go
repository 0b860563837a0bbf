package driving

import (
	"context"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// VersionService manages the capped, newest-first version history.
type VersionService interface {
	// SaveVersion records a new version. An empty name gets a default.
	SaveVersion(ctx context.Context, payload domain.VersionPayload, name string, isAutoSave bool) (*domain.Version, error)

	// UpdateVersion replaces the content of an existing version.
	// Returns nil if no version has the ID.
	UpdateVersion(ctx context.Context, id string, payload domain.VersionPayload, name string) (*domain.Version, error)

	// LoadVersion returns a copy of a version, or nil if absent.
	LoadVersion(ctx context.Context, id string) (*domain.Version, error)

	// DeleteVersion removes a version and reports whether it existed.
	DeleteVersion(ctx context.Context, id string) (bool, error)

	// Versions returns copies of all versions, newest first.
	Versions(ctx context.Context) ([]domain.Version, error)

	// Stats summarises the history.
	Stats(ctx context.Context) (domain.VersionStats, error)
}
