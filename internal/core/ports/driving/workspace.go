package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// WorkspaceService ties the collection stores to persistence.
type WorkspaceService interface {
	// Snapshot returns a copy of both stores.
	Snapshot() domain.Workspace

	// Restore replaces the content of both stores.
	Restore(ws domain.Workspace)

	// StartAutosave triggers a debounced save on every store change.
	// The returned function stops it.
	StartAutosave() func()

	// RestoreOnStartup loads the emergency save, then the autosave, into
	// the stores and reports where the data came from.
	RestoreOnStartup(ctx context.Context) (domain.RestoreSource, error)

	// SaveNow force-saves the current snapshot.
	SaveNow(ctx context.Context) error

	// EmergencySave synchronously writes the current snapshot locally.
	EmergencySave() error
}

// ImportService turns files into chunks.
type ImportService interface {
	// ImportFile reads, normalises and splits a file into the chunk store.
	ImportFile(ctx context.Context, path string) (*domain.ImportResult, error)

	// ImportBytes imports an in-memory document named name.
	ImportBytes(ctx context.Context, name string, data []byte) (*domain.ImportResult, error)
}

// ExportService writes the workspace for downstream pipelines.
type ExportService interface {
	Export(ctx context.Context, w io.Writer, opts domain.ExportOptions) error
}

// AutoTagService proposes and applies keyword-based tags.
type AutoTagService interface {
	// Propose returns tags each chunk would gain. Chunks gaining nothing are omitted.
	Propose() []domain.TagProposal

	// Apply adds proposed tags and returns the number of chunks changed.
	Apply() int
}

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting by dotted key from its string form.
	Set(key, value string) error

	// Validate checks settings against their constraints.
	Validate(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
