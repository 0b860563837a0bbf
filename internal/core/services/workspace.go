package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure WorkspaceService implements the interface.
var _ driving.WorkspaceService = (*WorkspaceService)(nil)

// WorkspaceService binds the collection stores to the persistence engine.
type WorkspaceService struct {
	chunks     *ChunkStore
	categories *CategoryStore
	autosave   driving.AutosaveService
	key        string

	// restoring suppresses autosave triggers while Restore writes the stores.
	restoring atomic.Bool
}

// NewWorkspaceService creates a workspace saving under domain.KeyAutosave.
func NewWorkspaceService(
	chunks *ChunkStore,
	categories *CategoryStore,
	autosave driving.AutosaveService,
) *WorkspaceService {
	return &WorkspaceService{
		chunks:     chunks,
		categories: categories,
		autosave:   autosave,
		key:        domain.KeyAutosave,
	}
}

// Snapshot returns a copy of both stores.
func (w *WorkspaceService) Snapshot() domain.Workspace {
	return domain.Workspace{
		Categories: w.categories.Categories(),
		Chunks:     w.chunks.Chunks(),
	}
}

// Restore replaces the content of both stores without triggering an autosave.
func (w *WorkspaceService) Restore(ws domain.Workspace) {
	w.restoring.Store(true)
	defer w.restoring.Store(false)

	w.categories.SetCategories(ws.Categories)
	w.chunks.SetChunks(ws.Chunks)
}

// StartAutosave subscribes to both stores. Each change schedules a debounced
// save of a fresh snapshot.
func (w *WorkspaceService) StartAutosave() func() {
	trigger := func(uint64) {
		if w.restoring.Load() {
			return
		}
		w.autosave.TriggerAutosave(w.Snapshot(), w.key)
	}
	stopChunks := w.chunks.Subscribe(trigger)
	stopCategories := w.categories.Subscribe(trigger)
	return func() {
		stopChunks()
		stopCategories()
	}
}

// RestoreOnStartup restores the emergency save if one exists, otherwise the
// autosave, otherwise the local fallback copy. Callers should save again
// when the returned source is Consumed.
func (w *WorkspaceService) RestoreOnStartup(ctx context.Context) (domain.RestoreSource, error) {
	emergency, err := w.autosave.LoadEmergencyData()
	if err != nil {
		return domain.RestoreNone, fmt.Errorf("failed to load emergency save: %w", err)
	}
	if emergency != nil {
		if ws, ok := decodeWorkspace(emergency); ok {
			w.Restore(ws)
			logger.Info("restored %d chunks from emergency save", len(ws.Chunks))
			return domain.RestoreEmergency, nil
		}
	}

	saved, source, err := w.autosave.Recover(ctx, w.key)
	if err != nil {
		return domain.RestoreNone, fmt.Errorf("failed to load autosave: %w", err)
	}
	if saved == nil {
		return domain.RestoreNone, nil
	}
	ws, ok := decodeWorkspace(saved)
	if !ok {
		return domain.RestoreNone, nil
	}
	w.Restore(ws)
	logger.Info("restored %d chunks from %s", len(ws.Chunks), source)
	return source, nil
}

func decodeWorkspace(payload map[string]any) (domain.Workspace, bool) {
	var ws domain.Workspace
	if err := DecodePayload(payload, &ws); err != nil {
		logger.Warn("discarding unreadable workspace: %v", err)
		return domain.Workspace{}, false
	}
	return ws, true
}

// SaveNow force-saves the current snapshot.
func (w *WorkspaceService) SaveNow(ctx context.Context) error {
	return w.autosave.ForceSave(ctx, w.Snapshot(), w.key)
}

// EmergencySave synchronously writes the current snapshot to the local store.
func (w *WorkspaceService) EmergencySave() error {
	w.autosave.CancelPending(w.key)
	return w.autosave.EmergencySave(w.Snapshot())
}
