package driving

import (
	"context"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// AutosaveService debounces, serialises and recovers workspace saves.
type AutosaveService interface {
	// TriggerAutosave schedules a save of data after the debounce period.
	// A new trigger for the same key restarts the timer with the new data.
	TriggerAutosave(data any, key string)

	// PerformAutosave saves data now, queued behind any save in progress.
	PerformAutosave(ctx context.Context, data any, key string) error

	// ForceSave cancels the pending debounce for key and saves immediately.
	ForceSave(ctx context.Context, data any, key string) error

	// CancelPending drops the pending debounce for key without saving.
	CancelPending(key string)

	// Flush runs every pending debounced save now and waits for them.
	Flush(ctx context.Context) error

	// LoadData returns the saved payload for key, or nil if there is nothing
	// to restore or a save is queued or running.
	LoadData(ctx context.Context, key string) (map[string]any, error)

	// Recover is LoadData that also reports the source of the payload:
	// RestoreAutosave for the primary record, RestoreFallback for the
	// consumed local copy, RestoreNone when nothing was found.
	Recover(ctx context.Context, key string) (map[string]any, domain.RestoreSource, error)

	// EmergencySave writes data synchronously to the local store.
	EmergencySave(data any) error

	// LoadEmergencyData returns and consumes the emergency payload, if any.
	LoadEmergencyData() (map[string]any, error)

	// State returns the lifecycle state of a save key.
	State(key string) domain.AutosaveState

	// Stats returns rolling save statistics.
	Stats() domain.AutosaveStats

	// Close cancels all pending debounces.
	Close()
}
