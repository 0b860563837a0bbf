package driven

import "time"

// SaveOutcome describes how an autosave ended.
type SaveOutcome string

// Available save outcomes.
const (
	// SaveOutcomeSaved means the primary backend accepted the write.
	SaveOutcomeSaved SaveOutcome = "saved"

	// SaveOutcomeFallback means the primary failed and the local copy was written.
	SaveOutcomeFallback SaveOutcome = "fallback"

	// SaveOutcomeFailed means both the primary and the fallback failed.
	SaveOutcomeFailed SaveOutcome = "failed"
)

// SaveEvent reports one completed autosave.
type SaveEvent struct {
	Key      string
	Outcome  SaveOutcome
	Attempts int
	Duration time.Duration
	Bytes    int
}

// AutosaveObserver receives autosave events. Calls are made synchronously
// from the save path and must not block.
type AutosaveObserver interface {
	ObserveSave(event SaveEvent)
}

// VersionObserver receives the size of the version history after each change.
type VersionObserver interface {
	ObserveVersions(total, auto int)
}
