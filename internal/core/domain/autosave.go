package domain

import "time"

// SchemaVersion tags every autosave payload.
const SchemaVersion = "2.0"

// MaxFallbackBytes caps the size of a local fallback copy.
const MaxFallbackBytes = 5 * 1024 * 1024

// AutosaveState is the lifecycle position of one save key.
type AutosaveState string

// Autosave states.
const (
	AutosaveIdle           AutosaveState = "idle"
	AutosaveDebouncing     AutosaveState = "debouncing"
	AutosaveSaving         AutosaveState = "saving"
	AutosaveRetrying       AutosaveState = "retrying"
	AutosaveFallbackSaving AutosaveState = "fallback_saving"
)

// AutosaveStats are rolling statistics of the persistence engine.
// They are observational only.
type AutosaveStats struct {
	SaveCount       int           `json:"saveCount"`
	FailureCount    int           `json:"failureCount"`
	FallbackCount   int           `json:"fallbackCount"`
	TotalDuration   time.Duration `json:"totalDuration"`
	AverageDuration time.Duration `json:"averageDuration"`
	LastDuration    time.Duration `json:"lastDuration"`
	LastSaveSize    int           `json:"lastSaveSize"`
	LastSaveTime    time.Time     `json:"lastSaveTime"`
}

// RestoreSource names where a startup restore found its data.
type RestoreSource string

// Restore sources in the order they are tried.
const (
	RestoreNone      RestoreSource = "none"
	RestoreEmergency RestoreSource = "emergency"
	RestoreAutosave  RestoreSource = "autosave"
	RestoreFallback  RestoreSource = "fallback"
)

// Consumed reports whether restoring from s removed the stored copy, so the
// restored workspace only survives if it is saved again.
func (s RestoreSource) Consumed() bool {
	return s == RestoreEmergency || s == RestoreFallback
}
