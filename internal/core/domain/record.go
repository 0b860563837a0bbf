package domain

import (
	"encoding/json"
	"time"
)

// RecordKind namespaces records held by a storage backend.
type RecordKind string

// Available record kinds.
const (
	// RecordKindAutosave marks debounced editor snapshots.
	RecordKindAutosave RecordKind = "autosave"

	// RecordKindVersion marks the version history list.
	RecordKindVersion RecordKind = "version"

	// RecordKindGeneric marks anything else.
	RecordKindGeneric RecordKind = "generic"
)

// IsValid returns true if the kind is recognised.
func (k RecordKind) IsValid() bool {
	switch k {
	case RecordKindAutosave, RecordKindVersion, RecordKindGeneric:
		return true
	default:
		return false
	}
}

// Storage keys. These are persisted and must stay stable so older data can
// still be recovered.
const (
	KeyAutosave      = "contentbuilder_autosave"
	KeyEmergencySave = "contentbuilder_emergency_save"
	KeyVersions      = "contentbuilder_versions"
	KeyOnboarding    = "contentbuilder_onboarding"

	// FallbackSuffix is appended to a save key for its local fallback copy.
	FallbackSuffix = "_fallback"
)

// FallbackKey returns the local fallback key for a save key.
func FallbackKey(key string) string {
	return key + FallbackSuffix
}

// Record is a stored key/value pair.
type Record struct {
	Key       string          `json:"key"`
	Kind      RecordKind      `json:"kind"`
	Value     json.RawMessage `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

// Workspace is the editable state held by the collection stores.
// It is the payload of autosaves and the content of versions.
type Workspace struct {
	Categories []Category     `json:"categories"`
	Chunks     []ContentChunk `json:"chunks"`
}

// Clone returns a structurally independent copy of the workspace.
func (w *Workspace) Clone() Workspace {
	return Workspace{
		Categories: CloneCategories(w.Categories),
		Chunks:     CloneChunks(w.Chunks),
	}
}
