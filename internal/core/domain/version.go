package domain

import "time"

// MaxVersions is the retention cap of the version history.
const MaxVersions = 50

// VersionType classifies a version by the payload it carries.
type VersionType string

// Available version types.
const (
	// VersionTypeCategories holds only legacy categories.
	VersionTypeCategories VersionType = "categories"

	// VersionTypeChunks holds chunks, with or without categories.
	VersionTypeChunks VersionType = "chunks"

	// VersionTypeExported holds an export bundle.
	VersionTypeExported VersionType = "exported"
)

// Version is an immutable historical snapshot of the workspace.
type Version struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         VersionType    `json:"type"`
	Categories   []Category     `json:"categories"`
	Chunks       []ContentChunk `json:"chunks"`
	ExportedData any            `json:"exportedData,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	IsAutoSave   bool           `json:"isAutoSave"`

	QuestionCount int `json:"questionCount,omitempty"`
	CategoryCount int `json:"categoryCount,omitempty"`
	ChunkCount    int `json:"chunkCount,omitempty"`
	SourceCount   int `json:"sourceCount,omitempty"`
}

// VersionPayload is the content handed to the version store.
// A nil field is absent; an empty non-nil slice is present but empty.
type VersionPayload struct {
	Categories   []Category
	Chunks       []ContentChunk
	ExportedData any
}

// InferType picks the version type from the fields present in the payload.
// Exported data takes priority; chunks (alone or with categories) come next.
func (p VersionPayload) InferType() VersionType {
	switch {
	case p.ExportedData != nil:
		return VersionTypeExported
	case p.Chunks != nil:
		return VersionTypeChunks
	default:
		return VersionTypeCategories
	}
}

// IsEmpty reports whether the payload carries nothing at all.
func (p VersionPayload) IsEmpty() bool {
	return p.Categories == nil && p.Chunks == nil && p.ExportedData == nil
}

// VersionStats summarises the version history.
type VersionStats struct {
	Total  int        `json:"total"`
	Auto   int        `json:"auto"`
	Manual int        `json:"manual"`
	Oldest *time.Time `json:"oldest,omitempty"`
	Newest *time.Time `json:"newest,omitempty"`
}
