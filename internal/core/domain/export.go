package domain

import "time"

// ExportFormat selects the serialisation of an export.
type ExportFormat string

// Available export formats.
const (
	ExportFormatJSON  ExportFormat = "json"
	ExportFormatJSONL ExportFormat = "jsonl"
	ExportFormatYAML  ExportFormat = "yaml"
)

// IsValid returns true if the format is recognised.
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatJSON, ExportFormatJSONL, ExportFormatYAML:
		return true
	default:
		return false
	}
}

// Extension returns the file extension for the format, without compression.
func (f ExportFormat) Extension() string {
	return "." + string(f)
}

// ExportOptions controls an export.
type ExportOptions struct {
	Format ExportFormat

	// Compress wraps the output in an xz stream.
	Compress bool

	// FilteredOnly exports the filtered chunk view instead of the full one.
	FilteredOnly bool

	// SaveVersion records the bundle as an exported version.
	SaveVersion bool

	// VersionName names the exported version. Empty uses the default name.
	VersionName string
}

// ExportBundle is the document written by json and yaml exports.
type ExportBundle struct {
	Schema     string         `json:"schema"`
	ExportedAt time.Time      `json:"exportedAt"`
	Categories []Category     `json:"categories"`
	Chunks     []ContentChunk `json:"chunks"`
	Stats      ExportStats    `json:"stats"`
}

// ExportStats are counts included in an export bundle.
type ExportStats struct {
	Chunks     int `json:"chunks"`
	Sources    int `json:"sources"`
	Categories int `json:"categories"`
	Questions  int `json:"questions"`
}

// ImportResult reports the outcome of importing one document.
type ImportResult struct {
	Filename string         `json:"filename"`
	MIMEType string         `json:"mimeType"`
	Chunks   []ContentChunk `json:"chunks"`
}
