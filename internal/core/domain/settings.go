package domain

// ChunkingMode selects how imported documents are split into chunks.
type ChunkingMode string

// Available chunking modes.
const (
	// ChunkingModeCharacters splits on a fixed character budget with overlap.
	ChunkingModeCharacters ChunkingMode = "characters"

	// ChunkingModeSentences packs whole sentences up to the size budget.
	ChunkingModeSentences ChunkingMode = "sentences"

	// ChunkingModeParagraphs packs whole paragraphs up to the size budget.
	ChunkingModeParagraphs ChunkingMode = "paragraphs"
)

// IsValid returns true if the mode is recognised.
func (m ChunkingMode) IsValid() bool {
	switch m {
	case ChunkingModeCharacters, ChunkingModeSentences, ChunkingModeParagraphs:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ChunkingMode) String() string {
	return string(m)
}

// StorageBackendType selects the StorageBackend implementation.
type StorageBackendType string

// Available storage backends.
const (
	// StorageBackendBadger is the durable native default.
	StorageBackendBadger StorageBackendType = "badger"

	// StorageBackendSQLite stores records in a SQLite database.
	StorageBackendSQLite StorageBackendType = "sqlite"

	// StorageBackendFS stores records as files on a virtual filesystem.
	StorageBackendFS StorageBackendType = "fs"

	// StorageBackendMemory keeps records in process memory only.
	StorageBackendMemory StorageBackendType = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackendType) IsValid() bool {
	switch b {
	case StorageBackendBadger, StorageBackendSQLite, StorageBackendFS, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackendType) String() string {
	return string(b)
}

// IsDurable returns true if the backend survives a restart.
func (b StorageBackendType) IsDurable() bool {
	return b != StorageBackendMemory
}

// Default setting values.
const (
	DefaultDebounceMs   = 1000
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultItemHeight   = 3
	DefaultScrollBuffer = 5
	DefaultOverscan     = 3
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "console"
)

// AppSettings is the complete application configuration.
type AppSettings struct {
	Autosave AutosaveSettings
	Storage  StorageSettings
	Chunking ChunkingSettings
	Scroll   ScrollSettings
	Log      LogSettings
	Tagging  TaggingSettings
}

// AutosaveSettings tunes the persistence engine.
type AutosaveSettings struct {
	// DebounceMs is the quiet period before a triggered autosave runs.
	DebounceMs int `validate:"gte=0,lte=600000"`

	// MaxRetries is the number of primary write attempts before falling back.
	MaxRetries int `validate:"gte=1,lte=10"`

	// RetryDelayMs is the base delay; attempt n waits RetryDelayMs*n.
	RetryDelayMs int `validate:"gte=0,lte=60000"`
}

// StorageSettings selects and locates the storage backend.
type StorageSettings struct {
	Backend StorageBackendType `validate:"oneof=badger sqlite fs memory"`

	// DataDir holds durable backend files and the local fallback store.
	// Empty means the default under the config directory.
	DataDir string
}

// ChunkingSettings configures the document splitter.
type ChunkingSettings struct {
	Size    int          `validate:"gt=0,lte=100000"`
	Overlap int          `validate:"gte=0,ltfield=Size"`
	Mode    ChunkingMode `validate:"oneof=characters sentences paragraphs"`
}

// ScrollSettings configures the virtual scroll engine in terminal rows.
type ScrollSettings struct {
	ItemHeight int `validate:"gt=0"`
	Buffer     int `validate:"gte=0"`
	Overscan   int `validate:"gte=0"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=console json"`
}

// TaggingSettings holds auto-tagging rules in "keyword=tag" form.
type TaggingSettings struct {
	Rules []string `validate:"dive,contains=="`
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Autosave: AutosaveSettings{
			DebounceMs:   DefaultDebounceMs,
			MaxRetries:   DefaultMaxRetries,
			RetryDelayMs: DefaultRetryDelayMs,
		},
		Storage: StorageSettings{
			Backend: StorageBackendBadger,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
			Mode:    ChunkingModeCharacters,
		},
		Scroll: ScrollSettings{
			ItemHeight: DefaultItemHeight,
			Buffer:     DefaultScrollBuffer,
			Overscan:   DefaultOverscan,
		},
		Log: LogSettings{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
