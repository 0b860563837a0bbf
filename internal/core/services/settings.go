package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDebounceMs   = "autosave.debounce_ms"
	keyMaxRetries   = "autosave.max_retries"
	keyRetryDelayMs = "autosave.retry_delay_ms"
	keyBackend      = "storage.backend"
	keyDataDir      = "storage.data_dir"
	keyChunkSize    = "chunking.size"
	keyChunkOverlap = "chunking.overlap"
	keyChunkMode    = "chunking.mode"
	keyItemHeight   = "scroll.item_height"
	keyScrollBuffer = "scroll.buffer"
	keyOverscan     = "scroll.overscan"
	keyLogLevel     = "log.level"
	keyLogFormat    = "log.format"
	keyTagRules     = "tagging.rules"
)

// SettingKeys lists every recognised setting key in display order.
var SettingKeys = []string{
	keyDebounceMs, keyMaxRetries, keyRetryDelayMs,
	keyBackend, keyDataDir,
	keyChunkSize, keyChunkOverlap, keyChunkMode,
	keyItemHeight, keyScrollBuffer, keyOverscan,
	keyLogLevel, keyLogFormat,
	keyTagRules,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(),
	}
}

// Get retrieves current application settings. Missing keys take defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Autosave: domain.AutosaveSettings{
			DebounceMs:   s.getInt(keyDebounceMs, defaults.Autosave.DebounceMs),
			MaxRetries:   s.getInt(keyMaxRetries, defaults.Autosave.MaxRetries),
			RetryDelayMs: s.getInt(keyRetryDelayMs, defaults.Autosave.RetryDelayMs),
		},
		Storage: domain.StorageSettings{
			Backend: domain.StorageBackendType(s.getString(keyBackend, defaults.Storage.Backend.String())),
			DataDir: s.configStore.GetString(keyDataDir),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
			Mode:    domain.ChunkingMode(s.getString(keyChunkMode, defaults.Chunking.Mode.String())),
		},
		Scroll: domain.ScrollSettings{
			ItemHeight: s.getInt(keyItemHeight, defaults.Scroll.ItemHeight),
			Buffer:     s.getInt(keyScrollBuffer, defaults.Scroll.Buffer),
			Overscan:   s.getInt(keyOverscan, defaults.Scroll.Overscan),
		},
		Log: domain.LogSettings{
			Level:  s.getString(keyLogLevel, defaults.Log.Level),
			Format: s.getString(keyLogFormat, defaults.Log.Format),
		},
		Tagging: domain.TaggingSettings{
			Rules: s.configStore.GetStringSlice(keyTagRules),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.Validate(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyDebounceMs, settings.Autosave.DebounceMs},
		{keyMaxRetries, settings.Autosave.MaxRetries},
		{keyRetryDelayMs, settings.Autosave.RetryDelayMs},
		{keyBackend, settings.Storage.Backend.String()},
		{keyDataDir, settings.Storage.DataDir},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyChunkMode, settings.Chunking.Mode.String()},
		{keyItemHeight, settings.Scroll.ItemHeight},
		{keyScrollBuffer, settings.Scroll.Buffer},
		{keyOverscan, settings.Scroll.Overscan},
		{keyLogLevel, settings.Log.Level},
		{keyLogFormat, settings.Log.Format},
		{keyTagRules, append([]string{}, settings.Tagging.Rules...)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key, validates the result and saves it.
// tagging.rules takes a comma-separated list.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case keyDebounceMs:
		err = setInt(&settings.Autosave.DebounceMs, key, value)
	case keyMaxRetries:
		err = setInt(&settings.Autosave.MaxRetries, key, value)
	case keyRetryDelayMs:
		err = setInt(&settings.Autosave.RetryDelayMs, key, value)
	case keyBackend:
		settings.Storage.Backend = domain.StorageBackendType(value)
	case keyDataDir:
		settings.Storage.DataDir = value
	case keyChunkSize:
		err = setInt(&settings.Chunking.Size, key, value)
	case keyChunkOverlap:
		err = setInt(&settings.Chunking.Overlap, key, value)
	case keyChunkMode:
		settings.Chunking.Mode = domain.ChunkingMode(value)
	case keyItemHeight:
		err = setInt(&settings.Scroll.ItemHeight, key, value)
	case keyScrollBuffer:
		err = setInt(&settings.Scroll.Buffer, key, value)
	case keyOverscan:
		err = setInt(&settings.Scroll.Overscan, key, value)
	case keyLogLevel:
		settings.Log.Level = strings.ToLower(value)
	case keyLogFormat:
		settings.Log.Format = strings.ToLower(value)
	case keyTagRules:
		settings.Tagging.Rules = splitList(value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return err
	}

	return s.Save(settings)
}

// Validate checks settings against their struct constraints.
func (s *SettingsService) Validate(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("%s fails %s", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, value)
	}
	*dst = n
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
