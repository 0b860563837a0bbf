// Package logger provides leveled logging for the contentbuilder CLI.
// Warnings and errors are always written to stderr. When verbose mode is
// enabled via the --verbose flag, debug and info messages are printed too,
// which helps users follow the autosave and import pipelines.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level when not verbose: debug, info, warn, error.
	Level string

	// Format is the output format: console or json.
	Format string
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	level             = zerolog.WarnLevel
	format            = "console"
	log     zerolog.Logger
)

//nolint:gochecknoinits // logging must work before Init is called
func init() {
	rebuild()
}

// Init applies the configured level and format.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(cfg.Level)
	if cfg.Format != "" {
		format = strings.ToLower(cfg.Format)
	}
	rebuild()
}

// rebuild recreates the logger. Must be called with mu held.
func rebuild() {
	lvl := level
	if verbose {
		lvl = zerolog.DebugLevel
	}

	if format == "json" {
		log = zerolog.New(output).Level(lvl).With().Timestamp().Logger()
		return
	}

	w := zerolog.ConsoleWriter{
		Out:        output,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
	}
	log = zerolog.New(w).Level(lvl)
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// L returns the underlying zerolog logger for structured fields.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode or the info level is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Msgf(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msgf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error().Msgf(format, args...)
}
