package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
	Init(Config{Level: "warn", Format: "console"})
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "test message arg")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")

	assert.Zero(t, buf.Len(), "expected no output when verbose is disabled")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Autosave")

	assert.Equal(t, "\n=== Autosave ===\n", buf.String())
}

func TestSection_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Autosave")

	assert.Zero(t, buf.Len())
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("loaded %d chunks", 3)

	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "loaded 3 chunks")
}

func TestWarn_AlwaysWritten(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("retrying save %d", 2)
	Error("save failed")

	assert.Contains(t, buf.String(), "[WARN]")
	assert.Contains(t, buf.String(), "retrying save 2")
	assert.Contains(t, buf.String(), "[ERROR]")
}

func TestInit_ErrorLevelSuppressesWarn(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	Init(Config{Level: "error"})

	Warn("quiet")

	assert.Zero(t, buf.Len())
}

func TestInit_JSONFormat(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	Init(Config{Level: "info", Format: "json"})

	Info("hello %s", "json")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "hello json", entry["message"])
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	var bufMu sync.Mutex
	SetOutput(writerFunc(func(p []byte) (int, error) {
		bufMu.Lock()
		defer bufMu.Unlock()
		return buf.Write(p)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent")
		}()
		go func() {
			defer wg.Done()
			_ = IsVerbose()
			Warn("concurrent")
		}()
	}
	wg.Wait()
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
