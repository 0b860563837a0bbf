// Package notify delivers user-facing notifications through the logger and
// keeps the most recent ones for display.
package notify

import (
	"sync"

	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure the notifiers implement the interface.
var (
	_ driven.Notifier = (*LogNotifier)(nil)
	_ driven.Notifier = (*Recorder)(nil)
	_ driven.Notifier = Multi(nil)
)

// LogNotifier writes notifications as log lines. Critical notifications are
// logged as errors so they show at every level.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs n.
func (LogNotifier) Notify(n driven.Notification) {
	switch n.Severity {
	case driven.SeverityCritical:
		logger.Error("%s: %s", n.Title, n.Message)
	case driven.SeverityWarning:
		logger.Warn("%s: %s", n.Title, n.Message)
	default:
		logger.Info("%s: %s", n.Title, n.Message)
	}
}

// DefaultCapacity is how many notifications a Recorder keeps.
const DefaultCapacity = 20

// Recorder keeps the last notifications in arrival order.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	items    []driven.Notification
}

// NewRecorder creates a recorder. A capacity below 1 means DefaultCapacity.
func NewRecorder(capacity int) *Recorder {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Recorder{capacity: capacity}
}

// Notify records n, dropping the oldest entry when full.
func (r *Recorder) Notify(n driven.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	if len(r.items) > r.capacity {
		r.items = append([]driven.Notification(nil), r.items[len(r.items)-r.capacity:]...)
	}
}

// Recent returns a copy of the recorded notifications, oldest first.
func (r *Recorder) Recent() []driven.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]driven.Notification(nil), r.items...)
}

// Last returns the newest notification, if any.
func (r *Recorder) Last() (driven.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return driven.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Multi fans a notification out to every notifier in order.
type Multi []driven.Notifier

// Notify delivers n to each notifier.
func (m Multi) Notify(n driven.Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}
