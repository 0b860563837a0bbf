package virtualscroll

import (
	"sync"
	"time"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// Scroller performs programmatic scrolls for the engine. Implementations
// may clamp offsets past the end of the content.
type Scroller interface {
	ScrollTo(offset int, animated bool)
}

// ScrollerFunc adapts a function to Scroller.
type ScrollerFunc func(offset int, animated bool)

// ScrollTo calls f.
func (f ScrollerFunc) ScrollTo(offset int, animated bool) {
	f(offset, animated)
}

// Config is the engine geometry.
type Config struct {
	ItemHeight      int
	ContainerHeight int
	Buffer          int
	Overscan        int

	// Interval is the throttle period. Zero means FrameInterval.
	Interval time.Duration
}

// ConfigFromSettings builds a Config from the scroll settings.
func ConfigFromSettings(s domain.ScrollSettings, containerHeight int) Config {
	return Config{
		ItemHeight:      s.ItemHeight,
		ContainerHeight: containerHeight,
		Buffer:          s.Buffer,
		Overscan:        s.Overscan,
	}
}

// Engine tracks the scroll offset of one list. The item count is read on
// every call so the range follows a live collection.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	count    func() int
	scroller Scroller
	throttle *Throttle

	offset   int
	latest   int
	timer    *time.Timer
	listener func(Range)
	closed   bool

	now func() time.Time
}

// NewEngine creates an engine. A nil count means an empty list.
func NewEngine(cfg Config, count func() int, scroller Scroller) *Engine {
	if count == nil {
		count = func() int { return 0 }
	}
	return &Engine{
		cfg:      cfg,
		count:    count,
		scroller: scroller,
		throttle: NewThrottle(cfg.Interval),
		now:      time.Now,
	}
}

// OnChange registers fn to run after every applied offset change. It
// replaces any previous listener.
func (e *Engine) OnChange(fn func(Range)) {
	e.mu.Lock()
	e.listener = fn
	e.mu.Unlock()
}

// OnScroll offers a new scroll offset. It is applied at once or folded into
// the single deferred application of the current frame.
func (e *Engine) OnScroll(offset int) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.latest = offset
	d := e.throttle.Offer(e.now())
	switch {
	case d.Apply:
		e.mu.Unlock()
		e.apply(offset)
		return
	case d.Schedule:
		e.timer = time.AfterFunc(d.Delay, e.flush)
	}
	e.mu.Unlock()
}

// flush runs the deferred application with the latest offered offset.
func (e *Engine) flush() {
	e.mu.Lock()
	e.timer = nil
	if e.closed {
		e.mu.Unlock()
		return
	}
	offset := e.latest
	e.throttle.Fire()
	e.mu.Unlock()
	e.apply(offset)
}

// SetOffset applies offset immediately, bypassing the throttle.
func (e *Engine) SetOffset(offset int) {
	e.mu.Lock()
	e.latest = offset
	e.mu.Unlock()
	e.apply(offset)
}

func (e *Engine) apply(offset int) {
	e.mu.Lock()
	e.offset = offset
	listener := e.listener
	e.mu.Unlock()
	if listener != nil {
		listener(e.Range())
	}
}

// Offset returns the applied scroll offset.
func (e *Engine) Offset() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offset
}

// SetContainerHeight updates the viewport height.
func (e *Engine) SetContainerHeight(height int) {
	e.mu.Lock()
	e.cfg.ContainerHeight = height
	e.mu.Unlock()
}

// Config returns the current geometry.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Range computes the render range for the applied offset.
func (e *Engine) Range() Range {
	e.mu.Lock()
	p := Params{
		ScrollOffset:    e.offset,
		ItemHeight:      e.cfg.ItemHeight,
		ContainerHeight: e.cfg.ContainerHeight,
		Buffer:          e.cfg.Buffer,
		Overscan:        e.cfg.Overscan,
	}
	count := e.count
	e.mu.Unlock()

	p.ItemCount = count()
	return Window(p)
}

// ScrollToItem asks the scroller to bring index to the top. Negative
// indices clamp to 0; indices past the end are passed through.
func (e *Engine) ScrollToItem(index int, animated bool) {
	index = max(index, 0)
	e.mu.Lock()
	height := max(e.cfg.ItemHeight, 1)
	scroller := e.scroller
	e.mu.Unlock()

	if scroller != nil {
		scroller.ScrollTo(index*height, animated)
	}
}

// Close cancels any deferred application and ignores later scroll events.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
