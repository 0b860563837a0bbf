package virtualscroll

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FrameInterval is one frame at 60Hz.
const FrameInterval = 16 * time.Millisecond

// Decision tells the caller what to do with an offered update.
type Decision struct {
	// Apply means the update should be applied immediately.
	Apply bool

	// Schedule means the caller must apply the latest update after Delay
	// and then call Fire.
	Schedule bool
	Delay    time.Duration
}

// Throttle admits at most one update per interval. An update that arrives
// too early reserves exactly one deferred application; updates offered
// while it is pending coalesce into it.
type Throttle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	pending bool
}

// NewThrottle creates a throttle. A non-positive interval means
// FrameInterval.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Offer decides how an update arriving at now is handled. The zero
// Decision means the update coalesces into the pending application.
func (t *Throttle) Offer(now time.Time) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending {
		return Decision{}
	}
	if t.limiter.AllowN(now, 1) {
		return Decision{Apply: true}
	}

	r := t.limiter.ReserveN(now, 1)
	t.pending = true
	return Decision{Schedule: true, Delay: r.DelayFrom(now)}
}

// Fire marks the deferred application as done.
func (t *Throttle) Fire() {
	t.mu.Lock()
	t.pending = false
	t.mu.Unlock()
}

// Pending reports whether a deferred application is scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
