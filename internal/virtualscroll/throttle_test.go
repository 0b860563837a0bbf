package virtualscroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottle_LeadingEdgeThenOneDeferred(t *testing.T) {
	th := NewThrottle(16 * time.Millisecond)
	t0 := time.Unix(1_700_000_000, 0)

	assert.Equal(t, Decision{Apply: true}, th.Offer(t0))

	d := th.Offer(t0.Add(5 * time.Millisecond))
	assert.False(t, d.Apply)
	assert.True(t, d.Schedule)
	assert.InDelta(t, float64(11*time.Millisecond), float64(d.Delay), float64(time.Millisecond))
	assert.True(t, th.Pending())

	// Coalesced into the pending application.
	assert.Equal(t, Decision{}, th.Offer(t0.Add(8*time.Millisecond)))
	assert.Equal(t, Decision{}, th.Offer(t0.Add(12*time.Millisecond)))

	th.Fire()
	assert.False(t, th.Pending())

	// Well after the deferred frame the next update applies at once.
	assert.Equal(t, Decision{Apply: true}, th.Offer(t0.Add(60*time.Millisecond)))
}

func TestThrottle_RespectsDeferredSlot(t *testing.T) {
	th := NewThrottle(16 * time.Millisecond)
	t0 := time.Unix(1_700_000_000, 0)

	th.Offer(t0)
	th.Offer(t0.Add(5 * time.Millisecond))
	th.Fire()

	// The deferred frame used the slot ending at t0+16ms.
	d := th.Offer(t0.Add(20 * time.Millisecond))
	assert.True(t, d.Schedule)
	assert.Greater(t, d.Delay, time.Duration(0))
}

func TestNewThrottle_DefaultInterval(t *testing.T) {
	th := NewThrottle(0)
	t0 := time.Unix(1_700_000_000, 0)

	th.Offer(t0)
	d := th.Offer(t0)
	assert.InDelta(t, float64(FrameInterval), float64(d.Delay), float64(time.Millisecond))
}
