package cvv

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// fire runs a timer's callback even if it was stopped, the way a real timer
// can when Stop loses the race.
func (c *fakeClock) fire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.f()
}

func newTestReveal(clock *fakeClock, expired *int32) *Reveal {
	return NewReveal(func() { atomic.AddInt32(expired, 1) }, WithAfterFunc(clock.AfterFunc))
}

func TestReveal_StartsHidden(t *testing.T) {
	r := NewReveal(nil)
	assert.Equal(t, Hidden, r.State())
	assert.Equal(t, DefaultTimeout, r.Timeout())
	assert.Equal(t, Mask, r.Display("123"))
}

func TestReveal_ToggleSchedulesTimer(t *testing.T) {
	clock := &fakeClock{}
	var expired int32
	r := newTestReveal(clock, &expired)

	assert.Equal(t, Revealed, r.Toggle())
	assert.Equal(t, "123", r.Display("123"))

	pending := clock.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 10*time.Second, pending[0].d)
}

func TestReveal_ExpiryHidesAndNotifiesOnce(t *testing.T) {
	clock := &fakeClock{}
	var expired int32
	r := newTestReveal(clock, &expired)

	r.Toggle()
	clock.fire(0)

	assert.Equal(t, Hidden, r.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))

	// A duplicate delivery of the same timer must not notify again.
	clock.fire(0)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))
}

func TestReveal_ManualHideCancelsTimer(t *testing.T) {
	clock := &fakeClock{}
	var expired int32
	r := newTestReveal(clock, &expired)

	r.Toggle()
	assert.Equal(t, Hidden, r.Toggle())
	assert.Empty(t, clock.pending(), "hiding by hand stops the timer")

	// Even if the stopped timer still fires, nothing happens.
	clock.fire(0)
	assert.Equal(t, Hidden, r.State())
	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))
}

func TestReveal_StaleTimerDoesNotHideNewReveal(t *testing.T) {
	clock := &fakeClock{}
	var expired int32
	r := newTestReveal(clock, &expired)

	r.Toggle() // reveal, timer 0
	r.Toggle() // hide
	r.Toggle() // reveal again, timer 1

	require.Len(t, clock.pending(), 1, "only one timer pending at a time")

	clock.fire(0)
	assert.Equal(t, Revealed, r.State(), "timer 0 belongs to an earlier reveal")
	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))

	clock.fire(1)
	assert.Equal(t, Hidden, r.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))
}

func TestReveal_CloseCancelsPendingTimer(t *testing.T) {
	clock := &fakeClock{}
	var expired int32
	r := newTestReveal(clock, &expired)

	r.Toggle()
	r.Close()
	assert.Empty(t, clock.pending())

	clock.fire(0)
	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))
	assert.Equal(t, Hidden, r.Toggle(), "toggle after close is a no-op")
	assert.Len(t, clock.timers, 1)
}

func TestReveal_Hide(t *testing.T) {
	clock := &fakeClock{}
	var expired int32
	r := newTestReveal(clock, &expired)

	assert.False(t, r.Hide())
	r.Toggle()
	assert.True(t, r.Hide())
	assert.Empty(t, clock.pending())
	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))
}

func TestReveal_RealTimer(t *testing.T) {
	expired := make(chan struct{}, 2)
	r := NewReveal(func() { expired <- struct{}{} }, WithTimeout(20*time.Millisecond))
	defer r.Close()

	r.Toggle()
	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("reveal did not expire")
	}
	assert.Equal(t, Hidden, r.State())

	select {
	case <-expired:
		t.Fatal("expired twice")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "revealed", Revealed.String())
}
