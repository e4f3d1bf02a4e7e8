// Package cvv implements the timed reveal of a card's security code.
package cvv

import (
	"sync"
	"time"
)

// DefaultTimeout is how long a revealed CVV stays visible.
const DefaultTimeout = 10 * time.Second

// Mask is shown in place of a hidden CVV.
const Mask = "•••"

// State is the visibility of the CVV.
type State int

const (
	Hidden State = iota
	Revealed
)

func (s State) String() string {
	if s == Revealed {
		return "revealed"
	}
	return "hidden"
}

// Timer is the handle of a scheduled callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Reveal.
type Option func(*Reveal)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Reveal) { r.timeout = d }
}

// WithAfterFunc replaces the scheduler, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(r *Reveal) { r.afterFunc = fn }
}

// Reveal is the Hidden/Revealed state machine. Revealing starts a one-shot
// timer; when it fires the CVV is hidden again and onExpire runs. Hiding by
// hand cancels the timer and onExpire does not run. At most one timer is
// pending at any time.
type Reveal struct {
	mu        sync.Mutex
	state     State
	timer     Timer
	gen       uint64 // bumped whenever the pending timer is cancelled or replaced
	closed    bool
	timeout   time.Duration
	afterFunc AfterFunc
	onExpire  func()
}

// NewReveal returns a hidden Reveal. onExpire may be nil.
func NewReveal(onExpire func(), opts ...Option) *Reveal {
	r := &Reveal{
		timeout:   DefaultTimeout,
		afterFunc: realAfterFunc,
		onExpire:  onExpire,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns how long a reveal lasts.
func (r *Reveal) Timeout() time.Duration { return r.timeout }

// State returns the current state.
func (r *Reveal) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Revealed reports whether the CVV is visible.
func (r *Reveal) Revealed() bool {
	return r.State() == Revealed
}

// Toggle flips the state and returns the new one. After Close it is a no-op
// that reports Hidden.
func (r *Reveal) Toggle() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Hidden
	}

	r.cancelLocked()
	if r.state == Revealed {
		r.state = Hidden
		return r.state
	}

	r.state = Revealed
	gen := r.gen
	r.timer = r.afterFunc(r.timeout, func() { r.expire(gen) })
	return r.state
}

// Hide returns to Hidden without notification. It reports whether the CVV
// was visible.
func (r *Reveal) Hide() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	was := r.state == Revealed
	r.state = Hidden
	return was
}

// Close cancels any pending timer. No callback runs after Close returns.
func (r *Reveal) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	r.state = Hidden
	r.closed = true
}

// Display returns code when revealed and Mask otherwise.
func (r *Reveal) Display(code string) string {
	if r.Revealed() {
		return code
	}
	return Mask
}

func (r *Reveal) cancelLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
}

func (r *Reveal) expire(gen uint64) {
	r.mu.Lock()
	if r.closed || gen != r.gen || r.state != Revealed {
		// Stopped too late; a newer toggle already owns the state.
		r.mu.Unlock()
		return
	}
	r.state = Hidden
	r.timer = nil
	r.gen++
	r.mu.Unlock()

	if r.onExpire != nil {
		r.onExpire()
	}
}
