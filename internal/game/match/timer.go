package match

import (
	"sync"
	"time"
)

// Timer fires a callback once after a duration unless stopped first.
// It backs the fire-and-forget delayed notifications (round starts, match
// summaries) and is safe for concurrent use.
type Timer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewTimer creates and starts a timer that calls onFire after d.
// onFire runs in its own goroutine, holding the timer's mutex; it must not
// call Stop on its own timer.
//
// Precondition: d >= 0; onFire must not be nil.
// Postcondition: onFire will be called exactly once unless Stop wins first.
func NewTimer(d time.Duration, onFire func()) *Timer {
	t := &Timer{}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if !t.stopped {
			onFire()
		}
	})
	return t
}

// Stop prevents the callback from firing. Safe to call multiple times.
// A callback that has already begun runs to completion first: Stop blocks
// on the mutex the callback holds.
//
// Postcondition: onFire does not begin after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.timer.Stop()
}
