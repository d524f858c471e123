package session

import (
	"sync"
	"time"
)

// Timer is a 1 Hz countdown clock. It never fires before its nominal
// duration has elapsed and fires its expiry callback exactly once.
type Timer struct {
	mu        sync.Mutex
	remaining int
	expired   bool
	onExpire  func()

	quit     chan struct{}
	stopOnce sync.Once
}

// NewTimer creates a countdown over the given number of seconds.
// onExpire may be nil.
func NewTimer(seconds int, onExpire func()) *Timer {
	if seconds < 0 {
		seconds = 0
	}
	return &Timer{
		remaining: seconds,
		onExpire:  onExpire,
		quit:      make(chan struct{}),
	}
}

// Start runs the countdown in a background goroutine until expiry or Stop.
func (t *Timer) Start() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if t.tick() {
					return
				}
			case <-t.quit:
				return
			}
		}
	}()
}

// tick advances the countdown by one second. It returns true once the
// timer has expired and should stop ticking.
func (t *Timer) tick() bool {
	t.mu.Lock()
	if t.expired {
		t.mu.Unlock()
		return true
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		t.mu.Unlock()
		return false
	}
	t.expired = true
	fire := t.onExpire
	t.mu.Unlock()

	if fire != nil {
		fire()
	}
	return true
}

// Remaining returns the seconds left on the clock.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Expired reports whether the countdown has reached zero.
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// Stop halts the countdown without firing the expiry callback.
// Safe to call more than once.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.quit) })
}
