package poolmanager

import (
	"sync"
	"time"
)

// failoverTimer is a single-shot deadline, re-armed on every successful
// connection to a non-primary endpoint and cancelled otherwise
// (spec.md §4.4). arm, cancel and the expiry bookkeeping are serialised
// through mu, playing the role of the single reactor strand described in
// spec.md §5; the fire callback itself runs after mu is released.
type failoverTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// arm (re)starts the timer so that fire fires after d, cancelling any
// previously armed timer first.
func (f *failoverTimer) arm(d time.Duration, fire func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(d, func() {
		f.mu.Lock()
		f.timer = nil
		f.mu.Unlock()
		fire()
	})
}

// cancel stops any armed timer. Safe to call when nothing is armed.
func (f *failoverTimer) cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
