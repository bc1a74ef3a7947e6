package room

import (
	"sync"
	"time"
)

// RoundTicker schedules the per-second countdown tick for a round. Each Arm
// supersedes any pending tick: the callback of an older generation is
// discarded even if its timer has already fired. Safe for concurrent use.
type RoundTicker struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// NewRoundTicker creates an idle RoundTicker.
func NewRoundTicker() *RoundTicker {
	return &RoundTicker{}
}

// Arm cancels any pending tick and schedules fn after interval. fn runs in a
// separate goroutine.
//
// Precondition: interval > 0; fn must not be nil.
// Postcondition: fn will be called once unless Arm or Stop is called first.
func (t *RoundTicker) Arm(interval time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(interval, func() {
		t.mu.Lock()
		live := gen == t.gen
		t.mu.Unlock()
		if live {
			fn()
		}
	})
}

// Stop discards any pending tick. Safe to call multiple times.
//
// Postcondition: No previously armed callback will run after Stop returns,
// except one that has already passed its liveness check.
func (t *RoundTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
