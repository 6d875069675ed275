package camera

import (
	"sync"
	"time"
)

// timer is the subset of *time.Timer used by focusReverter.
type timer interface{ Stop() bool }

// afterFunc schedules f after d. Tests substitute a manual clock.
type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }

// focusReverter owns the single pending "return to continuous focus" task.
// Scheduling again cancels the previous task so only the newest survives.
type focusReverter struct {
	mu      sync.Mutex
	delay   time.Duration
	after   afterFunc
	pending timer
	gen     uint64
}

func newFocusReverter(delay time.Duration, after afterFunc) *focusReverter {
	if after == nil {
		after = realAfterFunc
	}
	return &focusReverter{delay: delay, after: after}
}

// Schedule cancels any pending revert and arranges for revert to run once after the delay.
func (r *focusReverter) Schedule(revert func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		r.pending.Stop()
	}
	r.gen++
	gen := r.gen
	r.pending = r.after(r.delay, func() {
		r.mu.Lock()
		if gen != r.gen {
			r.mu.Unlock()
			return
		}
		r.pending = nil
		r.mu.Unlock()
		revert()
	})
}

// Cancel drops the pending revert, if any.
func (r *focusReverter) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.gen++
}

// Pending reports whether a revert is scheduled.
func (r *focusReverter) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}
