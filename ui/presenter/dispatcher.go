package presenter

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Dispatcher queues work from background goroutines for the UI thread.
// Post is safe from any goroutine; Drain must only run on the UI thread.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{logger: logger}
}

// Post schedules f for the next Drain.
func (d *Dispatcher) Post(f func()) {
	if d == nil || f == nil {
		return
	}
	d.mu.Lock()
	d.queue = append(d.queue, f)
	d.mu.Unlock()
}

// Drain runs everything queued so far and returns how many ran. Work posted
// while draining waits for the next call.
func (d *Dispatcher) Drain() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()
	for _, f := range batch {
		d.run(f)
	}
	return len(batch)
}

// Pending reports the number of queued closures.
func (d *Dispatcher) Pending() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *Dispatcher) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("ui.dispatch_panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	f()
}
