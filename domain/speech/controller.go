package speech

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
)

// Controller owns one speech engine and runs at most one utterance at a time.
// State transitions are synchronous; listeners are delivered through the
// configured executor.
type Controller struct {
	engine Engine
	pauser Pauser
	rate   float64
	logger *slog.Logger
	exec   func(func())

	mu        sync.Mutex
	state     State
	text      string
	gen       uint64
	cancel    context.CancelFunc
	done      chan struct{}
	held      bool // paused in place by the engine
	closed    bool
	listeners []Listener
}

// Option customises a Controller.
type Option func(*Controller)

// WithExecutor routes listener calls through exec (for example a UI dispatcher).
func WithExecutor(exec func(func())) Option {
	return func(c *Controller) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// NewController wraps engine. Engines implementing Pauser get true pause.
func NewController(engine Engine, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		engine: engine,
		rate:   SlowRate,
		logger: logger,
		exec:   func(f func()) { f() },
	}
	if p, ok := engine.(Pauser); ok {
		c.pauser = p
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns the text of the current or remembered utterance.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Controller) Subscribe(l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Speak stops any current session and starts a new one with text.
// Blank text is ignored.
func (c *Controller) Speak(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.endSessionLocked()
	c.text = text
	c.startSessionLocked()
	notify := c.transitionLocked(Speaking)
	c.mu.Unlock()
	notify()
}

// Pause holds a Speaking session. Engines without Pauser stop the utterance
// and keep its text; Resume then restarts from the beginning.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state != Speaking {
		c.mu.Unlock()
		return
	}
	if c.pauser != nil && c.pauser.Pause() {
		c.held = true
	} else {
		c.endSessionLocked()
		c.logger.Debug("speech.pause_degraded", "engine", c.engine.Name())
	}
	notify := c.transitionLocked(Paused)
	c.mu.Unlock()
	notify()
}

// Resume continues a Paused session.
func (c *Controller) Resume() {
	c.mu.Lock()
	if c.state != Paused {
		c.mu.Unlock()
		return
	}
	if c.held && c.pauser.Resume() {
		c.held = false
	} else {
		c.endSessionLocked()
		c.startSessionLocked()
	}
	notify := c.transitionLocked(Speaking)
	c.mu.Unlock()
	notify()
}

// Stop ends any session. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.endSessionLocked()
	notify := c.transitionLocked(Idle)
	c.mu.Unlock()
	notify()
}

// TogglePlayPause pauses while speaking, resumes while paused and otherwise
// starts speaking text.
func (c *Controller) TogglePlayPause(text string) {
	switch c.State() {
	case Speaking:
		c.Pause()
	case Paused:
		c.Resume()
	default:
		c.Speak(text)
	}
}

// Close stops speech and releases the engine.
func (c *Controller) Close() error {
	c.Stop()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
	if err := c.engine.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.engine.Name(), err)
	}
	return nil
}

// startSessionLocked launches the engine for c.text. The new session waits
// for the previous one to exit so two utterances never overlap.
func (c *Controller) startSessionLocked() {
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	prev := c.done
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	text := c.text
	go c.run(ctx, gen, text, prev, done)
}

// endSessionLocked cancels the running session and invalidates its completion.
func (c *Controller) endSessionLocked() {
	c.gen++
	c.held = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) run(ctx context.Context, gen uint64, text string, prev, done chan struct{}) {
	defer close(done)
	if prev != nil {
		<-prev
	}
	err := c.speak(ctx, text)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if err != nil && ctx.Err() == nil {
		c.logger.Warn("speech.failed", "engine", c.engine.Name(), "error", err)
	}
	c.cancel = nil
	c.held = false
	notify := c.transitionLocked(Idle)
	c.mu.Unlock()
	notify()
}

func (c *Controller) speak(ctx context.Context, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("speech.panic", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("speech engine panic: %v", r)
		}
	}()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.engine.Speak(ctx, text, c.rate)
}

// transitionLocked records s and returns a function that notifies listeners
// outside the lock. Same-state transitions notify nobody.
func (c *Controller) transitionLocked(s State) func() {
	if c.state == s {
		return func() {}
	}
	c.state = s
	c.logger.Debug("speech.state", "state", s.String())
	ls := append([]Listener(nil), c.listeners...)
	exec := c.exec
	return func() {
		exec(func() {
			for _, l := range ls {
				l(s)
			}
		})
	}
}
