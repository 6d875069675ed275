package camera

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Controller owns one capture device and drives it through the lifecycle
// Uninitialized -> PermissionPending -> (PermissionDenied | Starting) -> Ready -> Stopped.
// All methods are safe for concurrent use. Listener callbacks are delivered
// through the executor supplied with WithExecutor.
type Controller struct {
	opener         Opener
	perm           Permission
	logger         *slog.Logger
	exec           func(func())
	previewMax     float64
	rotation       Rotation
	defaultZoom    float64
	sampleInterval time.Duration

	mu          sync.Mutex
	state       State
	device      Device
	sampler     *sampler
	zoom        ZoomState
	torch       bool
	readyCh     chan struct{}
	readyClosed bool
	startGen    uint64
	listeners   []StateListener

	// configMu is held only around single hardware configuration writes.
	configMu  sync.Mutex
	capturing atomic.Bool
	focus     *focusReverter
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPreviewMaxZoom caps the live zoom ratio regardless of what the device supports.
func WithPreviewMaxZoom(max float64) Option {
	return func(c *Controller) {
		if max >= 1 {
			c.previewMax = max
		}
	}
}

// WithDefaultZoom sets the zoom reported as ZoomState.Default, clamped to the
// session maximum once Ready.
func WithDefaultZoom(z float64) Option {
	return func(c *Controller) {
		if z >= 1 {
			c.defaultZoom = z
		}
	}
}

// WithFocusRevert sets how long a tap focus holds before continuous focus resumes.
func WithFocusRevert(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.focus.delay = d
		}
	}
}

// WithRotation sets the correction applied to snapshots of sampled frames.
func WithRotation(r Rotation) Option { return func(c *Controller) { c.rotation = r } }

// WithSampleInterval sets the pause between sampled frames.
func WithSampleInterval(d time.Duration) Option {
	return func(c *Controller) { c.sampleInterval = d }
}

// WithExecutor routes listener callbacks, e.g. onto the UI thread.
func WithExecutor(exec func(func())) Option {
	return func(c *Controller) {
		if exec != nil {
			c.exec = exec
		}
	}
}

func withAfterFunc(f afterFunc) Option { return func(c *Controller) { c.focus.after = f } }

// NewController constructs an idle controller. Nothing is opened until RequestStart.
func NewController(opener Opener, perm Permission, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if perm == nil {
		perm = StaticPermission(PermissionGranted)
	}
	c := &Controller{
		opener:     opener,
		perm:       perm,
		logger:     logger,
		exec:       func(f func()) { f() },
		previewMax: 3.0,
		defaultZoom: 1,
		state:      StateUninitialized,
		zoom:       ZoomState{Current: 1, Max: 1, Default: 1},
		readyCh:    make(chan struct{}),
		focus:      newFocusReverter(2*time.Second, nil),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AddListener registers l for state transitions.
func (c *Controller) AddListener(l StateListener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// transitionLocked changes state and returns a function that notifies
// listeners; call it after releasing c.mu.
func (c *Controller) transitionLocked(next State) func() {
	prev := c.state
	if prev == next {
		return func() {}
	}
	c.state = next
	c.logger.Debug("camera state transition", "from", prev.String(), "to", next.String())
	listeners := append([]StateListener(nil), c.listeners...)
	return func() {
		for _, l := range listeners {
			c.exec(func() { l(prev, next) })
		}
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RequestStart checks (and if needed requests) permission, opens the device
// and starts the session in the background. It returns ErrPermissionDenied
// when access is refused and the opener's error when no device could be
// opened; in the latter case the controller stays in Starting.
func (c *Controller) RequestStart(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StatePermissionPending, StateStarting, StateReady:
		c.mu.Unlock()
		return nil
	case StatePermissionDenied:
		c.mu.Unlock()
		return ErrPermissionDenied
	}
	if c.readyClosed {
		c.readyCh = make(chan struct{})
		c.readyClosed = false
	}
	c.startGen++
	gen := c.startGen
	notify := c.transitionLocked(StatePermissionPending)
	c.mu.Unlock()
	notify()

	status := c.perm.Status()
	granted := status == PermissionGranted
	if status == PermissionUndetermined {
		ok, err := c.perm.Request(ctx)
		if err != nil {
			c.logger.Error("camera permission request", "error", err)
		}
		granted = ok && err == nil
	}

	c.mu.Lock()
	if gen != c.startGen || c.state != StatePermissionPending {
		c.mu.Unlock()
		return nil
	}
	if !granted {
		notify = c.transitionLocked(StatePermissionDenied)
		c.mu.Unlock()
		notify()
		c.logger.Info("camera permission denied")
		return ErrPermissionDenied
	}
	notify = c.transitionLocked(StateStarting)
	dev := c.device
	c.mu.Unlock()
	notify()

	if dev == nil {
		if c.opener == nil {
			c.logger.Error("camera open failed", "error", ErrNoDevice)
			return ErrNoDevice
		}
		opened, err := c.opener(ctx)
		if err != nil {
			c.logger.Error("camera open failed", "error", err)
			return fmt.Errorf("open camera: %w", err)
		}
		dev = opened

		c.mu.Lock()
		if gen != c.startGen || c.state != StateStarting || c.device != nil {
			c.mu.Unlock()
			_ = dev.Close()
			return nil
		}
		c.device = dev
		c.mu.Unlock()
	}

	go c.startSession(context.WithoutCancel(ctx), gen, dev)
	return nil
}

func (c *Controller) startSession(ctx context.Context, gen uint64, dev Device) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("camera start panic", "error", r, "stack", string(debug.Stack()))
		}
	}()
	err := dev.Start(ctx)

	c.mu.Lock()
	if gen != c.startGen || c.state != StateStarting {
		c.mu.Unlock()
		if err == nil {
			_ = dev.Stop()
		}
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("camera session start failed", "device", dev.Name(), "error", err)
		return
	}
	max := dev.MaxZoom()
	if max > c.previewMax {
		max = c.previewMax
	}
	if max < 1 {
		max = 1
	}
	c.zoom = ZoomState{Current: 1, Max: max, Default: clamp(c.defaultZoom, 1, max)}
	c.torch = false
	if fr, ok := dev.(FrameReader); ok {
		c.sampler = newSampler(fr, c.sampleInterval, c.logger)
		c.sampler.Start()
	}
	notify := c.transitionLocked(StateReady)
	close(c.readyCh)
	c.readyClosed = true
	c.mu.Unlock()
	c.logger.Info("camera ready", "device", dev.Name(), "max_zoom", max)
	notify()
}

// AwaitReady blocks until the controller reaches Ready or ctx is done.
func (c *Controller) AwaitReady(ctx context.Context) error {
	c.mu.Lock()
	ch := c.readyCh
	c.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Zoom returns the current zoom state.
func (c *Controller) Zoom() ZoomState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// SetZoom applies clamp(ratio, 1, Max) and returns the stored ratio. It is a
// no-op before the session is Ready.
func (c *Controller) SetZoom(ratio float64) float64 {
	c.mu.Lock()
	if c.state != StateReady || c.device == nil {
		cur := c.zoom.Current
		c.mu.Unlock()
		return cur
	}
	r := clamp(ratio, 1, c.zoom.Max)
	if math.IsNaN(ratio) {
		r = c.zoom.Current
	}
	dev := c.device
	c.mu.Unlock()

	c.configMu.Lock()
	err := dev.SetZoom(r)
	c.configMu.Unlock()
	if err != nil {
		c.logger.Error("set zoom", "ratio", r, "error", err)
		return c.Zoom().Current
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == dev && c.state == StateReady {
		c.zoom.Current = r
	}
	return c.zoom.Current
}

// HasTorch reports whether the active device has a controllable light.
func (c *Controller) HasTorch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device != nil && c.device.HasTorch()
}

// Torch reports the current torch state.
func (c *Controller) Torch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.torch
}

// SetTorch switches the torch. No-op without a torch or before Ready.
func (c *Controller) SetTorch(on bool) {
	c.mu.Lock()
	dev := c.device
	if c.state != StateReady || dev == nil || !dev.HasTorch() || c.torch == on {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.configMu.Lock()
	err := dev.SetTorch(on)
	c.configMu.Unlock()
	if err != nil {
		c.logger.Error("set torch", "on", on, "error", err)
		return
	}
	c.mu.Lock()
	if c.device == dev {
		c.torch = on
	}
	c.mu.Unlock()
}

// ToggleTorch flips the torch state.
func (c *Controller) ToggleTorch() { c.SetTorch(!c.Torch()) }

// Focus locks focus and exposure at p, then returns to continuous focus after
// the revert delay. A newer call replaces the pending revert.
func (c *Controller) Focus(p Point) {
	c.mu.Lock()
	dev := c.device
	if c.state != StateReady || dev == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.configMu.Lock()
	err := dev.FocusAt(p.Clamp())
	c.configMu.Unlock()
	if err != nil {
		c.logger.Error("focus", "x", p.X, "y", p.Y, "error", err)
		return
	}
	c.focus.Schedule(func() { c.revertFocus(dev) })
}

func (c *Controller) revertFocus(dev Device) {
	c.mu.Lock()
	if c.device != dev || c.state != StateReady {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.configMu.Lock()
	err := dev.ContinuousFocus()
	c.configMu.Unlock()
	if err != nil {
		c.logger.Error("continuous focus", "error", err)
	}
}

// Capturing reports whether a capture is outstanding.
func (c *Controller) Capturing() bool { return c.capturing.Load() }

// Capture freezes one still. Devices with a still path are asked for a
// full-quality image; otherwise the newest sampled frame is copied. A second
// call while one is outstanding returns ErrCaptureInProgress. The in-flight
// flag is cleared on every exit path.
func (c *Controller) Capture(ctx context.Context) (res *CaptureResult, err error) {
	if !c.capturing.CompareAndSwap(false, true) {
		return nil, ErrCaptureInProgress
	}
	defer c.capturing.Store(false)
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("capture panic", "error", r, "stack", string(debug.Stack()))
			res, err = nil, fmt.Errorf("camera: capture panic: %v", r)
		}
	}()

	c.mu.Lock()
	dev, smp := c.device, c.sampler
	ready := c.state == StateReady && dev != nil
	c.mu.Unlock()
	if !ready {
		return nil, ErrNotReady
	}

	if sc, ok := dev.(StillCapturer); ok {
		img, rot, err := sc.CaptureStill(ctx)
		if err != nil {
			c.logger.Error("capture still", "error", err)
			return nil, fmt.Errorf("capture still: %w", err)
		}
		if img == nil {
			return nil, ErrNoFrame
		}
		return NewCaptureResult(rot.Apply(img), rot, time.Now(), nil), nil
	}

	if smp == nil {
		return nil, ErrNoFrame
	}
	snap := smp.LatestFrame()
	if snap.Image == nil {
		return nil, ErrNoFrame
	}
	frame := copyFrame(snap.Image)
	if c.rotation == Rotate0 {
		res = NewCaptureResult(frame, c.rotation, snap.CapturedAt, func() { recycleFrame(frame) })
	} else {
		res = NewCaptureResult(c.rotation.Apply(frame), c.rotation, snap.CapturedAt, nil)
		recycleFrame(frame)
	}
	c.logger.Debug("captured still", "id", res.ID, "sequence", snap.Sequence)
	return res, nil
}

// LatestFrame returns the newest sampled frame for live preview.
func (c *Controller) LatestFrame() FrameSnapshot {
	c.mu.Lock()
	smp := c.sampler
	c.mu.Unlock()
	if smp == nil {
		return FrameSnapshot{}
	}
	return smp.LatestFrame()
}

// Stats returns frame sampler statistics.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	smp := c.sampler
	c.mu.Unlock()
	if smp == nil {
		return Stats{}
	}
	return smp.Stats()
}

// Stop turns the torch off, stops sampling and the session, and cancels any
// pending focus revert. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateStopped || c.state == StateUninitialized {
		c.mu.Unlock()
		return
	}
	dev, smp, torchOn := c.device, c.sampler, c.torch
	c.startGen++
	c.sampler = nil
	c.torch = false
	c.zoom.Current = 1
	notify := c.transitionLocked(StateStopped)
	c.mu.Unlock()

	c.focus.Cancel()
	if dev != nil {
		if torchOn && dev.HasTorch() {
			c.configMu.Lock()
			if err := dev.SetTorch(false); err != nil {
				c.logger.Error("torch off on stop", "error", err)
			}
			c.configMu.Unlock()
		}
		if smp != nil {
			smp.Stop()
		}
		if err := dev.Stop(); err != nil {
			c.logger.Error("camera stop", "error", err)
		}
	}
	c.logger.Info("camera stopped")
	notify()
}

// Close stops the controller and releases the device.
func (c *Controller) Close() error {
	c.Stop()
	c.mu.Lock()
	dev := c.device
	c.device = nil
	c.mu.Unlock()
	if dev == nil {
		return nil
	}
	return dev.Close()
}
