package camera

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"testing"
	"time"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeDevice records every hardware call in order.
type fakeDevice struct {
	mu        sync.Mutex
	maxZoom   float64
	hasTorch  bool
	torchOn   bool
	zoom      float64
	calls     []string
	startErr  error
	startGate chan struct{}
	started   int
	stopped   int
	closed    int
	focusAt   []Point
	revert    int
}

func newFakeDevice(maxZoom float64, hasTorch bool) *fakeDevice {
	return &fakeDevice{maxZoom: maxZoom, hasTorch: hasTorch, zoom: 1}
}

func (d *fakeDevice) record(call string) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
}

func (d *fakeDevice) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Start(ctx context.Context) error {
	if d.startGate != nil {
		<-d.startGate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started++
	d.calls = append(d.calls, "start")
	return d.startErr
}

func (d *fakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped++
	d.calls = append(d.calls, "stop")
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	d.calls = append(d.calls, "close")
	return nil
}

func (d *fakeDevice) MaxZoom() float64 { return d.maxZoom }

func (d *fakeDevice) SetZoom(r float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.zoom = r
	d.calls = append(d.calls, "zoom")
	return nil
}

func (d *fakeDevice) HasTorch() bool { return d.hasTorch }

func (d *fakeDevice) SetTorch(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.torchOn = on
	if on {
		d.calls = append(d.calls, "torch:on")
	} else {
		d.calls = append(d.calls, "torch:off")
	}
	return nil
}

func (d *fakeDevice) FocusAt(p Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focusAt = append(d.focusAt, p)
	return nil
}

func (d *fakeDevice) ContinuousFocus() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revert++
	return nil
}

func (d *fakeDevice) Reverts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revert
}

// streamDevice adds continuous frame reading.
type streamDevice struct {
	*fakeDevice
	frame image.Image
}

func (d *streamDevice) ReadFrame() (image.Image, error) { return d.frame, nil }

// stillDevice adds a one-shot still path that can be held open with gate.
type stillDevice struct {
	*fakeDevice
	gate       chan struct{}
	err        error
	panicValue any
	rotation   Rotation
	stills     int
}

func (d *stillDevice) CaptureStill(ctx context.Context) (image.Image, Rotation, error) {
	d.mu.Lock()
	d.stills++
	gate, err, pv := d.gate, d.err, d.panicValue
	d.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if pv != nil {
		panic(pv)
	}
	if err != nil {
		return nil, Rotate0, err
	}
	return solidImage(4, 2, color.RGBA{R: 255, A: 255}), d.rotation, nil
}

func (d *stillDevice) Stills() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stills
}

func openerFor(dev Device) Opener {
	return func(context.Context) (Device, error) { return dev, nil }
}

type countingPermission struct {
	mu       sync.Mutex
	status   PermissionStatus
	answer   bool
	requests int
}

func (p *countingPermission) Status() PermissionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *countingPermission) Request(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
	if p.answer {
		p.status = PermissionGranted
	} else {
		p.status = PermissionDenied
	}
	return p.answer, nil
}

// manualClock collects scheduled functions instead of running real timers.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// FireAll runs every timer that has not been stopped.
func (c *manualClock) FireAll() {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (c *manualClock) Timers() []*manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*manualTimer(nil), c.timers...)
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func startReady(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("request start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.AwaitReady(ctx); err != nil {
		t.Fatalf("await ready: %v (state %v)", err, c.State())
	}
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}
