package presenter

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/soocke/simple-magnify-go/domain/camera"
	"github.com/soocke/simple-magnify-go/domain/ocr"
	"github.com/soocke/simple-magnify-go/domain/speech"
	"github.com/soocke/simple-magnify-go/ui/model"
)

// mockController records hardware-facing calls in order.
type mockController struct {
	mu         sync.Mutex
	exec       func(func())
	listeners  []camera.StateListener
	state      camera.State
	zoom       camera.ZoomState
	hasTorch   bool
	torch      bool
	calls      []string
	starts     int
	startErr   error
	focus      []camera.Point
	captureRes *camera.CaptureResult
	captureErr error
	frame      camera.FrameSnapshot
}

func newMockController(hasTorch bool) *mockController {
	return &mockController{hasTorch: hasTorch, zoom: camera.ZoomState{Current: 1, Max: 3, Default: 1}}
}

func (m *mockController) record(c string) {
	m.calls = append(m.calls, c)
}

func (m *mockController) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockController) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

func (m *mockController) AddListener(l camera.StateListener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// emit delivers a transition the way camera.Controller does, through exec.
func (m *mockController) emit(next camera.State) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	ls := append([]camera.StateListener(nil), m.listeners...)
	exec := m.exec
	m.mu.Unlock()
	for _, l := range ls {
		exec(func() { l(prev, next) })
	}
}

func (m *mockController) RequestStart(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	return m.startErr
}

func (m *mockController) State() camera.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockController) Zoom() camera.ZoomState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

func (m *mockController) SetZoom(r float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r < 1 {
		r = 1
	}
	if r > m.zoom.Max {
		r = m.zoom.Max
	}
	m.zoom.Current = r
	m.record("zoom")
	return r
}

func (m *mockController) HasTorch() bool { return m.hasTorch }

func (m *mockController) Torch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.torch
}

func (m *mockController) SetTorch(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasTorch || m.state != camera.StateReady {
		return
	}
	m.torch = on
	if on {
		m.record("torch:on")
	} else {
		m.record("torch:off")
	}
}

func (m *mockController) Focus(p camera.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focus = append(m.focus, p)
}

func (m *mockController) Capture(context.Context) (*camera.CaptureResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("capture")
	return m.captureRes, m.captureErr
}

func (m *mockController) LatestFrame() camera.FrameSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

func (m *mockController) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torch {
		m.torch = false
		m.record("torch:off")
	}
	m.state = camera.StateStopped
	m.record("stop")
}

func (m *mockController) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("close")
	return nil
}

type mockPrefs struct {
	zoom  float64
	light bool
}

func (p mockPrefs) DefaultZoom() float64 { return p.zoom }
func (p mockPrefs) LightOnStart() bool   { return p.light }

type mockCameraView struct {
	frames      []image.Image
	status      string
	zoom        camera.ZoomState
	torchAvail  bool
	torchOn     bool
	denied      bool
	busy        bool
	zoomUpdates int
}

func (v *mockCameraView) SetFrame(img image.Image)       { v.frames = append(v.frames, img) }
func (v *mockCameraView) SetStatus(s string)             { v.status = s }
func (v *mockCameraView) SetZoom(z camera.ZoomState)     { v.zoom = z; v.zoomUpdates++ }
func (v *mockCameraView) SetTorch(avail, on bool)        { v.torchAvail, v.torchOn = avail, on }
func (v *mockCameraView) ShowPermissionDenied(show bool) { v.denied = show }
func (v *mockCameraView) SetBusy(b bool)                 { v.busy = b }

type mockRouter struct {
	camera   int
	settings int
	reviews  []*camera.CaptureResult
}

func (r *mockRouter) ShowCamera()                          { r.camera++ }
func (r *mockRouter) ShowSettings()                        { r.settings++ }
func (r *mockRouter) ShowReview(res *camera.CaptureResult) { r.reviews = append(r.reviews, res) }

// fakeRecognizer hands out channels the test completes by hand.
type fakeRecognizer struct {
	mu    sync.Mutex
	chans []chan ocr.Outcome
	modes []ocr.Mode
}

func (f *fakeRecognizer) RecognizeAsync(_ context.Context, _ image.Image, mode ocr.Mode) <-chan ocr.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan ocr.Outcome, 1)
	f.chans = append(f.chans, ch)
	f.modes = append(f.modes, mode)
	return ch
}

func (f *fakeRecognizer) complete(i int, text string, ok bool) {
	f.mu.Lock()
	ch := f.chans[i]
	f.mu.Unlock()
	ch <- ocr.Outcome{Text: text, OK: ok}
	close(ch)
}

type mockSpeaker struct {
	mu        sync.Mutex
	log       *[]string
	listeners []speech.Listener
	state     speech.State
	toggled   []string
	closed    chan struct{}
}

func newMockSpeaker(log *[]string) *mockSpeaker {
	return &mockSpeaker{log: log, closed: make(chan struct{})}
}

func (s *mockSpeaker) Subscribe(l speech.Listener) { s.listeners = append(s.listeners, l) }

func (s *mockSpeaker) TogglePlayPause(text string) {
	s.toggled = append(s.toggled, text)
	s.state = speech.Speaking
}

func (s *mockSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.log = append(*s.log, "speech:stop")
	s.state = speech.Idle
}

func (s *mockSpeaker) State() speech.State { return s.state }

func (s *mockSpeaker) Close() error {
	close(s.closed)
	return nil
}

type mockClipboard struct {
	text string
	err  error
}

func (c *mockClipboard) WriteAll(t string) error {
	if c.err != nil {
		return c.err
	}
	c.text = t
	return nil
}

type mockReviewView struct {
	log        *[]string
	images     []image.Image
	text       string
	mode       model.ReviewMode
	processing bool
	zoom       float64
	speechOK   bool
	speech     speech.State
	status     string
}

func (v *mockReviewView) ViewportSize() (int, int) { return 400, 300 }
func (v *mockReviewView) SetImage(img image.Image) {
	v.images = append(v.images, img)
	if img == nil && v.log != nil {
		*v.log = append(*v.log, "view:clear")
	}
}
func (v *mockReviewView) SetText(t string)           { v.text = t }
func (v *mockReviewView) SetMode(m model.ReviewMode) { v.mode = m }
func (v *mockReviewView) SetProcessing(b bool)       { v.processing = b }
func (v *mockReviewView) SetZoomLabel(z float64)     { v.zoom = z }
func (v *mockReviewView) SetStatus(s string)         { v.status = s }
func (v *mockReviewView) SetSpeechState(ok bool, s speech.State) {
	v.speechOK, v.speech = ok, s
}

// waitDrain drains d until cond holds.
func waitDrain(d *Dispatcher, cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.Drain()
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func stillResult(w, h int) *camera.CaptureResult {
	return &camera.CaptureResult{ID: "still", Image: image.NewRGBA(image.Rect(0, 0, w, h)), CapturedAt: time.Now()}
}

// pooledResult counts releases the way a pooled sampled frame would be recycled.
func pooledResult(w, h int, released *int) *camera.CaptureResult {
	return camera.NewCaptureResult(image.NewRGBA(image.Rect(0, 0, w, h)), camera.Rotate0, time.Now(), func() { *released++ })
}
