package presenter

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/soocke/simple-magnify-go/domain/camera"
	"github.com/soocke/simple-magnify-go/ui/model"
)

// ZoomStep is the factor applied by the zoom buttons.
const ZoomStep = 1.25

// CaptureController narrows what the camera screen needs from camera.Controller.
type CaptureController interface {
	AddListener(camera.StateListener)
	RequestStart(ctx context.Context) error
	State() camera.State
	Zoom() camera.ZoomState
	SetZoom(ratio float64) float64
	HasTorch() bool
	Torch() bool
	SetTorch(on bool)
	Focus(p camera.Point)
	Capture(ctx context.Context) (*camera.CaptureResult, error)
	LatestFrame() camera.FrameSnapshot
	Stop()
	Close() error
}

// ControllerFactory builds a controller whose listeners run through exec.
type ControllerFactory func(exec func(func())) CaptureController

// CameraPreferences is the part of the preference store read on entry.
type CameraPreferences interface {
	DefaultZoom() float64
	LightOnStart() bool
}

// CameraView renders the live preview screen.
type CameraView interface {
	SetFrame(img image.Image)
	SetStatus(text string)
	SetZoom(z camera.ZoomState)
	SetTorch(available, on bool)
	ShowPermissionDenied(show bool)
	SetBusy(busy bool)
}

// CameraPresenter drives the live preview. A fresh controller is created on
// Enter and fully released on Leave.
type CameraPresenter struct {
	newController ControllerFactory
	prefs         CameraPreferences
	view          CameraView
	dispatch      *Dispatcher
	openSettings  func(context.Context) error
	logger        *slog.Logger

	router Router
	model  model.CameraModel
	ctrl   CaptureController
	gen    uint64
}

func NewCameraPresenter(factory ControllerFactory, prefs CameraPreferences, view CameraView, dispatch *Dispatcher, logger *slog.Logger) *CameraPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CameraPresenter{
		newController: factory,
		prefs:         prefs,
		view:          view,
		dispatch:      dispatch,
		openSettings:  camera.OpenSystemSettings,
		logger:        logger,
	}
}

func (p *CameraPresenter) bind(r Router) {
	if p != nil {
		p.router = r
	}
}

// Enter creates the controller and requests a session.
func (p *CameraPresenter) Enter() {
	if p == nil || p.newController == nil || p.view == nil {
		return
	}
	if p.ctrl != nil {
		p.Leave()
	}
	p.gen++
	gen := p.gen
	p.model.Reset()
	p.view.ShowPermissionDenied(false)
	p.view.SetBusy(false)
	p.view.SetStatus("Starting camera")

	ctrl := p.newController(p.dispatch.Post)
	p.ctrl = ctrl
	ctrl.AddListener(func(_, next camera.State) {
		if gen != p.gen {
			return
		}
		p.onState(next)
	})
	go func() {
		err := ctrl.RequestStart(context.Background())
		if err == nil {
			return
		}
		p.dispatch.Post(func() {
			if gen != p.gen {
				return
			}
			p.onStartError(err)
		})
	}()
}

func (p *CameraPresenter) onState(s camera.State) {
	if !p.model.SetState(s) {
		return
	}
	switch s {
	case camera.StatePermissionPending:
		p.view.SetStatus("Waiting for camera permission")
	case camera.StatePermissionDenied:
		p.view.SetStatus("Camera access denied")
		p.view.ShowPermissionDenied(true)
	case camera.StateStarting:
		p.view.SetStatus("Starting camera")
	case camera.StateReady:
		p.onReady()
	case camera.StateStopped:
		p.view.SetStatus("Camera stopped")
	}
}

// onReady applies the stored default zoom and, only now, the start light.
func (p *CameraPresenter) onReady() {
	p.view.SetStatus("")
	p.ctrl.SetZoom(p.defaultZoom())
	if p.prefs != nil && p.prefs.LightOnStart() && p.ctrl.HasTorch() {
		p.ctrl.SetTorch(true)
	}
	p.syncControls()
}

func (p *CameraPresenter) defaultZoom() float64 {
	if p.prefs == nil {
		return 1
	}
	return p.prefs.DefaultZoom()
}

func (p *CameraPresenter) onStartError(err error) {
	switch {
	case errors.Is(err, camera.ErrPermissionDenied):
		p.view.SetStatus("Camera access denied")
		p.view.ShowPermissionDenied(true)
	case errors.Is(err, camera.ErrNoDevice):
		p.logger.Warn("camera.unavailable", "error", err)
		p.view.SetStatus("No camera found")
	default:
		p.logger.Warn("camera.start_failed", "error", err)
		p.view.SetStatus("Camera could not start")
	}
}

func (p *CameraPresenter) syncControls() {
	z := p.ctrl.Zoom()
	p.model.SetZoom(z)
	p.model.SetTorch(p.ctrl.Torch())
	p.view.SetZoom(z)
	p.view.SetTorch(p.ctrl.HasTorch(), p.ctrl.Torch())
}

func (p *CameraPresenter) ready() bool {
	return p != nil && p.ctrl != nil && p.view != nil && p.model.State() == camera.StateReady
}

// Pinch scales the zoom by factor, clamped by the controller.
func (p *CameraPresenter) Pinch(factor float64) {
	if !p.ready() || factor <= 0 {
		return
	}
	p.ctrl.SetZoom(p.ctrl.Zoom().Current * factor)
	p.syncControls()
}

func (p *CameraPresenter) ZoomIn()  { p.Pinch(ZoomStep) }
func (p *CameraPresenter) ZoomOut() { p.Pinch(1 / ZoomStep) }

func (p *CameraPresenter) ToggleTorch() {
	if !p.ready() {
		return
	}
	p.ctrl.SetTorch(!p.ctrl.Torch())
	p.syncControls()
}

// Tap focuses at a normalized preview position.
func (p *CameraPresenter) Tap(pt camera.Point) {
	if !p.ready() {
		return
	}
	p.ctrl.Focus(pt)
}

// Freeze captures a still in the background and opens it for review.
func (p *CameraPresenter) Freeze() {
	if !p.ready() || p.model.Freezing() {
		return
	}
	p.model.SetFreezing(true)
	p.view.SetBusy(true)
	gen, ctrl := p.gen, p.ctrl
	go func() {
		res, err := ctrl.Capture(context.Background())
		p.dispatch.Post(func() {
			if gen != p.gen {
				res.Release()
				return
			}
			p.model.SetFreezing(false)
			p.view.SetBusy(false)
			if err != nil {
				if !errors.Is(err, camera.ErrCaptureInProgress) {
					p.logger.Warn("camera.capture_failed", "error", err)
					p.view.SetStatus("Could not capture image")
				}
				return
			}
			if p.router == nil {
				res.Release()
				return
			}
			p.router.ShowReview(res)
		})
	}()
}

// OpenSystemSettings opens the OS privacy page after a denial.
func (p *CameraPresenter) OpenSystemSettings() {
	if p == nil || p.openSettings == nil {
		return
	}
	if err := p.openSettings(context.Background()); err != nil {
		p.logger.Warn("camera.open_settings_failed", "error", err)
	}
}

// ShowSettings navigates to the preferences screen.
func (p *CameraPresenter) ShowSettings() {
	if p == nil || p.router == nil {
		return
	}
	p.router.ShowSettings()
}

// Tick pushes the newest preview frame when it changed.
func (p *CameraPresenter) Tick() {
	if p == nil || p.ctrl == nil || p.view == nil {
		return
	}
	snap := p.ctrl.LatestFrame()
	if snap.Image == nil || !p.model.NewFrame(snap.Sequence) {
		return
	}
	p.view.SetFrame(snap.Image)
}

// Leave turns the torch off before stopping the session, then releases the
// controller. Safe to call repeatedly.
func (p *CameraPresenter) Leave() {
	if p == nil {
		return
	}
	p.gen++
	ctrl := p.ctrl
	p.ctrl = nil
	p.model.Reset()
	if ctrl == nil {
		return
	}
	ctrl.SetTorch(false)
	ctrl.Stop()
	if err := ctrl.Close(); err != nil {
		p.logger.Warn("camera.close_failed", "error", err)
	}
	if p.view != nil {
		p.view.SetFrame(nil)
		p.view.SetBusy(false)
	}
}
