package presenter

import (
	"log/slog"

	"github.com/soocke/simple-magnify-go/domain/camera"
)

// Screen identifies a top-level screen.
type Screen int

const (
	ScreenNone Screen = iota
	ScreenCamera
	ScreenReview
	ScreenSettings
)

func (s Screen) String() string {
	switch s {
	case ScreenCamera:
		return "camera"
	case ScreenReview:
		return "review"
	case ScreenSettings:
		return "settings"
	default:
		return "none"
	}
}

// Router is what presenters use to move between screens.
type Router interface {
	ShowCamera()
	ShowReview(res *camera.CaptureResult)
	ShowSettings()
}

// ScreenView raises the widgets of one screen.
type ScreenView interface {
	ShowScreen(Screen)
}

// Navigator owns the screen presenters and runs their Leave/Enter hooks.
// All methods run on the UI thread.
type Navigator struct {
	Camera   *CameraPresenter
	Review   *ReviewPresenter
	Settings *SettingsPresenter

	view    ScreenView
	logger  *slog.Logger
	current Screen
}

var _ Router = (*Navigator)(nil)

func NewNavigator(cam *CameraPresenter, rev *ReviewPresenter, set *SettingsPresenter, view ScreenView, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := &Navigator{Camera: cam, Review: rev, Settings: set, view: view, logger: logger}
	cam.bind(n)
	rev.bind(n)
	set.bind(n)
	return n
}

func (n *Navigator) Current() Screen {
	if n == nil {
		return ScreenNone
	}
	return n.current
}

func (n *Navigator) ShowCamera() {
	if n == nil {
		return
	}
	n.leave()
	n.switchTo(ScreenCamera)
	n.Camera.Enter()
}

// ShowReview hands res to the review screen, which then owns it.
func (n *Navigator) ShowReview(res *camera.CaptureResult) {
	if n == nil {
		res.Release()
		return
	}
	if res == nil || res.Image == nil {
		n.logger.Warn("ui.review_without_image")
		res.Release()
		return
	}
	n.leave()
	n.switchTo(ScreenReview)
	n.Review.Enter(res)
}

func (n *Navigator) ShowSettings() {
	if n == nil {
		return
	}
	n.leave()
	n.switchTo(ScreenSettings)
	n.Settings.Enter()
}

// Tick forwards the UI tick to the visible screen.
func (n *Navigator) Tick() {
	if n == nil {
		return
	}
	switch n.current {
	case ScreenCamera:
		n.Camera.Tick()
	case ScreenReview:
		n.Review.Tick()
	}
}

// Close leaves the current screen so every device is released.
func (n *Navigator) Close() {
	if n == nil {
		return
	}
	n.leave()
	n.current = ScreenNone
}

func (n *Navigator) switchTo(s Screen) {
	n.logger.Debug("ui.navigate", "from", n.current.String(), "to", s.String())
	n.current = s
	if n.view != nil {
		n.view.ShowScreen(s)
	}
}

func (n *Navigator) leave() {
	switch n.current {
	case ScreenCamera:
		n.Camera.Leave()
	case ScreenReview:
		n.Review.Leave()
	case ScreenSettings:
		n.Settings.Leave()
	}
}
