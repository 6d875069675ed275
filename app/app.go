package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/simple-magnify-go/domain/preferences"
	"github.com/soocke/simple-magnify-go/ui/presenter"
	"github.com/soocke/simple-magnify-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const tick = 33 * time.Millisecond

// app owns the Tk window and the update loop.
type app struct {
	c       *AppContainer
	logger  *slog.Logger
	afterID string
	closed  bool
}

// NewApp configures the main window for c.
func NewApp(title string, c *AppContainer) *app {
	a := &app{c: c, logger: c.Logger}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", c.Config.Window.Width, c.Config.Window.Height))
	return a
}

// Start builds the UI, enters the camera screen and blocks in the Tk event loop.
func (a *app) Start() {
	c := a.c
	prefs := c.Prefs.Snapshot()
	theme.SetHighContrast(prefs.HighContrast)
	c.RootView.Build(c.Camera, c.Review, c.Settings)
	c.RootView.ApplyPreferences(prefs)
	c.Prefs.Subscribe(func(key string, p preferences.Preferences) {
		c.Dispatch.Post(func() { c.RootView.ApplyPreferences(p) })
	})
	c.Loop = presenter.NewLoop(c.Dispatch, c.Nav, a.scheduleUpdate)

	c.Nav.ShowCamera()
	a.scheduleUpdate()
	a.logger.Info("ui started", "width", c.Config.Window.Width, "height", c.Config.Window.Height)
	App.Wait()
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// Stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.Nav.Close()
	a.c.Dispatch.Drain()
	a.c.Close()
	a.logger.Info("ui closed")
	Destroy(App)
}
