package view

import (
	"log/slog"

	"github.com/soocke/simple-magnify-go/domain/preferences"
	"github.com/soocke/simple-magnify-go/ui/model"
	"github.com/soocke/simple-magnify-go/ui/presenter"
	"github.com/soocke/simple-magnify-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	controlsWidth = 180 // approximate width of the control column in pixels
	chromeHeight  = 60
	panStep       = 0.05
	largeFont     = "Helvetica 18"
	textFont      = "Helvetica 22"
)

// screen is one full-window page: a display area and a control column.
type screen struct {
	frame    *FrameWidget
	display  *FrameWidget
	controls *FrameWidget
}

func newScreen() screen {
	s := screen{frame: Frame(), display: Frame(), controls: Frame()}
	GridRowConfigure(s.frame.Window, 0, Weight(1))
	return s
}

// RootView composes the three screens and switches between them. Screens
// exist before Build so presenters can be constructed against them; widget
// creation happens in Build.
type RootView struct {
	logger *slog.Logger
	width  int
	height int

	Camera   *CameraScreen
	Review   *ReviewScreen
	Settings *SettingsScreen

	current  presenter.Screen
	position preferences.ButtonPosition
	themed   []func(theme.PaletteSnapshot)
	keys     map[presenter.Screen]map[string]func()
}

// NewRootView creates the screen views for a window of the given size.
func NewRootView(width, height int, logger *slog.Logger) *RootView {
	rv := &RootView{logger: logger, width: width, height: height, position: preferences.ButtonsRight}
	rv.Camera = &CameraScreen{root: rv}
	rv.Review = &ReviewScreen{root: rv}
	rv.Settings = &SettingsScreen{root: rv}
	rv.keys = make(map[presenter.Screen]map[string]func())
	return rv
}

// Build constructs every widget and binds actions to the presenters.
func (rv *RootView) Build(cam CameraActions, rev ReviewActions, set SettingsActions) {
	if rv == nil {
		return
	}
	GridRowConfigure(App, 0, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))
	rv.Camera.build(cam)
	rv.Review.build(rev)
	rv.Settings.build(set)
	for _, key := range []string{"plus", "equal", "minus", "space", "Escape", "Left", "Right", "Up", "Down", "Return"} {
		k := key
		Bind(App, "<Key-"+k+">", Command(func() { rv.onKey(k) }))
	}
	rv.layout()
	rv.applyPalette()
}

// ShowScreen implements presenter.ScreenView.
func (rv *RootView) ShowScreen(s presenter.Screen) {
	if rv == nil {
		return
	}
	for _, sc := range []*screen{&rv.Camera.screen, &rv.Review.screen, &rv.Settings.screen} {
		if sc.frame != nil {
			GridForget(sc.frame.Window)
		}
	}
	if sc := rv.screenFor(s); sc != nil && sc.frame != nil {
		Grid(sc.frame, Row(0), Column(0), Sticky("nsew"))
	}
	rv.current = s
	if rv.logger != nil {
		rv.logger.Debug("ui.screen", "screen", s.String())
	}
}

// ApplyPreferences re-themes the window and moves the control column.
func (rv *RootView) ApplyPreferences(p preferences.Preferences) {
	if rv == nil {
		return
	}
	if theme.IsHighContrast() != p.HighContrast {
		theme.SetHighContrast(p.HighContrast)
		rv.applyPalette()
	}
	if rv.position != p.ButtonPosition {
		rv.position = p.ButtonPosition
		rv.layout()
	}
}

// viewportSize is the pixel area left for images beside the control column.
func (rv *RootView) viewportSize() (int, int) {
	w, h := rv.width-controlsWidth, rv.height-chromeHeight
	if w < 100 {
		w = 100
	}
	if h < 100 {
		h = 100
	}
	return w, h
}

func (rv *RootView) screenFor(s presenter.Screen) *screen {
	switch s {
	case presenter.ScreenCamera:
		return &rv.Camera.screen
	case presenter.ScreenReview:
		return &rv.Review.screen
	case presenter.ScreenSettings:
		return &rv.Settings.screen
	}
	return nil
}

func (rv *RootView) layout() {
	ctl, disp := model.ControlColumn(rv.position)
	for _, sc := range []*screen{&rv.Camera.screen, &rv.Review.screen} {
		if sc.frame == nil {
			continue
		}
		GridColumnConfigure(sc.frame.Window, disp, Weight(1))
		GridColumnConfigure(sc.frame.Window, ctl, Weight(0))
		Grid(sc.display, In(sc.frame), Row(0), Column(disp), Sticky("nsew"), Padx("1m"), Pady("1m"))
		Grid(sc.controls, In(sc.frame), Row(0), Column(ctl), Sticky("ns"), Padx("1m"), Pady("1m"))
	}
}

// onTheme registers a widget recolor hook.
func (rv *RootView) onTheme(f func(theme.PaletteSnapshot)) {
	rv.themed = append(rv.themed, f)
}

func (rv *RootView) applyPalette() {
	p := theme.CurrentPalette()
	for _, f := range rv.themed {
		f(p)
	}
}

// bindKey registers a key action for one screen.
func (rv *RootView) bindKey(s presenter.Screen, key string, f func()) {
	m := rv.keys[s]
	if m == nil {
		m = make(map[string]func())
		rv.keys[s] = m
	}
	m[key] = f
}

func (rv *RootView) onKey(key string) {
	if f := rv.keys[rv.current][key]; f != nil {
		f()
	}
}

// label creates a themed text label.
func (rv *RootView) label(text string, opts ...Opt) *LabelWidget {
	l := Label(append([]Opt{Txt(text), Font(largeFont)}, opts...)...)
	rv.onTheme(func(p theme.PaletteSnapshot) { l.Configure(Background(p.AppBg), Foreground(p.Text)) })
	return l
}

// button creates a themed large control button.
func (rv *RootView) button(text string, f func()) *ButtonWidget {
	b := Button(Txt(text), Font(largeFont), Command(f), Borderwidth(2))
	rv.onTheme(func(p theme.PaletteSnapshot) {
		b.Configure(Background(p.Primary), Foreground(p.PrimaryFg), Activebackground(p.Surface), Activeforeground(p.Text))
	})
	return b
}

func (rv *RootView) themeFrames(sc *screen) {
	rv.onTheme(func(p theme.PaletteSnapshot) {
		for _, f := range []*FrameWidget{sc.frame, sc.display, sc.controls} {
			f.Configure(Background(p.AppBg))
		}
	})
}

// stack grids widgets top-to-bottom in the control column.
func stack(parent *FrameWidget, widgets ...Widget) {
	for i, w := range widgets {
		Grid(w, In(parent), Row(i), Column(0), Sticky("we"), Padx("0.5m"), Pady("0.8m"))
	}
}

func enabled(on bool) Opt {
	if on {
		return State("normal")
	}
	return State("disabled")
}
