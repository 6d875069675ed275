package view

import (
	"fmt"

	"github.com/soocke/simple-magnify-go/domain/preferences"
	"github.com/soocke/simple-magnify-go/ui/model"
	"github.com/soocke/simple-magnify-go/ui/presenter"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SettingsActions is the presenter surface the settings screen drives.
type SettingsActions interface {
	StepDefaultZoom(steps int)
	ToggleLightOnStart()
	ToggleHighContrast()
	SetButtonPosition(pos preferences.ButtonPosition)
	Back()
}

// SettingsScreen lists the four preferences with their edit controls. It
// implements presenter.SettingsView.
type SettingsScreen struct {
	screen
	root *RootView

	zoom     *LabelWidget
	light    *ButtonWidget
	contrast *ButtonWidget
	position *LabelWidget
	errLabel *LabelWidget
}

func (v *SettingsScreen) build(a SettingsActions) {
	v.screen = newScreen()
	v.root.themeFrames(&v.screen)
	GridColumnConfigure(v.frame.Window, 1, Weight(1))
	row := 0
	makeRow := func(label string, widgets ...Widget) {
		lbl := v.root.label(label, Anchor("w"))
		Grid(lbl, In(v.frame), Row(row), Column(0), Sticky("w"), Padx("2m"), Pady("1m"))
		for i, w := range widgets {
			Grid(w, In(v.frame), Row(row), Column(i+1), Sticky("we"), Padx("1m"), Pady("1m"))
		}
		row++
	}
	v.zoom = v.root.label("")
	makeRow("Default zoom",
		v.root.button("−", func() { a.StepDefaultZoom(-1) }),
		v.zoom,
		v.root.button("+", func() { a.StepDefaultZoom(1) }))
	v.light = v.root.button("", a.ToggleLightOnStart)
	makeRow("Light on start", v.light)
	v.contrast = v.root.button("", a.ToggleHighContrast)
	makeRow("High contrast", v.contrast)
	v.position = v.root.label("")
	makeRow("Buttons",
		v.root.button("Left", func() { a.SetButtonPosition(preferences.ButtonsLeft) }),
		v.position,
		v.root.button("Right", func() { a.SetButtonPosition(preferences.ButtonsRight) }))
	v.errLabel = v.root.label("")
	Grid(v.errLabel, In(v.frame), Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("2m"))
	row++
	back := v.root.button("Back", a.Back)
	Grid(back, In(v.frame), Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("2m"), Pady("2m"))
	v.root.bindKey(presenter.ScreenSettings, "Escape", a.Back)
}

func (v *SettingsScreen) ShowPreferences(p preferences.Preferences) {
	if v == nil || v.zoom == nil {
		return
	}
	v.zoom.Configure(Txt(fmt.Sprintf("%.1f×", p.DefaultZoom)))
	v.light.Configure(Txt(model.OnOff(p.LightOnStart)))
	v.contrast.Configure(Txt(model.OnOff(p.HighContrast)))
	v.position.Configure(Txt(model.PositionLabel(p.ButtonPosition)))
}

func (v *SettingsScreen) ShowError(text string) {
	if v != nil && v.errLabel != nil {
		v.errLabel.Configure(Txt(text))
	}
}
