package view

import (
	"image"

	"github.com/soocke/simple-magnify-go/domain/speech"
	"github.com/soocke/simple-magnify-go/ui/images"
	"github.com/soocke/simple-magnify-go/ui/model"
	"github.com/soocke/simple-magnify-go/ui/presenter"
	"github.com/soocke/simple-magnify-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ReviewActions is the presenter surface the review screen drives.
type ReviewActions interface {
	ZoomIn()
	ZoomOut()
	DoubleTap()
	Pan(dx, dy float64)
	Drag(dx, dy float64)
	ToggleSpeech()
	StopSpeech()
	CopyText()
	ShowImage()
	ShowText()
	Back()
}

// ReviewScreen shows the frozen still or its recognized text. It implements
// presenter.ReviewView.
type ReviewScreen struct {
	screen
	root *RootView

	image      *LabelWidget
	text       *TextWidget
	processing *LabelWidget
	status     *LabelWidget
	zoom       *LabelWidget
	speakBtn   *ButtonWidget
	stopBtn    *ButtonWidget
	copyBtn    *ButtonWidget
	textBtn    *ButtonWidget
	photo      *Img
	shown      image.Point
	drag       model.DragTracker
	mode       model.ReviewMode
}

func (v *ReviewScreen) build(a ReviewActions) {
	v.screen = newScreen()
	v.root.themeFrames(&v.screen)
	v.image = Label(Borderwidth(0))
	v.text = Text(Wrap("word"), Font(textFont), Width(30), Height(12), Borderwidth(0))
	v.text.Configure(State("disabled"))
	v.processing = v.root.label("Reading text…")
	v.status = v.root.label("")
	GridRowConfigure(v.display.Window, 0, Weight(1))
	GridColumnConfigure(v.display.Window, 0, Weight(1))
	Grid(v.image, In(v.display), Row(0), Column(0), Sticky("nsew"))
	Grid(v.status, In(v.display), Row(2), Column(0), Sticky("we"))

	v.zoom = v.root.label(model.ZoomLabel(1))
	zoomIn := v.root.button("Zoom +", a.ZoomIn)
	zoomOut := v.root.button("Zoom −", a.ZoomOut)
	v.speakBtn = v.root.button(model.SpeechLabel(speech.Idle), a.ToggleSpeech)
	v.stopBtn = v.root.button("Stop", a.StopSpeech)
	v.copyBtn = v.root.button("Copy text", a.CopyText)
	imageBtn := v.root.button("Image", a.ShowImage)
	v.textBtn = v.root.button("Text", a.ShowText)
	back := v.root.button("Back", a.Back)
	stack(v.controls, v.zoom, zoomIn, zoomOut, v.speakBtn, v.stopBtn, v.copyBtn, imageBtn, v.textBtn, back)

	Bind(v.image, "<Double-Button-1>", Command(a.DoubleTap))
	Bind(v.image, "<ButtonPress-1>", Command(func(e *Event) { v.drag.Press(e.X, e.Y) }))
	Bind(v.image, "<B1-Motion>", Command(func(e *Event) {
		if dx, dy, ok := v.drag.Motion(e.X, e.Y, v.shown); ok {
			a.Drag(dx, dy)
		}
	}))
	Bind(v.image, "<ButtonRelease-1>", Command(func() { v.drag.Release() }))
	Bind(v.image, "<Button-4>", Command(a.ZoomIn))
	Bind(v.image, "<Button-5>", Command(a.ZoomOut))
	s := presenter.ScreenReview
	v.root.bindKey(s, "plus", a.ZoomIn)
	v.root.bindKey(s, "equal", a.ZoomIn)
	v.root.bindKey(s, "minus", a.ZoomOut)
	v.root.bindKey(s, "Return", a.DoubleTap)
	v.root.bindKey(s, "space", a.ToggleSpeech)
	v.root.bindKey(s, "Escape", a.Back)
	v.root.bindKey(s, "Left", func() { a.Pan(-panStep, 0) })
	v.root.bindKey(s, "Right", func() { a.Pan(panStep, 0) })
	v.root.bindKey(s, "Up", func() { a.Pan(0, -panStep) })
	v.root.bindKey(s, "Down", func() { a.Pan(0, panStep) })
	v.root.onTheme(func(p theme.PaletteSnapshot) {
		v.image.Configure(Background(p.AppBg))
		v.text.Configure(Background(p.AppBg), Foreground(p.Text))
	})
	v.SetSpeechState(false, speech.Idle)
}

func (v *ReviewScreen) ViewportSize() (int, int) {
	if v == nil || v.root == nil {
		return 0, 0
	}
	return v.root.viewportSize()
}

// SetImage replaces the rendered viewport; nil clears it.
func (v *ReviewScreen) SetImage(img image.Image) {
	if v == nil || v.image == nil {
		return
	}
	if v.photo != nil {
		v.photo.Delete()
		v.photo = nil
	}
	if img == nil {
		img = image.NewGray(image.Rect(0, 0, 1, 1))
	}
	v.shown = img.Bounds().Size()
	v.photo = NewPhoto(Data(images.EncodePNG(img)))
	v.image.Configure(Image(v.photo))
}

func (v *ReviewScreen) SetText(text string) {
	if v == nil || v.text == nil {
		return
	}
	v.text.Configure(State("normal"))
	v.text.Delete("1.0", END)
	v.text.Insert("1.0", text)
	v.text.Configure(State("disabled"))
	v.textBtn.Configure(enabled(text != ""))
	v.copyBtn.Configure(enabled(text != ""))
}

// SetMode shows either the still or the text in the display cell.
func (v *ReviewScreen) SetMode(mode model.ReviewMode) {
	if v == nil || v.image == nil || mode == v.mode {
		return
	}
	v.mode = mode
	if mode == model.TextMode {
		GridForget(v.image.Window)
		Grid(v.text, In(v.display), Row(0), Column(0), Sticky("nsew"))
		return
	}
	GridForget(v.text.Window)
	Grid(v.image, In(v.display), Row(0), Column(0), Sticky("nsew"))
}

func (v *ReviewScreen) SetProcessing(busy bool) {
	if v == nil || v.processing == nil {
		return
	}
	if busy {
		Grid(v.processing, In(v.display), Row(1), Column(0), Sticky("we"))
		return
	}
	GridForget(v.processing.Window)
}

func (v *ReviewScreen) SetZoomLabel(zoom float64) {
	if v != nil && v.zoom != nil {
		v.zoom.Configure(Txt(model.ZoomLabel(zoom)))
	}
}

func (v *ReviewScreen) SetSpeechState(available bool, s speech.State) {
	if v == nil || v.speakBtn == nil {
		return
	}
	v.speakBtn.Configure(Txt(model.SpeechLabel(s)), enabled(available))
	v.stopBtn.Configure(enabled(available && s != speech.Idle))
}

func (v *ReviewScreen) SetStatus(text string) {
	if v != nil && v.status != nil {
		v.status.Configure(Txt(text))
	}
}
