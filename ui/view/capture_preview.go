package view

import (
	"image"

	"github.com/soocke/simple-magnify-go/domain/camera"
	"github.com/soocke/simple-magnify-go/ui/images"
	"github.com/soocke/simple-magnify-go/ui/model"
	"github.com/soocke/simple-magnify-go/ui/presenter"
	"github.com/soocke/simple-magnify-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CameraActions is the presenter surface the live preview screen drives.
type CameraActions interface {
	ZoomIn()
	ZoomOut()
	ToggleTorch()
	Tap(p camera.Point)
	Freeze()
	OpenSystemSettings()
	ShowSettings()
}

// CameraScreen shows the live preview. It implements presenter.CameraView.
type CameraScreen struct {
	screen
	root *RootView

	preview   *LabelWidget
	status    *LabelWidget
	zoom      *LabelWidget
	torchBtn  *ButtonWidget
	freezeBtn *ButtonWidget
	deniedBtn *ButtonWidget
	photo     *Img // last Tk photo; deleted before replacement
	shown     image.Point
}

func (v *CameraScreen) build(a CameraActions) {
	v.screen = newScreen()
	v.root.themeFrames(&v.screen)
	w, h := v.root.viewportSize()
	v.photo = NewPhoto(Data(images.EncodePNG(image.NewGray(image.Rect(0, 0, w, h)))))
	v.preview = Label(Image(v.photo), Borderwidth(0))
	v.status = v.root.label("Starting camera…")
	Grid(v.preview, In(v.display), Row(0), Column(0), Sticky("nsew"))
	Grid(v.status, In(v.display), Row(1), Column(0), Sticky("we"))
	GridRowConfigure(v.display.Window, 0, Weight(1))
	GridColumnConfigure(v.display.Window, 0, Weight(1))

	v.zoom = v.root.label(model.ZoomLabel(1))
	zoomIn := v.root.button("Zoom +", a.ZoomIn)
	zoomOut := v.root.button("Zoom −", a.ZoomOut)
	v.torchBtn = v.root.button(model.TorchLabel(false, false), a.ToggleTorch)
	v.freezeBtn = v.root.button("Freeze", a.Freeze)
	settings := v.root.button("Settings", a.ShowSettings)
	stack(v.controls, v.zoom, zoomIn, zoomOut, v.torchBtn, v.freezeBtn, settings)
	v.deniedBtn = v.root.button("Open system settings", a.OpenSystemSettings)

	Bind(v.preview, "<Button-1>", Command(func(e *Event) {
		w, h := v.root.viewportSize()
		a.Tap(model.NormalizePoint(e.X, e.Y, image.Pt(w, h), v.shown))
	}))
	Bind(v.preview, "<Button-4>", Command(a.ZoomIn))
	Bind(v.preview, "<Button-5>", Command(a.ZoomOut))
	v.root.bindKey(presenter.ScreenCamera, "plus", a.ZoomIn)
	v.root.bindKey(presenter.ScreenCamera, "equal", a.ZoomIn)
	v.root.bindKey(presenter.ScreenCamera, "minus", a.ZoomOut)
	v.root.bindKey(presenter.ScreenCamera, "space", a.Freeze)
	v.root.bindKey(presenter.ScreenCamera, "Return", a.Freeze)
	v.root.onTheme(func(p theme.PaletteSnapshot) { v.preview.Configure(Background(p.AppBg)) })
}

// SetFrame replaces the preview image; nil blanks it.
func (v *CameraScreen) SetFrame(img image.Image) {
	if v == nil || v.preview == nil {
		return
	}
	w, h := v.root.viewportSize()
	if img == nil {
		img = image.NewGray(image.Rect(0, 0, w, h))
	} else {
		img = images.ScaleToFit(img, w, h)
	}
	v.shown = img.Bounds().Size()
	pngBytes := images.EncodePNG(img)
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(pngBytes))
	v.preview.Configure(Image(v.photo))
}

func (v *CameraScreen) SetStatus(text string) {
	if v != nil && v.status != nil {
		v.status.Configure(Txt(text))
	}
}

func (v *CameraScreen) SetZoom(z camera.ZoomState) {
	if v != nil && v.zoom != nil {
		v.zoom.Configure(Txt(model.ZoomLabel(z.Current)))
	}
}

func (v *CameraScreen) SetTorch(available, on bool) {
	if v != nil && v.torchBtn != nil {
		v.torchBtn.Configure(Txt(model.TorchLabel(available, on)), enabled(available))
	}
}

// ShowPermissionDenied swaps the freeze control for a link to system settings.
func (v *CameraScreen) ShowPermissionDenied(show bool) {
	if v == nil || v.deniedBtn == nil {
		return
	}
	if show {
		Grid(v.deniedBtn, In(v.controls), Row(6), Column(0), Sticky("we"), Padx("0.5m"), Pady("0.8m"))
		v.freezeBtn.Configure(enabled(false))
		return
	}
	GridForget(v.deniedBtn.Window)
	v.freezeBtn.Configure(enabled(true))
}

func (v *CameraScreen) SetBusy(busy bool) {
	if v == nil || v.freezeBtn == nil {
		return
	}
	if busy {
		v.freezeBtn.Configure(Txt("Capturing…"), enabled(false))
		return
	}
	v.freezeBtn.Configure(Txt("Freeze"), enabled(true))
}
