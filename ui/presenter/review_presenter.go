package presenter

import (
	"context"
	"image"
	"log/slog"

	"github.com/soocke/simple-magnify-go/domain/camera"
	"github.com/soocke/simple-magnify-go/domain/ocr"
	"github.com/soocke/simple-magnify-go/domain/speech"
	"github.com/soocke/simple-magnify-go/ui/images"
	"github.com/soocke/simple-magnify-go/ui/model"
)

// Recognizer runs OCR off the UI thread.
type Recognizer interface {
	RecognizeAsync(ctx context.Context, img image.Image, mode ocr.Mode) <-chan ocr.Outcome
}

// Speaker narrows speech.Controller.
type Speaker interface {
	Subscribe(speech.Listener)
	TogglePlayPause(text string)
	Stop()
	State() speech.State
	Close() error
}

// SpeakerFactory builds a speaker whose listeners run through exec.
type SpeakerFactory func(exec func(func())) (Speaker, error)

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// ReviewView renders the frozen still and its text.
type ReviewView interface {
	ViewportSize() (w, h int)
	SetImage(img image.Image)
	SetText(text string)
	SetMode(mode model.ReviewMode)
	SetProcessing(busy bool)
	SetZoomLabel(zoom float64)
	SetSpeechState(available bool, s speech.State)
	SetStatus(text string)
}

// ReviewOptions holds the viewport limits for the frozen image.
type ReviewOptions struct {
	MaxZoom       float64
	DoubleTapZoom float64
}

// ReviewPresenter shows a captured still, runs OCR on it and reads the text
// aloud. It owns the capture result and the speaker between Enter and Leave.
type ReviewPresenter struct {
	ocr        Recognizer
	newSpeaker SpeakerFactory
	clipboard  Clipboard
	view       ReviewView
	dispatch   *Dispatcher
	opts       ReviewOptions
	logger     *slog.Logger

	router   Router
	model    model.ReviewModel
	viewport *model.Viewport
	result   *camera.CaptureResult
	speaker  Speaker
	gen      uint64
	// reading is set while recognition holds result.Image; the stale
	// outcome releases the still instead of Leave.
	reading bool
}

func NewReviewPresenter(rec Recognizer, speakers SpeakerFactory, clip Clipboard, view ReviewView, dispatch *Dispatcher, opts ReviewOptions, logger *slog.Logger) *ReviewPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReviewPresenter{
		ocr:        rec,
		newSpeaker: speakers,
		clipboard:  clip,
		view:       view,
		dispatch:   dispatch,
		opts:       opts,
		logger:     logger,
	}
}

func (p *ReviewPresenter) bind(r Router) {
	if p != nil {
		p.router = r
	}
}

// Enter takes ownership of res and starts line-mode recognition.
func (p *ReviewPresenter) Enter(res *camera.CaptureResult) {
	if p == nil || p.view == nil {
		res.Release()
		return
	}
	if p.result != nil || p.speaker != nil {
		p.Leave()
	}
	p.gen++
	gen := p.gen
	p.result = res
	p.viewport = model.NewViewport(p.opts.MaxZoom, p.opts.DoubleTapZoom)
	p.model.BeginRecognition()
	p.view.SetStatus("")
	p.view.SetText("")
	p.view.SetMode(model.ImageMode)
	p.view.SetProcessing(true)
	p.render()

	p.speaker = nil
	if p.newSpeaker != nil {
		sp, err := p.newSpeaker(p.dispatch.Post)
		if err != nil {
			p.logger.Warn("speech.unavailable", "error", err)
		} else {
			p.speaker = sp
			sp.Subscribe(func(s speech.State) {
				if gen != p.gen {
					return
				}
				p.view.SetSpeechState(p.model.HasText(), s)
			})
		}
	}
	p.view.SetSpeechState(false, speech.Idle)

	if p.ocr == nil || res == nil || res.Image == nil {
		p.finishRecognition("", false)
		return
	}
	p.reading = true
	ch := p.ocr.RecognizeAsync(context.Background(), res.Image, ocr.ModeLines)
	go func() {
		out := <-ch
		p.dispatch.Post(func() {
			if gen != p.gen {
				res.Release()
				return
			}
			p.reading = false
			p.finishRecognition(out.Text, out.OK)
		})
	}()
}

func (p *ReviewPresenter) finishRecognition(text string, ok bool) {
	p.model.FinishRecognition(text, ok)
	p.view.SetProcessing(false)
	p.view.SetText(p.model.Text())
	p.view.SetMode(p.model.Mode())
	p.view.SetSpeechState(p.speaker != nil && p.model.HasText(), speech.Idle)
	if !p.model.HasText() {
		p.view.SetStatus("No text found")
	}
}

func (p *ReviewPresenter) active() bool {
	return p != nil && p.view != nil && p.result != nil
}

func (p *ReviewPresenter) render() {
	if !p.active() || p.result.Image == nil {
		return
	}
	w, h := p.view.ViewportSize()
	img, err := images.RenderViewport(p.result.Image, p.viewport.Visible(p.result.Image.Bounds()), w, h)
	if err != nil {
		p.logger.Warn("review.render_failed", "error", err)
		return
	}
	p.view.SetImage(img)
	p.view.SetZoomLabel(p.viewport.Zoom())
}

// Pinch scales the still zoom by factor within [1, MaxZoom].
func (p *ReviewPresenter) Pinch(factor float64) {
	if !p.active() {
		return
	}
	p.viewport.Pinch(factor)
	p.render()
}

func (p *ReviewPresenter) ZoomIn()  { p.Pinch(ZoomStep) }
func (p *ReviewPresenter) ZoomOut() { p.Pinch(1 / ZoomStep) }

// DoubleTap toggles between 1.0x and the double-tap zoom.
func (p *ReviewPresenter) DoubleTap() {
	if !p.active() {
		return
	}
	p.viewport.DoubleTap()
	p.render()
}

// Pan shifts the visible region by a normalized delta while zoomed.
func (p *ReviewPresenter) Pan(dx, dy float64) {
	if !p.active() || p.viewport.Zoom() <= 1 {
		return
	}
	p.viewport.Pan(dx, dy)
	p.render()
}

// Drag pans with a pointer moved by a fraction of the displayed still.
func (p *ReviewPresenter) Drag(dx, dy float64) {
	if !p.active() || p.viewport.Zoom() <= 1 {
		return
	}
	p.viewport.Drag(dx, dy)
	p.render()
}

// ViewportZoom reports the current still zoom.
func (p *ReviewPresenter) ViewportZoom() float64 {
	if p == nil {
		return 1
	}
	return p.viewport.Zoom()
}

// ToggleSpeech plays, pauses or resumes reading the recognized text.
func (p *ReviewPresenter) ToggleSpeech() {
	if !p.active() || p.speaker == nil || !p.model.HasText() {
		return
	}
	p.speaker.TogglePlayPause(p.model.Text())
}

func (p *ReviewPresenter) StopSpeech() {
	if p == nil || p.speaker == nil {
		return
	}
	p.speaker.Stop()
}

// CopyText puts the recognized text on the clipboard.
func (p *ReviewPresenter) CopyText() {
	if !p.active() || p.clipboard == nil || !p.model.HasText() {
		return
	}
	if err := p.clipboard.WriteAll(p.model.Text()); err != nil {
		p.logger.Warn("review.copy_failed", "error", err)
		p.view.SetStatus("Could not copy text")
		return
	}
	p.view.SetStatus("Text copied")
}

func (p *ReviewPresenter) ShowImage() { p.setMode(model.ImageMode) }
func (p *ReviewPresenter) ShowText()  { p.setMode(model.TextMode) }

func (p *ReviewPresenter) setMode(m model.ReviewMode) {
	if !p.active() || p.model.Processing() {
		return
	}
	if p.model.SetMode(m) {
		p.view.SetMode(m)
		if m == model.ImageMode {
			p.render()
		}
	}
}

// Mode reports the current review mode.
func (p *ReviewPresenter) Mode() model.ReviewMode {
	if p == nil {
		return model.ImageMode
	}
	return p.model.Mode()
}

// Back returns to the live camera.
func (p *ReviewPresenter) Back() {
	if p == nil || p.router == nil {
		return
	}
	p.router.ShowCamera()
}

// Tick is a no-op; results arrive through the dispatcher.
func (p *ReviewPresenter) Tick() {}

// Leave stops speech before anything else, then releases the speaker and
// the captured still. A still still being recognized is released when its
// outcome arrives.
func (p *ReviewPresenter) Leave() {
	if p == nil {
		return
	}
	p.gen++
	if sp := p.speaker; sp != nil {
		p.speaker = nil
		sp.Stop()
		go func() {
			if err := sp.Close(); err != nil {
				p.logger.Warn("speech.close_failed", "error", err)
			}
		}()
	}
	if !p.reading {
		p.result.Release()
	}
	p.reading = false
	p.result = nil
	p.model = model.ReviewModel{}
	if p.view != nil {
		p.view.SetImage(nil)
		p.view.SetProcessing(false)
	}
}
