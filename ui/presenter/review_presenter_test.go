package presenter

import (
	"errors"
	"image"
	"reflect"
	"testing"
	"time"

	"github.com/soocke/simple-magnify-go/domain/ocr"
	"github.com/soocke/simple-magnify-go/domain/speech"
	"github.com/soocke/simple-magnify-go/ui/model"
)

type reviewFixture struct {
	p       *ReviewPresenter
	rec     *fakeRecognizer
	speaker *mockSpeaker
	clip    *mockClipboard
	view    *mockReviewView
	router  *mockRouter
	d       *Dispatcher
	log     []string
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{rec: &fakeRecognizer{}, clip: &mockClipboard{}, router: &mockRouter{}, d: NewDispatcher(nil)}
	f.view = &mockReviewView{log: &f.log}
	speakers := func(exec func(func())) (Speaker, error) {
		f.speaker = newMockSpeaker(&f.log)
		return f.speaker, nil
	}
	f.p = NewReviewPresenter(f.rec, speakers, f.clip, f.view, f.d, ReviewOptions{MaxZoom: 15, DoubleTapZoom: 3}, nil)
	f.p.bind(f.router)
	return f
}

func TestReviewPresenter_TextSwitchesToTextMode(t *testing.T) {
	f := newReviewFixture()
	f.p.Enter(stillResult(40, 20))
	if !f.view.processing || f.view.mode != model.ImageMode {
		t.Fatalf("expected processing indicator in image mode")
	}
	if len(f.rec.modes) != 1 || f.rec.modes[0] != ocr.ModeLines {
		t.Fatalf("expected one line-mode recognition, got %v", f.rec.modes)
	}
	if len(f.view.images) == 0 || f.view.images[0].Bounds() != image.Rect(0, 0, 400, 200) {
		t.Fatalf("still not rendered to viewport")
	}

	f.rec.complete(0, "ABC\nDEF", true)
	if !waitDrain(f.d, func() bool { return !f.view.processing }) {
		t.Fatalf("recognition result not delivered")
	}
	if f.view.mode != model.TextMode || f.view.text != "ABC\nDEF" || !f.view.speechOK {
		t.Fatalf("expected text mode, got mode=%v text=%q speech=%v", f.view.mode, f.view.text, f.view.speechOK)
	}
}

func TestReviewPresenter_NoTextStaysInImageMode(t *testing.T) {
	f := newReviewFixture()
	f.p.Enter(stillResult(40, 20))
	f.rec.complete(0, "", false)
	if !waitDrain(f.d, func() bool { return !f.view.processing }) {
		t.Fatalf("recognition result not delivered")
	}
	if f.view.mode != model.ImageMode || f.view.speechOK {
		t.Fatalf("expected image mode without speech")
	}
	f.p.ShowText()
	if f.p.Mode() != model.ImageMode {
		t.Fatalf("text mode must be refused without text")
	}
	f.p.ToggleSpeech()
	if len(f.speaker.toggled) != 0 {
		t.Fatalf("nothing to speak")
	}
}

func TestReviewPresenter_StaleRecognitionIgnored(t *testing.T) {
	f := newReviewFixture()
	f.p.Enter(stillResult(40, 20))
	f.p.Leave()
	f.rec.complete(0, "late", true)
	time.Sleep(10 * time.Millisecond)
	f.d.Drain()
	if f.view.text == "late" || f.p.Mode() != model.ImageMode {
		t.Fatalf("stale result applied")
	}
}

func TestReviewPresenter_LeaveDuringRecognitionDefersRelease(t *testing.T) {
	f := newReviewFixture()
	released := 0
	f.p.Enter(pooledResult(40, 20, &released))
	f.p.Leave()
	f.d.Drain()
	if released != 0 {
		t.Fatalf("still released while recognition still reads it")
	}

	f.rec.complete(0, "late", true)
	if !waitDrain(f.d, func() bool { return released == 1 }) {
		t.Fatalf("still not released after stale outcome, released=%d", released)
	}
	if f.view.text == "late" {
		t.Fatalf("stale result applied")
	}
}

func TestReviewPresenter_ReenterDuringRecognitionDefersRelease(t *testing.T) {
	f := newReviewFixture()
	first, second := 0, 0
	f.p.Enter(pooledResult(40, 20, &first))
	f.p.Enter(pooledResult(40, 20, &second))
	if first != 0 {
		t.Fatalf("first still released before its recognition finished")
	}
	f.rec.complete(0, "old", true)
	if !waitDrain(f.d, func() bool { return first == 1 }) {
		t.Fatalf("first still not released")
	}
	if second != 0 || !f.view.processing {
		t.Fatalf("second still must stay owned while its recognition runs")
	}
}

func TestReviewPresenter_LeaveAfterRecognitionReleases(t *testing.T) {
	f := newReviewFixture()
	released := 0
	f.p.Enter(pooledResult(40, 20, &released))
	f.rec.complete(0, "ABC", true)
	if !waitDrain(f.d, func() bool { return !f.view.processing }) {
		t.Fatalf("recognition result not delivered")
	}
	if released != 0 {
		t.Fatalf("still released while on screen")
	}
	f.p.Leave()
	if released != 1 {
		t.Fatalf("expected immediate release on leave, got %d", released)
	}
}

func TestReviewPresenter_ViewportZoomAndPan(t *testing.T) {
	f := newReviewFixture()
	f.p.Enter(stillResult(40, 20))
	f.p.Pan(0.2, 0)
	f.p.DoubleTap()
	if f.p.ViewportZoom() != 3 || f.view.zoom != 3 {
		t.Fatalf("double tap: got %v", f.p.ViewportZoom())
	}
	f.p.Pinch(100)
	if f.p.ViewportZoom() != 15 {
		t.Fatalf("pinch clamp: got %v", f.p.ViewportZoom())
	}
	f.p.Pinch(0.001)
	if f.p.ViewportZoom() != 1 {
		t.Fatalf("pinch floor: got %v", f.p.ViewportZoom())
	}
}

func TestReviewPresenter_DragPansZoomedStill(t *testing.T) {
	f := newReviewFixture()
	f.p.Enter(stillResult(40, 20))
	renders := len(f.view.images)
	f.p.Drag(0.5, 0)
	if len(f.view.images) != renders {
		t.Fatalf("drag at 1x must not re-render")
	}
	f.p.DoubleTap()
	f.p.Drag(0.75, 0)
	if x, _ := f.p.viewport.Offset(); x != -0.25 {
		t.Fatalf("expected offset -0.25 after drag at 3x, got %v", x)
	}
}

func TestReviewPresenter_SpeechAndClipboard(t *testing.T) {
	f := newReviewFixture()
	f.p.Enter(stillResult(40, 20))
	f.rec.complete(0, "Take daily", true)
	waitDrain(f.d, func() bool { return !f.view.processing })

	f.p.ToggleSpeech()
	if !reflect.DeepEqual(f.speaker.toggled, []string{"Take daily"}) {
		t.Fatalf("unexpected speech calls %v", f.speaker.toggled)
	}
	f.p.CopyText()
	if f.clip.text != "Take daily" {
		t.Fatalf("clipboard not written")
	}
	f.clip.err = errors.New("no display")
	f.p.CopyText()
	if f.view.status != "Could not copy text" {
		t.Fatalf("copy failure not reported: %q", f.view.status)
	}

	f.p.ShowImage()
	if f.view.mode != model.ImageMode {
		t.Fatalf("image mode not shown")
	}
	f.p.ShowText()
	if f.view.mode != model.TextMode {
		t.Fatalf("text mode not shown")
	}
}

func TestReviewPresenter_LeaveStopsSpeechFirst(t *testing.T) {
	f := newReviewFixture()
	res := stillResult(40, 20)
	f.p.Enter(res)
	sp := f.speaker
	f.rec.complete(0, "hello", true)
	waitDrain(f.d, func() bool { return !f.view.processing })
	f.p.ToggleSpeech()

	f.p.Leave()
	if len(f.log) < 2 || f.log[0] != "speech:stop" || f.log[1] != "view:clear" {
		t.Fatalf("expected speech stop before teardown, got %v", f.log)
	}
	select {
	case <-sp.closed:
	case <-time.After(time.Second):
		t.Fatalf("speaker not closed")
	}
	f.p.Leave()
}

func TestReviewPresenter_SpeakerUnavailable(t *testing.T) {
	view := &mockReviewView{}
	d := NewDispatcher(nil)
	rec := &fakeRecognizer{}
	broken := func(func(func())) (Speaker, error) { return nil, speech.ErrUnavailable }
	p := NewReviewPresenter(rec, broken, nil, view, d, ReviewOptions{MaxZoom: 15, DoubleTapZoom: 3}, nil)
	p.Enter(stillResult(10, 10))
	rec.complete(0, "text", true)
	waitDrain(d, func() bool { return !view.processing })
	if view.speechOK {
		t.Fatalf("speech must be unavailable")
	}
	p.ToggleSpeech()
	p.CopyText()
	p.Back()
	p.Leave()
}

func TestReviewPresenter_BackRoutesToCamera(t *testing.T) {
	f := newReviewFixture()
	f.p.Back()
	if f.router.camera != 1 {
		t.Fatalf("expected camera route")
	}
}
