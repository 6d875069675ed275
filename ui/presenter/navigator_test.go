package presenter

import (
	"sync"
	"testing"

	"github.com/soocke/simple-magnify-go/domain/camera"
	"github.com/soocke/simple-magnify-go/domain/preferences"
)

type recordingScreens struct{ shown []Screen }

func (r *recordingScreens) ShowScreen(s Screen) { r.shown = append(r.shown, s) }

func TestNavigator_FreezeHandsResultToReview(t *testing.T) {
	ctrl := newMockController(true)
	d := NewDispatcher(nil)
	camView := &mockCameraView{}
	cam := NewCameraPresenter(func(exec func(func())) CaptureController {
		ctrl.exec = exec
		return ctrl
	}, mockPrefs{zoom: 1, light: true}, camView, d, nil)

	var log []string
	rec := &fakeRecognizer{}
	revView := &mockReviewView{log: &log}
	rev := NewReviewPresenter(rec, func(func(func())) (Speaker, error) {
		return newMockSpeaker(&log), nil
	}, nil, revView, d, ReviewOptions{MaxZoom: 15, DoubleTapZoom: 3}, nil)

	store, err := preferences.Open(t.Context(), preferences.NewMemoryBackend(), nil)
	if err != nil {
		t.Fatal(err)
	}
	set := NewSettingsPresenter(store, &mockSettingsView{}, nil)
	screens := &recordingScreens{}
	nav := NewNavigator(cam, rev, set, screens, nil)

	nav.ShowCamera()
	ctrl.emit(camera.StateReady)
	d.Drain()
	if !ctrl.Torch() {
		t.Fatalf("light on start expected")
	}

	res := stillResult(8, 8)
	ctrl.captureRes = res
	cam.Freeze()
	if !waitDrain(d, func() bool { return nav.Current() == ScreenReview }) {
		t.Fatalf("review not reached")
	}
	if ctrl.Torch() || ctrl.State() != camera.StateStopped {
		t.Fatalf("camera must be torn down on leave")
	}
	if rev.result != res {
		t.Fatalf("result not handed over")
	}

	rev.Back()
	if nav.Current() != ScreenCamera || rev.result != nil {
		t.Fatalf("expected camera with review released")
	}
	cam.ShowSettings()
	nav.Close()
	want := []Screen{ScreenCamera, ScreenReview, ScreenCamera, ScreenSettings}
	if len(screens.shown) != len(want) {
		t.Fatalf("got screens %v", screens.shown)
	}
	for i := range want {
		if screens.shown[i] != want[i] {
			t.Fatalf("got screens %v", screens.shown)
		}
	}
	if nav.Current() != ScreenNone {
		t.Fatalf("close must leave every screen")
	}
}

func TestNavigator_ShowReviewWithoutImage(t *testing.T) {
	d := NewDispatcher(nil)
	rev := NewReviewPresenter(&fakeRecognizer{}, nil, nil, &mockReviewView{}, d, ReviewOptions{MaxZoom: 2, DoubleTapZoom: 2}, nil)
	nav := NewNavigator(NewCameraPresenter(nil, nil, nil, d, nil), rev, NewSettingsPresenter(nil, nil, nil), nil, nil)
	nav.ShowReview(nil)
	nav.ShowReview(&camera.CaptureResult{})
	if nav.Current() != ScreenNone {
		t.Fatalf("review without an image must be refused")
	}
}

func TestDispatcher_RunsInOrderAndRecovers(t *testing.T) {
	d := NewDispatcher(nil)
	var got []int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Post(func() { got = append(got, 1) })
		d.Post(func() { panic("boom") })
		d.Post(func() { got = append(got, 2) })
	}()
	wg.Wait()
	if d.Pending() != 3 {
		t.Fatalf("expected 3 pending, got %d", d.Pending())
	}
	d.Post(nil)
	if n := d.Drain(); n != 3 {
		t.Fatalf("expected 3 drained, got %d", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected order %v", got)
	}
	var nilD *Dispatcher
	nilD.Post(func() {})
	if nilD.Drain() != 0 {
		t.Fatalf("nil dispatcher must be inert")
	}
}

func TestLoop_DrainsThenTicks(t *testing.T) {
	d := NewDispatcher(nil)
	ran, scheduled := 0, 0
	d.Post(func() { ran++ })
	l := NewLoop(d, nil, func() { scheduled++ })
	l.Tick()
	if ran != 1 || scheduled != 1 {
		t.Fatalf("ran=%d scheduled=%d", ran, scheduled)
	}
	var nilLoop *Loop
	nilLoop.Tick()
}
