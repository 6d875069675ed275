package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.DiscardHandler)

// fakeEngine blocks each utterance until finish is called or ctx ends.
type fakeEngine struct {
	mu      sync.Mutex
	spoken  []string
	rates   []float64
	active  int
	overlap bool
	finish  chan error
	closed  bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{finish: make(chan error, 8)}
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Speak(ctx context.Context, text string, rate float64) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.rates = append(f.rates, rate)
	f.active++
	if f.active > 1 {
		f.overlap = true
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()
	select {
	case err := <-f.finish:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func (f *fakeEngine) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// pausingEngine adds in-place pause.
type pausingEngine struct {
	*fakeEngine
	paused  bool
	pauses  int
	resumes int
}

func (p *pausingEngine) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == 0 {
		return false
	}
	p.paused = true
	p.pauses++
	return true
}

func (p *pausingEngine) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return false
	}
	p.paused = false
	p.resumes++
	return true
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestController_TogglePlayPauseSequence(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)

	c.TogglePlayPause("hello")
	assert.Equal(t, Speaking, c.State())
	c.TogglePlayPause("hello")
	assert.Equal(t, Paused, c.State())
	c.TogglePlayPause("hello")
	assert.Equal(t, Speaking, c.State())
	c.Pause()
	c.Stop()
	assert.Equal(t, Idle, c.State())

	waitFor(t, func() bool { return eng.Active() == 0 }, "sessions to end")
	for _, s := range eng.Spoken() {
		assert.Equal(t, "hello", s)
	}
}

func TestController_DegradedPauseRestartsFromBeginning(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)

	c.Speak("read this label")
	waitFor(t, func() bool { return eng.Active() == 1 }, "first utterance")
	c.Pause()
	waitFor(t, func() bool { return eng.Active() == 0 }, "utterance stopped on pause")
	assert.Equal(t, Paused, c.State())
	assert.Equal(t, "read this label", c.Text())

	c.Resume()
	waitFor(t, func() bool { return len(eng.Spoken()) == 2 }, "restart")
	assert.Equal(t, []string{"read this label", "read this label"}, eng.Spoken())
	assert.Equal(t, Speaking, c.State())
}

func TestController_TruePauseHoldsInPlace(t *testing.T) {
	eng := &pausingEngine{fakeEngine: newFakeEngine()}
	c := NewController(eng, discardLogger)

	c.Speak("one")
	waitFor(t, func() bool { return eng.Active() == 1 }, "utterance")
	c.Pause()
	assert.Equal(t, Paused, c.State())
	assert.Equal(t, 1, eng.Active(), "utterance is held, not stopped")
	c.Resume()
	assert.Equal(t, Speaking, c.State())
	assert.Equal(t, 1, eng.resumes)
	assert.Len(t, eng.Spoken(), 1, "no restart")
}

func TestController_PauseAndResumeOnlyFromValidStates(t *testing.T) {
	c := NewController(newFakeEngine(), discardLogger)
	c.Pause()
	assert.Equal(t, Idle, c.State())
	c.Resume()
	assert.Equal(t, Idle, c.State())

	c.Speak("x")
	c.Resume()
	assert.Equal(t, Speaking, c.State())
	c.Stop()
	c.Stop()
	assert.Equal(t, Idle, c.State())
}

func TestController_NaturalEndReturnsToIdle(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)
	c.Speak("done soon")
	eng.finish <- nil
	waitFor(t, func() bool { return c.State() == Idle }, "idle")
}

func TestController_FailureResetsToIdleWithoutRetry(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)
	c.Speak("boom")
	eng.finish <- errors.New("audio device lost")
	waitFor(t, func() bool { return c.State() == Idle }, "idle")
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, eng.Spoken(), 1)
}

func TestController_SpeakReplacesSessionWithoutOverlap(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)
	c.Speak("first")
	waitFor(t, func() bool { return eng.Active() == 1 }, "first")
	c.Speak("second")
	waitFor(t, func() bool { return len(eng.Spoken()) == 2 }, "second")

	assert.Equal(t, Speaking, c.State())
	assert.Equal(t, "second", c.Text())
	eng.mu.Lock()
	assert.False(t, eng.overlap)
	eng.mu.Unlock()

	// the cancelled first session must not flip state to Idle
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, Speaking, c.State())
}

func TestController_UsesSlowRate(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)
	c.Speak("slow")
	waitFor(t, func() bool { return eng.Active() == 1 }, "utterance")
	eng.mu.Lock()
	assert.Equal(t, []float64{0.9}, eng.rates)
	eng.mu.Unlock()
	c.Stop()
}

func TestController_BlankTextIgnored(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)
	c.TogglePlayPause("   ")
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, eng.Spoken())
}

func TestController_ListenersRunThroughExecutor(t *testing.T) {
	var (
		mu     sync.Mutex
		queued []func()
		seen   []State
	)
	exec := func(f func()) {
		mu.Lock()
		queued = append(queued, f)
		mu.Unlock()
	}
	c := NewController(newFakeEngine(), discardLogger, WithExecutor(exec))
	c.Subscribe(func(s State) { seen = append(seen, s) })

	c.Speak("a")
	c.Pause()
	c.Stop()
	assert.Empty(t, seen, "nothing delivered until the executor runs")

	mu.Lock()
	pending := queued
	mu.Unlock()
	for _, f := range pending {
		f()
	}
	assert.Equal(t, []State{Speaking, Paused, Idle}, seen)
}

func TestController_CloseStopsAndReleasesEngine(t *testing.T) {
	eng := newFakeEngine()
	c := NewController(eng, discardLogger)
	c.Speak("bye")
	require.NoError(t, c.Close())
	assert.Equal(t, Idle, c.State())
	assert.True(t, eng.closed)
	assert.Zero(t, eng.Active())

	c.Speak("ignored")
	assert.Equal(t, Idle, c.State())
	require.NoError(t, c.Close())
}
