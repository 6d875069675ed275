package camera

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	reads atomic.Int64
	fail  atomic.Bool
}

func (r *countingReader) ReadFrame() (image.Image, error) {
	n := r.reads.Add(1)
	if r.fail.Load() {
		return nil, errors.New("no signal")
	}
	return solidImage(int(n%5)+1, 1, color.RGBA{A: 255}), nil
}

func TestSampler_KeepsOnlyNewestFrame(t *testing.T) {
	r := &countingReader{}
	s := newSampler(r, time.Millisecond, discardLogger)
	s.Start()
	waitFor(t, time.Second, func() bool { return s.LatestFrame().Sequence >= 5 }, "frames")
	s.Stop()

	snap := s.LatestFrame()
	stats := s.Stats()
	assert.Equal(t, snap.Sequence, stats.Sequence)
	assert.Equal(t, stats.Captures, snap.Sequence, "every read replaces the previous frame")
	require.NotNil(t, snap.Image)
	assert.False(t, s.Running())
}

func TestSampler_StopHaltsReads(t *testing.T) {
	r := &countingReader{}
	s := newSampler(r, time.Millisecond, discardLogger)
	s.Start()
	s.Start()
	waitFor(t, time.Second, func() bool { return r.reads.Load() > 2 }, "reads")
	s.Stop()
	s.Stop()
	after := r.reads.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, r.reads.Load())
}

func TestSampler_CountsSkippedReads(t *testing.T) {
	r := &countingReader{}
	r.fail.Store(true)
	s := newSampler(r, time.Millisecond, discardLogger)
	s.Start()
	waitFor(t, time.Second, func() bool { return s.Stats().Skipped > 2 }, "skips")
	s.Stop()
	assert.Nil(t, s.LatestFrame().Image)
	assert.Zero(t, s.Stats().Captures)
}

func TestCopyFrame_HandlesOffsetBounds(t *testing.T) {
	src := solidImage(10, 10, color.RGBA{R: 9, A: 255})
	src.SetRGBA(5, 5, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	sub := src.SubImage(image.Rect(4, 4, 8, 8)).(*image.RGBA)

	out := copyFrame(sub)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, out.RGBAAt(1, 1))
	recycleFrame(out)
}
