package camera

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied is returned by RequestStart when camera access was refused.
	ErrPermissionDenied = errors.New("camera: permission denied")
	// ErrNoDevice is returned by an Opener when no capture device exists.
	ErrNoDevice = errors.New("camera: no device found")
	// ErrCaptureInProgress rejects a capture while another is outstanding.
	ErrCaptureInProgress = errors.New("camera: capture already in progress")
	// ErrNoFrame means the frame sampler has not produced a frame yet.
	ErrNoFrame = errors.New("camera: no frame available")
	// ErrNotReady rejects operations that need a running session.
	ErrNotReady = errors.New("camera: not ready")
)

// State enumerates the lifecycle of a capture controller.
type State int

const (
	StateUninitialized State = iota
	StatePermissionPending
	StatePermissionDenied
	StateStarting
	StateReady
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePermissionPending:
		return "permission-pending"
	case StatePermissionDenied:
		return "permission-denied"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateListener is called on each state transition.
type StateListener func(prev, next State)

// ZoomState describes the current zoom ratio and its bounds.
type ZoomState struct {
	Current float64
	Max     float64
	Default float64
}

// Point is a normalized position on the preview, both axes in [0,1].
type Point struct{ X, Y float64 }

// Center is the middle of the preview.
var Center = Point{X: 0.5, Y: 0.5}

// Clamp keeps both coordinates in [0,1].
func (p Point) Clamp() Point {
	return Point{X: clamp(p.X, 0, 1), Y: clamp(p.Y, 0, 1)}
}

// FrameSnapshot is the most recent sampled frame.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// Stats summarizes frame sampler activity.
type Stats struct {
	Captures         uint64
	Skipped          uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	LatestFrameAge   time.Duration
	Sequence         uint64
}

// CaptureResult is a frozen, rotation-corrected still. The consumer owns it
// and calls Release when done.
type CaptureResult struct {
	ID         string
	Image      image.Image
	Rotation   Rotation
	CapturedAt time.Time

	releaseOnce sync.Once
	release     func()
}

// NewCaptureResult wraps img with a fresh ID. release, if non-nil, runs once
// on the first Release.
func NewCaptureResult(img image.Image, rot Rotation, at time.Time, release func()) *CaptureResult {
	return &CaptureResult{ID: uuid.NewString(), Image: img, Rotation: rot, CapturedAt: at, release: release}
}

// Release returns pooled pixel memory. Safe to call more than once and on nil.
func (r *CaptureResult) Release() {
	if r == nil {
		return
	}
	r.releaseOnce.Do(func() {
		if r.release != nil {
			r.release()
		}
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
