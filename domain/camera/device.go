package camera

import (
	"context"
	"image"
)

// Device is an exclusively owned capture session plus its controls.
// Implementations without a torch report HasTorch false and treat SetTorch as a no-op.
type Device interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Close() error
	MaxZoom() float64
	SetZoom(ratio float64) error
	HasTorch() bool
	SetTorch(on bool) error
	FocusAt(p Point) error
	ContinuousFocus() error
}

// FrameReader is implemented by devices sampled continuously; the controller
// keeps only the newest frame and captures by snapshotting it.
type FrameReader interface {
	ReadFrame() (image.Image, error)
}

// StillCapturer is implemented by devices with a dedicated one-shot still
// path. The returned rotation is the clockwise correction still to apply.
type StillCapturer interface {
	CaptureStill(ctx context.Context) (image.Image, Rotation, error)
}

// Opener acquires a device. Returning ErrNoDevice models a machine without a camera.
type Opener func(ctx context.Context) (Device, error)

// PermissionStatus is the current authorization for camera access.
type PermissionStatus int

const (
	PermissionUndetermined PermissionStatus = iota
	PermissionGranted
	PermissionDenied
)

func (s PermissionStatus) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// Permission checks and requests camera access. Request may block until the
// user answers.
type Permission interface {
	Status() PermissionStatus
	Request(ctx context.Context) (bool, error)
}

// StaticPermission always reports the same status. Sources that need no OS
// authorization (screen, file) use StaticPermission(PermissionGranted).
type StaticPermission PermissionStatus

func (p StaticPermission) Status() PermissionStatus { return PermissionStatus(p) }

func (p StaticPermission) Request(context.Context) (bool, error) {
	return PermissionStatus(p) != PermissionDenied, nil
}
