package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

const filePreviewMaxSide = 1280

// FileDevice serves a still image from disk. EXIF orientation is honoured on
// load; Rotation is an extra clockwise correction applied to each capture.
// It feeds the live preview from a downscaled copy and captures from the
// full-resolution image.
type FileDevice struct {
	path     string
	rotation Rotation
	zoom     *digitalZoom

	mu      sync.RWMutex
	full    image.Image
	preview image.Image
	running bool
}

// OpenFile returns an Opener for the image at path.
func OpenFile(path string, rotation Rotation, maxZoom float64) Opener {
	return func(ctx context.Context) (Device, error) {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
		}
		if maxZoom < 1 {
			maxZoom = 8
		}
		return &FileDevice{path: path, rotation: rotation, zoom: newDigitalZoom(maxZoom)}, nil
	}
}

// LoadImage decodes path applying its EXIF orientation.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	return img, nil
}

func (d *FileDevice) Name() string { return "file:" + d.path }

func (d *FileDevice) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := LoadImage(d.path)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.full = img
	d.preview = imaging.Fit(img, filePreviewMaxSide, filePreviewMaxSide, imaging.Linear)
	d.running = true
	d.mu.Unlock()
	return nil
}

func (d *FileDevice) Stop() error {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	return nil
}

func (d *FileDevice) Close() error {
	d.mu.Lock()
	d.running = false
	d.full, d.preview = nil, nil
	d.mu.Unlock()
	return nil
}

func (d *FileDevice) ReadFrame() (image.Image, error) {
	d.mu.RLock()
	preview, running := d.preview, d.running
	d.mu.RUnlock()
	if !running || preview == nil {
		return nil, ErrNotReady
	}
	return d.zoom.Apply(preview), nil
}

// CaptureStill returns the full-resolution image cropped to the current zoom.
func (d *FileDevice) CaptureStill(ctx context.Context) (image.Image, Rotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, Rotate0, err
	}
	d.mu.RLock()
	full, running := d.full, d.running
	d.mu.RUnlock()
	if !running || full == nil {
		return nil, Rotate0, errors.New("file device not running")
	}
	return d.zoom.Apply(full), d.rotation, nil
}

func (d *FileDevice) MaxZoom() float64 { return d.zoom.Max() }
func (d *FileDevice) SetZoom(ratio float64) error { d.zoom.Set(ratio); return nil }
func (d *FileDevice) HasTorch() bool { return false }
func (d *FileDevice) SetTorch(bool) error { return nil }
func (d *FileDevice) FocusAt(Point) error { return nil }
func (d *FileDevice) ContinuousFocus() error { return nil }

var (
	_ Device        = (*FileDevice)(nil)
	_ FrameReader   = (*FileDevice)(nil)
	_ StillCapturer = (*FileDevice)(nil)
)
