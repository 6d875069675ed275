package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/vova616/screenshot"
)

// ScreenDevice treats the desktop (or a rectangle of it) as the camera, which
// turns the app into a screen magnifier. Zoom is digital; there is no torch
// and focus requests are accepted but have nothing to adjust.
type ScreenDevice struct {
	rect    image.Rectangle
	zoom    *digitalZoom
	running atomic.Bool
}

// OpenScreen returns an Opener for rect; an empty rect captures the whole screen.
func OpenScreen(rect image.Rectangle, maxZoom float64) Opener {
	return func(ctx context.Context) (Device, error) {
		screen, err := screenshot.ScreenRect()
		if err != nil {
			return nil, fmt.Errorf("%w: screen: %v", ErrNoDevice, err)
		}
		if !rect.Empty() {
			rect = rect.Intersect(screen)
			if rect.Empty() {
				return nil, fmt.Errorf("%w: screen rect outside %v", ErrNoDevice, screen)
			}
		}
		if maxZoom < 1 {
			maxZoom = 8
		}
		return &ScreenDevice{rect: rect, zoom: newDigitalZoom(maxZoom)}, nil
	}
}

func (d *ScreenDevice) Name() string {
	if d.rect.Empty() {
		return "screen"
	}
	return "screen:" + d.rect.String()
}

func (d *ScreenDevice) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.grab(); err != nil {
		return err
	}
	d.running.Store(true)
	return nil
}

func (d *ScreenDevice) Stop() error { d.running.Store(false); return nil }
func (d *ScreenDevice) Close() error { return d.Stop() }

func (d *ScreenDevice) grab() (*image.RGBA, error) {
	var (
		img *image.RGBA
		err error
	)
	if d.rect.Empty() {
		img, err = screenshot.CaptureScreen()
	} else {
		img, err = screenshot.CaptureRect(d.rect)
	}
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("screen capture returned no image")
	}
	return img, nil
}

// ReadFrame captures the screen area and applies the digital zoom.
func (d *ScreenDevice) ReadFrame() (image.Image, error) {
	if !d.running.Load() {
		return nil, ErrNotReady
	}
	img, err := d.grab()
	if err != nil {
		return nil, err
	}
	return d.zoom.Apply(img), nil
}

func (d *ScreenDevice) MaxZoom() float64 { return d.zoom.Max() }
func (d *ScreenDevice) SetZoom(ratio float64) error { d.zoom.Set(ratio); return nil }
func (d *ScreenDevice) HasTorch() bool { return false }
func (d *ScreenDevice) SetTorch(bool) error { return nil }
func (d *ScreenDevice) FocusAt(Point) error { return nil }
func (d *ScreenDevice) ContinuousFocus() error { return nil }

var (
	_ Device      = (*ScreenDevice)(nil)
	_ FrameReader = (*ScreenDevice)(nil)
)
