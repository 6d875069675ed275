package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// WebcamConfig selects a video device and its preferred format.
type WebcamConfig struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
	// MaxDigitalZoom bounds the centre-crop zoom used in place of optical zoom.
	MaxDigitalZoom float64
}

// WebcamDevice reads frames from a local camera through OpenCV. Desktop
// webcams expose no torch and no point focus: FocusAt pulses autofocus once
// and then holds it, ContinuousFocus re-enables autofocus.
type WebcamDevice struct {
	cfg  WebcamConfig
	zoom *digitalZoom

	mu      sync.Mutex
	vc      *gocv.VideoCapture
	mat     gocv.Mat
	running bool
	closed  bool
}

// OpenWebcam returns an Opener for the configured device.
func OpenWebcam(cfg WebcamConfig) Opener {
	return func(ctx context.Context) (Device, error) {
		vc, err := gocv.OpenVideoCapture(cfg.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("%w: video device %d: %v", ErrNoDevice, cfg.DeviceID, err)
		}
		if !vc.IsOpened() {
			vc.Close()
			return nil, fmt.Errorf("%w: video device %d", ErrNoDevice, cfg.DeviceID)
		}
		if cfg.MaxDigitalZoom < 1 {
			cfg.MaxDigitalZoom = 8
		}
		return &WebcamDevice{cfg: cfg, zoom: newDigitalZoom(cfg.MaxDigitalZoom), vc: vc, mat: gocv.NewMat()}, nil
	}
}

func (d *WebcamDevice) Name() string { return fmt.Sprintf("webcam:%d", d.cfg.DeviceID) }

func (d *WebcamDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("webcam closed")
	}
	if d.cfg.Width > 0 && d.cfg.Height > 0 {
		d.vc.Set(gocv.VideoCaptureFrameWidth, float64(d.cfg.Width))
		d.vc.Set(gocv.VideoCaptureFrameHeight, float64(d.cfg.Height))
	}
	if d.cfg.FPS > 0 {
		d.vc.Set(gocv.VideoCaptureFPS, float64(d.cfg.FPS))
	}
	d.vc.Set(gocv.VideoCaptureAutoFocus, 1)
	if err := ctx.Err(); err != nil {
		return err
	}
	// The session counts as running once the first frame arrives.
	if ok := d.vc.Read(&d.mat); !ok || d.mat.Empty() {
		return errors.New("webcam produced no frame")
	}
	d.running = true
	return nil
}

func (d *WebcamDevice) Stop() error {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	return nil
}

func (d *WebcamDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.running = false
	d.mat.Close()
	return d.vc.Close()
}

// ReadFrame grabs the next frame and applies the digital zoom.
func (d *WebcamDevice) ReadFrame() (image.Image, error) {
	d.mu.Lock()
	if !d.running || d.closed {
		d.mu.Unlock()
		return nil, ErrNotReady
	}
	if ok := d.vc.Read(&d.mat); !ok || d.mat.Empty() {
		d.mu.Unlock()
		return nil, errors.New("empty frame")
	}
	img, err := d.mat.ToImage()
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return d.zoom.Apply(img), nil
}

func (d *WebcamDevice) MaxZoom() float64 { return d.zoom.Max() }

func (d *WebcamDevice) SetZoom(ratio float64) error {
	d.zoom.Set(ratio)
	return nil
}

func (d *WebcamDevice) HasTorch() bool { return false }
func (d *WebcamDevice) SetTorch(on bool) error { return nil }

func (d *WebcamDevice) FocusAt(Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotReady
	}
	d.vc.Set(gocv.VideoCaptureAutoFocus, 1)
	d.vc.Grab(1)
	d.vc.Set(gocv.VideoCaptureAutoFocus, 0)
	return nil
}

func (d *WebcamDevice) ContinuousFocus() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotReady
	}
	d.vc.Set(gocv.VideoCaptureAutoFocus, 1)
	return nil
}

var (
	_ Device      = (*WebcamDevice)(nil)
	_ FrameReader = (*WebcamDevice)(nil)
)
