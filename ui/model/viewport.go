package model

import (
	"image"
	"math"
)

// Viewport tracks zoom and pan over a frozen still. Offsets are normalized to
// the image size, measured from its centre. The zero value is not usable;
// call NewViewport.
type Viewport struct {
	zoom      float64
	max       float64
	doubleTap float64
	offX      float64
	offY      float64
}

// NewViewport returns a viewport at 1.0x. max is floored at 1 and doubleTap
// is clamped into [1, max].
func NewViewport(max, doubleTap float64) *Viewport {
	if max < 1 || math.IsNaN(max) {
		max = 1
	}
	if doubleTap < 1 || math.IsNaN(doubleTap) {
		doubleTap = 1
	}
	if doubleTap > max {
		doubleTap = max
	}
	return &Viewport{zoom: 1, max: max, doubleTap: doubleTap}
}

func (v *Viewport) Zoom() float64 {
	if v == nil {
		return 1
	}
	return v.zoom
}

func (v *Viewport) Max() float64 {
	if v == nil {
		return 1
	}
	return v.max
}

// Offset returns the normalized pan offset.
func (v *Viewport) Offset() (x, y float64) {
	if v == nil {
		return 0, 0
	}
	return v.offX, v.offY
}

// Pinch multiplies the zoom by factor, clamped to [1, max].
func (v *Viewport) Pinch(factor float64) {
	if v == nil || factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	v.setZoom(v.zoom * factor)
}

// DoubleTap toggles between 1.0x and the double-tap zoom.
func (v *Viewport) DoubleTap() {
	if v == nil {
		return
	}
	if v.zoom > 1 {
		v.setZoom(1)
		return
	}
	v.setZoom(v.doubleTap)
}

// Pan moves the visible region by a normalized delta. Ignored at 1.0x.
func (v *Viewport) Pan(dx, dy float64) {
	if v == nil || v.zoom <= 1 {
		return
	}
	v.offX += dx
	v.offY += dy
	v.clampOffset()
}

// Drag follows a pointer moved by a fraction of the displayed width and
// height. The content tracks the pointer, so the offset moves the other way.
func (v *Viewport) Drag(dx, dy float64) {
	if v == nil || v.zoom <= 1 {
		return
	}
	v.Pan(-dx/v.zoom, -dy/v.zoom)
}

// Reset returns to 1.0x with no offset.
func (v *Viewport) Reset() {
	if v == nil {
		return
	}
	v.setZoom(1)
}

func (v *Viewport) setZoom(z float64) {
	switch {
	case z < 1:
		z = 1
	case z > v.max:
		z = v.max
	}
	v.zoom = z
	if z == 1 {
		v.offX, v.offY = 0, 0
		return
	}
	v.clampOffset()
}

// clampOffset keeps the visible region inside the image.
func (v *Viewport) clampOffset() {
	limit := 0.5 - 0.5/v.zoom
	v.offX = math.Max(-limit, math.Min(limit, v.offX))
	v.offY = math.Max(-limit, math.Min(limit, v.offY))
}

// Visible returns the part of bounds currently on screen.
func (v *Viewport) Visible(bounds image.Rectangle) image.Rectangle {
	if v == nil || bounds.Empty() {
		return bounds
	}
	w := max(1, int(math.Round(float64(bounds.Dx())/v.zoom)))
	h := max(1, int(math.Round(float64(bounds.Dy())/v.zoom)))
	cx := float64(bounds.Min.X) + (0.5+v.offX)*float64(bounds.Dx())
	cy := float64(bounds.Min.Y) + (0.5+v.offY)*float64(bounds.Dy())
	x0 := int(math.Round(cx - float64(w)/2))
	y0 := int(math.Round(cy - float64(h)/2))
	x0 = min(max(x0, bounds.Min.X), bounds.Max.X-w)
	y0 = min(max(y0, bounds.Min.Y), bounds.Max.Y-h)
	return image.Rect(x0, y0, x0+w, y0+h)
}
