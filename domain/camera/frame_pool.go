package camera

import (
	"image"
	"image/draw"
	"sync"
)

// Pool of RGBA buffers backing frozen captures. A capture copies the latest
// sampled frame into a pooled buffer so the sampler can keep overwriting its
// own frame; CaptureResult.Release hands the buffer back. Results that are
// never released simply fall back to the garbage collector.

var framePool sync.Pool // stores *image.RGBA

// acquireFrame returns a reusable RGBA image sized to rect. Pix length is
// exactly rect area * 4 and Stride is width*4.
func acquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// recycleFrame returns the frame to the pool. The caller must not touch it afterwards.
func recycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}

// copyFrame copies src into a pooled buffer with origin (0,0).
func copyFrame(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := acquireFrame(image.Rect(0, 0, b.Dx(), b.Dy()))
	if len(dst.Pix) == 0 {
		return dst
	}
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], src.Pix[so:so+rowLen])
	}
	return dst
}

// toRGBA returns img as *image.RGBA, converting when needed.
func toRGBA(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
