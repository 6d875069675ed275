package camera

import (
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
)

// digitalZoom crops around the centre for devices without optical zoom and
// scales the crop back to the source size so previews keep their footprint.
type digitalZoom struct {
	mu    sync.RWMutex
	ratio float64
	max   float64
}

func newDigitalZoom(max float64) *digitalZoom {
	if max < 1 {
		max = 1
	}
	return &digitalZoom{ratio: 1, max: max}
}

func (z *digitalZoom) Max() float64 { return z.max }

func (z *digitalZoom) Set(ratio float64) {
	z.mu.Lock()
	z.ratio = clamp(ratio, 1, z.max)
	z.mu.Unlock()
}

func (z *digitalZoom) Ratio() float64 {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.ratio
}

// Apply returns img zoomed by the current ratio.
func (z *digitalZoom) Apply(img image.Image) image.Image {
	r := z.Ratio()
	if img == nil || r <= 1 {
		return img
	}
	return CropZoom(img, r)
}

// CropZoom returns the centre 1/ratio of img resized back to the original bounds.
func CropZoom(img image.Image, ratio float64) image.Image {
	b := img.Bounds()
	if ratio <= 1 || b.Empty() {
		return img
	}
	w := int(math.Max(1, math.Round(float64(b.Dx())/ratio)))
	h := int(math.Max(1, math.Round(float64(b.Dy())/ratio)))
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	crop := imaging.Crop(img, image.Rect(x0, y0, x0+w, y0+h))
	return imaging.Resize(crop, b.Dx(), b.Dy(), imaging.Linear)
}
