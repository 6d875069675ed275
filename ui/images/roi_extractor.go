package images

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ExtractRegion crops r out of src. The rectangle is clamped to the source
// bounds and is at least 1x1. The result always starts at (0,0).
func ExtractRegion(src image.Image, r image.Rectangle) (*image.NRGBA, image.Rectangle, error) {
	if src == nil {
		return nil, image.Rectangle{}, errors.New("nil image")
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, image.Rectangle{}, errors.New("empty image")
	}
	r = r.Canon().Intersect(b)
	if r.Empty() {
		r = image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Min.Y+1)
	}
	return imaging.Crop(src, r), r, nil
}

// RenderViewport crops visible out of src and scales it to fit maxW x maxH.
func RenderViewport(src image.Image, visible image.Rectangle, maxW, maxH int) (image.Image, error) {
	crop, _, err := ExtractRegion(src, visible)
	if err != nil {
		return nil, err
	}
	return ScaleToFit(crop, maxW, maxH), nil
}
