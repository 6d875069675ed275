package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// minOCRWidth is the width below which stills are upscaled before recognition.
const minOCRWidth = 1000

// Preprocess prepares a still for recognition: small images are doubled,
// then converted to grayscale with raised contrast and a light sharpen.
func Preprocess(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Dx() > 0 && b.Dx() < minOCRWidth {
		img = imaging.Resize(img, b.Dx()*2, b.Dy()*2, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)
	contrast := imaging.AdjustContrast(gray, 10)
	return imaging.Sharpen(contrast, 1.1)
}
