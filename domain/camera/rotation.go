package camera

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Rotation is a clockwise correction in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// ParseRotation accepts 0, 90, 180 and 270 (and their negative/over-full-turn equivalents).
func ParseRotation(deg int) (Rotation, error) {
	d := ((deg % 360) + 360) % 360
	switch d {
	case 0, 90, 180, 270:
		return Rotation(d), nil
	}
	return Rotate0, fmt.Errorf("camera: unsupported rotation %d", deg)
}

// Apply returns img rotated clockwise by r. Rotate0 returns img unchanged.
func (r Rotation) Apply(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	switch r {
	case Rotate90:
		return imaging.Rotate270(img)
	case Rotate180:
		return imaging.Rotate180(img)
	case Rotate270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
