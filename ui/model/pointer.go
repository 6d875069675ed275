package model

import (
	"image"

	"github.com/soocke/simple-magnify-go/domain/camera"
)

// NormalizePoint maps a pointer position over area to [0,1] coordinates of
// content drawn centred in area. Positions over the letterbox clamp to the
// nearest edge.
func NormalizePoint(x, y int, area, content image.Point) camera.Point {
	if content.X <= 0 || content.Y <= 0 {
		return camera.Center
	}
	ox := (area.X - content.X) / 2
	oy := (area.Y - content.Y) / 2
	return camera.Point{
		X: float64(x-ox) / float64(content.X),
		Y: float64(y-oy) / float64(content.Y),
	}.Clamp()
}

// DragTracker turns successive pointer positions into deltas measured as a
// fraction of the displayed content size. The zero value is idle.
type DragTracker struct {
	x, y   int
	active bool
}

func (d *DragTracker) Press(x, y int) {
	d.x, d.y, d.active = x, y, true
}

// Motion returns the movement since the last position. ok is false when no
// drag is in progress or content has no size.
func (d *DragTracker) Motion(x, y int, content image.Point) (dx, dy float64, ok bool) {
	if !d.active || content.X <= 0 || content.Y <= 0 {
		return 0, 0, false
	}
	dx = float64(x-d.x) / float64(content.X)
	dy = float64(y-d.y) / float64(content.Y)
	d.x, d.y = x, y
	return dx, dy, true
}

func (d *DragTracker) Release() { d.active = false }
