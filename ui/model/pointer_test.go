package model

import (
	"image"
	"testing"

	"github.com/soocke/simple-magnify-go/domain/camera"
)

func TestNormalizePoint_Letterboxed(t *testing.T) {
	area, content := image.Pt(400, 300), image.Pt(400, 200)
	cases := []struct {
		x, y int
		want camera.Point
	}{
		{200, 150, camera.Point{X: 0.5, Y: 0.5}},
		{100, 100, camera.Point{X: 0.25, Y: 0.25}},
		{0, 10, camera.Point{X: 0, Y: 0}},
		{400, 299, camera.Point{X: 1, Y: 1}},
	}
	for _, c := range cases {
		if got := NormalizePoint(c.x, c.y, area, content); got != c.want {
			t.Fatalf("NormalizePoint(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
	if got := NormalizePoint(10, 10, area, image.Point{}); got != camera.Center {
		t.Fatalf("empty content maps to centre, got %v", got)
	}
}

func TestDragTracker(t *testing.T) {
	var d DragTracker
	content := image.Pt(200, 100)
	if _, _, ok := d.Motion(10, 10, content); ok {
		t.Fatalf("motion without press must be ignored")
	}
	d.Press(100, 50)
	dx, dy, ok := d.Motion(150, 40, content)
	if !ok || dx != 0.25 || dy != -0.1 {
		t.Fatalf("got %v,%v,%v", dx, dy, ok)
	}
	dx, _, _ = d.Motion(160, 40, content)
	if dx != 0.05 {
		t.Fatalf("deltas are relative to the last motion, got %v", dx)
	}
	d.Release()
	if _, _, ok := d.Motion(170, 40, content); ok {
		t.Fatalf("motion after release must be ignored")
	}
}
