package images

import (
	"image"
	"image/color"
	"testing"
)

func TestExtractRegion_CropsAndRebases(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 100))
	frame.Set(40, 40, color.RGBA{R: 255, A: 255})
	roi, rect, err := ExtractRegion(frame, image.Rect(30, 30, 70, 70))
	if err != nil || roi == nil {
		t.Fatalf("expected region, got err=%v", err)
	}
	if rect != image.Rect(30, 30, 70, 70) {
		t.Fatalf("unexpected rect %v", rect)
	}
	if roi.Bounds() != image.Rect(0, 0, 40, 40) {
		t.Fatalf("expected rebased bounds, got %v", roi.Bounds())
	}
	if c := roi.NRGBAAt(10, 10); c.R != 255 {
		t.Fatalf("pixel not carried over: %v", c)
	}
}

func TestExtractRegion_ClampsNearEdge(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 20, 20))
	_, rect, err := ExtractRegion(frame, image.Rect(-5, -5, 10, 30))
	if err != nil {
		t.Fatalf("region error: %v", err)
	}
	if rect != image.Rect(0, 0, 10, 20) {
		t.Fatalf("expected clamp to frame, got %v", rect)
	}
}

func TestExtractRegion_MinSize(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 10, 10))
	roi, rect, _ := ExtractRegion(frame, image.Rect(50, 50, 60, 60))
	if roi == nil {
		t.Fatalf("nil region")
	}
	if rect.Dx() != 1 || rect.Dy() != 1 {
		t.Fatalf("expected 1x1 got %dx%d", rect.Dx(), rect.Dy())
	}
	if _, _, err := ExtractRegion(nil, rect); err == nil {
		t.Fatalf("expected error for nil image")
	}
}

func TestScaleToFit_UpAndDown(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	if got := ScaleToFit(src, 400, 400).Bounds(); got != image.Rect(0, 0, 400, 200) {
		t.Fatalf("upscale: got %v", got)
	}
	if got := ScaleToFit(src, 10, 10).Bounds(); got != image.Rect(0, 0, 10, 5) {
		t.Fatalf("downscale: got %v", got)
	}
	if ScaleToFit(src, 40, 100) != image.Image(src) {
		t.Fatalf("same size should return source")
	}
}

func TestRenderViewport(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	out, err := RenderViewport(src, image.Rect(50, 25, 150, 75), 400, 400)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 400, 200) {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if len(EncodePNG(out)) == 0 {
		t.Fatalf("png encoding empty")
	}
}
