package camera

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRotation(t *testing.T) {
	cases := map[int]Rotation{0: Rotate0, 90: Rotate90, 180: Rotate180, 270: Rotate270, -90: Rotate270, 450: Rotate90}
	for in, want := range cases {
		got, err := ParseRotation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseRotation(45)
	assert.Error(t, err)
}

func TestRotation_ApplyClockwise(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	row := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	row.SetNRGBA(0, 0, red)
	row.SetNRGBA(2, 0, blue)

	cw := Rotate90.Apply(row)
	require.Equal(t, image.Rect(0, 0, 1, 3), cw.Bounds())
	assert.Equal(t, red, color.NRGBAModel.Convert(cw.At(0, 0)))
	assert.Equal(t, blue, color.NRGBAModel.Convert(cw.At(0, 2)))

	ccw := Rotate270.Apply(row)
	assert.Equal(t, blue, color.NRGBAModel.Convert(ccw.At(0, 0)))

	flip := Rotate180.Apply(row)
	assert.Equal(t, blue, color.NRGBAModel.Convert(flip.At(0, 0)))

	assert.Same(t, row, Rotate0.Apply(row).(*image.NRGBA))
	assert.Nil(t, Rotate90.Apply(nil))
}

func TestCropZoom_KeepsBoundsAndCentre(t *testing.T) {
	img := solidImage(100, 50, color.RGBA{A: 255})
	for y := 20; y < 30; y++ {
		for x := 45; x < 55; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	out := CropZoom(img, 2)
	assert.Equal(t, img.Bounds(), out.Bounds())
	r, _, _, _ := out.At(50, 25).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r, _, _, _ = out.At(2, 2).RGBA()
	assert.Equal(t, uint32(0), r, "edges are cropped away")

	assert.Same(t, img, CropZoom(img, 1).(*image.RGBA))
}

func TestDigitalZoom_Clamps(t *testing.T) {
	z := newDigitalZoom(4)
	z.Set(10)
	assert.Equal(t, 4.0, z.Ratio())
	z.Set(0.1)
	assert.Equal(t, 1.0, z.Ratio())
}
