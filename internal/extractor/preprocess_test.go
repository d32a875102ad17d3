package extractor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocessImageBinarizes(t *testing.T) {
	// Left half bright, right half dark, with a hard edge wide enough that
	// the blur cannot pull either side across the threshold.
	src := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			c := color.NRGBA{R: 240, G: 240, B: 240, A: 255}
			if x >= 10 {
				c = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}

	out := PreprocessImage(src)

	bright := color.NRGBAModel.Convert(out.At(2, 5)).(color.NRGBA)
	dark := color.NRGBAModel.Convert(out.At(17, 5)).(color.NRGBA)

	assert.Equal(t, uint8(255), bright.R)
	assert.Equal(t, uint8(255), bright.G)
	assert.Equal(t, uint8(255), bright.B)

	assert.Equal(t, uint8(0), dark.R)
	assert.Equal(t, uint8(0), dark.G)
	assert.Equal(t, uint8(0), dark.B)
}

func TestPreprocessImageGrayscales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}

	out := PreprocessImage(src)

	c := color.NRGBAModel.Convert(out.At(4, 4)).(color.NRGBA)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}
