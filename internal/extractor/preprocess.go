package extractor

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// preprocessThreshold is the grayscale cutoff above which a pixel is forced
// to white when binarizing a page image.
const preprocessThreshold = 200

// PreprocessImage prepares a rasterized page for recognition: grayscale, a
// mild blur to reduce scan noise, then a hard threshold to make glyphs stand
// out against the background.
func PreprocessImage(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	blurred := imaging.Blur(gray, 1)
	return imaging.AdjustFunc(blurred, func(c color.NRGBA) color.NRGBA {
		if c.R > preprocessThreshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: c.A}
	})
}
