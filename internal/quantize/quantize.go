// Package quantize reduces the color depth of raster images to make their
// lossless re-encoding smaller. Each RGB channel is posterized to a limited
// number of levels derived from a quality fraction; the alpha channel is never
// touched, so transparency boundaries survive intact.
package quantize

import (
	"image"
	"image/draw"
	"math"
)

// Levels returns the number of distinct values each color channel may take at
// quality q. Clamped to a minimum of 2 so the derived step size stays finite.
func Levels(q float64) int {
	levels := int(math.Floor(q * 255))
	if levels < 2 {
		return 2
	}
	return levels
}

// Image posterizes the RGB channels of src to the level count for q, leaving
// alpha unchanged. At q >= 1 the input is returned as-is: maximum quality
// skips quantization entirely.
func Image(src image.Image, q float64) image.Image {
	if q >= 1 {
		return src
	}

	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, src, bounds.Min, draw.Src)

	if len(out.Pix) == 0 {
		return out
	}

	step := 256.0 / float64(Levels(q))
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = posterize(out.Pix[i], step)
		out.Pix[i+1] = posterize(out.Pix[i+1], step)
		out.Pix[i+2] = posterize(out.Pix[i+2], step)
		// Pix[i+3] is alpha, passed through
	}
	return out
}

func posterize(v uint8, step float64) uint8 {
	rounded := math.Round(float64(v)/step) * step
	if rounded > 255 {
		return 255
	}
	return uint8(rounded)
}
