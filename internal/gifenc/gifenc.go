// Package gifenc assembles captured frames into an animated GIF. Each RGBA
// frame is palettized with a median-cut quantizer before the container is
// encoded, since GIF frames carry at most 256 colors.
package gifenc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"

	"github.com/andybons/gogif"
	"github.com/nfnt/resize"
)

// Options configures one GIF assembly.
type Options struct {
	// FPS is the source animation's playback rate; the per-frame delay is
	// 1/FPS seconds. Zero falls back to 30.
	FPS int

	// Width and Height optionally scale the output. Zero for one dimension
	// preserves aspect ratio; zero for both keeps the source size.
	Width  int
	Height int

	// Progress, when set, receives 0-100 over the palettization pass.
	Progress func(percent int)
}

// Encode palettizes frames and writes them into a single animated GIF blob.
// The context is checked between frames; cancellation aborts the encode.
func Encode(ctx context.Context, frames []*image.RGBA, opts Options) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("gifenc: no frames")
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	// GIF delays are in 1/100s units; very high frame rates floor at 1.
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}

	out := &gif.GIF{LoopCount: 0}
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var img image.Image = frame
		if opts.Width > 0 || opts.Height > 0 {
			img = resize.Resize(uint(opts.Width), uint(opts.Height), img, resize.Bilinear)
		}

		paletted := image.NewPaletted(img.Bounds(), nil)
		quantizer := &gogif.MedianCutQuantizer{NumColor: 256}
		quantizer.Quantize(paletted, img.Bounds(), img, image.Point{})

		out.Image = append(out.Image, paletted)
		out.Delay = append(out.Delay, delay)

		if opts.Progress != nil {
			opts.Progress((i + 1) * 100 / len(frames))
		}
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("gifenc: encode: %w", err)
	}
	return buf.Bytes(), nil
}
