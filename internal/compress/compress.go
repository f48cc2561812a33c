// Package compress runs batch PNG compression jobs: every source image is
// quantized at one shared quality setting, re-encoded losslessly, and packed
// into a single archive. A source that cannot be decoded degrades to verbatim
// passthrough instead of failing the whole job.
package compress

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/svgagenius/svga-agent/internal/archive"
	"github.com/svgagenius/svga-agent/internal/imgcodec"
	"github.com/svgagenius/svga-agent/internal/quantize"
)

// SourceImage is one independently-owned input to a compression job.
type SourceImage struct {
	Name string
	Data []byte
}

// Result summarizes a finished job.
type Result struct {
	Archive         []byte
	Entries         int
	OriginalBytes   int64
	CompressedBytes int64
	SavedBytes      int64
	PassedThrough   int
}

// Job is one batch run over a fixed set of images with a single quality
// parameter. It lives for exactly one Run and keeps no state afterwards.
type Job struct {
	images   []SourceImage
	quality  int
	logger   *slog.Logger
	progress func(percent int, status string)
}

// NewJob validates the quality parameter (1-100) and prepares a run.
// progress may be nil.
func NewJob(images []SourceImage, quality int, progress func(percent int, status string), logger *slog.Logger) (*Job, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("compress: quality %d out of range [1,100]", quality)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("compress: no images")
	}
	return &Job{images: images, quality: quality, logger: logger, progress: progress}, nil
}

// Run processes every image in order and returns the packed archive.
// Per-image progress spans 0-90; the final archive assembly takes 90-100.
// The context is checked between images.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	total := len(j.images)
	j.report(0, fmt.Sprintf("compressing %d images at quality %d%%", total, j.quality))

	var buf bytes.Buffer
	packager := archive.NewPackager(&buf)
	result := &Result{}

	for i, src := range j.images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		compressed, passthrough := j.compressOne(src)
		result.OriginalBytes += int64(len(src.Data))
		result.CompressedBytes += int64(len(compressed))
		if passthrough {
			result.PassedThrough++
		}
		if saved := len(src.Data) - len(compressed); saved > 0 {
			result.SavedBytes += int64(saved)
		}

		if err := packager.Add(entryName(src.Name), compressed); err != nil {
			return nil, err
		}
		result.Entries++

		j.report((i+1)*90/total, fmt.Sprintf("compressed %s", src.Name))
	}

	j.report(90, "assembling archive")
	if err := packager.Close(); err != nil {
		return nil, err
	}
	result.Archive = buf.Bytes()

	j.report(100, "done")
	return result, nil
}

// compressOne quantizes and re-encodes a single image. Decode or encode
// failure falls back to the original bytes: one bad image must not abort the
// batch.
func (j *Job) compressOne(src SourceImage) (data []byte, passthrough bool) {
	img, _, err := imgcodec.Decode(src.Data)
	if err != nil {
		if j.logger != nil {
			j.logger.Warn("image not decodable, passing through", "name", src.Name, "error", err)
		}
		return src.Data, true
	}

	quantized := quantize.Image(img, float64(j.quality)/100)

	encoded, err := (&imgcodec.PNGEncoder{}).Encode(quantized)
	if err != nil {
		if j.logger != nil {
			j.logger.Warn("image not encodable, passing through", "name", src.Name, "error", err)
		}
		return src.Data, true
	}
	return encoded, false
}

func (j *Job) report(percent int, status string) {
	if j.progress != nil {
		j.progress(percent, status)
	}
}

// entryName keeps the source base name and forces the .png extension, the
// output format of a compression job.
func entryName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." {
		base = "image"
	}
	return base + ".png"
}
