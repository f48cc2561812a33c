// Package imgcodec provides the still-image codecs used by frame and batch
// exports: encoders selected by output format, and a decoder that accepts any
// registered input format.
package imgcodec

import (
	"fmt"
	"image"
	"strings"
)

// Encoder encodes a single raster image into one output format.
type Encoder interface {
	// Format returns the output format name (lowercase, e.g. "png", "webp").
	Format() string

	// Extension returns the file extension without dot.
	Extension() string

	// Encode converts the image to bytes.
	Encode(img image.Image) ([]byte, error)
}

// ForFormat returns the encoder for a frame-sequence output format.
func ForFormat(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return &WebPEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Formats lists the supported frame-sequence output formats.
func Formats() []string {
	return []string{"png", "webp"}
}
