package imgcodec

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder encodes images to PNG with maximum compression. Alpha survives
// the round trip, which makes PNG the default for cutout animation frames.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }

func (e *PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
