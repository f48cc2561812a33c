package imgcodec

import (
	"bytes"
	"fmt"
	"image"

	webp "github.com/daanv2/go-webp"
	webpconfig "github.com/daanv2/go-webp/pkg/config"
)

// DefaultWebPQuality is the lossy quality factor used for WebP frame export.
const DefaultWebPQuality = 90.0

// WebPEncoder encodes images to WebP through the pure-Go libwebp port.
type WebPEncoder struct {
	// Quality in [0,100]; zero means DefaultWebPQuality.
	Quality float64
}

func (e *WebPEncoder) Format() string    { return "webp" }
func (e *WebPEncoder) Extension() string { return "webp" }

func (e *WebPEncoder) Encode(img image.Image) ([]byte, error) {
	quality := e.Quality
	if quality <= 0 {
		quality = DefaultWebPQuality
	}

	conf := &webpconfig.Config{}
	if err := conf.InitPreset(webpconfig.WEBP_PRESET_PICTURE, quality); err != nil {
		return nil, fmt.Errorf("webp config: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, conf); err != nil {
		return nil, fmt.Errorf("webp encode: %w", err)
	}
	return buf.Bytes(), nil
}
