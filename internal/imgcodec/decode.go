package imgcodec

import (
	"bytes"
	"image"

	// Registered input formats for batch compression sources.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Decode parses raw image bytes in any registered format and returns the
// image plus the detected format name.
func Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}
