package imgcodec

import (
	"image"
	"image/color"
	"testing"
)

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"png", "png", false},
		{"PNG", "png", false},
		{"webp", "webp", false},
		{"WebP", "webp", false},
		{"gif", "", true},
		{"bmp", "", true},
	}
	for _, tt := range tests {
		enc, err := ForFormat(tt.format)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ForFormat(%q) expected error", tt.format)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForFormat(%q) error = %v", tt.format, err)
			continue
		}
		if enc.Extension() != tt.wantExt {
			t.Errorf("ForFormat(%q).Extension() = %q, want %q", tt.format, enc.Extension(), tt.wantExt)
		}
	}
}

func TestPNGEncoder_RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.SetRGBA(2, 3, color.RGBA{R: 200, G: 10, B: 40, A: 128})

	data, err := (&PNGEncoder{}).Encode(img)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, format, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
	r, g, b, a := decoded.At(2, 3).RGBA()
	wr, wg, wb, wa := img.At(2, 3).RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Errorf("pixel (2,3) = %v %v %v %v, want %v %v %v %v", r, g, b, a, wr, wg, wb, wa)
	}
}

func TestDecode_GarbageFails(t *testing.T) {
	if _, _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Fatal("Decode() on garbage expected error")
	}
}
