package animation

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"
)

// encodeTestGIF builds an animated GIF with the given per-frame delays where
// frame i is filled with palette color i.
func encodeTestGIF(t *testing.T, delays []int) []byte {
	t.Helper()
	palette := color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, A: 255},
		color.RGBA{G: 255, A: 255},
		color.RGBA{B: 255, A: 255},
	}

	g := &gif.GIF{}
	for i, d := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, 8, 6), palette)
		for p := range frame.Pix {
			frame.Pix[p] = uint8(i % len(palette))
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, d)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("gif.EncodeAll() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecodeGIF_Metadata(t *testing.T) {
	data := encodeTestGIF(t, []int{10, 10, 10, 10}) // 10/100s per frame = 10fps

	src, err := DecodeGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeGIF() error = %v", err)
	}
	defer src.Close()

	if src.Frames() != 4 {
		t.Errorf("Frames() = %d, want 4", src.Frames())
	}
	if src.FPS() != 10 {
		t.Errorf("FPS() = %d, want 10", src.FPS())
	}
	w, h := src.Size()
	if w != 8 || h != 6 {
		t.Errorf("Size() = %dx%d, want 8x6", w, h)
	}
	if !src.Playing() {
		t.Error("fresh source should start playing")
	}
}

func TestDecodeGIF_ZeroDelayFallback(t *testing.T) {
	data := encodeTestGIF(t, []int{0, 0})

	src, err := DecodeGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeGIF() error = %v", err)
	}
	defer src.Close()

	if src.FPS() != 30 {
		t.Errorf("FPS() = %d, want fallback 30", src.FPS())
	}
}

func TestDecodeGIF_Garbage(t *testing.T) {
	if _, err := DecodeGIF(bytes.NewReader([]byte("not a gif"))); err == nil {
		t.Fatal("DecodeGIF() on garbage expected error")
	}
}

func TestGIFSource_SeekAndSnapshot(t *testing.T) {
	data := encodeTestGIF(t, []int{5, 5, 5})

	src, err := DecodeGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeGIF() error = %v", err)
	}
	defer src.Close()

	if err := src.SeekFrame(1); err != nil {
		t.Fatalf("SeekFrame(1) error = %v", err)
	}
	snap, err := src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	// frame 1 is solid red in the test palette
	r, g, b, _ := snap.At(3, 3).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("frame 1 pixel = %v %v %v, want solid red", r>>8, g>>8, b>>8)
	}

	// Snapshot must be a fresh buffer, untouched by later seeks.
	if err := src.SeekFrame(2); err != nil {
		t.Fatalf("SeekFrame(2) error = %v", err)
	}
	r2, _, _, _ := snap.At(3, 3).RGBA()
	if r2>>8 != 255 {
		t.Error("earlier snapshot mutated by a later seek")
	}
}

func TestGIFSource_SeekOutOfRange(t *testing.T) {
	data := encodeTestGIF(t, []int{5, 5})

	src, err := DecodeGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeGIF() error = %v", err)
	}
	defer src.Close()

	if err := src.SeekFrame(-1); err == nil {
		t.Error("SeekFrame(-1) expected error")
	}
	if err := src.SeekFrame(2); err == nil {
		t.Error("SeekFrame(2) on 2-frame source expected error")
	}
}

func TestGIFSource_ClosedNotReady(t *testing.T) {
	data := encodeTestGIF(t, []int{5})

	src, err := DecodeGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeGIF() error = %v", err)
	}
	src.Close()

	if src.Surface().Ready() {
		t.Error("closed source surface reports ready")
	}
	if _, err := src.Snapshot(); err == nil {
		t.Error("Snapshot() on closed source expected error")
	}
}

func TestGIFSource_PauseResume(t *testing.T) {
	data := encodeTestGIF(t, []int{5})

	src, err := DecodeGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeGIF() error = %v", err)
	}
	defer src.Close()

	src.Pause()
	if src.Playing() {
		t.Error("Playing() = true after Pause()")
	}
	src.Resume()
	if !src.Playing() {
		t.Error("Playing() = false after Resume()")
	}
}
