package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/svgagenius/svga-agent/internal/animation"
)

// stubAnim is a minimal Animation for driving the exporter.
type stubAnim struct {
	frames   int
	fps      int
	current  int
	playing  bool
	notReady bool
	assets   map[string]image.Image
}

func (s *stubAnim) Frames() int      { return s.frames }
func (s *stubAnim) FPS() int         { return s.fps }
func (s *stubAnim) Size() (int, int) { return 8, 8 }

func (s *stubAnim) SeekFrame(i int) error {
	s.current = i
	return nil
}

func (s *stubAnim) Surface() animation.Surface     { return s }
func (s *stubAnim) Assets() map[string]image.Image { return s.assets }
func (s *stubAnim) Playing() bool                  { return s.playing }
func (s *stubAnim) Pause()                         { s.playing = false }
func (s *stubAnim) Resume()                        { s.playing = true }
func (s *stubAnim) Close() error                   { return nil }

func (s *stubAnim) Ready() bool { return !s.notReady }

func (s *stubAnim) Snapshot() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(s.current * 10)
		img.Pix[i+3] = 255
	}
	return img, nil
}

func noSettle(ctx context.Context) error { return ctx.Err() }

func newTestExporter() *Exporter {
	return NewExporter(noSettle, nil)
}

func zipEntries(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestExport_FrameSequencePNG(t *testing.T) {
	anim := &stubAnim{frames: 24, fps: 12}
	e := newTestExporter()

	artifact, err := e.Export(context.Background(), anim, Request{
		Name:   "clip",
		Kind:   KindFrames,
		Format: "png",
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if artifact.Name != "clip_png.zip" {
		t.Errorf("artifact name = %q, want clip_png.zip", artifact.Name)
	}
	if artifact.MIME != "application/zip" {
		t.Errorf("MIME = %q, want application/zip", artifact.MIME)
	}

	names := zipEntries(t, artifact.Data)
	if len(names) != 24 {
		t.Fatalf("entry count = %d, want 24", len(names))
	}
	for i, name := range names {
		want := fmt.Sprintf("frame_%04d.png", i)
		if name != want {
			t.Errorf("entry %d = %q, want %q", i, name, want)
		}
	}
}

func TestExport_GIF(t *testing.T) {
	anim := &stubAnim{frames: 24, fps: 12}
	e := newTestExporter()

	artifact, err := e.Export(context.Background(), anim, Request{
		Name: "clip",
		Kind: KindGIF,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if artifact.Name != "clip.gif" {
		t.Errorf("artifact name = %q, want clip.gif", artifact.Name)
	}
	if artifact.MIME != "image/gif" {
		t.Errorf("MIME = %q, want image/gif", artifact.MIME)
	}

	decoded, err := gif.DecodeAll(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if len(decoded.Image) != 24 {
		t.Errorf("gif frame count = %d, want 24", len(decoded.Image))
	}
	// 1/12s interval in 1/100s units
	if decoded.Delay[0] != 8 {
		t.Errorf("delay = %d, want 8", decoded.Delay[0])
	}

	st := e.Status()
	if st.State != StateDone || st.Progress != 100 {
		t.Errorf("terminal status = %+v, want done/100", st)
	}
}

func TestExport_Assets(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 9, A: 255})
	anim := &stubAnim{frames: 1, fps: 10, assets: map[string]image.Image{
		"zeta_layer":  img,
		"alpha_layer": img,
	}}
	e := newTestExporter()

	artifact, err := e.Export(context.Background(), anim, Request{
		Name: "clip",
		Kind: KindAssets,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if artifact.Name != "clip_assets.zip" {
		t.Errorf("artifact name = %q, want clip_assets.zip", artifact.Name)
	}
	names := zipEntries(t, artifact.Data)
	want := []string{"alpha_layer.png", "zeta_layer.png"}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("entries = %v, want %v (sorted)", names, want)
	}
}

func TestExport_AssetsEmpty(t *testing.T) {
	anim := &stubAnim{frames: 1, fps: 10}
	e := newTestExporter()

	if _, err := e.Export(context.Background(), anim, Request{Name: "clip", Kind: KindAssets}); err == nil {
		t.Fatal("Export() with no assets expected error")
	}
}

func TestExport_RestoresPlayback(t *testing.T) {
	anim := &stubAnim{frames: 4, fps: 10, playing: true}
	e := newTestExporter()

	if _, err := e.Export(context.Background(), anim, Request{Name: "clip", Kind: KindFrames, Format: "png"}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !anim.playing {
		t.Error("animation not resumed after successful export")
	}
}

func TestExport_PausedStaysPaused(t *testing.T) {
	anim := &stubAnim{frames: 4, fps: 10, playing: false}
	e := newTestExporter()

	if _, err := e.Export(context.Background(), anim, Request{Name: "clip", Kind: KindFrames, Format: "png"}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if anim.playing {
		t.Error("paused animation resumed after export")
	}
}

func TestExport_RestoresPlaybackOnError(t *testing.T) {
	anim := &stubAnim{frames: 4, fps: 10, playing: true, notReady: true}
	e := newTestExporter()

	_, err := e.Export(context.Background(), anim, Request{Name: "clip", Kind: KindFrames, Format: "png"})
	if !errors.Is(err, animation.ErrSurfaceNotReady) {
		t.Fatalf("Export() error = %v, want ErrSurfaceNotReady", err)
	}
	if !anim.playing {
		t.Error("animation not resumed after failed export")
	}

	st := e.Status()
	if st.State != StateError {
		t.Errorf("state = %q, want error", st.State)
	}
	if st.Error == "" {
		t.Error("terminal error status carries no message")
	}
}

func TestExport_SurfaceNotReadyProducesNothing(t *testing.T) {
	anim := &stubAnim{frames: 10, fps: 10, notReady: true}
	e := newTestExporter()

	artifact, err := e.Export(context.Background(), anim, Request{Name: "clip", Kind: KindFrames, Format: "png"})
	if err == nil {
		t.Fatal("Export() with unmounted surface expected error")
	}
	if artifact != nil {
		t.Errorf("artifact = %+v, want nil (no partial output)", artifact)
	}
}

func TestExport_UnknownKind(t *testing.T) {
	anim := &stubAnim{frames: 1, fps: 10}
	e := newTestExporter()

	if _, err := e.Export(context.Background(), anim, Request{Name: "clip", Kind: "mp4"}); err == nil {
		t.Fatal("Export() with unknown kind expected error")
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	anim := &stubAnim{frames: 1, fps: 10}
	e := newTestExporter()

	if _, err := e.Export(context.Background(), anim, Request{Name: "clip", Kind: KindFrames, Format: "tiff"}); err == nil {
		t.Fatal("Export() with unknown format expected error")
	}
}

func TestExport_NameSanitized(t *testing.T) {
	anim := &stubAnim{frames: 1, fps: 10}
	e := newTestExporter()

	artifact, err := e.Export(context.Background(), anim, Request{
		Name:   "../../etc/passwd",
		Kind:   KindFrames,
		Format: "png",
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if artifact.Name != ".._.._etc_passwd_png.zip" {
		t.Errorf("artifact name = %q, want traversal-free name", artifact.Name)
	}
}

func TestExport_Cancelled(t *testing.T) {
	anim := &stubAnim{frames: 50, fps: 10, playing: true}
	e := newTestExporter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Export(ctx, anim, Request{Name: "clip", Kind: KindFrames, Format: "png"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Export() error = %v, want context.Canceled", err)
	}
	if !anim.playing {
		t.Error("animation not resumed after cancelled export")
	}
}
