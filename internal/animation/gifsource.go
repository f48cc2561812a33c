package animation

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
)

// GIFSource adapts an animated GIF file to the Animation contract, so the
// export pipeline can run end-to-end on real input without the SVGA runtime.
// Frames are flattened at decode time: GIF frames may be partial rectangles
// overlaid on previous frames, so each is accumulated over a shared canvas.
type GIFSource struct {
	frames  []*image.RGBA
	fps     int
	width   int
	height  int
	current int
	playing bool
	closed  bool
}

// DecodeGIF decodes an animated GIF into a seekable source. Playback starts
// in the playing state, matching a freshly loaded editor animation.
func DecodeGIF(r io.Reader) (*GIFSource, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("decode gif: no frames")
	}

	bounds := image.Rect(0, 0, g.Image[0].Bounds().Dx(), g.Image[0].Bounds().Dy())
	canvas := image.NewRGBA(bounds)

	frames := make([]*image.RGBA, 0, len(g.Image))
	delaySum := 0
	for i, paletted := range g.Image {
		draw.Draw(canvas, paletted.Bounds(), paletted, paletted.Bounds().Min, draw.Over)

		frame := image.NewRGBA(bounds)
		copy(frame.Pix, canvas.Pix)
		frames = append(frames, frame)

		if i < len(g.Delay) {
			delaySum += g.Delay[i]
		}
	}

	// Delays are in 1/100s units. Zero-delay GIFs fall back to 30fps, the
	// same default the player assumes for animations without timing info.
	fps := 30
	if delaySum > 0 {
		fps = 100 * len(g.Image) / delaySum
		if fps < 1 {
			fps = 1
		}
	}

	return &GIFSource{
		frames:  frames,
		fps:     fps,
		width:   bounds.Dx(),
		height:  bounds.Dy(),
		playing: true,
	}, nil
}

func (s *GIFSource) Frames() int {
	return len(s.frames)
}

func (s *GIFSource) FPS() int {
	return s.fps
}

func (s *GIFSource) Size() (int, int) {
	return s.width, s.height
}

func (s *GIFSource) SeekFrame(index int) error {
	if s.closed {
		return fmt.Errorf("seek on closed animation")
	}
	if index < 0 || index >= len(s.frames) {
		return fmt.Errorf("frame index %d out of range [0,%d)", index, len(s.frames))
	}
	s.current = index
	return nil
}

func (s *GIFSource) Surface() Surface {
	return s
}

// Assets returns nil: GIF containers carry no keyed still assets.
func (s *GIFSource) Assets() map[string]image.Image {
	return nil
}

func (s *GIFSource) Playing() bool {
	return s.playing
}

func (s *GIFSource) Pause() {
	s.playing = false
}

func (s *GIFSource) Resume() {
	s.playing = true
}

func (s *GIFSource) Close() error {
	s.closed = true
	s.frames = nil
	return nil
}

// Ready implements Surface.
func (s *GIFSource) Ready() bool {
	return !s.closed && len(s.frames) > 0
}

// Snapshot implements Surface. The returned buffer is a fresh copy; later
// seeks do not mutate it.
func (s *GIFSource) Snapshot() (*image.RGBA, error) {
	if !s.Ready() {
		return nil, ErrSurfaceNotReady
	}
	src := s.frames[s.current]
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out, nil
}
