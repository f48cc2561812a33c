// Package animation defines the decoded-animation contract the export
// pipeline drives, and the frame capture loop that walks it. Concrete decoders
// (the SVGA runtime, the bundled GIF source) live behind the Animation
// interface; the capture loop owns the render surface for the duration of a
// run and never touches playback state itself.
package animation

import (
	"image"
)

// Animation is a decoded animation ready for seeking and sampling. The seek
// position is a single piece of mutable state, so callers must not seek
// concurrently; the capture loop relies on exclusive ownership while it runs.
type Animation interface {
	// Frames returns the total frame count.
	Frames() int

	// FPS returns the nominal playback rate in frames per second.
	FPS() int

	// Size returns the pixel dimensions of the render surface.
	Size() (width, height int)

	// SeekFrame jumps to the given frame without advancing the playback
	// clock. Pause semantics: a deterministic jump, not a play command.
	SeekFrame(index int) error

	// Surface returns the render surface frames are drawn onto.
	Surface() Surface

	// Assets returns the embedded still images keyed by asset name, or nil
	// when the container carries none.
	Assets() map[string]image.Image

	// Playing reports whether the animation is actively advancing.
	Playing() bool

	// Pause stops playback. Safe to call when already paused.
	Pause()

	// Resume restarts playback. Safe to call when already playing.
	Resume()

	// Close releases the decoded resources. The animation must not be used
	// afterwards.
	Close() error
}

// Surface is the drawing target the capture loop samples.
type Surface interface {
	// Ready reports whether the surface is attached and drawable. Capture
	// fails fast when it is not, rather than sampling blank frames.
	Ready() bool

	// Snapshot copies the surface's current pixel contents into a fresh
	// buffer. The returned image is owned by the caller.
	Snapshot() (*image.RGBA, error)
}

// CapturedFrame is one rasterized snapshot at a specific frame index.
// Indices are 0-based, contiguous, and strictly increasing within a run.
type CapturedFrame struct {
	Index int
	Image *image.RGBA
}
