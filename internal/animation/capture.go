package animation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSurfaceNotReady is returned when capture starts before the render
// surface is attached. No frames have been sampled when this is returned.
var ErrSurfaceNotReady = errors.New("animation: render surface not ready")

// DefaultSettleDelay is the wait inserted between a seek and its snapshot so
// an asynchronous renderer can finish drawing. A fixed delay is a heuristic;
// sources that expose a frame-ready signal should supply their own SettleFunc.
const DefaultSettleDelay = 20 * time.Millisecond

// SettleFunc waits until the renderer has applied the most recent seek.
type SettleFunc func(ctx context.Context) error

// FixedSettle returns a SettleFunc that waits a fixed duration, honoring
// context cancellation.
func FixedSettle(d time.Duration) SettleFunc {
	return func(ctx context.Context) error {
		if d <= 0 {
			return ctx.Err()
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// CaptureOptions configures one capture run.
type CaptureOptions struct {
	// Settle is called after each seek, before the snapshot. Nil means
	// FixedSettle(DefaultSettleDelay).
	Settle SettleFunc

	// OnFrame receives each captured frame as it is taken. A non-nil error
	// aborts the run.
	OnFrame func(frame CapturedFrame) error

	// Progress, when set, receives floor((i+1)/F * ProgressMax) after each
	// frame.
	Progress func(percent int)

	// ProgressMax scales the reported range; zero means 100. Export modes
	// that split progress with a following encode stage pass 50.
	ProgressMax int
}

// Capture walks every frame of anim in order: seek, settle, snapshot, emit.
// Exactly Frames() frames are delivered with indices 0..F-1, no duplicates,
// no gaps. The context is checked at each frame boundary; cancellation stops
// the run with ctx.Err().
func Capture(ctx context.Context, anim Animation, opts CaptureOptions) error {
	surface := anim.Surface()
	if surface == nil || !surface.Ready() {
		return ErrSurfaceNotReady
	}

	total := anim.Frames()
	if total <= 0 {
		return nil
	}

	settle := opts.Settle
	if settle == nil {
		settle = FixedSettle(DefaultSettleDelay)
	}

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := anim.SeekFrame(i); err != nil {
			return fmt.Errorf("seek frame %d: %w", i, err)
		}
		if err := settle(ctx); err != nil {
			return err
		}

		img, err := surface.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot frame %d: %w", i, err)
		}

		if opts.OnFrame != nil {
			if err := opts.OnFrame(CapturedFrame{Index: i, Image: img}); err != nil {
				return err
			}
		}

		if opts.Progress != nil {
			max := opts.ProgressMax
			if max == 0 {
				max = 100
			}
			opts.Progress((i + 1) * max / total)
		}
	}

	return nil
}
