package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/svgagenius/svga-agent/internal/animation"
	"github.com/svgagenius/svga-agent/internal/archive"
	"github.com/svgagenius/svga-agent/internal/gifenc"
	"github.com/svgagenius/svga-agent/internal/imgcodec"
)

// ErrBusy is returned when an attempt is already running. The animation's
// seek position is single mutable state; two concurrent capture loops would
// corrupt frame ordering.
var ErrBusy = errors.New("export: attempt already in progress")

// Exporter runs export attempts one at a time and exposes their progress.
type Exporter struct {
	settle animation.SettleFunc
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	status  Status
}

// NewExporter creates an Exporter. settle may be nil to use the default
// fixed render-settle delay.
func NewExporter(settle animation.SettleFunc, logger *slog.Logger) *Exporter {
	return &Exporter{
		settle: settle,
		logger: logger,
		status: Status{State: StateIdle},
	}
}

// Status returns a snapshot of the current (or last finished) attempt.
func (e *Exporter) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Export runs one attempt to completion. If the animation is playing it is
// paused for the duration and resumed on every exit path, so the caller
// observes the same playback state afterwards regardless of outcome.
func (e *Exporter) Export(ctx context.Context, anim animation.Animation, req Request) (*Artifact, error) {
	attemptID := uuid.NewString()[:8]
	if err := e.begin(attemptID); err != nil {
		return nil, err
	}
	defer e.end()

	logger := e.logger
	if logger != nil {
		logger = logger.With("attempt_id", attemptID, "kind", string(req.Kind))
		logger.Info("export started", "name", req.Name, "format", req.Format)
	}

	name := SanitizeName(req.Name, 120)
	if name == "" {
		name = "animation"
	}

	wasPlaying := anim.Playing()
	if wasPlaying {
		anim.Pause()
	}
	defer func() {
		if wasPlaying {
			anim.Resume()
		}
	}()

	artifact, err := e.run(ctx, anim, req, name)
	if err != nil {
		e.fail(err)
		if logger != nil {
			logger.Error("export failed", "error", err)
		}
		return nil, err
	}

	e.finish()
	if logger != nil {
		logger.Info("export finished", "artifact", artifact.Name, "bytes", len(artifact.Data))
	}
	return artifact, nil
}

func (e *Exporter) run(ctx context.Context, anim animation.Animation, req Request, name string) (*Artifact, error) {
	switch req.Kind {
	case KindFrames:
		return e.exportFrames(ctx, anim, req, name)
	case KindGIF:
		return e.exportGIF(ctx, anim, req, name)
	case KindAssets:
		return e.exportAssets(ctx, anim, name)
	default:
		return nil, fmt.Errorf("unknown export kind %q", req.Kind)
	}
}

// exportFrames streams each captured frame straight into the archive as it
// arrives, so memory stays flat for animations with hundreds of frames.
func (e *Exporter) exportFrames(ctx context.Context, anim animation.Animation, req Request, name string) (*Artifact, error) {
	enc, err := imgcodec.ForFormat(req.Format)
	if err != nil {
		return nil, err
	}

	e.setPhase(StateCapturing, "capturing frames")

	var buf bytes.Buffer
	packager := archive.NewPackager(&buf)

	err = animation.Capture(ctx, anim, animation.CaptureOptions{
		Settle: e.settle,
		OnFrame: func(frame animation.CapturedFrame) error {
			data, err := enc.Encode(frame.Image)
			if err != nil {
				return fmt.Errorf("encode frame %d: %w", frame.Index, err)
			}
			return packager.Add(archive.FrameEntryName(frame.Index, enc.Extension()), data)
		},
		Progress: e.setProgress,
	})
	if err != nil {
		return nil, err
	}
	if err := packager.Close(); err != nil {
		return nil, err
	}

	return &Artifact{
		Name: fmt.Sprintf("%s_%s.zip", name, enc.Format()),
		MIME: "application/zip",
		Data: buf.Bytes(),
	}, nil
}

// exportGIF buffers every frame first — the GIF encoder needs the full set —
// so capture takes the 0-50 progress range and the encode pass takes 50-100.
func (e *Exporter) exportGIF(ctx context.Context, anim animation.Animation, req Request, name string) (*Artifact, error) {
	e.setPhase(StateCapturing, "capturing frames for GIF")

	frames := make([]*image.RGBA, 0, anim.Frames())
	err := animation.Capture(ctx, anim, animation.CaptureOptions{
		Settle: e.settle,
		OnFrame: func(frame animation.CapturedFrame) error {
			frames = append(frames, frame.Image)
			return nil
		},
		Progress:    e.setProgress,
		ProgressMax: 50,
	})
	if err != nil {
		return nil, err
	}

	e.setPhase(StateEncoding, "encoding GIF")

	data, err := gifenc.Encode(ctx, frames, gifenc.Options{
		FPS:      anim.FPS(),
		Width:    req.Width,
		Height:   req.Height,
		Progress: func(p int) { e.setProgress(50 + p/2) },
	})
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Name: name + ".gif",
		MIME: "image/gif",
		Data: data,
	}, nil
}

// exportAssets packages the animation's embedded still images. Keys are
// sorted so the archive is deterministic for the same input.
func (e *Exporter) exportAssets(ctx context.Context, anim animation.Animation, name string) (*Artifact, error) {
	assets := anim.Assets()
	if len(assets) == 0 {
		return nil, fmt.Errorf("animation carries no embedded assets")
	}

	e.setPhase(StateEncoding, "collecting assets")
	e.setProgress(20)

	keys := make([]string, 0, len(assets))
	for key := range assets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	packager := archive.NewPackager(&buf)
	enc := &imgcodec.PNGEncoder{}

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := enc.Encode(assets[key])
		if err != nil {
			return nil, fmt.Errorf("encode asset %q: %w", key, err)
		}
		if err := packager.Add(archive.AssetEntryName(key), data); err != nil {
			return nil, err
		}
		e.setProgress(20 + (i+1)*80/len(keys))
	}
	if err := packager.Close(); err != nil {
		return nil, err
	}

	return &Artifact{
		Name: name + "_assets.zip",
		MIME: "application/zip",
		Data: buf.Bytes(),
	}, nil
}

func (e *Exporter) begin(attemptID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrBusy
	}
	e.running = true
	e.status = Status{State: StateCapturing, AttemptID: attemptID}
	return nil
}

func (e *Exporter) end() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

func (e *Exporter) setPhase(state State, phase string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.State = state
	e.status.Phase = phase
}

func (e *Exporter) setProgress(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.Progress = percent
}

func (e *Exporter) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.State = StateError
	e.status.Error = err.Error()
}

func (e *Exporter) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.State = StateDone
	e.status.Progress = 100
	e.status.Phase = ""
}
