// Package export orchestrates a single export attempt: it drives the frame
// capture loop over an animation, feeds the result through the selected
// encoder, and produces one downloadable artifact while exposing observable
// progress.
package export

// Kind selects what one attempt produces.
type Kind string

const (
	// KindFrames produces a ZIP of per-frame still images.
	KindFrames Kind = "frames"
	// KindGIF produces a single animated GIF.
	KindGIF Kind = "gif"
	// KindAssets produces a ZIP of the animation's embedded still assets.
	KindAssets Kind = "assets"
)

// State is the attempt lifecycle. Done and Error are terminal for a given
// attempt; Error is reachable from any non-idle state.
type State string

const (
	StateIdle      State = "idle"
	StateCapturing State = "capturing"
	StateEncoding  State = "encoding"
	StateDone      State = "done"
	StateError     State = "error"
)

// Request describes one export attempt.
type Request struct {
	// Name is the source animation's base name, used for artifact naming.
	Name string
	// Kind selects the output mode.
	Kind Kind
	// Format is the still-image format for KindFrames ("png", "webp").
	Format string
	// Width and Height optionally scale GIF output; zero keeps source size.
	Width  int
	Height int
}

// Artifact is the produced downloadable blob. Ownership transfers to the
// caller; the exporter keeps no reference once the attempt completes.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}

// Status is an observable snapshot of the exporter, safe to poll mid-job.
type Status struct {
	State     State  `json:"state"`
	Progress  int    `json:"progress"`
	Phase     string `json:"phase,omitempty"`
	AttemptID string `json:"attempt_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
