package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/video"
)

// Tier is one of the three escalation levels.
type Tier int

const (
	TierCaptions Tier = 1
	TierAudio    Tier = 2
	TierVisual   Tier = 3
)

// MaxTier is the last tier an analysis may reach.
const MaxTier = TierVisual

// Valid reports whether t is 1, 2, or 3.
func (t Tier) Valid() bool {
	return t >= TierCaptions && t <= TierVisual
}

func (t Tier) String() string {
	return fmt.Sprintf("Tier %d", int(t))
}

// Name is the short label used for output directories and logs.
func (t Tier) Name() string {
	switch t {
	case TierCaptions:
		return "captions"
	case TierAudio:
		return "whisper"
	case TierVisual:
		return "visual"
	default:
		return "unknown"
	}
}

// Segment is one piece of timed text. End is nil when the source only
// reported a duration.
type Segment struct {
	Text     string
	Start    float64
	End      *float64
	Duration float64
}

// EndTime returns End when present, otherwise Start+Duration.
func (s Segment) EndTime() float64 {
	if s.End != nil {
		return *s.End
	}
	return s.Start + s.Duration
}

// Frame is the OCR text read from one sampled video frame.
type Frame struct {
	Timestamp  float64
	Text       string
	Confidence float64
}

// Output is what a backend returns on success.
type Output struct {
	Text            string
	Segments        []Segment
	Language        string
	DurationSeconds *float64
	Frames          []Frame
}

// Phase names a long-running step inside a backend call.
type Phase string

const (
	PhaseDownload   Phase = "download"
	PhaseTranscribe Phase = "transcribe"
	PhaseAnalyze    Phase = "analyze"
)

// ProgressFunc receives backend lifecycle notifications.
type ProgressFunc func(phase Phase, message string)

// Options are the per-call knobs a backend honours.
type Options struct {
	// KeepArtifacts retains downloaded media and extracted frames.
	KeepArtifacts bool
	Progress      ProgressFunc
}

// Report calls Progress when set.
func (o Options) Report(phase Phase, format string, args ...any) {
	if o.Progress != nil {
		o.Progress(phase, fmt.Sprintf(format, args...))
	}
}

// Backend extracts content for one tier.
type Backend interface {
	Extract(ctx context.Context, ref video.Reference, opts Options) (Output, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, ref video.Reference, opts Options) (Output, error)

func (f BackendFunc) Extract(ctx context.Context, ref video.Reference, opts Options) (Output, error) {
	return f(ctx, ref, opts)
}

// Seconds returns a pointer to v, for optional time fields.
func Seconds(v float64) *float64 {
	return &v
}

// JoinText joins trimmed segment texts with single spaces, skipping blanks.
func JoinText(segments []Segment) string {
	var b []byte
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, text...)
	}
	return string(b)
}
