package comprehend

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
)

// Stage enumerates the lifecycle points an Event can describe.
type Stage string

const (
	StageStart      Stage = "start"
	StageCaption    Stage = "caption"
	StageEscalate   Stage = "escalate"
	StageTranscribe Stage = "transcribe"
	StageDownload   Stage = "download"
	StageVisual     Stage = "visual"
	StageAnalyzed   Stage = "analyzed"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// UnknownProgress is the percent value for events without an estimate.
const UnknownProgress = -1

// Event is one progress notification.
type Event struct {
	Stage      Stage        `json:"stage"`
	Message    string       `json:"message"`
	Progress   int          `json:"progress"`
	Timestamp  float64      `json:"timestamp"`
	OutputPath string       `json:"output_path,omitempty"`
	RequestID  string       `json:"request_id,omitempty"`
	Tier       extract.Tier `json:"tier,omitempty"`
}

// Sink receives progress events. Notify must not block for long; its
// panics are recovered and never abort an analysis.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Notify(e Event) {
	f(e)
}

// UnixSeconds converts t to the fractional unix timestamp used in events.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// phasePercent estimates progress for backend phases. Tier 3 runs two
// legs, so audio and visual phases get separate slots.
var phasePercent = map[extract.Tier]map[extract.Phase]int{
	extract.TierCaptions: {extract.PhaseDownload: 15, extract.PhaseAnalyze: 15},
	extract.TierAudio:    {extract.PhaseDownload: 40, extract.PhaseTranscribe: 60},
	extract.TierVisual: {
		extract.PhaseDownload:   82,
		extract.PhaseTranscribe: 84,
		extract.PhaseAnalyze:    87,
	},
}

var phaseStage = map[extract.Phase]Stage{
	extract.PhaseDownload:   StageDownload,
	extract.PhaseTranscribe: StageTranscribe,
	extract.PhaseAnalyze:    StageVisual,
}

// notifier stamps and delivers events for one Analyze call.
type notifier struct {
	ctx       context.Context
	sink      Sink
	requestID string
	now       func() time.Time
	logger    logger.Logger
}

func (n *notifier) emit(tier extract.Tier, stage Stage, percent int, format string, args ...any) {
	if n.sink == nil {
		return
	}
	event := Event{
		Stage:     stage,
		Message:   fmt.Sprintf(format, args...),
		Progress:  percent,
		Timestamp: UnixSeconds(n.now()),
		RequestID: n.requestID,
		Tier:      tier,
	}
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn(n.ctx, "Progress sink panicked on %q: %v", event.Stage, r)
		}
	}()
	n.sink.Notify(event)
}

func (n *notifier) attempting(tier extract.Tier) {
	switch tier {
	case extract.TierCaptions:
		n.emit(tier, StageCaption, 10, "Tier 1: trying caption extraction...")
	case extract.TierAudio:
		n.emit(tier, StageTranscribe, 30, "Tier 2: starting audio transcription...")
	case extract.TierVisual:
		n.emit(tier, StageVisual, 80, "Tier 3: starting full visual analysis...")
	}
}

func (n *notifier) escalating(from extract.Tier, err error) {
	percent := 25
	if from == extract.TierAudio {
		percent = 75
	}
	n.emit(from, StageEscalate, percent, "Tier %d unavailable: %v. Escalating to Tier %d...", int(from), err, int(from)+1)
}

// backendProgress adapts backend phase reports into tier-tagged events.
func (n *notifier) backendProgress(tier extract.Tier) extract.ProgressFunc {
	return func(phase extract.Phase, message string) {
		stage, ok := phaseStage[phase]
		if !ok {
			stage = StageTranscribe
		}
		percent, ok := phasePercent[tier][phase]
		if !ok {
			percent = UnknownProgress
		}
		n.emit(tier, stage, percent, "Tier %d: %s", int(tier), message)
	}
}
