package comprehend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
)

// Backends holds one extractor per tier. A nil Visual backend makes tier 3
// report VisualAnalysisUnavailable.
type Backends struct {
	Captions extract.Backend
	Audio    extract.Backend
	Visual   extract.Backend
}

// Settings are the configured defaults an Analyzer falls back to.
type Settings struct {
	DefaultTier  extract.Tier
	AutoEscalate bool
	KeepAudio    bool
	KeepFrames   bool
}

// Request carries per-call overrides. Zero Tier and nil AutoEscalate use
// the Settings defaults.
type Request struct {
	Tier         extract.Tier
	AutoEscalate *bool
	Sink         Sink
}

// Analyzer is safe for concurrent use as long as its backends are.
type Analyzer struct {
	backends Backends
	settings Settings
	logger   logger.Logger
	now      func() time.Time
	newID    func() string
}

// New creates an Analyzer over already-constructed backends.
func New(backends Backends, settings Settings, log logger.Logger) *Analyzer {
	if settings.DefaultTier == 0 {
		settings.DefaultTier = extract.TierCaptions
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Analyzer{
		backends: backends,
		settings: settings,
		logger:   log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Analyze attempts tiers from the requested (or default) tier up to 3 and
// returns the first success. The returned error is the terminal failure of
// the escalation chain.
func (a *Analyzer) Analyze(ctx context.Context, ref video.Reference, req Request) (*Result, error) {
	requestID := a.newID()
	ctx = logger.WithRequestID(ctx, requestID)
	n := &notifier{ctx: ctx, sink: req.Sink, requestID: requestID, now: a.now, logger: a.logger}

	start := req.Tier
	if start == 0 {
		start = a.settings.DefaultTier
	}
	if !start.Valid() {
		return nil, extract.NewHard(extract.KindInvalidTier, fmt.Sprintf("tier %d must be 1, 2, or 3", int(start)), nil)
	}

	escalate := a.settings.AutoEscalate
	if req.AutoEscalate != nil {
		escalate = *req.AutoEscalate
	}

	a.logger.Info(ctx, "Analyzing %s from %s (auto-escalate: %v)", ref.URL, start, escalate)

	var lastSoft error
	for tier := start; tier <= extract.MaxTier; tier++ {
		a.logger.Info(ctx, "Attempting %s (%s)", tier, tier.Name())
		n.attempting(tier)

		result, err := a.attempt(ctx, ref, tier, n)
		switch extract.Classify(err, acceptedKinds(tier)...) {
		case extract.VerdictSuccess:
			a.logger.Info(ctx, "%s succeeded for %s", tier, ref.ID)
			n.emit(tier, StageAnalyzed, 90, "Analysis complete (Tier %d)", int(tier))
			return result, nil
		case extract.VerdictHard:
			a.logger.Error(ctx, "%s failed: %v", tier, err)
			return nil, err
		case extract.VerdictSoft:
			lastSoft = err
			if !escalate || tier == extract.MaxTier {
				a.logger.Warn(ctx, "%s unavailable, not escalating: %v", tier, err)
				return nil, err
			}
			a.logger.Warn(ctx, "%s unavailable, escalating: %v", tier, err)
			n.escalating(tier, err)
		}
	}

	return nil, lastSoft
}

// QuickTranscript returns only the transcript text, starting at tier 1
// with escalation enabled.
func (a *Analyzer) QuickTranscript(ctx context.Context, ref video.Reference) (string, error) {
	escalate := true
	result, err := a.Analyze(ctx, ref, Request{Tier: extract.TierCaptions, AutoEscalate: &escalate})
	if err != nil {
		return "", err
	}
	return result.TranscriptText, nil
}

func (a *Analyzer) attempt(ctx context.Context, ref video.Reference, tier extract.Tier, n *notifier) (*Result, error) {
	switch tier {
	case extract.TierCaptions:
		out, err := a.run(ctx, a.backends.Captions, ref, tier, extract.Options{Progress: n.backendProgress(tier)})
		if err != nil {
			return nil, err
		}
		return &Result{
			Metadata: Metadata{
				Reference:       ref,
				TierUsed:        tier,
				Language:        out.Language,
				DurationSeconds: out.DurationSeconds,
			},
			TranscriptText:     transcriptText(out),
			TranscriptSegments: out.Segments,
		}, nil

	case extract.TierAudio:
		out, err := a.run(ctx, a.backends.Audio, ref, tier, extract.Options{
			KeepArtifacts: a.settings.KeepAudio,
			Progress:      n.backendProgress(tier),
		})
		if err != nil {
			return nil, err
		}
		return &Result{
			Metadata: Metadata{
				Reference:       ref,
				TierUsed:        tier,
				Language:        out.Language,
				DurationSeconds: out.DurationSeconds,
			},
			TranscriptText:     transcriptText(out),
			TranscriptSegments: out.Segments,
		}, nil

	case extract.TierVisual:
		// The audio leg re-runs tier 2 semantics and stays the transcript source of truth.
		audio, err := a.run(ctx, a.backends.Audio, ref, extract.TierAudio, extract.Options{
			KeepArtifacts: a.settings.KeepAudio,
			Progress:      n.backendProgress(tier),
		})
		if err != nil {
			return nil, err
		}
		visual, err := a.run(ctx, a.backends.Visual, ref, tier, extract.Options{
			KeepArtifacts: a.settings.KeepFrames,
			Progress:      n.backendProgress(tier),
		})
		if err != nil {
			return nil, err
		}

		duration := audio.DurationSeconds
		if duration == nil {
			duration = visual.DurationSeconds
		}
		return &Result{
			Metadata: Metadata{
				Reference:        ref,
				TierUsed:         tier,
				Language:         audio.Language,
				DurationSeconds:  duration,
				HasVisualContent: len(visual.Frames) > 0,
			},
			TranscriptText:     transcriptText(audio),
			TranscriptSegments: audio.Segments,
			VisualText:         visual.Text,
			VisualFrames:       visual.Frames,
		}, nil
	}

	return nil, extract.NewHard(extract.KindInvalidTier, fmt.Sprintf("tier %d must be 1, 2, or 3", int(tier)), nil)
}

func (a *Analyzer) run(ctx context.Context, backend extract.Backend, ref video.Reference, tier extract.Tier, opts extract.Options) (extract.Output, error) {
	if backend == nil {
		return extract.Output{}, extract.NewSoft(extract.SoftKindFor(tier), tier, fmt.Sprintf("no %s backend configured", tier.Name()), nil)
	}
	return backend.Extract(ctx, ref, opts)
}

// acceptedKinds lists the soft kinds that are escalation-eligible while
// attempting tier. Tier 3 also covers its audio leg.
func acceptedKinds(tier extract.Tier) []extract.Kind {
	if tier == extract.TierVisual {
		return []extract.Kind{extract.KindTranscriptionFailed, extract.KindVisualAnalysisUnavailable}
	}
	return []extract.Kind{extract.SoftKindFor(tier)}
}
