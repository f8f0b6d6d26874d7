package comprehend

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
)

// fakeBackend returns a scripted result and records every call in calls.
type fakeBackend struct {
	name  string
	calls *[]string
	out   extract.Output
	err   error
	opts  []extract.Options
}

func (f *fakeBackend) Extract(ctx context.Context, ref video.Reference, opts extract.Options) (extract.Output, error) {
	*f.calls = append(*f.calls, f.name)
	f.opts = append(f.opts, opts)
	if opts.Progress != nil {
		opts.Progress(extract.PhaseDownload, "downloading "+f.name)
	}
	return f.out, f.err
}

type harness struct {
	calls    []string
	captions *fakeBackend
	audio    *fakeBackend
	visual   *fakeBackend
	events   []Event
}

func newHarness() *harness {
	h := &harness{}
	h.captions = &fakeBackend{name: "captions", calls: &h.calls, out: extract.Output{
		Text:     "caption text",
		Segments: []extract.Segment{{Text: "caption text", Start: 0, Duration: 2}},
		Language: "en",
	}}
	h.audio = &fakeBackend{name: "audio", calls: &h.calls, out: extract.Output{
		Text:            "spoken words",
		Segments:        []extract.Segment{{Text: "spoken words", Start: 0, End: extract.Seconds(3)}},
		Language:        "en",
		DurationSeconds: extract.Seconds(125),
	}}
	h.visual = &fakeBackend{name: "visual", calls: &h.calls, out: extract.Output{
		Text:   "[00:05] Slide",
		Frames: []extract.Frame{{Timestamp: 5, Text: "Slide", Confidence: 0.9}},
	}}
	return h
}

func (h *harness) analyzer(settings Settings) *Analyzer {
	a := New(Backends{Captions: h.captions, Audio: h.audio, Visual: h.visual}, settings, logger.NewNop())
	a.now = func() time.Time { return time.Unix(1700000000, 0) }
	a.newID = func() string { return "req-1" }
	return a
}

func (h *harness) sink() Sink {
	return SinkFunc(func(e Event) { h.events = append(h.events, e) })
}

var testRef = video.Reference{ID: "dQw4w9WgXcQ", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}

func boolPtr(b bool) *bool { return &b }

func softFor(tier extract.Tier) error {
	return extract.NewSoft(extract.SoftKindFor(tier), tier, "unavailable", nil)
}

func TestAnalyzeNoEscalationStopsAtFailingTier(t *testing.T) {
	for _, tier := range []extract.Tier{extract.TierCaptions, extract.TierAudio, extract.TierVisual} {
		t.Run(tier.String(), func(t *testing.T) {
			h := newHarness()
			failing := map[extract.Tier]*fakeBackend{
				extract.TierCaptions: h.captions,
				extract.TierAudio:    h.audio,
				extract.TierVisual:   h.visual,
			}[tier]
			failing.err = softFor(tier)

			_, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{
				Tier:         tier,
				AutoEscalate: boolPtr(false),
			})
			if !errors.Is(err, failing.err) {
				t.Fatalf("Analyze() error = %v, want %v", err, failing.err)
			}

			wantCalls := map[extract.Tier][]string{
				extract.TierCaptions: {"captions"},
				extract.TierAudio:    {"audio"},
				extract.TierVisual:   {"audio", "visual"},
			}[tier]
			if !reflect.DeepEqual(h.calls, wantCalls) {
				t.Errorf("calls = %v, want %v", h.calls, wantCalls)
			}
		})
	}
}

func TestAnalyzeEscalationSequence(t *testing.T) {
	tests := []struct {
		name      string
		start     extract.Tier
		failUntil extract.Tier // tiers up to and including this one fail softly
		wantCalls []string
		wantTier  extract.Tier
		wantErr   bool
	}{
		{"tier 1 succeeds", 1, 0, []string{"captions"}, 1, false},
		{"tier 1 fails, tier 2 succeeds", 1, 1, []string{"captions", "audio"}, 2, false},
		{"tiers 1-2 fail, tier 3 succeeds", 1, 2, []string{"captions", "audio", "audio", "visual"}, 3, false},
		{"start at tier 2", 2, 0, []string{"audio"}, 2, false},
		{"start at tier 2, escalate to 3", 2, 2, []string{"audio", "audio", "visual"}, 3, false},
		{"everything fails", 1, 3, []string{"captions", "audio", "audio", "visual"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if tt.failUntil >= 1 {
				h.captions.err = softFor(extract.TierCaptions)
			}
			// The audio backend is shared by tiers 2 and 3; fail it only on its first call.
			audioCalls := 0
			audio := h.audio
			audioBackend := extract.BackendFunc(func(ctx context.Context, ref video.Reference, opts extract.Options) (extract.Output, error) {
				audioCalls++
				out, err := audio.Extract(ctx, ref, opts)
				if tt.failUntil >= 2 && audioCalls == 1 {
					return extract.Output{}, softFor(extract.TierAudio)
				}
				return out, err
			})
			if tt.failUntil >= 3 {
				h.visual.err = softFor(extract.TierVisual)
			}

			a := New(Backends{Captions: h.captions, Audio: audioBackend, Visual: h.visual}, Settings{AutoEscalate: true}, logger.NewNop())
			result, err := a.Analyze(context.Background(), testRef, Request{Tier: tt.start})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Analyze() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(h.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", h.calls, tt.wantCalls)
			}
			if err == nil && result.Metadata.TierUsed != tt.wantTier {
				t.Errorf("TierUsed = %v, want %v", result.Metadata.TierUsed, tt.wantTier)
			}
		})
	}
}

func TestAnalyzeHardFailureNeverEscalates(t *testing.T) {
	h := newHarness()
	h.captions.err = extract.NewHard(extract.KindInvalidReference, "bad id", nil)

	_, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{})
	if extract.KindOf(err) != extract.KindInvalidReference {
		t.Fatalf("Analyze() error = %v, want invalid reference", err)
	}
	if !reflect.DeepEqual(h.calls, []string{"captions"}) {
		t.Errorf("calls = %v, want only captions", h.calls)
	}
}

func TestAnalyzeUnexpectedErrorPropagatesUnchanged(t *testing.T) {
	h := newHarness()
	boom := errors.New("segfault in decoder")
	h.captions.err = boom

	_, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{})
	if err != boom {
		t.Fatalf("Analyze() error = %v, want the original error", err)
	}
	if len(h.calls) != 1 {
		t.Errorf("calls = %v, want no escalation", h.calls)
	}
}

func TestAnalyzeSoftKindOfAnotherTierIsNotEscalated(t *testing.T) {
	h := newHarness()
	h.captions.err = softFor(extract.TierAudio)

	_, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{})
	if extract.KindOf(err) != extract.KindTranscriptionFailed {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(h.calls) != 1 {
		t.Errorf("calls = %v, want no escalation", h.calls)
	}
}

func TestAnalyzeInvalidTier(t *testing.T) {
	for _, tier := range []extract.Tier{-1, 4, 9} {
		h := newHarness()
		_, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{Tier: tier})
		if extract.KindOf(err) != extract.KindInvalidTier {
			t.Errorf("tier %d: error = %v, want invalid tier", tier, err)
		}
		if len(h.calls) != 0 {
			t.Errorf("tier %d: backends called: %v", tier, h.calls)
		}
	}

	h := newHarness()
	_, err := h.analyzer(Settings{DefaultTier: 7}).Analyze(context.Background(), testRef, Request{})
	if extract.KindOf(err) != extract.KindInvalidTier {
		t.Errorf("bad default tier: error = %v", err)
	}
}

func TestAnalyzeUsesSettingsDefaults(t *testing.T) {
	h := newHarness()
	h.audio.err = softFor(extract.TierAudio)

	// Default tier 2 with escalation disabled in settings.
	_, err := h.analyzer(Settings{DefaultTier: 2, AutoEscalate: false}).Analyze(context.Background(), testRef, Request{})
	if extract.KindOf(err) != extract.KindTranscriptionFailed {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !reflect.DeepEqual(h.calls, []string{"audio"}) {
		t.Errorf("calls = %v", h.calls)
	}
}

func TestAnalyzeTierOneEndToEnd(t *testing.T) {
	h := newHarness()
	result, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{AutoEscalate: boolPtr(true)})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Metadata.TierUsed != extract.TierCaptions {
		t.Errorf("TierUsed = %v", result.Metadata.TierUsed)
	}
	if result.VisualText != "" || result.Metadata.HasVisualContent {
		t.Error("tier 1 result carries visual content")
	}
	if result.TranscriptText != "caption text" || result.Metadata.Language != "en" {
		t.Errorf("result = %+v", result)
	}
	if result.Metadata.Reference != testRef {
		t.Errorf("Reference = %+v", result.Metadata.Reference)
	}
}

func TestAnalyzeEscalationEventPrecedesTierTwo(t *testing.T) {
	h := newHarness()
	h.captions.err = extract.NewSoft(extract.KindCaptionsUnavailable, extract.TierCaptions, "transcripts are disabled", nil)

	result, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{Sink: h.sink()})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Metadata.TierUsed != extract.TierAudio {
		t.Fatalf("TierUsed = %v, want 2", result.Metadata.TierUsed)
	}
	if result.Metadata.DurationSeconds == nil || *result.Metadata.DurationSeconds != 125 {
		t.Errorf("DurationSeconds = %v", result.Metadata.DurationSeconds)
	}

	escalateAt, tier2At := -1, -1
	for i, e := range h.events {
		if escalateAt < 0 && strings.Contains(e.Message, "Escalating to Tier 2") {
			escalateAt = i
		}
		if tier2At < 0 && e.Tier == extract.TierAudio {
			tier2At = i
		}
		if e.RequestID != "req-1" || e.Timestamp != 1700000000 {
			t.Errorf("event %d not stamped: %+v", i, e)
		}
	}
	if escalateAt < 0 {
		t.Fatalf("no escalation event in %+v", h.events)
	}
	if tier2At < 0 || escalateAt > tier2At {
		t.Errorf("escalation event at %d, first tier-2 event at %d", escalateAt, tier2At)
	}
	if h.events[escalateAt].Stage != StageEscalate || h.events[escalateAt].Progress != 25 {
		t.Errorf("escalation event = %+v", h.events[escalateAt])
	}
}

func TestAnalyzeTierThreeCombinesAudioAndVisual(t *testing.T) {
	tests := []struct {
		name      string
		frames    []extract.Frame
		wantVisual bool
	}{
		{"frames found", []extract.Frame{{Timestamp: 5, Text: "Slide", Confidence: 0.9}}, true},
		{"no frames", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.visual.out.Frames = tt.frames
			if tt.frames == nil {
				h.visual.out.Text = ""
			}

			result, err := h.analyzer(Settings{KeepAudio: true, KeepFrames: false}).Analyze(context.Background(), testRef, Request{Tier: 3})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			md := result.Metadata
			if md.TierUsed != extract.TierVisual || md.HasVisualContent != tt.wantVisual {
				t.Errorf("metadata = %+v", md)
			}
			if md.HasVisualContent != (len(result.VisualFrames) > 0) {
				t.Error("HasVisualContent disagrees with VisualFrames")
			}
			if result.TranscriptText != "spoken words" || len(result.TranscriptSegments) != 1 {
				t.Errorf("transcript not taken from audio leg: %+v", result)
			}
			if !h.audio.opts[0].KeepArtifacts || h.visual.opts[0].KeepArtifacts {
				t.Errorf("keep flags not forwarded: audio %+v visual %+v", h.audio.opts[0], h.visual.opts[0])
			}
		})
	}
}

func TestAnalyzeMissingVisualBackendIsSoft(t *testing.T) {
	h := newHarness()
	a := New(Backends{Captions: h.captions, Audio: h.audio}, Settings{}, logger.NewNop())

	_, err := a.Analyze(context.Background(), testRef, Request{Tier: 3})
	if extract.KindOf(err) != extract.KindVisualAnalysisUnavailable {
		t.Fatalf("Analyze() error = %v, want visual analysis unavailable", err)
	}
}

func TestAnalyzeSurvivesPanickingSink(t *testing.T) {
	h := newHarness()
	h.captions.err = softFor(extract.TierCaptions)
	sink := SinkFunc(func(Event) { panic("sink exploded") })

	result, err := h.analyzer(Settings{AutoEscalate: true}).Analyze(context.Background(), testRef, Request{Sink: sink})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Metadata.TierUsed != extract.TierAudio {
		t.Errorf("TierUsed = %v", result.Metadata.TierUsed)
	}
}

func TestQuickTranscript(t *testing.T) {
	h := newHarness()
	h.captions.err = softFor(extract.TierCaptions)

	text, err := h.analyzer(Settings{AutoEscalate: false, DefaultTier: 3}).QuickTranscript(context.Background(), testRef)
	if err != nil {
		t.Fatalf("QuickTranscript() error = %v", err)
	}
	if text != "spoken words" {
		t.Errorf("QuickTranscript() = %q", text)
	}
}
