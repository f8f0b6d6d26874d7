package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nguyentantai21042004/video-comprehend/internal/comprehend"
	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/ocr"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
	"github.com/nguyentantai21042004/video-comprehend/internal/youtube"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor/executortest"
)

const testURL = "https://youtu.be/dQw4w9WgXcQ"

type fakeYouTube struct {
	video youtube.Video
	err   error
}

func (f fakeYouTube) Video(ctx context.Context, id string) (youtube.Video, error) {
	return f.video, f.err
}

type cliTestEnv struct {
	cc     *commandContext
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	outDir string
}

func captionsOK() extract.Backend {
	return extract.BackendFunc(func(ctx context.Context, ref video.Reference, opts extract.Options) (extract.Output, error) {
		segs := []extract.Segment{
			{Text: "hello", Start: 0, Duration: 5},
			{Text: "world", Start: 35, Duration: 5},
		}
		return extract.Output{Text: "hello world", Segments: segs, Language: "en"}, nil
	})
}

func softFailure(tier extract.Tier) extract.Backend {
	return extract.BackendFunc(func(ctx context.Context, ref video.Reference, opts extract.Options) (extract.Output, error) {
		return extract.Output{}, extract.NewSoft(extract.SoftKindFor(tier), tier, "not available", nil)
	})
}

func setupCLITestEnv(t *testing.T, backends comprehend.Backends) *cliTestEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Output.Directory = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	env := &cliTestEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, outDir: cfg.Output.Directory}
	env.cc = &commandContext{
		stdout: env.stdout,
		stderr: env.stderr,
		cfg:    &cfg,
		log:    logger.NewNop(),
		exec:   executortest.New(),
		newAnalyzer: func(cfg *config.Config, exec executor.Executor, log logger.Logger) (*comprehend.Analyzer, ocr.Engine) {
			return comprehend.New(backends, comprehend.Settings{
				DefaultTier:  extract.Tier(cfg.DefaultTier),
				AutoEscalate: cfg.AutoEscalate,
			}, log), nil
		},
		newYouTube: func(ctx context.Context, apiKey string, log logger.Logger) (youtube.Client, error) {
			return fakeYouTube{video: youtube.Video{Title: "Never Gonna Give You Up!"}}, nil
		},
	}
	return env
}

func (e *cliTestEnv) run(args ...string) error {
	cmd := newRootCommand(e.cc)
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	return cmd.ExecuteContext(context.Background())
}

func TestAnalyzeSavesAndPrints(t *testing.T) {
	env := setupCLITestEnv(t, comprehend.Backends{Captions: captionsOK()})

	if err := env.run("analyze", testURL); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	saved := filepath.Join(env.outDir, "tier1-captions", "transcripts", "dQw4w9WgXcQ.md")
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved output: %v", err)
	}
	for _, want := range []string{"# Video Analysis", "**Analysis Tier:** 1", "**[00:00 - 00:30]**\nhello", "**[00:30 - end]**\nworld"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved output missing %q:\n%s", want, data)
		}
	}
	if strings.TrimSpace(env.stdout.String()) != string(data) {
		t.Errorf("stdout differs from saved output")
	}
	if !strings.Contains(env.stderr.String(), "→ Tier 1: trying caption extraction...") {
		t.Errorf("stderr missing progress line:\n%s", env.stderr.String())
	}
	if !strings.Contains(env.stderr.String(), "Saved to: "+saved) {
		t.Errorf("stderr missing save line:\n%s", env.stderr.String())
	}
}

func TestAnalyzeNamesOutputByTitle(t *testing.T) {
	env := setupCLITestEnv(t, comprehend.Backends{Captions: captionsOK()})
	env.cc.cfg.YouTube.APIKey = "key"

	if err := env.run("analyze", testURL, "--format", "plain", "-q"); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	saved := filepath.Join(env.outDir, "tier1-captions", "transcripts", "never-gonna-give-you-up.txt")
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved output: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("plain output = %q", data)
	}
	if env.stdout.Len() != 0 || env.stderr.Len() != 0 {
		t.Errorf("quiet run printed stdout=%q stderr=%q", env.stdout, env.stderr)
	}
}

func TestAnalyzeExplicitOutput(t *testing.T) {
	env := setupCLITestEnv(t, comprehend.Backends{Captions: captionsOK()})
	out := filepath.Join(t.TempDir(), "nested", "result.json")

	if err := env.run("analyze", testURL, "-o", out, "-f", "json"); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	var doc struct {
		Metadata struct {
			VideoID  string `json:"video_id"`
			TierUsed int    `json:"tier_used"`
		} `json:"metadata"`
		Segments []struct {
			End float64 `json:"end"`
		} `json:"segments"`
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if doc.Metadata.VideoID != "dQw4w9WgXcQ" || doc.Metadata.TierUsed != 1 || len(doc.Segments) != 2 || doc.Segments[1].End != 40 {
		t.Errorf("json output = %+v", doc)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing with -o", env.stdout)
	}
	if _, err := os.Stat(filepath.Join(env.outDir, "tier1-captions")); !os.IsNotExist(err) {
		t.Error("-o should not also save under the output directory")
	}
}

func readEvents(t *testing.T, out string) []comprehend.Event {
	t.Helper()
	var events []comprehend.Event
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var e comprehend.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not an event: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestAnalyzeJSONProgress(t *testing.T) {
	env := setupCLITestEnv(t, comprehend.Backends{
		Captions: softFailure(extract.TierCaptions),
		Audio:    captionsOK(),
	})

	if err := env.run("analyze", testURL, "--json-progress", "--no-save"); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	events := readEvents(t, env.stdout.String())
	var stages []comprehend.Stage
	for _, e := range events {
		stages = append(stages, e.Stage)
	}
	want := []comprehend.Stage{
		comprehend.StageStart,
		comprehend.StageCaption,
		comprehend.StageEscalate,
		comprehend.StageTranscribe,
		comprehend.StageAnalyzed,
		comprehend.StageComplete,
	}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
	last := events[len(events)-1]
	if last.Progress != 100 || last.Message != "Analysis complete" {
		t.Errorf("last event = %+v", last)
	}
	if !strings.Contains(events[2].Message, "Escalating to Tier 2") {
		t.Errorf("escalate message = %q", events[2].Message)
	}
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		backends comprehend.Backends
		wantCode int
	}{
		{"bad url", []string{"analyze", "https://example.com/video"}, comprehend.Backends{}, exitInvalidInput},
		{"tier zero", []string{"analyze", testURL, "--tier", "0"}, comprehend.Backends{}, exitInvalidInput},
		{"tier four", []string{"analyze", testURL, "--tier", "4"}, comprehend.Backends{}, exitInvalidInput},
		{"bad format", []string{"analyze", testURL, "--format", "xml"}, comprehend.Backends{Captions: captionsOK()}, exitInvalidInput},
		{"bad device", []string{"analyze", testURL, "--device", "tpu"}, comprehend.Backends{}, exitInvalidInput},
		{"missing url", []string{"analyze"}, comprehend.Backends{}, exitInvalidInput},
		{"unknown flag", []string{"analyze", testURL, "--bogus"}, comprehend.Backends{}, exitInvalidInput},
		{
			"captions without escalation",
			[]string{"analyze", testURL, "--no-escalate"},
			comprehend.Backends{Captions: softFailure(extract.TierCaptions), Audio: captionsOK()},
			exitCaptions,
		},
		{
			"every tier soft",
			[]string{"analyze", testURL},
			comprehend.Backends{Captions: softFailure(extract.TierCaptions), Audio: softFailure(extract.TierAudio)},
			exitTranscription,
		},
		{
			"no visual backend",
			[]string{"analyze", testURL, "--tier", "3"},
			comprehend.Backends{Audio: captionsOK()},
			exitVisual,
		},
		{
			"transcription from tier 2",
			[]string{"analyze", testURL, "--tier", "2", "--no-escalate"},
			comprehend.Backends{Audio: softFailure(extract.TierAudio)},
			exitTranscription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCLITestEnv(t, tt.backends)
			err := env.run(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exitCode(%v) = %d, want %d", err, got, tt.wantCode)
			}
		})
	}
}

func TestAnalyzeJSONProgressReportsError(t *testing.T) {
	env := setupCLITestEnv(t, comprehend.Backends{Captions: softFailure(extract.TierCaptions)})

	err := env.run("analyze", testURL, "--json-progress", "--no-escalate")
	if !errors.Is(err, errReported) {
		t.Fatalf("error = %v, want reported error", err)
	}
	if exitCode(err) != exitCaptions {
		t.Errorf("exitCode = %d, want %d", exitCode(err), exitCaptions)
	}

	events := readEvents(t, env.stdout.String())
	last := events[len(events)-1]
	if last.Stage != comprehend.StageError || last.Progress != comprehend.UnknownProgress {
		t.Errorf("last event = %+v", last)
	}
	if !strings.HasPrefix(last.Message, "Caption extraction failed:") {
		t.Errorf("error message = %q", last.Message)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"usage", usageError(errors.New("accepts 1 arg")), exitInvalidInput},
		{"config", config.ErrInvalid, exitInvalidInput},
		{"reference", video.ErrInvalidReference, exitInvalidInput},
		{"tier", extract.NewHard(extract.KindInvalidTier, "", nil), exitInvalidInput},
		{"captions", extract.NewSoft(extract.KindCaptionsUnavailable, extract.TierCaptions, "", nil), exitCaptions},
		{"reported transcription", reportedError{extract.NewSoft(extract.KindTranscriptionFailed, extract.TierAudio, "", nil)}, exitTranscription},
		{"visual", extract.NewSoft(extract.KindVisualAnalysisUnavailable, extract.TierVisual, "", nil), exitVisual},
		{"other", errors.New("disk full"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, extract.NewSoft(extract.KindTranscriptionFailed, extract.TierAudio, "whisperx exited 1", nil), false)
	if !strings.HasPrefix(buf.String(), "Audio extraction failed: ") {
		t.Errorf("printError() = %q", buf.String())
	}
}
