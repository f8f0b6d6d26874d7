// Package visual is the visual half of tier 3: it samples frames at scene
// changes and reads on-screen text with OCR.
package visual

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/media"
	"github.com/nguyentantai21042004/video-comprehend/internal/ocr"
	"github.com/nguyentantai21042004/video-comprehend/internal/timeline"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// Settings mirrors the visual section of the configuration.
type Settings struct {
	SceneThreshold float64
	Deduplicate    bool
	DedupThreshold float64
	MaxFrames      int
	// SampleInterval is the fallback spacing, in seconds, when no scene
	// changes are found.
	SampleInterval int
	// Workers bounds concurrent ffmpeg frame grabs.
	Workers int
}

type implExtractor struct {
	media    media.Toolkit
	engine   ocr.Engine
	settings Settings
	logger   logger.Logger
}

// New creates the visual backend around an already-built OCR engine.
func New(tk media.Toolkit, engine ocr.Engine, settings Settings, log logger.Logger) extract.Backend {
	if settings.MaxFrames <= 0 {
		settings.MaxFrames = 100
	}
	if settings.SampleInterval <= 0 {
		settings.SampleInterval = 30
	}
	if settings.DedupThreshold <= 0 || settings.DedupThreshold > 1 {
		settings.DedupThreshold = 0.95
	}
	if settings.Workers <= 0 {
		settings.Workers = 4
	}
	return &implExtractor{media: tk, engine: engine, settings: settings, logger: log}
}

type sampledFrame struct {
	at   float64
	path string
}

func (e *implExtractor) Extract(ctx context.Context, ref video.Reference, opts extract.Options) (extract.Output, error) {
	if e.engine == nil {
		return extract.Output{}, unavailable("no OCR engine configured", nil)
	}
	if err := e.engine.Check(ctx); err != nil {
		return extract.Output{}, e.fail(ctx, fmt.Sprintf("%s is not available", e.engine.Name()), err)
	}

	dir, err := e.media.Workdir("visual")
	if err != nil {
		return extract.Output{}, e.fail(ctx, "create work dir", err)
	}
	defer func() {
		if opts.KeepArtifacts {
			e.logger.Info(ctx, "Keeping video and frames in %s", dir)
			return
		}
		e.media.Remove(ctx, dir)
	}()

	opts.Report(extract.PhaseDownload, "Downloading video...")
	videoPath, err := e.media.DownloadVideo(ctx, ref.URL, dir)
	if err != nil {
		return extract.Output{}, e.fail(ctx, "download video", err)
	}

	var duration float64
	if probe, err := e.media.Probe(ctx, videoPath); err != nil {
		e.logger.Warn(ctx, "Could not probe %s: %v", videoPath, err)
	} else {
		duration, _ = probe.DurationSeconds()
	}

	opts.Report(extract.PhaseAnalyze, "Detecting scenes...")
	timestamps := e.sampleTimes(ctx, videoPath, duration)
	if len(timestamps) == 0 {
		return extract.Output{}, unavailable("could not determine any frame to sample", nil)
	}

	opts.Report(extract.PhaseAnalyze, "Extracting %d frames...", len(timestamps))
	frames, err := e.extractFrames(ctx, videoPath, filepath.Join(dir, "frames"), timestamps)
	if err != nil {
		return extract.Output{}, e.fail(ctx, "extract frames", err)
	}
	extracted := len(frames)

	if e.settings.Deduplicate && len(frames) > 1 {
		opts.Report(extract.PhaseAnalyze, "Removing duplicate frames...")
		frames = e.dedup(ctx, frames)
	}

	opts.Report(extract.PhaseAnalyze, "Running OCR on %d frames...", len(frames))
	paths := make([]string, len(frames))
	for i, f := range frames {
		paths[i] = f.path
	}
	texts, err := e.engine.Recognize(ctx, paths)
	if err != nil {
		return extract.Output{}, e.fail(ctx, "ocr", err)
	}

	var out []extract.Frame
	for i, f := range frames {
		if texts[i].Text == "" {
			continue
		}
		out = append(out, extract.Frame{Timestamp: f.at, Text: texts[i].Text, Confidence: texts[i].Confidence})
	}

	e.logger.Info(ctx, "Visual analysis of %s: %d frames extracted, %d after dedup, %d with text",
		ref.ID, extracted, len(frames), len(out))

	result := extract.Output{Text: timeline.FrameText(out), Frames: out}
	if duration > 0 {
		result.DurationSeconds = extract.Seconds(duration)
	}
	return result, nil
}

// sampleTimes picks one timestamp per scene, falling back to a fixed
// interval when detection fails or finds nothing, capped at MaxFrames.
func (e *implExtractor) sampleTimes(ctx context.Context, videoPath string, duration float64) []float64 {
	var timestamps []float64
	cuts, err := e.media.DetectScenes(ctx, videoPath, e.settings.SceneThreshold)
	if err != nil {
		e.logger.Warn(ctx, "Scene detection failed, sampling every %ds: %v", e.settings.SampleInterval, err)
	} else {
		timestamps = media.SceneMidpoints(cuts, duration)
	}
	if len(timestamps) == 0 {
		timestamps = media.SampleTimestamps(duration, e.settings.SampleInterval)
	}
	if len(timestamps) > e.settings.MaxFrames {
		timestamps = timestamps[:e.settings.MaxFrames]
	}
	return timestamps
}

// extractFrames grabs frames concurrently. A frame that cannot be grabbed
// is skipped; the call only fails when none could be.
func (e *implExtractor) extractFrames(ctx context.Context, videoPath, dir string, timestamps []float64) ([]sampledFrame, error) {
	grabbed := make([]*sampledFrame, len(timestamps))
	var lastErr error

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.Workers)
	errs := make([]error, len(timestamps))
	for i, ts := range timestamps {
		g.Go(func() error {
			path := filepath.Join(dir, fmt.Sprintf("frame_%04d_%.1fs.png", i, ts))
			if err := e.media.ExtractFrame(gctx, videoPath, ts, path); err != nil {
				if errors.Is(err, executor.ErrNotFound) {
					return err
				}
				errs[i] = err
				return nil
			}
			grabbed[i] = &sampledFrame{at: ts, path: path}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	frames := make([]sampledFrame, 0, len(grabbed))
	for i, f := range grabbed {
		if f == nil {
			e.logger.Debug(ctx, "Skipping frame at %.1fs: %v", timestamps[i], errs[i])
			lastErr = errs[i]
			continue
		}
		frames = append(frames, *f)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames could be extracted: %w", lastErr)
	}
	sort.Slice(frames, func(a, b int) bool { return frames[a].at < frames[b].at })
	return frames, nil
}

// dedup drops frames that look like an earlier kept frame. Frames that
// cannot be hashed are kept.
func (e *implExtractor) dedup(ctx context.Context, frames []sampledFrame) []sampledFrame {
	var (
		hashable []int
		hashes   []media.ImageHash
		keep     = make([]bool, len(frames))
	)
	for i, f := range frames {
		h, err := media.HashFile(f.path)
		if err != nil {
			e.logger.Debug(ctx, "Cannot hash %s, keeping it: %v", f.path, err)
			keep[i] = true
			continue
		}
		hashable = append(hashable, i)
		hashes = append(hashes, h)
	}
	for _, k := range media.Dedup(hashes, e.settings.DedupThreshold) {
		keep[hashable[k]] = true
	}

	out := make([]sampledFrame, 0, len(frames))
	for i, f := range frames {
		if keep[i] {
			out = append(out, f)
		} else {
			e.media.Remove(ctx, f.path)
		}
	}
	return out
}

// fail maps missing tools, missing OCR packages and processing errors to
// VisualAnalysisUnavailable; cancellation passes through.
func (e *implExtractor) fail(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	detail := step + " failed"
	switch {
	case errors.Is(err, ocr.ErrUnavailable) && e.engine.Name() == ocr.EnginePaddle:
		detail = step + ": pip install paddleocr paddlepaddle, or set visual.ocr_engine to tesseract"
	case errors.Is(err, ocr.ErrUnavailable):
		detail = step + ": install " + e.engine.Name()
	case errors.Is(err, executor.ErrNotFound):
		detail = step + ": required tool is not installed"
	}
	e.logger.Warn(ctx, "Visual analysis %s: %v", detail, err)
	return unavailable(detail, err)
}

func unavailable(detail string, err error) error {
	return extract.NewSoft(extract.KindVisualAnalysisUnavailable, extract.TierVisual, detail, err)
}
