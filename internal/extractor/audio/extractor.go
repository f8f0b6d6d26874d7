// Package audio is the tier 2 backend: it downloads the audio track and
// transcribes it with WhisperX.
package audio

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/media"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

type implExtractor struct {
	media    media.Toolkit
	executor executor.Executor
	whisper  Whisper
	logger   logger.Logger
}

// New creates the audio transcription backend.
func New(tk media.Toolkit, exec executor.Executor, whisper Whisper, log logger.Logger) extract.Backend {
	if whisper.Command == "" {
		whisper.Command = "uvx"
	}
	if whisper.Model == "" {
		whisper.Model = "medium"
	}
	if whisper.BeamSize <= 0 {
		whisper.BeamSize = 5
	}
	if whisper.ComputeType == "" {
		whisper.ComputeType = "int8"
	}
	return &implExtractor{media: tk, executor: exec, whisper: whisper, logger: log}
}

func (e *implExtractor) Extract(ctx context.Context, ref video.Reference, opts extract.Options) (extract.Output, error) {
	dir, err := e.media.Workdir("audio")
	if err != nil {
		return extract.Output{}, e.fail(ctx, "create work dir", err)
	}
	defer func() {
		if opts.KeepArtifacts {
			e.logger.Info(ctx, "Keeping audio files in %s", dir)
			return
		}
		e.media.Remove(ctx, dir)
	}()

	opts.Report(extract.PhaseDownload, "Downloading audio...")
	audioPath, err := e.media.DownloadAudio(ctx, ref.URL, dir)
	if err != nil {
		return extract.Output{}, e.fail(ctx, "download audio", err)
	}

	var duration *float64
	if probe, err := e.media.Probe(ctx, audioPath); err != nil {
		e.logger.Warn(ctx, "Could not probe %s: %v", audioPath, err)
	} else if d, ok := probe.DurationSeconds(); ok {
		duration = extract.Seconds(d)
	}

	wavPath, err := e.media.ConvertToWAV(ctx, audioPath)
	if err != nil {
		return extract.Output{}, e.fail(ctx, "convert audio", err)
	}

	opts.Report(extract.PhaseTranscribe, "Transcribing with Whisper (%s)...", e.whisper.Model)
	e.logger.Info(ctx, "Transcribing %s with WhisperX model %s", ref.ID, e.whisper.Model)
	if _, err := e.executor.Execute(ctx, e.whisper.Command, e.whisper.buildArgs(wavPath, dir)...); err != nil {
		return extract.Output{}, e.fail(ctx, "whisperx", err)
	}

	jsonPath := filepath.Join(dir, strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))+".json")
	segments, language, err := loadTranscript(jsonPath)
	if err != nil {
		return extract.Output{}, e.fail(ctx, "load transcript", err)
	}
	if language == "" {
		language = e.whisper.Language
	}
	if duration == nil && len(segments) > 0 {
		duration = extract.Seconds(segments[len(segments)-1].EndTime())
	}

	e.logger.Info(ctx, "Transcribed %s: %d segments, language %s", ref.ID, len(segments), language)

	return extract.Output{
		Text:            extract.JoinText(segments),
		Segments:        segments,
		Language:        language,
		DurationSeconds: duration,
	}, nil
}

// fail maps any download or inference failure to TranscriptionFailed.
// Cancellation is returned as is so it is never escalated.
func (e *implExtractor) fail(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	detail := step + " failed"
	if errors.Is(err, executor.ErrNotFound) {
		detail = step + ": required tool is not installed"
	}
	e.logger.Warn(ctx, "Audio extraction %s: %v", detail, err)
	return extract.NewSoft(extract.KindTranscriptionFailed, extract.TierAudio, detail, err)
}
