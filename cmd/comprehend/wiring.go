package main

import (
	"context"

	"github.com/nguyentantai21042004/video-comprehend/internal/comprehend"
	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/extractor/audio"
	"github.com/nguyentantai21042004/video-comprehend/internal/extractor/captions"
	"github.com/nguyentantai21042004/video-comprehend/internal/extractor/visual"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/media"
	"github.com/nguyentantai21042004/video-comprehend/internal/ocr"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// newAnalyzer wires the three tier backends from cfg. The OCR engine is
// returned too so doctor can probe it; it is nil when the configured engine
// is unknown, which leaves tier 3 unavailable.
func newAnalyzer(cfg *config.Config, exec executor.Executor, log logger.Logger) (*comprehend.Analyzer, ocr.Engine) {
	tk := media.New(media.Binaries{
		YtDlp:   cfg.Tools.YtDlp,
		FFmpeg:  cfg.Tools.FFmpeg,
		FFprobe: cfg.Tools.FFprobe,
	}, cfg.Paths.Temp, exec, log)

	backends := comprehend.Backends{
		Captions: captions.New(tk, cfg.Captions.Languages, log),
		Audio: audio.New(tk, exec, audio.Whisper{
			Model:         cfg.Whisper.Model,
			Device:        cfg.Whisper.Device,
			ComputeType:   cfg.Whisper.ComputeType,
			BeamSize:      cfg.Whisper.BeamSize,
			Language:      cfg.Whisper.Language,
			InitialPrompt: cfg.Whisper.InitialPrompt,
			Command:       cfg.Whisper.Command,
		}, log),
	}

	engine, err := ocr.New(ocr.Options{
		Engine:    cfg.Visual.OCREngine,
		Language:  ocrLanguage(cfg),
		Tesseract: cfg.Tools.Tesseract,
		Python:    cfg.Tools.Python,
	}, exec, log)
	if err != nil {
		log.Warn(context.Background(), "Visual analysis disabled: %v", err)
	} else {
		backends.Visual = visual.New(tk, engine, visual.Settings{
			SceneThreshold: cfg.Visual.SceneThreshold,
			Deduplicate:    cfg.Visual.Deduplicate,
			DedupThreshold: cfg.Visual.DedupThreshold,
			MaxFrames:      cfg.Visual.MaxFrames,
			SampleInterval: cfg.Visual.SampleInterval,
		}, log)
	}

	analyzer := comprehend.New(backends, comprehend.Settings{
		DefaultTier:  extract.Tier(cfg.DefaultTier),
		AutoEscalate: cfg.AutoEscalate,
		KeepAudio:    cfg.KeepAudio(),
		KeepFrames:   cfg.KeepFrames(),
	}, log)
	return analyzer, engine
}

// ocrLanguage reads on-screen text in the transcription language when one
// is pinned, else in the first caption language.
func ocrLanguage(cfg *config.Config) string {
	if cfg.Whisper.Language != "" {
		return cfg.Whisper.Language
	}
	if len(cfg.Captions.Languages) > 0 {
		return cfg.Captions.Languages[0]
	}
	return "en"
}
