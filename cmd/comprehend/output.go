package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/render"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
	"github.com/nguyentantai21042004/video-comprehend/internal/youtube"
)

var tierDirs = map[extract.Tier]string{
	extract.TierCaptions: "tier1-captions",
	extract.TierAudio:    "tier2-whisper",
	extract.TierVisual:   "tier3-visual",
}

// savePath is where a result is saved when no explicit output is given:
// <dir>/<tier dir>/transcripts/<name><ext>.
func savePath(dir string, tier extract.Tier, name string, format render.Format) string {
	sub, ok := tierDirs[tier]
	if !ok {
		sub = tierDirs[extract.TierCaptions]
	}
	return filepath.Join(dir, sub, "transcripts", name+render.Extension(format))
}

func writeOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// outputName is the video title as a file-name slug when a YouTube API key
// is configured, otherwise the video id.
func (c *commandContext) outputName(ctx context.Context, cfg *config.Config, ref video.Reference) string {
	if cfg.YouTube.APIKey == "" {
		return ref.ID
	}
	client, err := c.newYouTube(ctx, cfg.YouTube.APIKey, c.log)
	if err != nil {
		c.log.Warn(ctx, "YouTube lookup unavailable, naming output by id: %v", err)
		return ref.ID
	}
	info, err := client.Video(ctx, ref.ID)
	if err != nil {
		c.log.Warn(ctx, "Could not fetch title for %s: %v", ref.ID, err)
		return ref.ID
	}
	if slug := youtube.Slug(info.Title); slug != "" {
		return slug
	}
	return ref.ID
}

// renderOptions resolves output flags over the configured defaults. Empty
// format and zero interval keep the configured values.
func renderOptions(cfg *config.Config, format string, noTimestamps bool, interval int, interleave bool) (render.Options, error) {
	if format == "" {
		format = cfg.Output.Format
	}
	parsed, err := render.ParseFormat(format)
	if err != nil {
		return render.Options{}, err
	}
	if interval < 0 {
		return render.Options{}, usageError(fmt.Errorf("--interval must be positive (got %d)", interval))
	}
	if interval == 0 {
		interval = cfg.Output.TimestampInterval
	}
	return render.Options{
		Format:            parsed,
		IncludeTimestamps: cfg.Output.IncludeTimestamps && !noTimestamps,
		IntervalSeconds:   interval,
		InterleaveVisual:  cfg.Output.InterleaveVisual || interleave,
	}, nil
}
