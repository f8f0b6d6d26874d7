package preflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/ocr"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name string
	// Tiers lists the tiers that cannot run without this dependency. Empty
	// means the check is informational.
	Tiers   []extract.Tier
	Command string
	Passed  bool
	Version string
	Detail  string
}

// RunAll checks every dependency named by cfg. engine may be nil when the
// configured OCR engine could not be built.
func RunAll(ctx context.Context, cfg *config.Config, exec executor.Executor, engine ocr.Engine) []Result {
	if cfg == nil {
		return nil
	}
	t := cfg.Tools

	results := []Result{
		CheckBinary(ctx, exec, "yt-dlp", t.YtDlp, []string{"--version"}, extract.TierCaptions, extract.TierAudio, extract.TierVisual),
		CheckBinary(ctx, exec, "FFmpeg", t.FFmpeg, []string{"-version"}, extract.TierAudio, extract.TierVisual),
		CheckBinary(ctx, exec, "FFprobe", t.FFprobe, []string{"-version"}, extract.TierAudio, extract.TierVisual),
		checkWhisper(ctx, exec, cfg.Whisper.Command),
		CheckOCR(ctx, engine, cfg.Visual.OCREngine),
		CheckDirectoryAccess("Output directory", cfg.Output.Directory),
	}
	if cfg.Paths.Temp != "" {
		results = append(results, CheckDirectoryAccess("Temp directory", cfg.Paths.Temp))
	}
	return results
}

// Ready returns an error naming every failed dependency tier needs.
func Ready(results []Result, tier extract.Tier) error {
	var missing []string
	for _, r := range results {
		if !r.Passed && r.requiredFor(tier) {
			missing = append(missing, r.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("tier %d needs %s", tier, strings.Join(missing, ", "))
}

func (r Result) requiredFor(tier extract.Tier) bool {
	for _, t := range r.Tiers {
		if t == tier {
			return true
		}
	}
	return false
}
