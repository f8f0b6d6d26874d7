package media

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MinSceneSeconds is the shortest scene kept; closer cuts are merged.
const MinSceneSeconds = 2.0

// DetectScenes runs ffmpeg's scene filter and collects the cut timestamps.
// threshold uses the content-detector scale (roughly 0-100) and is mapped
// onto ffmpeg's 0-1 scene score.
func (t *implToolkit) DetectScenes(ctx context.Context, path string, threshold float64) ([]float64, error) {
	filter := fmt.Sprintf("select='gt(scene,%.3f)',metadata=print:file=-", SceneScore(threshold))
	args := []string{
		"-hide_banner", "-nostats",
		"-i", path,
		"-vf", filter,
		"-an",
		"-f", "null", "-",
	}

	t.logger.Debug(ctx, "Detecting scenes (score > %.3f): %s", SceneScore(threshold), path)

	out, err := t.executor.Execute(ctx, t.bin.FFmpeg, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scene detection: %w", err)
	}
	return parseSceneChanges(out), nil
}

// SceneScore maps a content threshold onto ffmpeg's scene score range.
func SceneScore(threshold float64) float64 {
	return math.Min(1, math.Max(0.01, threshold/100))
}

var ptsTimeRe = regexp.MustCompile(`pts_time:(\d+\.?\d*)`)

func parseSceneChanges(output string) []float64 {
	var changes []float64
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "pts_time") {
			continue
		}
		m := ptsTimeRe.FindStringSubmatch(line)
		if len(m) < 2 {
			continue
		}
		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		changes = append(changes, ts)
	}
	return changes
}

// SceneMidpoints turns cut timestamps into one sample point per scene, the
// middle of each. Cuts closer than MinSceneSeconds to the previous boundary
// are dropped. It returns nil when there are no cuts.
func SceneMidpoints(cuts []float64, duration float64) []float64 {
	if len(cuts) == 0 {
		return nil
	}

	bounds := []float64{0}
	for _, c := range cuts {
		if c-bounds[len(bounds)-1] < MinSceneSeconds {
			continue
		}
		if duration > 0 && c >= duration {
			break
		}
		bounds = append(bounds, c)
	}
	end := duration
	if end <= bounds[len(bounds)-1] {
		end = bounds[len(bounds)-1] + MinSceneSeconds
	}
	bounds = append(bounds, end)

	mids := make([]float64, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		mids = append(mids, (bounds[i]+bounds[i+1])/2)
	}
	return mids
}

// SampleTimestamps returns 0, interval, 2*interval, ... below duration.
func SampleTimestamps(duration float64, interval int) []float64 {
	if interval <= 0 || duration <= 0 {
		return nil
	}
	var out []float64
	for ts := 0; float64(ts) < math.Floor(duration); ts += interval {
		out = append(out, float64(ts))
	}
	return out
}
