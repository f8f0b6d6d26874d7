package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ProbeResult is the subset of ffprobe output the extractors use.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

type ProbeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type ProbeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// DurationSeconds reads the container duration, falling back to the
// longest stream.
func (r ProbeResult) DurationSeconds() (float64, bool) {
	if d, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64); err == nil && d > 0 {
		return d, true
	}
	var best float64
	for _, s := range r.Streams {
		if d, err := strconv.ParseFloat(strings.TrimSpace(s.Duration), 64); err == nil && d > best {
			best = d
		}
	}
	return best, best > 0
}

// HasVideo reports whether any stream is video.
func (r ProbeResult) HasVideo() bool {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return true
		}
	}
	return false
}

// Probe runs ffprobe and decodes its JSON report.
func (t *implToolkit) Probe(ctx context.Context, path string) (ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, errors.New("ffprobe: empty path")
	}

	out, err := t.executor.Execute(ctx, t.bin.FFprobe,
		"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe([]byte(out))
}

func parseProbe(data []byte) (ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}
