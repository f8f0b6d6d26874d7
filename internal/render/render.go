// Package render turns an analysis result into the markdown, plain or JSON
// text that is printed and saved.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/comprehend"
	"github.com/nguyentantai21042004/video-comprehend/internal/timeline"
)

// Format is an output format name as it appears in config and flags.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPlain    Format = "plain"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned for formats other than markdown, plain or json.
var ErrUnknownFormat = errors.New("unknown output format")

// Options controls rendering.
type Options struct {
	Format            Format
	IncludeTimestamps bool
	// IntervalSeconds is the timestamp bucket width. Zero means 30.
	IntervalSeconds int
	// InterleaveVisual appends a merged audio/visual timeline to markdown
	// output when the result has frames.
	InterleaveVisual bool
}

// DefaultInterval is the bucket width used when Options leaves it unset.
const DefaultInterval = 30

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatPlain, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatPlain, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension used when saving format.
func Extension(format Format) string {
	switch format {
	case FormatJSON:
		return ".json"
	case FormatPlain:
		return ".txt"
	default:
		return ".md"
	}
}

// Render formats result. It never modifies result.
func Render(result *comprehend.Result, opts Options) (string, error) {
	if result == nil {
		return "", errors.New("render: nil result")
	}
	if opts.IntervalSeconds == 0 {
		opts.IntervalSeconds = DefaultInterval
	}

	switch opts.Format {
	case FormatMarkdown, "":
		return markdown(result, opts)
	case FormatPlain:
		return plain(result), nil
	case FormatJSON:
		return jsonText(result)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
}

func markdown(result *comprehend.Result, opts Options) (string, error) {
	md := result.Metadata
	language := md.Language
	if language == "" {
		language = "unknown"
	}

	lines := []string{
		"# Video Analysis",
		"",
		"**Source:** " + md.Reference.URL,
		fmt.Sprintf("**Analysis Tier:** %d", int(md.TierUsed)),
		"**Language:** " + language,
	}
	if md.DurationSeconds != nil && *md.DurationSeconds > 0 {
		lines = append(lines, "**Duration:** "+timeline.FormatDuration(*md.DurationSeconds))
	}

	lines = append(lines, "", "---", "", "## Transcript", "")

	if opts.IncludeTimestamps && len(result.TranscriptSegments) > 0 {
		grouped, err := grouped(result, opts.IntervalSeconds)
		if err != nil {
			return "", err
		}
		lines = append(lines, grouped)
	} else {
		lines = append(lines, result.TranscriptText)
	}

	if result.VisualText != "" {
		lines = append(lines, "", "---", "", "## Visual Content (OCR)", "", result.VisualText)
	}

	if opts.InterleaveVisual && len(result.VisualFrames) > 0 {
		lines = append(lines, "", "---", "", "## Timeline", "",
			timeline.Interleave(result.TranscriptSegments, result.VisualFrames))
	}

	return strings.Join(lines, "\n"), nil
}

func grouped(result *comprehend.Result, interval int) (string, error) {
	buckets, err := timeline.Group(result.TranscriptSegments, interval)
	if err != nil {
		return "", err
	}
	blocks := make([]string, 0, len(buckets))
	for _, b := range buckets {
		blocks = append(blocks, "**["+b.Label()+"]**\n"+b.Text)
	}
	return strings.Join(blocks, "\n\n"), nil
}

func plain(result *comprehend.Result) string {
	if result.VisualText == "" {
		return result.TranscriptText
	}
	return result.TranscriptText + "\n\n---\n\n" + result.VisualText
}

type jsonDocument struct {
	Metadata   jsonMetadata  `json:"metadata"`
	Transcript string        `json:"transcript"`
	Segments   []jsonSegment `json:"segments"`
	VisualText *string       `json:"visual_text"`
}

type jsonMetadata struct {
	URL      string   `json:"url"`
	VideoID  string   `json:"video_id"`
	TierUsed int      `json:"tier_used"`
	Language string   `json:"language"`
	Duration *float64 `json:"duration"`
}

type jsonSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func jsonText(result *comprehend.Result) (string, error) {
	md := result.Metadata
	doc := jsonDocument{
		Metadata: jsonMetadata{
			URL:      md.Reference.URL,
			VideoID:  md.Reference.ID,
			TierUsed: int(md.TierUsed),
			Language: md.Language,
			Duration: md.DurationSeconds,
		},
		Transcript: result.TranscriptText,
		Segments:   make([]jsonSegment, 0, len(result.TranscriptSegments)),
	}
	for _, seg := range result.TranscriptSegments {
		doc.Segments = append(doc.Segments, jsonSegment{Text: seg.Text, Start: seg.Start, End: seg.EndTime()})
	}
	if result.VisualText != "" {
		visual := result.VisualText
		doc.VisualText = &visual
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
