package comprehend

import (
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
)

// Metadata describes where a result came from.
type Metadata struct {
	Reference        video.Reference
	TierUsed         extract.Tier
	Language         string
	DurationSeconds  *float64
	HasVisualContent bool
}

// Result is the unified output of one analysis. VisualText is only set when
// TierUsed is 3, and TranscriptSegments always come from the audio or
// caption tier that produced the transcript.
type Result struct {
	Metadata           Metadata
	TranscriptText     string
	TranscriptSegments []extract.Segment
	VisualText         string
	VisualFrames       []extract.Frame
}

// FullText is the transcript, followed by the visual text when present.
func (r *Result) FullText() string {
	if r.VisualText == "" {
		return r.TranscriptText
	}
	return "## Audio Transcript\n\n" + r.TranscriptText + "\n\n## Visual Content\n\n" + r.VisualText
}

func transcriptText(out extract.Output) string {
	if out.Text != "" {
		return out.Text
	}
	return extract.JoinText(out.Segments)
}
