package timeline

import (
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
)

// FrameText renders OCR frames as "[MM:SS] text" blocks, skipping blank frames.
func FrameText(frames []extract.Frame) string {
	blocks := make([]string, 0, len(frames))
	for _, f := range frames {
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		blocks = append(blocks, "["+FormatClock(f.Timestamp)+"] "+text)
	}
	return strings.Join(blocks, "\n\n")
}

// Interleave merges transcript segments and OCR frames by time. Frames
// shown on screen before a segment ends are emitted ahead of it.
func Interleave(segments []extract.Segment, frames []extract.Frame) string {
	if len(segments) == 0 {
		return FrameText(frames)
	}

	var blocks []string
	next := 0
	for _, seg := range segments {
		end := seg.EndTime()
		for next < len(frames) && frames[next].Timestamp <= end {
			if text := strings.TrimSpace(frames[next].Text); text != "" {
				blocks = append(blocks, "[VISUAL @ "+FormatClock(frames[next].Timestamp)+"]\n"+text)
			}
			next++
		}
		blocks = append(blocks, "[AUDIO @ "+FormatClock(seg.Start)+"]\n"+strings.TrimSpace(seg.Text))
	}
	for _, f := range frames[next:] {
		if text := strings.TrimSpace(f.Text); text != "" {
			blocks = append(blocks, "[VISUAL @ "+FormatClock(f.Timestamp)+"]\n"+text)
		}
	}

	return strings.Join(blocks, "\n\n")
}
