package captions

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
)

// cueTimingRe matches "00:00:01.234 --> 00:00:03.456" with optional
// cue settings after the end time. Hours are optional.
var cueTimingRe = regexp.MustCompile(`^((?:\d+:)?\d{2}:\d{2}\.\d{3})\s*-->\s*((?:\d+:)?\d{2}:\d{2}\.\d{3})`)

// htmlTagRe matches inline tags (<c>, <i>, <00:00:01.000>) used by
// auto-generated captions for karaoke timing.
var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

var entityReplacer = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&nbsp;", " ", "&#39;", "'", "&quot;", `"`)

// ParseVTT turns a WebVTT document into timed segments. Auto-generated
// tracks roll the previous cue's last line over as the first line of the
// next, overlapping or touching cue; that first line is dropped. Repeated
// dialogue in later, separate cues is kept.
func ParseVTT(raw string) []extract.Segment {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var (
		segments []extract.Segment
		prevLast string
		prevEnd  float64
		havePrev bool
	)

	for i := 0; i < len(lines); i++ {
		m := cueTimingRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		start, okStart := parseTimestamp(m[1])
		end, okEnd := parseTimestamp(m[2])
		if !okStart || !okEnd || end < start {
			continue
		}

		var texts []string
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			i++
			if line := cleanLine(lines[i]); line != "" {
				texts = append(texts, line)
			}
		}
		if len(texts) == 0 {
			continue
		}

		last := texts[len(texts)-1]
		if havePrev && texts[0] == prevLast && start <= prevEnd {
			texts = texts[1:]
		}
		prevLast, prevEnd, havePrev = last, end, true
		if len(texts) == 0 {
			continue
		}

		segments = append(segments, extract.Segment{
			Text:     strings.Join(texts, " "),
			Start:    start,
			Duration: end - start,
		})
	}

	return segments
}

func cleanLine(line string) string {
	line = htmlTagRe.ReplaceAllString(line, "")
	line = entityReplacer.Replace(line)
	return strings.Join(strings.Fields(line), " ")
}

// parseTimestamp reads "HH:MM:SS.mmm" or "MM:SS.mmm" as seconds.
func parseTimestamp(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, p := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		total = total*60 + float64(n)
	}
	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, false
	}
	return total*60 + secs, true
}
