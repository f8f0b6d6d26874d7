package summarizer

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	bodyFont  = "Times New Roman"
	stampFont = "Consolas"
	bodySize  = 13
	titleSize = 16

	inkColor    = "000000"
	rangeColor  = "1F4E79"
	stampColor  = "595959"
	rangeSize   = 14
	maxHeadings = 3
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)

	// reRange matches the time-range labels the transcript renderer puts
	// above each bucket: **[00:00 - 00:30]** or **[01:02:00 - end]**.
	reRange = regexp.MustCompile(`^\*\*\[(\d{2,}:\d{2}(?::\d{2})? - (?:\d{2,}:\d{2}(?::\d{2})?|end))\]\*\*$`)
	// reStamp matches a timestamped on-screen text line: [00:10] slide text.
	reStamp = regexp.MustCompile(`^\[(\d{2,}:\d{2}(?::\d{2})?)\]\s+(.+)$`)

	inlineMarkup = strings.NewReplacer("**", "", "__", "", "`", "")
)

// headingSizes holds the point size for #, ## and ###; deeper levels use
// the body size.
var headingSizes = [maxHeadings]uint64{titleSize, 15, rangeSize}

// WriteDocx converts a markdown summary or transcript to a docx file.
// Time-range labels become sub-headings and timestamped lines keep their
// timestamp in a separate monospaced run.
func WriteDocx(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	run(doc.AddParagraph(""), title, bodyFont, titleSize, inkColor).Bold(true)

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "---" || strings.HasPrefix(line, "```") {
			continue
		}

		p := doc.AddParagraph("")
		switch {
		case reRange.MatchString(line):
			label := reRange.FindStringSubmatch(line)[1]
			run(p, label, bodyFont, rangeSize, rangeColor).Bold(true)
		case reHeading.MatchString(line):
			m := reHeading.FindStringSubmatch(line)
			run(p, m[2], bodyFont, headingSize(len(m[1])), inkColor).Bold(true)
		case reBullet.MatchString(line):
			writeInline(p, "• "+reBullet.FindStringSubmatch(line)[1])
		case reStamp.MatchString(line):
			m := reStamp.FindStringSubmatch(line)
			run(p, "["+m[1]+"] ", stampFont, bodySize, stampColor)
			writeInline(p, m[2])
		default:
			writeInline(p, line)
		}
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	if level > maxHeadings {
		return bodySize
	}
	return headingSizes[level-1]
}

func run(p *docx.Paragraph, text, font string, size uint64, color string) *docx.Run {
	return p.AddText(inlineMarkup.Replace(text)).Font(font).Size(size).Color(color)
}

// writeInline emits text as body runs, bolding **spans**.
func writeInline(p *docx.Paragraph, text string) {
	last := 0
	for _, loc := range reBold.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			run(p, text[last:loc[0]], bodyFont, bodySize, inkColor)
		}
		run(p, text[loc[2]:loc[3]], bodyFont, bodySize, inkColor).Bold(true)
		last = loc[1]
	}
	if last < len(text) {
		run(p, text[last:], bodyFont, bodySize, inkColor)
	}
}
