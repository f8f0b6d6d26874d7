package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
)

// Bucket is one flushed interval of transcript text.
type Bucket struct {
	Start int
	// End is Start+interval, or -1 for the trailing open bucket.
	End  int
	Text string
}

// Open reports whether the bucket runs to the end of the video.
func (b Bucket) Open() bool {
	return b.End < 0
}

// Label renders "MM:SS - MM:SS" or "MM:SS - end".
func (b Bucket) Label() string {
	if b.Open() {
		return FormatClock(float64(b.Start)) + " - end"
	}
	return FormatClock(float64(b.Start)) + " - " + FormatClock(float64(b.End))
}

// Group buckets start-ordered segments into intervalSeconds-wide groups.
// A group is flushed when a segment lands in a later bucket; empty buckets in
// between are skipped and the last group is left open-ended.
func Group(segments []extract.Segment, intervalSeconds int) ([]Bucket, error) {
	if intervalSeconds <= 0 {
		return nil, fmt.Errorf("timestamp interval must be positive, got %d", intervalSeconds)
	}

	var (
		buckets     []Bucket
		texts       []string
		bucketStart int
	)

	for _, seg := range segments {
		index := int(math.Floor(seg.Start / float64(intervalSeconds)))
		expectedStart := index * intervalSeconds

		if expectedStart > bucketStart && len(texts) > 0 {
			buckets = append(buckets, Bucket{
				Start: bucketStart,
				End:   bucketStart + intervalSeconds,
				Text:  strings.Join(texts, " "),
			})
			texts = texts[:0]
			bucketStart = expectedStart
		}

		texts = append(texts, strings.TrimSpace(seg.Text))
	}

	if len(texts) > 0 {
		buckets = append(buckets, Bucket{
			Start: bucketStart,
			End:   -1,
			Text:  strings.Join(texts, " "),
		})
	}

	return buckets, nil
}
