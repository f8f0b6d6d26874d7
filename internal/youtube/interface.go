package youtube

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the API knows no video with the given id.
var ErrNotFound = errors.New("video not found")

// Video is the subset of the Data API video resource the CLI uses.
type Video struct {
	ID           string
	Title        string
	Channel      string
	PublishedAt  time.Time
	Duration     time.Duration
	Language     string
	HasCaptions  bool
	ViewCount    uint64
	ThumbnailURL string
}

// Client looks up video metadata.
type Client interface {
	Video(ctx context.Context, id string) (Video, error)
}
