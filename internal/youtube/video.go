package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/sosodev/duration"
	yt "google.golang.org/api/youtube/v3"
)

func (c *implClient) Video(ctx context.Context, id string) (Video, error) {
	call := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).Id(id).Context(ctx)
	response, err := call.Do()
	if err != nil {
		return Video{}, fmt.Errorf("youtube videos.list %s: %w", id, err)
	}
	if len(response.Items) == 0 {
		return Video{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	video, err := fromAPI(response.Items[0])
	if err != nil {
		return Video{}, err
	}
	c.logger.Debug(ctx, "Looked up %s: %q (%s)", id, video.Title, video.Duration)
	return video, nil
}

func fromAPI(item *yt.Video) (Video, error) {
	v := Video{ID: item.Id}

	if s := item.Snippet; s != nil {
		v.Title = s.Title
		v.Channel = s.ChannelTitle
		v.Language = s.DefaultAudioLanguage
		if v.Language == "" {
			v.Language = s.DefaultLanguage
		}
		if s.PublishedAt != "" {
			published, err := time.Parse(time.RFC3339, s.PublishedAt)
			if err != nil {
				return Video{}, fmt.Errorf("parse published date %q: %w", s.PublishedAt, err)
			}
			v.PublishedAt = published
		}
		if s.Thumbnails != nil && s.Thumbnails.High != nil {
			v.ThumbnailURL = s.Thumbnails.High.Url
		}
	}

	if d := item.ContentDetails; d != nil {
		v.HasCaptions = d.Caption == "true"
		// Live streams report P0D while broadcasting.
		if d.Duration != "" {
			parsed, err := duration.Parse(d.Duration)
			if err != nil {
				return Video{}, fmt.Errorf("parse duration %q: %w", d.Duration, err)
			}
			v.Duration = parsed.ToTimeDuration()
		}
	}

	if item.Statistics != nil {
		v.ViewCount = item.Statistics.ViewCount
	}
	return v, nil
}
