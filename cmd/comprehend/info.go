package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/timeline"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
	"github.com/nguyentantai21042004/video-comprehend/internal/youtube"
)

func newInfoCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info URL",
		Short: "Show video metadata from the YouTube Data API",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.runInfo(cmd.Context(), args[0])
		},
	}
}

func (c *commandContext) runInfo(ctx context.Context, input string) error {
	ref, err := video.Parse(input)
	if err != nil {
		return err
	}
	if c.cfg.YouTube.APIKey == "" {
		return fmt.Errorf("%w: youtube.api_key is empty (set YOUTUBE_API_KEY)", config.ErrInvalid)
	}

	client, err := c.newYouTube(ctx, c.cfg.YouTube.APIKey, c.log)
	if err != nil {
		return err
	}
	v, err := client.Video(ctx, ref.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, renderTable([]string{"Field", "Value"}, infoRows(v, ref, time.Now()), nil))
	return nil
}

func infoRows(v youtube.Video, ref video.Reference, now time.Time) [][]string {
	captions := "no"
	if v.HasCaptions {
		captions = "yes (tier 1 should work)"
	}
	language := v.Language
	if language == "" {
		language = "unknown"
	}
	published := "unknown"
	if !v.PublishedAt.IsZero() {
		published = fmt.Sprintf("%s (%s)", v.PublishedAt.Format("2006-01-02"), humanize.RelTime(v.PublishedAt, now, "ago", "from now"))
	}

	return [][]string{
		{"Title", v.Title},
		{"Channel", v.Channel},
		{"Published", published},
		{"Duration", timeline.FormatDuration(v.Duration.Seconds())},
		{"Views", humanize.Comma(int64(v.ViewCount))},
		{"Language", language},
		{"Captions", captions},
		{"Suggested name", youtube.Slug(v.Title)},
		{"URL", ref.URL},
	}
}
