// Package captions is the tier 1 backend: it reads the subtitle tracks a
// video already has instead of downloading any media.
package captions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/media"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

type implExtractor struct {
	media     media.Toolkit
	languages []string
	logger    logger.Logger
}

// New creates the caption backend. languages are in preference order.
func New(tk media.Toolkit, languages []string, log logger.Logger) extract.Backend {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &implExtractor{media: tk, languages: languages, logger: log}
}

func (e *implExtractor) Extract(ctx context.Context, ref video.Reference, opts extract.Options) (extract.Output, error) {
	dir, err := e.media.Workdir("captions")
	if err != nil {
		return extract.Output{}, unavailable("create work dir", err)
	}
	defer e.media.Remove(ctx, dir)

	opts.Report(extract.PhaseDownload, "fetching caption tracks...")
	subs, err := e.media.DownloadSubtitles(ctx, ref.URL, dir, e.languages)
	if err != nil {
		if ctx.Err() != nil {
			return extract.Output{}, ctx.Err()
		}
		return extract.Output{}, unavailable("failed to fetch captions", err)
	}

	sub, ok := pick(subs, e.languages)
	if !ok {
		return extract.Output{}, unavailable("no transcripts available for video "+ref.ID, nil)
	}

	raw, err := os.ReadFile(sub.Path)
	if err != nil {
		return extract.Output{}, unavailable("read caption track", err)
	}

	opts.Report(extract.PhaseAnalyze, "parsing %s captions...", sub.Language)
	segments := ParseVTT(string(raw))
	if len(segments) == 0 {
		return extract.Output{}, unavailable(fmt.Sprintf("caption track %s is empty", sub.Language), nil)
	}

	e.logger.Info(ctx, "Captions found for %s (%s, %d segments)", ref.ID, sub.Language, len(segments))

	return extract.Output{
		Text:     extract.JoinText(segments),
		Segments: segments,
		Language: sub.Language,
	}, nil
}

// pick returns the first track in language preference order, then any track.
func pick(subs []media.Subtitle, languages []string) (media.Subtitle, bool) {
	for _, lang := range languages {
		for _, s := range subs {
			if strings.EqualFold(s.Language, lang) {
				return s, true
			}
		}
	}
	for _, lang := range languages {
		for _, s := range subs {
			if strings.HasPrefix(strings.ToLower(s.Language), strings.ToLower(lang)+"-") {
				return s, true
			}
		}
	}
	if len(subs) > 0 {
		return subs[0], true
	}
	return media.Subtitle{}, false
}

func unavailable(detail string, err error) error {
	if errors.Is(err, executor.ErrNotFound) {
		detail = "yt-dlp is not installed"
	}
	return extract.NewSoft(extract.KindCaptionsUnavailable, extract.TierCaptions, detail, err)
}
