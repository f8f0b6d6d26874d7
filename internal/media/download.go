package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

const (
	audioFormat = "ba[acodec^=mp4a]/ba/b"
	videoFormat = "bestvideo[height<=1080]+bestaudio/best[height<=1080]/best"
)

// DownloadAudio extracts the best audio stream as m4a.
func (t *implToolkit) DownloadAudio(ctx context.Context, url, dir string) (string, error) {
	args := []string{
		"--no-playlist",
		"-f", audioFormat,
		"-x",
		"--audio-format", "m4a",
		"--audio-quality", "0",
		"-o", filepath.Join(dir, "audio_%(id)s.%(ext)s"),
		"--print", "after_move:filepath",
		url,
	}

	t.logger.Info(ctx, "Downloading audio: %s", url)
	return t.fetch(ctx, args)
}

// DownloadVideo fetches the video capped at 1080p.
func (t *implToolkit) DownloadVideo(ctx context.Context, url, dir string) (string, error) {
	args := []string{
		"--no-playlist",
		"-f", videoFormat,
		"-o", filepath.Join(dir, "video_%(id)s.%(ext)s"),
		"--print", "after_move:filepath",
		url,
	}

	t.logger.Info(ctx, "Downloading video: %s", url)
	return t.fetch(ctx, args)
}

// DownloadSubtitles writes manual subtitles, falling back to YouTube's
// automatic ones, for the requested languages.
func (t *implToolkit) DownloadSubtitles(ctx context.Context, url, dir string, langs []string) ([]Subtitle, error) {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	args := []string{
		"--no-playlist",
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(langs, ","),
		"--sub-format", "vtt",
		"-o", filepath.Join(dir, "captions.%(ext)s"),
		url,
	}

	t.logger.Info(ctx, "Fetching captions (%s): %s", strings.Join(langs, ","), url)
	if _, err := t.ytdlp(ctx, args); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(dir, "captions.*.vtt"))
	if err != nil {
		return nil, fmt.Errorf("list subtitles: %w", err)
	}
	sort.Strings(matches)

	subs := make([]Subtitle, 0, len(matches))
	for _, path := range matches {
		subs = append(subs, Subtitle{Path: path, Language: subtitleLanguage(path)})
	}
	return subs, nil
}

// subtitleLanguage pulls "en" out of "captions.en.vtt".
func subtitleLanguage(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".vtt")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// fetch runs a yt-dlp download and returns the final path it printed.
func (t *implToolkit) fetch(ctx context.Context, args []string) (string, error) {
	out, err := t.ytdlp(ctx, args)
	if err != nil {
		return "", err
	}

	path := lastLine(out)
	if path == "" {
		return "", errors.New("yt-dlp did not report an output file")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("downloaded file not found at %s: %w", path, err)
	}
	return path, nil
}

// ytdlp runs yt-dlp once more after a self-update when YouTube answers 403,
// which usually means the extractor is out of date.
func (t *implToolkit) ytdlp(ctx context.Context, args []string) (string, error) {
	out, err := t.executor.Execute(ctx, t.bin.YtDlp, args...)
	if err == nil {
		return out, nil
	}

	var cmdErr *executor.CommandError
	if !errors.As(err, &cmdErr) || !strings.Contains(cmdErr.Stderr, "403") {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}

	t.logger.Warn(ctx, "yt-dlp got HTTP 403, updating and retrying once")
	if _, uerr := t.executor.Execute(ctx, t.bin.YtDlp, "-U"); uerr != nil {
		t.logger.Warn(ctx, "yt-dlp update failed: %v", uerr)
	}

	out, err = t.executor.Execute(ctx, t.bin.YtDlp, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp (after update): %w", err)
	}
	return out, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
