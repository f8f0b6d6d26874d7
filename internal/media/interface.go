package media

import "context"

// Toolkit wraps the external media binaries (yt-dlp, ffmpeg, ffprobe) the
// extractors depend on.
type Toolkit interface {
	// DownloadAudio fetches the best audio track of url into dir and returns its path.
	DownloadAudio(ctx context.Context, url, dir string) (string, error)
	// DownloadVideo fetches url at up to 1080p into dir and returns its path.
	DownloadVideo(ctx context.Context, url, dir string) (string, error)
	// DownloadSubtitles writes WebVTT tracks for langs into dir without
	// downloading media and returns the written files.
	DownloadSubtitles(ctx context.Context, url, dir string, langs []string) ([]Subtitle, error)

	Probe(ctx context.Context, path string) (ProbeResult, error)
	// ConvertToWAV re-encodes path as 16kHz mono PCM next to the source.
	ConvertToWAV(ctx context.Context, path string) (string, error)
	// DetectScenes returns scene-change timestamps in seconds, ascending.
	DetectScenes(ctx context.Context, path string, threshold float64) ([]float64, error)
	// ExtractFrame writes the frame at the given second to outPath.
	ExtractFrame(ctx context.Context, videoPath string, at float64, outPath string) error

	// Workdir creates a fresh temporary directory for one extraction.
	Workdir(prefix string) (string, error)
	// Remove deletes path, logging instead of failing.
	Remove(ctx context.Context, path string)
}

// Subtitle is one downloaded caption track.
type Subtitle struct {
	Path     string
	Language string
}
