package media

import (
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// Binaries names the executables the toolkit shells out to.
type Binaries struct {
	YtDlp   string
	FFmpeg  string
	FFprobe string
}

type implToolkit struct {
	bin      Binaries
	tempRoot string
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Toolkit. An empty tempRoot uses the OS temp directory.
func New(bin Binaries, tempRoot string, exec executor.Executor, log logger.Logger) Toolkit {
	if bin.YtDlp == "" {
		bin.YtDlp = "yt-dlp"
	}
	if bin.FFmpeg == "" {
		bin.FFmpeg = "ffmpeg"
	}
	if bin.FFprobe == "" {
		bin.FFprobe = "ffprobe"
	}
	return &implToolkit{
		bin:      bin,
		tempRoot: tempRoot,
		executor: exec,
		logger:   log,
	}
}
