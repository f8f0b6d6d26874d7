package media

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// ExtractFrame grabs a single frame with a fast input seek.
func (t *implToolkit) ExtractFrame(ctx context.Context, videoPath string, at float64, outPath string) error {
	args := []string{
		"-y",
		"-ss", strconv.FormatFloat(at, 'f', 3, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	}

	if _, err := t.executor.Execute(ctx, t.bin.FFmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract frame at %.1fs: %w", at, err)
	}
	// ffmpeg exits 0 without writing when the seek lands past the last frame.
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("frame at %.1fs not written: %w", at, err)
	}
	return nil
}
