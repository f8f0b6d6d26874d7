package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ConvertToWAV produces the 16kHz mono PCM input Whisper models expect.
func (t *implToolkit) ConvertToWAV(ctx context.Context, path string) (string, error) {
	wavPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_16k.wav"

	t.logger.Debug(ctx, "Converting audio to 16kHz mono: %s", path)

	// -vn drops video, -threads 0 uses every core, -y overwrites a stale file.
	args := []string{
		"-i", path,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		wavPath,
	}

	if _, err := t.executor.Execute(ctx, t.bin.FFmpeg, args...); err != nil {
		return "", fmt.Errorf("ffmpeg convert audio: %w", err)
	}

	return wavPath, nil
}
