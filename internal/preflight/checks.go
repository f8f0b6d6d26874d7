package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/ocr"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// CheckBinary resolves command on PATH and, when versionArgs is set, records
// the first line the binary prints for them.
func CheckBinary(ctx context.Context, exec executor.Executor, name, command string, versionArgs []string, tiers ...extract.Tier) Result {
	command = strings.TrimSpace(command)
	result := Result{Name: name, Command: command, Tiers: tiers}
	if command == "" {
		result.Detail = "command not configured"
		return result
	}

	path, err := exec.LookPath(command)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found", command)
		return result
	}
	result.Passed = true
	result.Detail = path

	if len(versionArgs) > 0 {
		if out, err := exec.Execute(ctx, command, versionArgs...); err == nil {
			result.Version = firstLine(out)
		}
	}
	return result
}

// checkWhisper looks for the WhisperX launcher. With uvx the package itself
// is fetched on first use, so only uvx has to be present.
func checkWhisper(ctx context.Context, exec executor.Executor, command string) Result {
	result := CheckBinary(ctx, exec, "WhisperX", command, nil, extract.TierAudio, extract.TierVisual)
	if result.Passed && command == "uvx" {
		result.Detail += " (whisperx fetched on first run)"
	}
	if !result.Passed && command == "uvx" {
		result.Detail = "uvx not found: install uv from https://docs.astral.sh/uv/"
	}
	return result
}

// CheckOCR runs the engine's own availability probe.
func CheckOCR(ctx context.Context, engine ocr.Engine, configured string) Result {
	result := Result{Name: "OCR (" + configured + ")", Command: configured, Tiers: []extract.Tier{extract.TierVisual}}
	if engine == nil {
		result.Detail = "engine could not be created"
		return result
	}
	if err := engine.Check(ctx); err != nil {
		switch {
		case errors.Is(err, ocr.ErrUnavailable) && engine.Name() == ocr.EnginePaddle:
			result.Detail = "pip install paddleocr paddlepaddle"
		case errors.Is(err, executor.ErrNotFound), errors.Is(err, ocr.ErrUnavailable):
			result.Detail = engine.Name() + " is not installed"
		default:
			result.Detail = err.Error()
		}
		return result
	}
	result.Passed = true
	result.Detail = "ready"
	return result
}

// CheckDirectoryAccess verifies path is a writable directory. A directory
// that does not exist yet passes when its parent is writable, since it is
// created on first use.
func CheckDirectoryAccess(name, path string) Result {
	result := Result{Name: name, Command: path}
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Detail = fmt.Sprintf("stat: %v", err)
			return result
		}
		parent := nearestExisting(path)
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			result.Detail = fmt.Sprintf("cannot be created under %s: %v", parent, err)
			return result
		}
		result.Passed = true
		result.Detail = "created on first use"
		return result
	}
	if !info.IsDir() {
		result.Detail = "is not a directory"
		return result
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		result.Detail = fmt.Sprintf("insufficient permissions: %v", err)
		return result
	}
	result.Passed = true
	result.Detail = "read/write ok"
	return result
}

func nearestExisting(path string) string {
	for {
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		if _, err := os.Stat(parent); err == nil {
			return parent
		}
		path = parent
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
