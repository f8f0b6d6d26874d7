package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/ocr"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor/executortest"
)

type stubEngine struct {
	name string
	err  error
}

func (s stubEngine) Name() string { return s.name }

func (s stubEngine) Check(context.Context) error { return s.err }

func (s stubEngine) Recognize(context.Context, []string) ([]ocr.Text, error) { return nil, nil }

func TestCheckBinary(t *testing.T) {
	fake := executortest.New().Handle("ffmpeg", func(executortest.Call) (string, error) {
		return "ffmpeg version 7.1 Copyright (c) 2000-2024\nbuilt with gcc\n", nil
	})

	tests := []struct {
		name        string
		command     string
		wantPassed  bool
		wantVersion string
		wantDetail  string
	}{
		{"present", "ffmpeg", true, "ffmpeg version 7.1 Copyright (c) 2000-2024", "/usr/bin/ffmpeg"},
		{"missing", "yt-dlp", false, "", `binary "yt-dlp" not found`},
		{"not configured", "  ", false, "", "command not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckBinary(context.Background(), fake, "tool", tt.command, []string{"-version"}, extract.TierAudio)
			if got.Passed != tt.wantPassed || got.Version != tt.wantVersion || got.Detail != tt.wantDetail {
				t.Errorf("CheckBinary() = %+v", got)
			}
		})
	}
}

func TestCheckOCR(t *testing.T) {
	tests := []struct {
		name       string
		engine     ocr.Engine
		wantPassed bool
		wantDetail string
	}{
		{"ready", stubEngine{name: ocr.EngineTesseract}, true, "ready"},
		{"paddle missing", stubEngine{name: ocr.EnginePaddle, err: ocr.ErrUnavailable}, false, "pip install paddleocr paddlepaddle"},
		{"tesseract missing", stubEngine{name: ocr.EngineTesseract, err: fmt.Errorf("%w: not on PATH", ocr.ErrUnavailable)}, false, "tesseract is not installed"},
		{"no engine", nil, false, "engine could not be created"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckOCR(context.Background(), tt.engine, "configured")
			if got.Passed != tt.wantPassed || got.Detail != tt.wantDetail {
				t.Errorf("CheckOCR() = %+v", got)
			}
		})
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		path       string
		wantPassed bool
	}{
		{"existing", dir, true},
		{"created later", filepath.Join(dir, "output", "nested"), true},
		{"file", file, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckDirectoryAccess("dir", tt.path)
			if got.Passed != tt.wantPassed {
				t.Errorf("CheckDirectoryAccess(%s) = %+v", tt.path, got)
			}
		})
	}
}

func TestRunAllAndReady(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Directory = t.TempDir()
	ok := func(executortest.Call) (string, error) { return "v1\n", nil }
	fake := executortest.New().Handle("yt-dlp", ok).Handle("uvx", ok)

	results := RunAll(context.Background(), &cfg, fake, stubEngine{name: ocr.EnginePaddle, err: ocr.ErrUnavailable})

	if err := Ready(results, extract.TierCaptions); err != nil {
		t.Errorf("Ready(tier 1) = %v, want nil", err)
	}
	err := Ready(results, extract.TierAudio)
	if err == nil || err.Error() != "tier 2 needs FFmpeg, FFprobe" {
		t.Errorf("Ready(tier 2) = %v", err)
	}
	err = Ready(results, extract.TierVisual)
	if err == nil || !strings.Contains(err.Error(), "OCR (paddleocr)") {
		t.Errorf("Ready(tier 3) = %v", err)
	}

	table := Table(results, false)
	for _, want := range []string{"yt-dlp", "MISSING", "WhisperX", "1,2,3", "v1"} {
		if !strings.Contains(table, want) {
			t.Errorf("Table() missing %q:\n%s", want, table)
		}
	}
}
