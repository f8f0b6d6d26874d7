package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/nguyentantai21042004/video-comprehend/internal/comprehend"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
)

// jsonSink writes one JSON event per line, for tools that drive the CLI.
type jsonSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newJSONSink(w io.Writer) *jsonSink {
	return &jsonSink{enc: json.NewEncoder(w)}
}

func (s *jsonSink) Notify(e comprehend.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(e)
}

// consoleSink prints "→ message" lines. On a terminal the lines are dimmed
// and a progress bar tracks the percent estimate.
type consoleSink struct {
	mu  sync.Mutex
	w   io.Writer
	dim *color.Color
	bar *progressbar.ProgressBar
}

func newConsoleSink(w io.Writer, tty bool) *consoleSink {
	s := &consoleSink{w: w, dim: color.New(color.Faint)}
	if !tty {
		s.dim.DisableColor()
		return s
	}
	s.dim.EnableColor()
	s.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
	return s
}

func (s *consoleSink) Notify(e comprehend.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		_ = s.bar.Clear()
	}
	s.dim.Fprintf(s.w, "→ %s\n", e.Message)
	if s.bar != nil && e.Progress >= 0 {
		_ = s.bar.Set(e.Progress)
	}
}

// Close removes the bar so the result starts on a clean line.
func (s *consoleSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		_ = s.bar.Finish()
	}
}

// logSink forwards events to the logger; watch mode has no console.
type logSink struct {
	ctx context.Context
	log logger.Logger
}

func (s logSink) Notify(e comprehend.Event) {
	ctx := s.ctx
	if e.RequestID != "" {
		ctx = logger.WithRequestID(ctx, e.RequestID)
	}
	s.log.Info(ctx, "[%s] %s", e.Stage, e.Message)
}

func progressEvent(stage comprehend.Stage, percent int, outputPath, format string, args ...any) comprehend.Event {
	return comprehend.Event{
		Stage:      stage,
		Message:    fmt.Sprintf(format, args...),
		Progress:   percent,
		Timestamp:  comprehend.UnixSeconds(time.Now()),
		OutputPath: outputPath,
	}
}
