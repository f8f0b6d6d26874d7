package main

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nguyentantai21042004/video-comprehend/internal/comprehend"
	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/internal/ocr"
	"github.com/nguyentantai21042004/video-comprehend/internal/summarizer"
	"github.com/nguyentantai21042004/video-comprehend/internal/youtube"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// commandContext carries state shared by every subcommand. The factory
// fields are swapped out in tests.
type commandContext struct {
	configFlag   string
	logLevelFlag string

	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool
	stderrTTY bool

	cfg  *config.Config
	log  logger.Logger
	exec executor.Executor

	newAnalyzer   func(cfg *config.Config, exec executor.Executor, log logger.Logger) (*comprehend.Analyzer, ocr.Engine)
	newYouTube    func(ctx context.Context, apiKey string, log logger.Logger) (youtube.Client, error)
	newSummarizer func(opts summarizer.Options, log logger.Logger) (summarizer.Summarizer, error)
}

func newCommandContext() *commandContext {
	return &commandContext{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		stdoutTTY:   isTerminal(os.Stdout),
		stderrTTY:   isTerminal(os.Stderr),
		exec:        executor.New(),
		newAnalyzer: newAnalyzer,
		newYouTube: func(ctx context.Context, apiKey string, log logger.Logger) (youtube.Client, error) {
			return youtube.New(ctx, apiKey, log)
		},
		newSummarizer: summarizer.New,
	}
}

// ensureConfig loads the configuration once and builds the logger from it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.LoadOrDefault(c.configFlag)
	if err != nil {
		return nil, err
	}
	if c.logLevelFlag != "" {
		cfg.Logging.Level = c.logLevelFlag
	}

	c.cfg = cfg
	if c.log == nil {
		c.log = logger.NewWithOptions(logger.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Writer: c.stderr,
		})
	}
	return cfg, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
