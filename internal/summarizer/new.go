package summarizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// ErrNoKeys is returned by New when no API key is configured.
var ErrNoKeys = errors.New("no Gemini API keys configured")

// Options configures a Summarizer.
type Options struct {
	APIKeys []string
	Model   string
	// MinInterval spaces out consecutive model calls. Zero means 4s, which
	// keeps a single free-tier key under its per-minute quota.
	MinInterval time.Duration
}

// generateFunc sends one prompt with one key.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

type implSummarizer struct {
	apiKeys    []string
	model      string
	mu         sync.Mutex
	currentKey int
	limiter    *rate.Limiter
	generate   generateFunc
	now        func() time.Time
	logger     logger.Logger
}

// New creates a Summarizer that rotates through the supplied Gemini API keys.
func New(opts Options, log logger.Logger) (Summarizer, error) {
	if len(opts.APIKeys) == 0 {
		return nil, ErrNoKeys
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = 4 * time.Second
	}
	return &implSummarizer{
		apiKeys:  opts.APIKeys,
		model:    opts.Model,
		limiter:  rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		generate: generateGemini,
		now:      time.Now,
		logger:   log,
	}, nil
}
