package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
)

const (
	lockFile   = ".watch.lock"
	doneDir    = "done"
	failedDir  = "failed"
	settleTime = 500 * time.Millisecond
)

// ErrLocked is returned when another watcher already owns the folder.
var ErrLocked = errors.New("another watcher is already using this folder")

// Options configures a Watcher.
type Options struct {
	Dir           string
	MaxConcurrent int
	// Settle is how long a new file is left alone before it is read, so
	// editors finish writing it. Zero means 500ms.
	Settle time.Duration
}

// New creates a Watcher with concurrency control. It creates the folder
// layout and takes the folder lock.
func New(opts Options, handler Handler, log logger.Logger) (Watcher, error) {
	for _, dir := range []string{opts.Dir, filepath.Join(opts.Dir, doneDir), filepath.Join(opts.Dir, failedDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	lock := flock.New(filepath.Join(opts.Dir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, opts.Dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(opts.Dir); err != nil {
		watcher.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	// Default to 1 concurrent if not specified
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Settle <= 0 {
		opts.Settle = settleTime
	}

	return &implWatcher{
		dir:           opts.Dir,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		lock:          lock,
		maxConcurrent: opts.MaxConcurrent,
		semaphore:     newSemaphore(opts.MaxConcurrent),
		settle:        opts.Settle,
		inflight:      make(map[string]bool),
	}, nil
}
