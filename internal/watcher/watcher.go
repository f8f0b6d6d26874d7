package watcher

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
)

// ErrEmptyRequest is recorded for request files that hold no URL.
var ErrEmptyRequest = errors.New("request file has no URL")

var requestExts = []string{".url", ".txt"}

type implWatcher struct {
	dir           string
	handler       Handler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	lock          *flock.Flock
	maxConcurrent int
	semaphore     *semaphore
	settle        time.Duration

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// Start begins monitoring the drop folder for new request files.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Request watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.dir)
	w.logger.Info(ctx, "Supported request files: %s", strings.Join(requestExts, ", "))

	if err := w.scanBacklog(ctx); err != nil {
		w.logger.Warn(ctx, "Could not scan %s for waiting requests: %v", w.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing requests to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Request watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isRequestFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-request file: %s", event.Name)
				continue
			}
			w.dispatch(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	err := w.watcher.Close()
	if uerr := w.lock.Unlock(); uerr != nil && err == nil {
		err = fmt.Errorf("release lock: %w", uerr)
	}
	return err
}

func (w *implWatcher) scanBacklog(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Type().IsRegular() && isRequestFile(e.Name()) {
			w.dispatch(ctx, filepath.Join(w.dir, e.Name()))
		}
	}
	return nil
}

// dispatch handles path in its own goroutine. A file already queued or
// running is ignored, since one write can produce several events.
func (w *implWatcher) dispatch(ctx context.Context, path string) {
	w.mu.Lock()
	if w.inflight[path] {
		w.mu.Unlock()
		return
	}
	w.inflight[path] = true
	w.mu.Unlock()

	w.logger.Info(ctx, "New request detected: %s", path)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inflight, path)
			w.mu.Unlock()
		}()

		// Small delay to ensure file is fully written
		select {
		case <-time.After(w.settle):
		case <-ctx.Done():
			return
		}

		if w.semaphore.busy() {
			w.logger.Debug(ctx, "All %d slots busy, %s is queued", w.maxConcurrent, filepath.Base(path))
		}
		if err := w.semaphore.acquire(ctx); err != nil {
			return
		}
		defer w.semaphore.release()

		w.process(ctx, path)
	}()
}

func (w *implWatcher) process(ctx context.Context, path string) {
	req, err := readRequest(path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err == nil {
		err = w.handler(ctx, req)
	}
	if ctx.Err() != nil {
		// Left in place so the next run picks it up.
		w.logger.Warn(ctx, "Request %s interrupted", path)
		return
	}

	if err != nil {
		w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		reason := filepath.Join(w.dir, failedDir, filepath.Base(path)+".error")
		if werr := os.WriteFile(reason, []byte(err.Error()+"\n"), 0644); werr != nil {
			w.logger.Warn(ctx, "Failed to write %s: %v", reason, werr)
		}
		w.finish(ctx, path, failedDir)
		return
	}

	w.logger.Info(ctx, "[DONE] %s", path)
	w.finish(ctx, path, doneDir)
}

func (w *implWatcher) finish(ctx context.Context, path, sub string) {
	dest := filepath.Join(w.dir, sub, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		w.logger.Warn(ctx, "Failed to move %s to %s: %v", path, sub, err)
	}
}

func readRequest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Path: path,
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		req.URL = line
		return req, nil
	}
	return req, ErrEmptyRequest
}

// isRequestFile checks if the file has a supported request extension
func isRequestFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, format := range requestExts {
		if ext == format {
			return true
		}
	}
	return false
}
