package watcher

import "context"

// Watcher monitors a drop folder for analysis requests.
type Watcher interface {
	// Start processes any waiting requests, then blocks handling new ones
	// until ctx is cancelled. In-flight requests finish before it returns.
	Start(ctx context.Context) error
	// Stop closes the file watcher and releases the folder lock.
	Stop() error
}

// Request is one request file: a text file whose first non-blank,
// non-comment line is a video URL or id.
type Request struct {
	Path string
	// Name is the file name without extension.
	Name string
	URL  string
}

// Handler processes one request. A nil return moves the file to done/,
// an error moves it to failed/.
type Handler func(ctx context.Context, req Request) error
