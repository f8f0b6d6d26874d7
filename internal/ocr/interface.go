// Package ocr reads text out of still frames with an external OCR engine.
package ocr

import (
	"context"
	"errors"
)

// ErrUnavailable means the engine or one of its runtime dependencies is
// not installed.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Text is what an engine read from one image.
type Text struct {
	Text string
	// Confidence is the mean line confidence in [0,1], 0 when nothing was read.
	Confidence float64
}

// Engine recognizes text in a batch of images. Results are index-aligned
// with paths.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, paths []string) ([]Text, error)
	// Check returns ErrUnavailable (wrapped) when the engine cannot run.
	Check(ctx context.Context) error
}
