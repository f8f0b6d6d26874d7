package ocr

import (
	"fmt"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

const (
	EnginePaddle    = "paddleocr"
	EngineTesseract = "tesseract"
)

// Options configures engine construction.
type Options struct {
	Engine string
	// Language is a BCP 47 tag; each engine maps it to its own code.
	Language  string
	Tesseract string
	Python    string
}

// New builds the configured engine.
func New(opts Options, exec executor.Executor, log logger.Logger) (Engine, error) {
	switch opts.Engine {
	case EnginePaddle, "":
		python := opts.Python
		if python == "" {
			python = "python3"
		}
		return &implPaddle{python: python, lang: paddleLanguage(opts.Language), executor: exec, logger: log}, nil
	case EngineTesseract:
		bin := opts.Tesseract
		if bin == "" {
			bin = "tesseract"
		}
		return &implTesseract{binary: bin, lang: tesseractLanguage(opts.Language), executor: exec, logger: log}, nil
	}
	return nil, fmt.Errorf("unsupported OCR engine %q", opts.Engine)
}
