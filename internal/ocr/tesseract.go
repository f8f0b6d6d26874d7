package ocr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

type implTesseract struct {
	binary   string
	lang     string
	executor executor.Executor
	logger   logger.Logger
}

func (e *implTesseract) Name() string {
	return EngineTesseract
}

func (e *implTesseract) Check(ctx context.Context) error {
	if _, err := e.executor.Execute(ctx, e.binary, "--version"); err != nil {
		return unavailable(err)
	}
	return nil
}

// Recognize runs tesseract once per image. A frame that fails to read is
// logged and left empty so one bad frame does not sink the batch.
func (e *implTesseract) Recognize(ctx context.Context, paths []string) ([]Text, error) {
	out := make([]Text, len(paths))
	for i, path := range paths {
		tsv, err := e.executor.Execute(ctx, e.binary, path, "stdout", "-l", e.lang, "--psm", "3", "tsv")
		if err != nil {
			if errors.Is(err, executor.ErrNotFound) {
				return nil, unavailable(err)
			}
			e.logger.Warn(ctx, "tesseract failed on %s: %v", path, err)
			continue
		}
		out[i] = parseTSV(tsv)
	}
	return out, nil
}

// parseTSV joins word rows (level 5) line by line and averages their
// confidences. Tesseract reports -1 for non-word rows and 0-100 for words.
func parseTSV(tsv string) Text {
	type lineKey struct{ block, par, line string }

	var (
		order []lineKey
		words = map[lineKey][]string{}
		sum   float64
		count int
	)

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 || strings.TrimSpace(row) == "" {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		text := strings.TrimSpace(cols[11])
		if err != nil || conf < 0 || text == "" {
			continue
		}

		key := lineKey{cols[2], cols[3], cols[4]}
		if _, seen := words[key]; !seen {
			order = append(order, key)
		}
		words[key] = append(words[key], text)
		sum += conf / 100
		count++
	}

	if count == 0 {
		return Text{}
	}
	lines := make([]string, 0, len(order))
	for _, k := range order {
		lines = append(lines, strings.Join(words[k], " "))
	}
	return Text{Text: strings.Join(lines, " "), Confidence: sum / float64(count)}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
