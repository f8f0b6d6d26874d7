package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// paddleScript loads PaddleOCR once and reads every image given on the
// command line. Exit status 3 signals a missing Python package.
const paddleScript = `import json, sys
try:
    from paddleocr import PaddleOCR
except ImportError as exc:
    sys.stderr.write("paddleocr not installed: %s\n" % exc)
    sys.exit(3)
ocr = PaddleOCR(use_angle_cls=True, lang=sys.argv[1], show_log=False)
out = []
for path in sys.argv[2:]:
    res = ocr.ocr(path, cls=True)
    lines = []
    for line in (res[0] if res and res[0] else []):
        if line and len(line) >= 2:
            lines.append({"text": line[1][0], "confidence": float(line[1][1])})
    out.append({"path": path, "lines": lines})
print(json.dumps(out))
`

const paddleCheckScript = "import paddleocr"

type implPaddle struct {
	python   string
	lang     string
	executor executor.Executor
	logger   logger.Logger
}

type paddleImage struct {
	Path  string       `json:"path"`
	Lines []paddleLine `json:"lines"`
}

type paddleLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func (e *implPaddle) Name() string {
	return EnginePaddle
}

func (e *implPaddle) Check(ctx context.Context) error {
	if _, err := e.executor.Execute(ctx, e.python, "-c", paddleCheckScript); err != nil {
		return unavailable(err)
	}
	return nil
}

func (e *implPaddle) Recognize(ctx context.Context, paths []string) ([]Text, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	args := append([]string{"-c", paddleScript, e.lang}, paths...)
	out, err := e.executor.Execute(ctx, e.python, args...)
	if err != nil {
		if isMissingDependency(err) {
			return nil, unavailable(err)
		}
		return nil, fmt.Errorf("paddleocr: %w", err)
	}

	return parsePaddle(lastJSONLine(out), len(paths))
}

func isMissingDependency(err error) bool {
	if errors.Is(err, executor.ErrNotFound) {
		return true
	}
	var cmdErr *executor.CommandError
	if errors.As(err, &cmdErr) {
		return strings.Contains(cmdErr.Stderr, "paddleocr not installed") ||
			strings.Contains(cmdErr.Stderr, "No module named")
	}
	return false
}

// lastJSONLine skips any log noise PaddleOCR prints before the result.
func lastJSONLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "[") {
			return lines[i]
		}
	}
	return ""
}

func parsePaddle(data string, n int) ([]Text, error) {
	var images []paddleImage
	if err := json.Unmarshal([]byte(data), &images); err != nil {
		return nil, fmt.Errorf("paddleocr output: %w", err)
	}
	if len(images) != n {
		return nil, fmt.Errorf("paddleocr returned %d results for %d images", len(images), n)
	}

	out := make([]Text, n)
	for i, img := range images {
		if len(img.Lines) == 0 {
			continue
		}
		texts := make([]string, 0, len(img.Lines))
		var sum float64
		for _, l := range img.Lines {
			texts = append(texts, l.Text)
			sum += l.Confidence
		}
		out[i] = Text{Text: strings.Join(texts, " "), Confidence: sum / float64(len(img.Lines))}
	}
	return out, nil
}
