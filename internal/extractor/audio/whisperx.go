package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
)

const pypiIndexURL = "https://pypi.org/simple"

// Whisper holds the transcription settings passed to WhisperX.
type Whisper struct {
	Model         string
	Device        string
	ComputeType   string
	BeamSize      int
	Language      string
	InitialPrompt string
	// Command is "uvx" to run WhisperX from PyPI or a path to an installed
	// whisperx binary.
	Command string
}

// buildArgs assembles the WhisperX command line for source.
func (w Whisper) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)
	if filepath.Base(w.Command) == "uvx" {
		args = append(args, "--index-url", pypiIndexURL, "whisperx")
	}

	args = append(args,
		source,
		"--model", w.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--beam_size", strconv.Itoa(w.BeamSize),
		"--compute_type", w.ComputeType,
		"--vad_method", "silero",
	)
	if w.Device != "" && w.Device != "auto" {
		args = append(args, "--device", w.Device)
	}
	if w.Language != "" {
		args = append(args, "--language", baseLanguage(w.Language))
	}
	if strings.TrimSpace(w.InitialPrompt) != "" {
		args = append(args, "--initial_prompt", w.InitialPrompt)
	}
	return args
}

// baseLanguage trims a region subtag: Whisper only knows ISO 639-1 codes.
func baseLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperOutput struct {
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

// loadTranscript reads the JSON WhisperX writes next to its output dir.
func loadTranscript(path string) ([]extract.Segment, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read whisperx json: %w", err)
	}
	var payload whisperOutput
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, "", fmt.Errorf("parse whisperx json: %w", err)
	}

	segments := make([]extract.Segment, 0, len(payload.Segments))
	for _, s := range payload.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		end := s.End
		if end < s.Start {
			end = s.Start
		}
		segments = append(segments, extract.Segment{
			Text:     text,
			Start:    s.Start,
			End:      extract.Seconds(end),
			Duration: end - s.Start,
		})
	}
	return segments, payload.Language, nil
}
