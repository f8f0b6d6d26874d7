package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalid marks configuration values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	DefaultTier  int            `yaml:"default_tier" toml:"default_tier"`
	AutoEscalate bool           `yaml:"auto_escalate" toml:"auto_escalate"`
	Whisper      WhisperConfig  `yaml:"whisper" toml:"whisper"`
	Captions     CaptionsConfig `yaml:"captions" toml:"captions"`
	Visual       VisualConfig   `yaml:"visual" toml:"visual"`
	Output       OutputConfig   `yaml:"output" toml:"output"`
	Cleanup      CleanupConfig  `yaml:"cleanup" toml:"cleanup"`
	Paths        PathsConfig    `yaml:"paths" toml:"paths"`
	Tools        ToolsConfig    `yaml:"tools" toml:"tools"`
	Logging      LoggingConfig  `yaml:"logging" toml:"logging"`
	YouTube      YouTubeConfig  `yaml:"youtube" toml:"youtube"`
	Summary      SummaryConfig  `yaml:"summary" toml:"summary"`
	Watch        WatchConfig    `yaml:"watch" toml:"watch"`
}

type WhisperConfig struct {
	Model         string `yaml:"model" toml:"model"`
	Device        string `yaml:"device" toml:"device"`
	ComputeType   string `yaml:"compute_type" toml:"compute_type"`
	BeamSize      int    `yaml:"beam_size" toml:"beam_size"`
	Language      string `yaml:"language" toml:"language"`
	InitialPrompt string `yaml:"initial_prompt" toml:"initial_prompt"`
	// Command launches WhisperX; "uvx" runs it from PyPI, "whisperx" uses an installed binary.
	Command string `yaml:"command" toml:"command"`
}

type CaptionsConfig struct {
	Languages []string `yaml:"languages" toml:"languages"`
}

type VisualConfig struct {
	SceneThreshold float64 `yaml:"scene_threshold" toml:"scene_threshold"`
	OCREngine      string  `yaml:"ocr_engine" toml:"ocr_engine"`
	Deduplicate    bool    `yaml:"deduplicate" toml:"deduplicate"`
	DedupThreshold float64 `yaml:"dedup_threshold" toml:"dedup_threshold"`
	MaxFrames      int     `yaml:"max_frames" toml:"max_frames"`
	SampleInterval int     `yaml:"sample_interval" toml:"sample_interval"`
}

type OutputConfig struct {
	Format            string `yaml:"format" toml:"format"`
	IncludeTimestamps bool   `yaml:"include_timestamps" toml:"include_timestamps"`
	TimestampInterval int    `yaml:"timestamp_interval" toml:"timestamp_interval"`
	Directory         string `yaml:"directory" toml:"directory"`
	InterleaveVisual  bool   `yaml:"interleave_visual" toml:"interleave_visual"`
}

type CleanupConfig struct {
	DeleteTempFiles bool `yaml:"delete_temp_files" toml:"delete_temp_files"`
	KeepAudio       bool `yaml:"keep_audio" toml:"keep_audio"`
	KeepFrames      bool `yaml:"keep_frames" toml:"keep_frames"`
}

type PathsConfig struct {
	Temp string `yaml:"temp" toml:"temp"`
}

type ToolsConfig struct {
	YtDlp     string `yaml:"ytdlp" toml:"ytdlp"`
	FFmpeg    string `yaml:"ffmpeg" toml:"ffmpeg"`
	FFprobe   string `yaml:"ffprobe" toml:"ffprobe"`
	Tesseract string `yaml:"tesseract" toml:"tesseract"`
	Python    string `yaml:"python" toml:"python"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key" toml:"api_key"`
}

type SummaryConfig struct {
	Provider string   `yaml:"provider" toml:"provider"`
	Model    string   `yaml:"model" toml:"model"`
	APIKeys  []string `yaml:"api_keys" toml:"api_keys"`
}

type WatchConfig struct {
	Input         string `yaml:"input" toml:"input"`
	MaxConcurrent int    `yaml:"max_concurrent" toml:"max_concurrent"`
}

// KeepAudio reports whether downloaded audio survives an analysis.
func (c *Config) KeepAudio() bool {
	return c.Cleanup.KeepAudio || !c.Cleanup.DeleteTempFiles
}

// KeepFrames reports whether downloaded video and extracted frames survive an analysis.
func (c *Config) KeepFrames() bool {
	return c.Cleanup.KeepFrames || !c.Cleanup.DeleteTempFiles
}

// Validate checks every field and canonicalizes language tags in place.
func (c *Config) Validate() error {
	if c.DefaultTier < 1 || c.DefaultTier > 3 {
		return invalid("default_tier must be 1, 2, or 3 (got %d)", c.DefaultTier)
	}

	if strings.TrimSpace(c.Whisper.Model) == "" {
		return invalid("whisper.model is required")
	}
	switch c.Whisper.Device {
	case "auto", "cpu", "cuda":
	default:
		return invalid("whisper.device must be auto, cpu, or cuda (got %q)", c.Whisper.Device)
	}
	switch c.Whisper.ComputeType {
	case "int8", "int8_float16", "float16", "float32":
	default:
		return invalid("whisper.compute_type %q is not supported", c.Whisper.ComputeType)
	}
	if c.Whisper.BeamSize <= 0 {
		return invalid("whisper.beam_size must be positive")
	}
	if c.Whisper.Language != "" {
		tag, err := canonicalLanguage(c.Whisper.Language)
		if err != nil {
			return invalid("whisper.language: %v", err)
		}
		c.Whisper.Language = tag
	}
	if strings.TrimSpace(c.Whisper.Command) == "" {
		c.Whisper.Command = "uvx"
	}

	if len(c.Captions.Languages) == 0 {
		c.Captions.Languages = []string{"en"}
	}
	for i, lang := range c.Captions.Languages {
		tag, err := canonicalLanguage(lang)
		if err != nil {
			return invalid("captions.languages[%d]: %v", i, err)
		}
		c.Captions.Languages[i] = tag
	}

	if c.Visual.SceneThreshold <= 0 {
		return invalid("visual.scene_threshold must be positive")
	}
	switch c.Visual.OCREngine {
	case "paddleocr", "tesseract":
	default:
		return invalid("visual.ocr_engine must be paddleocr or tesseract (got %q)", c.Visual.OCREngine)
	}
	if c.Visual.DedupThreshold <= 0 || c.Visual.DedupThreshold > 1 {
		return invalid("visual.dedup_threshold must be in (0, 1]")
	}
	if c.Visual.MaxFrames <= 0 {
		return invalid("visual.max_frames must be positive")
	}
	if c.Visual.SampleInterval <= 0 {
		c.Visual.SampleInterval = defaultSampleInterval
	}

	switch c.Output.Format {
	case "markdown", "plain", "json":
	default:
		return invalid("output.format must be markdown, plain, or json (got %q)", c.Output.Format)
	}
	if c.Output.TimestampInterval <= 0 {
		return invalid("output.timestamp_interval must be positive")
	}
	if c.Output.Directory == "" {
		c.Output.Directory = defaultOutputDir
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level %q is not supported", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format must be text or json (got %q)", c.Logging.Format)
	}

	if c.Watch.MaxConcurrent <= 0 {
		c.Watch.MaxConcurrent = 1
	}
	if c.Summary.Model == "" {
		c.Summary.Model = defaultSummaryModel
	}

	return nil
}

func canonicalLanguage(value string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%q is not a valid language tag", value)
	}
	return tag.String(), nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
