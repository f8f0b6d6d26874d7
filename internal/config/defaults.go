package config

const (
	defaultTier              = 1
	defaultWhisperModel      = "medium"
	defaultWhisperDevice     = "auto"
	defaultWhisperCompute    = "int8"
	defaultWhisperBeamSize   = 5
	defaultWhisperCommand    = "uvx"
	defaultSceneThreshold    = 3.0
	defaultOCREngine         = "paddleocr"
	defaultDedupThreshold    = 0.95
	defaultMaxFrames         = 100
	defaultSampleInterval    = 30
	defaultOutputFormat      = "markdown"
	defaultTimestampInterval = 30
	defaultOutputDir         = "./output"
	defaultSummaryProvider   = "gemini"
	defaultSummaryModel      = "gemini-2.5-flash"
	defaultWatchInput        = "data/requests"
)

// Default returns a Config populated with every default value.
func Default() Config {
	return Config{
		DefaultTier:  defaultTier,
		AutoEscalate: true,
		Whisper: WhisperConfig{
			Model:       defaultWhisperModel,
			Device:      defaultWhisperDevice,
			ComputeType: defaultWhisperCompute,
			BeamSize:    defaultWhisperBeamSize,
			Command:     defaultWhisperCommand,
		},
		Captions: CaptionsConfig{
			Languages: []string{"en"},
		},
		Visual: VisualConfig{
			SceneThreshold: defaultSceneThreshold,
			OCREngine:      defaultOCREngine,
			Deduplicate:    true,
			DedupThreshold: defaultDedupThreshold,
			MaxFrames:      defaultMaxFrames,
			SampleInterval: defaultSampleInterval,
		},
		Output: OutputConfig{
			Format:            defaultOutputFormat,
			IncludeTimestamps: true,
			TimestampInterval: defaultTimestampInterval,
			Directory:         defaultOutputDir,
		},
		Cleanup: CleanupConfig{
			DeleteTempFiles: true,
		},
		Tools: ToolsConfig{
			YtDlp:     "yt-dlp",
			FFmpeg:    "ffmpeg",
			FFprobe:   "ffprobe",
			Tesseract: "tesseract",
			Python:    "python3",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Summary: SummaryConfig{
			Provider: defaultSummaryProvider,
			Model:    defaultSummaryModel,
		},
		Watch: WatchConfig{
			Input:         defaultWatchInput,
			MaxConcurrent: 1,
		},
	}
}
