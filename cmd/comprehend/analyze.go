package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/video-comprehend/internal/comprehend"
	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/render"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
)

type analyzeOptions struct {
	tier         int
	tierSet      bool
	noEscalate   bool
	model        string
	device       string
	prompt       string
	language     string
	output       string
	noSave       bool
	format       string
	noTimestamps bool
	interval     int
	interleave   bool
	quiet        bool
	jsonProgress bool
}

func newAnalyzeCommand(cc *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze URL",
		Short: "Extract a transcript from a video, escalating tiers as needed",
		Long: `Analyze a video starting at the requested tier:

  1  platform captions (fast, free)
  2  WhisperX transcription of the audio
  3  transcription plus OCR of on-screen text

When a tier is unavailable the next one is tried unless --no-escalate is set.`,
		Example: "  comprehend analyze https://youtu.be/dQw4w9WgXcQ --tier 2 --format json",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.tierSet = cmd.Flags().Changed("tier")
			return cc.runAnalyze(cmd.Context(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.tier, "tier", "t", 0, "Starting tier 1-3 (default: default_tier from config)")
	flags.BoolVar(&opts.noEscalate, "no-escalate", false, "Fail instead of trying the next tier")
	flags.StringVar(&opts.model, "model", "", "WhisperX model (tiny, base, small, medium, large-v3)")
	flags.StringVar(&opts.device, "device", "", "WhisperX device (auto, cpu, cuda)")
	flags.StringVar(&opts.prompt, "prompt", "", "Initial prompt to bias transcription vocabulary")
	flags.StringVar(&opts.language, "language", "", "Spoken language as a BCP 47 tag (default: detect)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of the output directory")
	flags.BoolVar(&opts.noSave, "no-save", false, "Do not save the result under the output directory")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: markdown, plain or json")
	flags.BoolVar(&opts.noTimestamps, "no-timestamps", false, "Render the transcript without time blocks")
	flags.IntVar(&opts.interval, "interval", 0, "Seconds per timestamp block")
	flags.BoolVar(&opts.interleave, "interleave", false, "Add a merged audio/visual timeline to markdown output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Print nothing but errors")
	flags.BoolVar(&opts.jsonProgress, "json-progress", false, "Print progress as JSON lines on stdout")

	return cmd
}

func (c *commandContext) runAnalyze(ctx context.Context, input string, opts analyzeOptions) error {
	var (
		sink    comprehend.Sink
		console *consoleSink
	)
	switch {
	case opts.jsonProgress:
		sink = newJSONSink(c.stdout)
	case !opts.quiet:
		console = newConsoleSink(c.stderr, c.stderrTTY)
		sink = console
	}
	fail := func(err error) error {
		if opts.jsonProgress {
			sink.Notify(progressEvent(comprehend.StageError, comprehend.UnknownProgress, "", "%s: %v", errorTitle(err), err))
			return reportedError{err}
		}
		return err
	}

	ref, err := video.Parse(input)
	if err != nil {
		return fail(extract.NewHard(extract.KindInvalidReference, input, err))
	}
	if opts.tierSet && opts.tier == 0 {
		return fail(extract.NewHard(extract.KindInvalidTier, "tier 0 must be 1, 2, or 3", nil))
	}

	cfg, err := c.analyzeConfig(opts)
	if err != nil {
		return fail(err)
	}
	ropts, err := renderOptions(cfg, opts.format, opts.noTimestamps, opts.interval, opts.interleave)
	if err != nil {
		return fail(err)
	}

	req := comprehend.Request{Tier: extract.Tier(opts.tier), Sink: sink}
	if opts.noEscalate {
		escalate := false
		req.AutoEscalate = &escalate
	}

	analyzer, _ := c.newAnalyzer(cfg, c.exec, c.log)
	if sink != nil {
		sink.Notify(progressEvent(comprehend.StageStart, 0, "", "Analyzing %s", ref.URL))
	}
	result, err := analyzer.Analyze(ctx, ref, req)
	if console != nil {
		console.Close()
	}
	if err != nil {
		return fail(err)
	}

	text, err := render.Render(result, ropts)
	if err != nil {
		return fail(err)
	}

	path := opts.output
	if path == "" && !opts.noSave {
		path = savePath(cfg.Output.Directory, result.Metadata.TierUsed, c.outputName(ctx, cfg, ref), ropts.Format)
	}
	if path != "" {
		if err := writeOutput(path, text); err != nil {
			return fail(err)
		}
		switch {
		case opts.jsonProgress:
			sink.Notify(progressEvent(comprehend.StageComplete, 100, path, "Saved successfully"))
		case !opts.quiet:
			console.dim.Fprintf(c.stderr, "Saved to: %s\n", path)
		}
	} else if opts.jsonProgress {
		sink.Notify(progressEvent(comprehend.StageComplete, 100, "", "Analysis complete"))
	}

	if !opts.quiet && opts.output == "" && !opts.jsonProgress {
		fmt.Fprintln(c.stdout, text)
	}
	return nil
}

// analyzeConfig applies the per-call transcription flags to a copy of the
// loaded configuration.
func (c *commandContext) analyzeConfig(opts analyzeOptions) (*config.Config, error) {
	cfg := *c.cfg
	cfg.Captions.Languages = slices.Clone(c.cfg.Captions.Languages)

	if opts.model != "" {
		cfg.Whisper.Model = opts.model
	}
	if opts.device != "" {
		cfg.Whisper.Device = opts.device
	}
	if opts.prompt != "" {
		cfg.Whisper.InitialPrompt = opts.prompt
	}
	if opts.language != "" {
		cfg.Whisper.Language = opts.language
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
