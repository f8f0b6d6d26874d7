package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/summarizer"
)

type summarizeOptions struct {
	docx  string
	model string
	write bool
	dest  string
}

func newSummarizeCommand(cc *commandContext) *cobra.Command {
	var opts summarizeOptions

	cmd := &cobra.Command{
		Use:   "summarize PATH",
		Short: "Summarize a saved transcript, or every transcript in a folder, with Gemini",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.runSummarize(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.docx, "docx", "", "Also write the summary as a Word document to this path")
	cmd.Flags().StringVar(&opts.model, "model", "", "Gemini model (default: summary.model from config)")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write <name>.summary.md beside the transcript instead of printing")
	cmd.Flags().StringVar(&opts.dest, "dest", "", "Summary folder when PATH is a folder (default: PATH/summaries)")
	return cmd
}

func (c *commandContext) runSummarize(ctx context.Context, path string, opts summarizeOptions) error {
	cfg := c.cfg
	if len(cfg.Summary.APIKeys) == 0 {
		return fmt.Errorf("%w: summary.api_keys is empty (set GEMINI_API_KEY)", config.ErrInvalid)
	}
	model := opts.model
	if model == "" {
		model = cfg.Summary.Model
	}
	s, err := c.newSummarizer(summarizer.Options{APIKeys: cfg.Summary.APIKeys, Model: model}, c.log)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return usageError(err)
	}

	if info.IsDir() {
		dest := opts.dest
		if dest == "" {
			dest = filepath.Join(path, "summaries")
		}
		report, err := s.SummarizeAll(ctx, path, dest, opts.docx != "")
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stderr, "Summaries in %s: %d written, %d failed, %d skipped\n",
			dest, report.Succeeded, report.Failed, report.Skipped)
		if report.Failed > 0 {
			return fmt.Errorf("%d transcripts could not be summarized", report.Failed)
		}
		return nil
	}

	summary, err := s.Summarize(ctx, path)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if opts.docx != "" {
		if err := summarizer.WriteDocx(name, summary, opts.docx); err != nil {
			return fmt.Errorf("write docx: %w", err)
		}
		fmt.Fprintf(c.stderr, "Saved to: %s\n", opts.docx)
	}
	if opts.write {
		out := filepath.Join(filepath.Dir(path), name+".summary.md")
		if err := os.WriteFile(out, []byte("# "+name+"\n\n"+summary+"\n"), 0644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintf(c.stderr, "Saved to: %s\n", out)
		return nil
	}

	fmt.Fprintln(c.stdout, summary)
	return nil
}
