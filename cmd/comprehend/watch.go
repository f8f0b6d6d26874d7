package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/video-comprehend/internal/comprehend"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/render"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
	"github.com/nguyentantai21042004/video-comprehend/internal/watcher"
)

func newWatchCommand(cc *commandContext) *cobra.Command {
	var (
		dir         string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze every request file dropped into a folder",
		Long: `Watch a folder for *.url and *.txt files. Each file holds one video URL;
the result is saved like analyze saves it and the request file moves to
done/ or failed/ (with a .error file explaining why).`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.runWatch(cmd.Context(), dir, concurrency)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Request folder (default: watch.input from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Requests analyzed at once (default: watch.max_concurrent)")
	return cmd
}

func (c *commandContext) runWatch(ctx context.Context, dir string, concurrency int) error {
	cfg := c.cfg
	if dir == "" {
		dir = cfg.Watch.Input
	}
	if concurrency <= 0 {
		concurrency = cfg.Watch.MaxConcurrent
	}
	ropts, err := renderOptions(cfg, "", false, 0, false)
	if err != nil {
		return err
	}

	analyzer, _ := c.newAnalyzer(cfg, c.exec, c.log)
	handle := func(ctx context.Context, req watcher.Request) error {
		ref, err := video.Parse(req.URL)
		if err != nil {
			return extract.NewHard(extract.KindInvalidReference, req.URL, err)
		}
		result, err := analyzer.Analyze(ctx, ref, comprehend.Request{Sink: logSink{ctx: ctx, log: c.log}})
		if err != nil {
			return fmt.Errorf("%s: %w", errorTitle(err), err)
		}
		text, err := render.Render(result, ropts)
		if err != nil {
			return err
		}
		path := savePath(cfg.Output.Directory, result.Metadata.TierUsed, c.outputName(ctx, cfg, ref), ropts.Format)
		if err := writeOutput(path, text); err != nil {
			return err
		}
		c.log.Info(ctx, "Saved %s (tier %d) to %s", ref.ID, result.Metadata.TierUsed, path)
		return nil
	}

	w, err := watcher.New(watcher.Options{Dir: dir, MaxConcurrent: concurrency}, handle, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Stop(); err != nil {
			c.log.Warn(ctx, "Stopping watcher: %v", err)
		}
	}()

	fmt.Fprintf(c.stderr, "Watching %s for request files. Press Ctrl+C to stop.\n", dir)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(c.stderr, "Watcher stopped")
	return nil
}
