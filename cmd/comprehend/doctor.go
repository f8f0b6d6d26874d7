package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/preflight"
)

func newDoctorCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the external tools each tier needs",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.runDoctor(cmd.Context())
		},
	}
}

func (c *commandContext) runDoctor(ctx context.Context) error {
	_, engine := c.newAnalyzer(c.cfg, c.exec, c.log)
	results := preflight.RunAll(ctx, c.cfg, c.exec, engine)

	fmt.Fprintln(c.stdout, preflight.Table(results, c.stdoutTTY))
	fmt.Fprintln(c.stdout)

	ready := 0
	for tier := extract.TierCaptions; tier <= extract.MaxTier; tier++ {
		status := "ready"
		if err := preflight.Ready(results, tier); err != nil {
			status = err.Error()
		} else {
			ready++
		}
		fmt.Fprintf(c.stdout, "  %s (%s): %s\n", tier, tier.Name(), status)
	}
	fmt.Fprintf(c.stdout, "\n%d of 3 tiers ready.\n", ready)

	return preflight.Ready(results, extract.Tier(c.cfg.DefaultTier))
}
