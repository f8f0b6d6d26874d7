package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(cc *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "comprehend",
		Short:         "Turn online videos into text an LLM can read",
		Long:          "comprehend extracts a transcript from captions, falls back to WhisperX transcription, and can add on-screen text read with OCR.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := cc.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cc.configFlag, "config", "c", "", "Configuration file path (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&cc.logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(newAnalyzeCommand(cc))
	rootCmd.AddCommand(newWatchCommand(cc))
	rootCmd.AddCommand(newSummarizeCommand(cc))
	rootCmd.AddCommand(newInfoCommand(cc))
	rootCmd.AddCommand(newDoctorCommand(cc))

	return rootCmd
}

// exactArgs wraps cobra.ExactArgs so a wrong argument count exits as invalid input.
func exactArgs(n int) cobra.PositionalArgs {
	check := cobra.ExactArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
