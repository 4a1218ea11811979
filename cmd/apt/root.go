package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/apt/pkg/apt/config"
)

type rootFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:   "apt",
		Short: "Build distributional vectors over dependency paths",
		Long: `apt turns dependency-path co-occurrence counts into PPMI weighted vectors
and composes vectors for phrases from the vectors of their words.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&rf.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&rf.logFormat, "log-format", "text", "log format (text or json)")

	root.AddCommand(newRunCmd(rf), newStagesCmd())
	return root
}

func newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the pipeline stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, s := range config.Stages() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}
