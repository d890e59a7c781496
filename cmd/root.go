package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "0.1.0"

func newRootCommand() *cobra.Command {
	return buildRootCommand(&commandContext{})
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clip-trimmer",
		Short: "Trim video clips without re-encoding",
		Long: `clip-trimmer cuts a time range out of a video using stream copy,
so exports are fast and keep the source quality.

Typical session:
  clip-trimmer open match.mp4
  clip-trimmer range 1:02:10 1:02:45
  clip-trimmer audio off
  clip-trimmer export

The selected video, range and audio flag are remembered between invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.configFlag, "config", "", "Path to config file (default ~/.config/clip-trimmer/config.toml)")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCommand(),
		newOpenCommand(ctx),
		newRecentCommand(ctx),
		newRangeCommand(ctx),
		newAudioCommand(ctx),
		newMarkCommand(ctx),
		newStatusCommand(ctx),
		newResetCommand(ctx),
		newExportCommand(ctx),
		newPreviewCommand(ctx),
		newEditCommand(ctx),
		newDoctorCommand(ctx),
		newConfigCommand(ctx),
	)
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clip-trimmer version %s\n", Version)
		},
	}
}

// Execute runs the CLI until completion or interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
