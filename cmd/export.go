package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/user/clip-trimmer/clip"
	"github.com/user/clip-trimmer/editor"
	"github.com/user/clip-trimmer/logging"
	"github.com/user/clip-trimmer/pkg/timeutil"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Extract the selected range into a new file",
		Long: `Extract the selected range with stream copy and write it as MP4.
Without --output the file is named after the source and range and written to
the configured output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, store, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer database.Close()

			st := store.Snapshot()
			video, err := requireVideo(st)
			if err != nil {
				return err
			}

			dest := output
			if dest == "" {
				dest = clip.OutputPath(video.Path, ctx.config.Paths.OutputDir, clip.TrimSpec{
					StartTime:    st.StartTime,
					EndTime:      st.EndTime,
					IncludeAudio: st.HasAudio,
				})
			}
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("failed to check output path: %w", err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			ed, manager, err := ctx.newEditor(store)
			if err != nil {
				return err
			}
			defer manager.Close()

			if err := initializeEngine(cmd, ed, ctx.loadTimeout()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Extracting %s - %s from %s...\n",
				timeutil.FormatTime(st.StartTime), timeutil.FormatTime(st.EndTime), video.Name)
			started := time.Now()
			var blob clip.Blob
			clipErr := withProgressBar(cmd, "Extracting clip", ed.ClipProgress, func() error {
				var err error
				blob, err = ed.ExtractCurrent(cmd.Context())
				return err
			})
			if err := ctx.saveSession(database, store); err != nil {
				ctx.logger.Warn().Err(err).Msg("failed to save session")
			}
			if clipErr != nil {
				return clipErr
			}
			if err := blob.Save(dest); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Clip written: %s (%s, %.1fs, took %s)\n",
				dest, humanize.Bytes(uint64(blob.Size())), st.ClipLength(), time.Since(started).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file")
	return cmd
}

// initializeEngine loads the engine, drawing a progress bar when stderr is a terminal.
func initializeEngine(cmd *cobra.Command, ed *editor.Editor, timeout time.Duration) error {
	if ed.IsEngineReady() {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return withProgressBar(cmd, "Loading video engine", ed.EngineProgress, func() error {
		return ed.InitializeEngine(ctx)
	})
}

// withProgressBar runs work, polling progress into a bar on stderr when it is
// a terminal.
func withProgressBar(cmd *cobra.Command, description string, progress func() float64, work func() error) error {
	errOut := cmd.ErrOrStderr()
	if !logging.IsTerminal(errOut) {
		return work()
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
	done := make(chan error, 1)
	go func() { done <- work() }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			if err == nil {
				_ = bar.Set(100)
				_ = bar.Finish()
			} else {
				_ = bar.Clear()
			}
			return err
		case <-ticker.C:
			_ = bar.Set(int(progress() * 100))
		}
	}
}
