package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/clip-trimmer/db"
	"github.com/user/clip-trimmer/mpv"
	"github.com/user/clip-trimmer/pkg/timeutil"
	"github.com/user/clip-trimmer/session"
)

func newOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <video-file>",
		Short: "Select the video to trim",
		Long:  `Select a video file, read its duration, and select its full length as the range.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, store, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer database.Close()

			ed, manager, err := ctx.newEditor(store)
			if err != nil {
				return err
			}
			defer manager.Close()

			if ctx.prober == nil {
				if err := initializeEngine(cmd, ed, ctx.loadTimeout()); err != nil {
					return err
				}
			}

			st, err := ed.OpenSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := db.RecordVideo(database, st.Video.Path, st.Video.Size, st.Duration, st.HasAudio); err != nil {
				ctx.logger.Warn().Err(err).Msg("failed to record video")
			}
			if err := ctx.saveSession(database, store); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Opened %s (%s, duration %s)\n", st.Video.Name, humanize.Bytes(uint64(st.Video.Size)), timeutil.FormatTime(st.Duration))
			if !st.HasAudio {
				fmt.Fprintln(out, "No audio stream found; audio is off.")
			}
			return nil
		},
	}
}

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer database.Close()

			videos, err := db.SelectRecentVideos(database, limit)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos opened yet.")
				return nil
			}
			rows := make([][]string, 0, len(videos))
			for _, v := range videos {
				rows = append(rows, []string{
					v.Filename,
					timeutil.FormatTime(v.Duration),
					humanize.Bytes(uint64(v.Filesize)),
					yesNo(v.HasAudio),
					humanize.Time(v.OpenedAt),
					v.Path,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Video", "Duration", "Size", "Audio", "Opened", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of videos to list")
	return cmd
}

func newRangeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "range <start> <end>",
		Short: "Set the clip range",
		Long:  `Set the clip range. Times can be H:MM:SS, MM:SS, or seconds, with optional fractions.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := timeutil.ParseTimeToSeconds(args[0])
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			end, err := timeutil.ParseTimeToSeconds(args[1])
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}
			return applyRange(cmd, ctx, func(session.State) (float64, float64) { return start, end })
		},
	}
}

func newMarkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "mark <start|end>",
		Short:     "Set the range start or end from the mpv playback position",
		Long:      `Read the current position from a running preview (see 'clip-trimmer preview') and use it as the range start or end.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"start", "end"},
		RunE: func(cmd *cobra.Command, args []string) error {
			which := strings.ToLower(args[0])
			if which != "start" && which != "end" {
				return fmt.Errorf("expected 'start' or 'end', got %q", args[0])
			}

			client := mpv.NewClient(ctx.config.Preview.MpvSocket)
			if err := client.Connect(); err != nil {
				return fmt.Errorf("failed to connect to mpv: %w\n(Is a preview running?)", err)
			}
			defer client.Close()

			pos, err := client.GetTimePos()
			if err != nil {
				return fmt.Errorf("failed to get current timestamp: %w", err)
			}
			return applyRange(cmd, ctx, func(st session.State) (float64, float64) {
				if which == "start" {
					return pos, st.EndTime
				}
				return st.StartTime, pos
			})
		},
	}
}

// applyRange sets the range computed from the current session and persists
// the outcome, including a rejection.
func applyRange(cmd *cobra.Command, ctx *commandContext, next func(session.State) (float64, float64)) error {
	database, store, err := ctx.openSession()
	if err != nil {
		return err
	}
	defer database.Close()

	st := store.Snapshot()
	if st.Video == nil {
		return errNoVideo
	}
	start, end := next(st)
	accepted := store.SetTimeRange(start, end)
	if err := ctx.saveSession(database, store); err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("%s: %s - %s is outside 0:00:00 - %s or empty",
			session.InvalidRangeMessage,
			timeutil.FormatTimePrecise(start), timeutil.FormatTimePrecise(end),
			timeutil.FormatTimePrecise(st.Duration))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Range set: %s - %s (%.1fs)\n",
		timeutil.FormatTimePrecise(start), timeutil.FormatTimePrecise(end), end-start)
	return nil
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "audio [on|off|toggle]",
		Short:     "Choose whether exported clips keep their audio",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := "toggle"
			if len(args) == 1 {
				mode = strings.ToLower(args[0])
			}

			database, store, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer database.Close()

			switch mode {
			case "toggle":
				store.ToggleAudio()
			case "on", "off":
				store.SetAudio(mode == "on")
			default:
				on, perr := strconv.ParseBool(mode)
				if perr != nil {
					return fmt.Errorf("expected on, off, or toggle, got %q", args[0])
				}
				store.SetAudio(on)
			}
			if err := ctx.saveSession(database, store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Audio: %s\n", onOff(store.Snapshot().HasAudio))
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, store, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(statusPairs(store.Snapshot())))
			return nil
		},
	}
}

func statusPairs(st session.State) [][2]string {
	video, size := "(none)", "-"
	if st.Video != nil {
		video = st.Video.Path
		size = humanize.Bytes(uint64(st.Video.Size))
	}
	errText := "-"
	if st.Error != "" {
		errText = st.Error
	}
	return [][2]string{
		{"Video", video},
		{"Size", size},
		{"Duration", timeutil.FormatTimePrecise(st.Duration)},
		{"Start", timeutil.FormatTimePrecise(st.StartTime)},
		{"End", timeutil.FormatTimePrecise(st.EndTime)},
		{"Clip length", fmt.Sprintf("%.3fs", st.ClipLength())},
		{"Audio", onOff(st.HasAudio)},
		{"Error", errText},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, store, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer database.Close()

			store.Reset()
			if err := db.ClearSession(database); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
			return nil
		},
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// requireVideo returns the session video or errNoVideo.
func requireVideo(st session.State) (*session.Video, error) {
	if st.Video == nil {
		return nil, errNoVideo
	}
	return st.Video, nil
}
