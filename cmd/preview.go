package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/clip-trimmer/mpv"
	"github.com/user/clip-trimmer/pkg/timeutil"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Loop the selected range in mpv",
		Long: `Play the selected range in mpv on an A-B loop. While it runs,
'clip-trimmer mark start' and 'clip-trimmer mark end' read the playback position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, store, err := ctx.openSession()
			if err != nil {
				return err
			}
			st := store.Snapshot()
			database.Close()

			video, err := requireVideo(st)
			if err != nil {
				return err
			}

			socket := ctx.config.Preview.MpvSocket
			process, err := mpv.LaunchPreview(mpv.PreviewOptions{
				VideoPath:  video.Path,
				SocketPath: socket,
				Start:      st.StartTime,
				End:        st.EndTime,
				Mute:       !st.HasAudio,
			})
			if err != nil {
				return fmt.Errorf("failed to launch mpv: %w", err)
			}

			// Wait briefly for socket to be ready
			client := mpv.NewClient(socket)
			var connectErr error
			for i := 0; i < 50; i++ {
				time.Sleep(100 * time.Millisecond)
				if connectErr = client.Connect(); connectErr == nil {
					break
				}
			}
			if connectErr != nil {
				if process.Process != nil {
					_ = process.Process.Kill()
				}
				return fmt.Errorf("failed to connect to mpv: %w", connectErr)
			}
			client.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Previewing %s %s - %s (audio %s)\n",
				video.Name, timeutil.FormatTime(st.StartTime), timeutil.FormatTime(st.EndTime), onOff(st.HasAudio))
			return process.Wait()
		},
	}
}
