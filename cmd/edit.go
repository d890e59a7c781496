package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/clip-trimmer/mpv"
	"github.com/user/clip-trimmer/tui"
)

func newEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive trimmer",
		Long: `Open the interactive trimmer for the current session.

When a preview is running (see 'clip-trimmer preview') the trimmer follows
it: range changes update the mpv A-B loop and 'm' marks the playback position.`,
		Args: cobra.NoArgs,
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

			opts := tui.Options{
				Editor:      ed,
				OutputDir:   ctx.config.Paths.OutputDir,
				LoadTimeout: ctx.loadTimeout(),
				Save: func() error {
					return ctx.saveSession(database, store)
				},
			}

			client := mpv.NewClient(ctx.config.Preview.MpvSocket)
			if err := client.Connect(); err == nil {
				defer client.Close()
				opts.Player = client
			} else {
				ctx.logger.Debug().Err(err).Msg("no preview player")
			}

			return tui.Run(cmd.Context(), opts)
		},
	}
}
