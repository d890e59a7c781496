package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/clip-trimmer/deps"
	"github.com/user/clip-trimmer/engine"
	"github.com/user/clip-trimmer/session"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system dependencies",
		Long: `Check that ffmpeg, ffprobe, and mpv are installed, show where the engine
resources come from, and optionally try loading the engine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := ctx.config

			rows := [][]string{}
			missingRequired := false
			for _, st := range deps.Lookup() {
				status, where := "OK", st.Path
				if st.Err != nil {
					status, where = "NOT FOUND", "install from "+st.InstallURL
					if st.Required {
						missingRequired = true
					}
				}
				rows = append(rows, []string{st.Name, status, yesNo(st.Required), where})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "Status", "Required", "Location"}, rows, nil))

			res, err := engine.ResolveResources(cfg.Engine.BaseURL, engine.ResourceNames{
				Core: cfg.Engine.Core, Binary: cfg.Engine.Binary, Worker: cfg.Engine.Worker,
			})
			if err != nil {
				return err
			}
			manifest := res.Worker
			if manifest == "" {
				manifest = "(not verified)"
			}
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Config", ctx.configPath},
				{"Engine core", res.Core},
				{"Engine probe", res.Binary},
				{"Engine manifest", manifest},
				{"Cache", cfg.Engine.CacheDir},
				{"Database", cfg.Paths.DatabasePath},
			}))

			if load {
				ed, manager, err := ctx.newEditor(session.New())
				if err != nil {
					return err
				}
				defer manager.Close()
				if err := initializeEngine(cmd, ed, ctx.loadTimeout()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Engine loaded successfully.")
			}

			switch {
			case missingRequired && cfg.Engine.BaseURL == "system":
				return errors.New("required dependencies are missing")
			case missingRequired:
				fmt.Fprintln(out, "Engine resources are fetched from base_url; local ffmpeg is not needed.")
			default:
				fmt.Fprintln(out, "All required dependencies are available.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&load, "load", false, "Also load the engine to verify its resources")
	return cmd
}
