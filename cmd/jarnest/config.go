// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarnest/jarnest/internal/config"
	"github.com/jarnest/jarnest/internal/issue"
)

// newConfigCommand creates the `jarnest config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jarnest configuration",
		Long: `Manage jarnest configuration.

Configuration is read from the first of:
  - the file given with --config
  - $XDG_CONFIG_HOME/jarnest/config.cue (or the platform config directory)
  - ./config.cue

JARNEST_* environment variables override file values, e.g. JARNEST_WORKERS=8
or JARNEST_UI_COLOR_SCHEME=dark. A .env file in the working directory is loaded
first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load configuration", app.configPath, issue.ConfigLoadFailedId, err)
			}
			data, err := config.Encode(cfg, config.Format(format))
			if err != nil {
				return app.fail(cmd, "encode configuration", format, 0, err)
			}
			fmt.Fprint(app.stdout, string(data))
			return nil
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", string(config.FormatCUE), "output format (cue, json, toml)")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := app.Config.Locate(config.LoadOptions{ConfigFilePath: app.configPath})
			if err != nil {
				return app.fail(cmd, "load configuration", app.configPath, issue.ConfigLoadFailedId, err)
			}
			if source == "" {
				fmt.Fprintln(app.stdout, "(defaults)")
				return nil
			}
			fmt.Fprintln(app.stdout, source)
			return nil
		},
	})

	return cfgCmd
}
