// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/pkg/nest"
)

func newDescriptorCommand(app *App) *cobra.Command {
	var stage string

	descriptorCmd := &cobra.Command{
		Use:   "descriptor <group:name:version>",
		Short: "Print the descriptor generated for a coordinate",
		Long: `Print the fabric.mod.json jarnest generates for a dependency without one.

With --stage, the given jar is prepared the way nest prepares it: a jar that
already has a descriptor is left alone, any other jar is copied into the cache
directory and the copy receives the generated descriptor. The path to nest is
printed; the input jar is never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := nest.ParseCoordinate(args[0])
			if err != nil {
				return app.fail(cmd, "parse coordinate", args[0], 0, err)
			}

			if stage == "" {
				data, err := nest.Synthesize(coord).Marshal()
				if err != nil {
					return app.fail(cmd, "generate descriptor", coord.String(), 0, err)
				}
				fmt.Fprintln(app.stdout, string(data))
				return nil
			}

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load configuration", app.configPath, issue.ConfigLoadFailedId, err)
			}
			bundler, err := newBundler(app, cfg, 1)
			if err != nil {
				return app.fail(cmd, "prepare staging", "", 0, err)
			}

			candidate := nest.Candidate{
				Path:   stage,
				Origin: nest.ExternalDependency(nest.ExternalModule{Coordinate: coord, Artifacts: []string{stage}}),
			}
			if err := nest.ValidateCandidates([]nest.Candidate{candidate}); err != nil {
				return app.fail(cmd, "stage jar", stage, 0, err)
			}
			prepared, err := bundler.Synthesizer().Prepare(cmd.Context(), []nest.Candidate{candidate})
			if err != nil {
				return app.fail(cmd, "stage jar", stage, 0, err)
			}

			out := prepared[0]
			if out.Synthesized {
				fmt.Fprintf(app.stderr, "%s %s\n", SuccessStyle.Render("Generated descriptor in"), out.Path)
			} else {
				fmt.Fprintf(app.stderr, "%s %s\n", SubtitleStyle.Render("Already has a descriptor:"), out.Path)
			}
			fmt.Fprintln(app.stdout, out.Path)
			return nil
		},
	}

	descriptorCmd.Flags().StringVar(&stage, "stage", "", "jar to prepare with the generated descriptor")

	return descriptorCmd
}
