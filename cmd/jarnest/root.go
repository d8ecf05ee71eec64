// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the jarnest command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jarnest",
		Short: "Nest dependency jars into a mod archive",
		Long: TitleStyle.Render("jarnest") + SubtitleStyle.Render(" - Nest dependency jars into a mod archive") + `

jarnest embeds the include set of a project into its archive under
META-INF/jars/ and records every nested jar in the archive's
fabric.mod.json. Dependencies without a descriptor get a generated one
in a staged copy; resolved artifacts are never modified.

The project layout is read from a CUE build file (nestbuild.cue).

` + SubtitleStyle.Render("Examples:") + `
  jarnest tasks                 List remap tasks that must run first
  jarnest nest                  Nest the include set into the target archive
  jarnest nest --dry-run        Show what would be nested
  jarnest inspect mod.jar       Show nested jars and descriptor records
  jarnest config show           Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/jarnest/config.cue)")

	rootCmd.AddCommand(newNestCommand(app))
	rootCmd.AddCommand(newTasksCommand(app))
	rootCmd.AddCommand(newInspectCommand(app))
	rootCmd.AddCommand(newDescriptorCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// errorHandler prints errors that were not already rendered by a command.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.rendered {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
