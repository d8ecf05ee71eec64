// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jarnest/jarnest/internal/build"
	"github.com/jarnest/jarnest/internal/config"
	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/pkg/nest"
)

// errNoTargetArchive is returned when no target is given and the target project
// has no archive-producing task.
var errNoTargetArchive = errors.New("target project has no remapJar or jar output")

type nestOptions struct {
	buildFile string
	workers   int
	dryRun    bool
}

func newNestCommand(app *App) *cobra.Command {
	var opts nestOptions

	nestCmd := &cobra.Command{
		Use:   "nest [target.jar]",
		Short: "Nest the include set into the target archive",
		Long: `Nest the target project's include set into its archive.

Every candidate jar is validated before anything is written. Dependencies
without fabric.mod.json are copied into the cache directory and given a
generated descriptor; the copy is nested, the resolved artifact is not touched.

The target archive defaults to the target project's remapJar output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNest(cmd, app, opts, args)
		},
	}

	nestCmd.Flags().StringVarP(&opts.buildFile, "build", "b", "", "build file (default from config, "+build.DefaultFileName+")")
	nestCmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent descriptor synthesis (default from config)")
	nestCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the nesting plan without writing anything")

	return nestCmd
}

func runNest(cmd *cobra.Command, app *App, opts nestOptions, args []string) error {
	ctx := cmd.Context()

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(cmd, "load configuration", app.configPath, issue.ConfigLoadFailedId, err)
	}

	b, err := app.loadBuild(ctx, opts.buildFile)
	if err != nil {
		return app.fail(cmd, "load build file", buildFileName(cfg, opts.buildFile), issue.BuildFileParseErrorId, err)
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	} else if archive, ok := b.TargetArchive(); ok {
		target = archive
	} else {
		return app.fail(cmd, "locate target archive", b.Target, issue.BuildFileParseErrorId, errNoTargetArchive)
	}

	include, err := b.IncludeConfig()
	if err != nil {
		return app.fail(cmd, "resolve include set", b.Target, issue.BuildFileParseErrorId, err)
	}

	bundler, err := newBundler(app, cfg, opts.workers)
	if err != nil {
		return app.fail(cmd, "prepare nesting", "", 0, err)
	}

	if opts.dryRun {
		plan, err := bundler.Plan(include)
		if err != nil {
			return app.fail(cmd, "plan nesting", target, 0, err)
		}
		printPlan(app.stdout, target, plan)
		return nil
	}

	result, err := bundler.Bundle(ctx, target, include)
	if err != nil {
		return app.fail(cmd, "nest jars", target, issue.ArchiveRewriteFailedId, err)
	}
	printResult(app.stdout, result)
	return nil
}

// newBundler builds a Bundler from configuration. workers overrides the configured
// value when positive.
func newBundler(app *App, cfg *config.Config, workers int) (*nest.Bundler, error) {
	cacheDir, err := config.ResolvedCacheDir(cfg)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = cfg.Workers
	}
	return nest.NewBundler(nest.BundlerOptions{
		CacheDir: cacheDir,
		Workers:  workers,
		Logger:   app.logger(),
	})
}

func buildFileName(cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.BuildFile
}

func printPlan(w io.Writer, target string, plan nest.Plan) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Target:"), target)

	fmt.Fprintln(w, SubtitleStyle.Render("Required tasks:"))
	if len(plan.Required) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, task := range plan.Required {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(task.String()))
	}

	fmt.Fprintln(w, SubtitleStyle.Render("Candidates:"))
	if len(plan.Candidates) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range plan.Candidates {
		fmt.Fprintf(w, "  %s <- %s (%s %s)\n", CmdStyle.Render(c.EntryName()), c.Path, c.Origin.Kind, c.Origin.Coordinate())
	}
}

func printResult(w io.Writer, result nest.Result) {
	switch result.Status {
	case nest.StatusUnchanged:
		fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("Nothing to nest, unchanged:"), result.Target)
		return
	case nest.StatusNestedWithoutDescriptor:
		fmt.Fprintf(w, "%s %s has no %s; jars were not recorded\n",
			WarningStyle.Render("Warning:"), result.Target, nest.DescriptorEntry)
	default:
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("Nested into"), result.Target)
	}
	for _, entry := range result.Entries {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(entry))
	}
}
