// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/pkg/nest"
)

func newTasksCommand(app *App) *cobra.Command {
	var (
		buildFile string
		plan      bool
	)

	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the remap tasks that must run before nesting",
		Long: `List the remapJar tasks of directly declared project includes.

With --plan, projects included transitively are listed too, ordered so that
every project's remapJar runs after the projects it includes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.loadBuild(cmd.Context(), buildFile)
			if err != nil {
				return app.fail(cmd, "load build file", buildFile, issue.BuildFileParseErrorId, err)
			}

			var tasks []nest.Task
			if plan {
				tasks, err = b.Plan()
				if err != nil {
					return app.fail(cmd, "order project tasks", b.Target, 0, err)
				}
			} else {
				include, err := b.IncludeConfig()
				if err != nil {
					return app.fail(cmd, "resolve include set", b.Target, issue.BuildFileParseErrorId, err)
				}
				tasks = nest.RequiredTasks(include)
			}

			for _, task := range tasks {
				fmt.Fprintln(app.stdout, task.String())
			}
			return nil
		},
	}

	tasksCmd.Flags().StringVarP(&buildFile, "build", "b", "", "build file (default from config)")
	tasksCmd.Flags().BoolVar(&plan, "plan", false, "include transitive project includes in dependency order")

	return tasksCmd
}
