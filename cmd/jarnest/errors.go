// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/jarnest/jarnest/internal/build"
	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/internal/taskgraph"
	"github.com/jarnest/jarnest/pkg/nest"
)

// classifyError maps err to an issue catalog entry and short suggestions.
// Checks run from most to least specific; DescriptorParseError must win over the
// generic rewrite failure.
func classifyError(err error) (issue.Id, []string) {
	switch {
	case errors.Is(err, nest.ErrArtifactNotFound):
		return issue.ArtifactNotFoundId, []string{
			"Run the tasks listed by 'jarnest tasks' before nesting",
		}
	case errors.Is(err, nest.ErrInvalidArtifact):
		return issue.InvalidArtifactId, []string{
			"Only .jar files can be nested",
		}
	case errors.Is(err, nest.ErrStagingFailed):
		return issue.StagingFailedId, []string{
			"Check free space and permissions on the cache directory",
		}
	case errors.Is(err, nest.ErrDescriptorParse):
		return issue.DescriptorParseFailedId, []string{
			"Fix fabric.mod.json in the target archive and rebuild it",
			"Run a clean rebuild; the target archive may be inconsistent",
		}
	case errors.Is(err, nest.ErrArchiveRewrite):
		return issue.ArchiveRewriteFailedId, []string{
			"Run a clean rebuild; the target archive may be inconsistent",
		}
	case errors.Is(err, build.ErrBuildFileNotFound):
		return issue.BuildFileNotFoundId, []string{
			"Create " + build.DefaultFileName + " or pass --build",
		}
	case errors.Is(err, build.ErrUnknownProject):
		return issue.UnknownProjectId, []string{
			"Check project paths in the build file for typos",
		}
	case errors.Is(err, taskgraph.ErrCycle):
		return issue.ProjectIncludeCycleId, []string{
			"Remove the circular project include",
		}
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId, nil
	case errors.Is(err, fs.ErrNotExist):
		return issue.FileNotFoundId, nil
	default:
		return 0, nil
	}
}

// fail renders err with its issue guidance and returns an ExitError for RunE.
// An ActionableError produced further down keeps its operation and resource; the
// classified issue and suggestions are layered on top. fallback applies when nothing
// else names an issue.
func (a *App) fail(cmd *cobra.Command, operation, resource string, fallback issue.Id, err error) error {
	id, suggestions := classifyError(err)

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		ae.AddSuggestions(suggestions...)
	} else {
		ae = issue.NewErrorContext().
			WithOperation(operation).
			WithResource(resource).
			WithSuggestions(suggestions...).
			Wrap(err).
			Build()
	}
	switch {
	case id != 0:
		ae.Issue = id
	case ae.Issue == 0:
		ae.Issue = fallback
	}

	styled := ErrorStyle.Render("Error: ") + ae.Format(a.verbose) + "\n"
	renderServiceError(a.stderr, newServiceError(ae, styled), a.colorScheme())

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: ae, rendered: true}
}
