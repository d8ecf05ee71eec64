// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jarnest/jarnest/internal/build"
	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/internal/taskgraph"
	"github.com/jarnest/jarnest/pkg/nest"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"missing artifact", &nest.ArtifactNotFoundError{Path: "a.jar"}, issue.ArtifactNotFoundId},
		{"invalid artifact", &nest.InvalidArtifactError{Path: "a.zip", Reason: "not a jar"}, issue.InvalidArtifactId},
		{"staging", &nest.StagingError{Source: "a.jar", Cause: cause}, issue.StagingFailedId},
		{"descriptor parse", &nest.DescriptorParseError{Archive: "t.jar", Entry: nest.DescriptorEntry, Cause: cause}, issue.DescriptorParseFailedId},
		{"rewrite", &nest.ArchiveRewriteError{Target: "t.jar", Cause: cause}, issue.ArchiveRewriteFailedId},
		{"build file", fmt.Errorf("x.cue: %w", build.ErrBuildFileNotFound), issue.BuildFileNotFoundId},
		{"unknown project", &build.UnknownProjectError{Path: ":nope", Field: "target"}, issue.UnknownProjectId},
		{"cycle", &taskgraph.CycleError{Nodes: []string{":a", ":b"}}, issue.ProjectIncludeCycleId},
		{"permission", fmt.Errorf("open: %w", fs.ErrPermission), issue.PermissionDeniedId},
		{"not exist", fmt.Errorf("open: %w", fs.ErrNotExist), issue.FileNotFoundId},
		{"unknown", errors.New("something else"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := classifyError(tt.err)
			if got != tt.want {
				t.Errorf("classifyError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyError_RewriteSuggestsCleanRebuild(t *testing.T) {
	t.Parallel()

	_, suggestions := classifyError(&nest.ArchiveRewriteError{Target: "t.jar", Cause: errors.New("short write")})
	if len(suggestions) == 0 || suggestions[0] != "Run a clean rebuild; the target archive may be inconsistent" {
		t.Errorf("suggestions = %v", suggestions)
	}
}

func TestApp_FailLayersIssueOntoActionableError(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	app := NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &stderr})
	cmd := &cobra.Command{Use: "nest"}

	inner := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource("config.cue").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("workers: out of range")).
		Build()

	err := app.fail(cmd, "nest jars", "mod.jar", issue.ArchiveRewriteFailedId, inner)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("fail() = %v, want ExitError code 1", err)
	}
	if !cmd.SilenceErrors || !cmd.SilenceUsage {
		t.Error("fail() should silence cobra output")
	}
	if inner.Issue != issue.ConfigLoadFailedId {
		t.Errorf("Issue = %d, the inner issue should survive the fallback", inner.Issue)
	}
	if !strings.Contains(stderr.String(), "failed to load configuration: config.cue") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestApp_FailClassifiesPlainErrors(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	app := NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &stderr})

	err := app.fail(&cobra.Command{Use: "nest"}, "nest jars", "mod.jar", issue.ArchiveRewriteFailedId,
		&nest.ArtifactNotFoundError{Path: "lib.jar"})

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("fail() = %v, want ActionableError inside", err)
	}
	if ae.Issue != issue.ArtifactNotFoundId || ae.Operation != "nest jars" || ae.Resource != "mod.jar" {
		t.Errorf("ActionableError = %+v", ae)
	}
	if !ae.HasSuggestions() {
		t.Error("classified suggestions were not attached")
	}
}
