// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var _ error = (*ActionableError)(nil)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "nest jars"},
			want: "failed to nest jars",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "nest jars", Resource: "build/libs/mod.jar"},
			want: "failed to nest jars: build/libs/mod.jar",
		},
		{
			name: "with cause",
			err:  &ActionableError{Operation: "load configuration", Cause: errors.New("workers: out of range")},
			want: "failed to load configuration: workers: out of range",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load build file",
				Resource:  "./nestbuild.cue",
				Issue:     BuildFileParseErrorId,
				Cause:     errors.New("unexpected token"),
			},
			want: "failed to load build file: ./nestbuild.cue: unexpected token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_UnwrapKeepsSentinels(t *testing.T) {
	sentinel := errors.New("artifact not found")
	ae := &ActionableError{Operation: "nest jars", Cause: fmt.Errorf("lib.jar: %w", sentinel)}

	if !errors.Is(ae, sentinel) {
		t.Error("errors.Is should reach the sentinel through Cause")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() without cause should be nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	root := errors.New("zip: not a valid zip file")
	ae := &ActionableError{
		Operation:   "nest jars",
		Resource:    "mod.jar",
		Suggestions: []string{"Run a clean rebuild", "Check the archive"},
		Cause:       fmt.Errorf("read target: %w", root),
	}

	t.Run("concise", func(t *testing.T) {
		got := ae.Format(false)
		want := "failed to nest jars: mod.jar: read target: zip: not a valid zip file\n" +
			"\n  • Run a clean rebuild" +
			"\n  • Check the archive"
		if got != want {
			t.Errorf("Format(false) =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("verbose", func(t *testing.T) {
		got := ae.Format(true)
		for _, want := range []string{
			"Error chain:",
			"1. read target: zip: not a valid zip file",
			"2. zip: not a valid zip file",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("Format(true) missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("no suggestions", func(t *testing.T) {
		plain := &ActionableError{Operation: "inspect archive"}
		if got := plain.Format(true); got != "failed to inspect archive" {
			t.Errorf("Format(true) = %q", got)
		}
	})
}

func TestActionableError_AddSuggestions(t *testing.T) {
	ae := &ActionableError{Operation: "nest jars", Suggestions: []string{"a"}}
	ae.AddSuggestions("a", "", "b", "b")

	if got := strings.Join(ae.Suggestions, ","); got != "a,b" {
		t.Errorf("Suggestions = %q, want a,b", got)
	}
	if !ae.HasSuggestions() {
		t.Error("HasSuggestions() = false")
	}
	if (&ActionableError{}).HasSuggestions() {
		t.Error("empty error reports suggestions")
	}
}

func TestActionableError_Guidance(t *testing.T) {
	if (&ActionableError{Operation: "x"}).Guidance() != nil {
		t.Error("Guidance() without Issue should be nil")
	}
	got := (&ActionableError{Operation: "x", Issue: StagingFailedId}).Guidance()
	if got == nil || got.Id() != StagingFailedId {
		t.Errorf("Guidance() = %v, want staging issue", got)
	}
	if (&ActionableError{Operation: "x", Issue: Id(9999)}).Guidance() != nil {
		t.Error("Guidance() for unregistered Id should be nil")
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("permission denied")
	ae := NewErrorContext().
		WithOperation("stage dependency").
		WithResource("util-2.3.jar").
		WithIssue(StagingFailedId).
		WithSuggestion("Check the cache directory").
		WithSuggestions("Set JARNEST_CACHE_DIR", "Check the cache directory").
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "stage dependency" || ae.Resource != "util-2.3.jar" || ae.Issue != StagingFailedId {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want duplicates dropped", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("Build() lost the cause")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	ctx := NewErrorContext().WithResource("mod.jar").Wrap(errors.New("x"))
	if ctx.Build() != nil {
		t.Error("Build() without operation should be nil")
	}
	if ctx.BuildError() != nil {
		t.Error("BuildError() without operation should be an untyped nil")
	}
	if err := ctx.WithOperation("nest jars").BuildError(); err == nil {
		t.Error("BuildError() with operation should not be nil")
	}
}

func TestErrorContext_BuildDoesNotAlias(t *testing.T) {
	ctx := NewErrorContext().WithOperation("nest jars").WithSuggestion("first")

	first := ctx.Build()
	ctx.WithSuggestion("second")
	second := ctx.Build()

	if len(first.Suggestions) != 1 {
		t.Errorf("first build changed after reuse: %v", first.Suggestions)
	}
	if len(second.Suggestions) != 2 {
		t.Errorf("second build = %v", second.Suggestions)
	}
	first.Suggestions[0] = "mutated"
	if second.Suggestions[0] != "first" {
		t.Error("builds share a suggestion slice")
	}
}
