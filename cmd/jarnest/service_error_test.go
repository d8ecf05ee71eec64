// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/pkg/nest"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		if msg, ok := r.(string); !ok || msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()

	newServiceError(nil, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	ae := &issue.ActionableError{
		Operation: "nest jars",
		Issue:     issue.ArtifactNotFoundId,
		Cause:     &nest.ArtifactNotFoundError{Path: "lib.jar"},
	}
	svcErr := newServiceError(ae, "")

	if svcErr.Error() != ae.Error() {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), ae.Error())
	}
	if !errors.Is(svcErr, nest.ErrArtifactNotFound) {
		t.Error("errors.Is should reach the nest sentinel")
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	plain := &issue.ActionableError{Operation: "inspect archive"}
	withIssue := &issue.ActionableError{Operation: "nest jars", Issue: issue.ArchiveRewriteFailedId}

	tests := []struct {
		name     string
		svcErr   *ServiceError
		want     string
		contains string
	}{
		{name: "nil", svcErr: nil, want: ""},
		{name: "styled only", svcErr: newServiceError(plain, "styled output\n"), want: "styled output\n"},
		{name: "styled and guidance", svcErr: newServiceError(withIssue, "styled: "), contains: "clean rebuild"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			renderServiceError(&buf, tt.svcErr, "notty")

			if tt.contains == "" {
				if buf.String() != tt.want {
					t.Errorf("output = %q, want %q", buf.String(), tt.want)
				}
				return
			}
			if !strings.HasPrefix(buf.String(), "styled: ") || !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output = %q", buf.String())
			}
		})
	}
}
