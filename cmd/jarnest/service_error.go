// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/jarnest/jarnest/internal/issue"
)

// ServiceError pairs an ActionableError with its pre-styled headline. The guidance
// printed below the headline comes from the error's catalog entry.
// Always create via newServiceError.
type ServiceError struct {
	// Err is the failure being reported (must not be nil).
	Err *issue.ActionableError
	// StyledMessage is the headline as the terminal should show it.
	StyledMessage string
}

// newServiceError panics on a nil err.
func newServiceError(err *issue.ActionableError, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, StyledMessage: styledMessage}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the ActionableError for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints the headline, then the catalog guidance rendered in style.
// A guidance render failure is logged and otherwise ignored.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	guidance := svcErr.Err.Guidance()
	if guidance == nil {
		return
	}
	rendered, err := guidance.Render(style)
	if err != nil {
		log.Warn("failed to render issue guidance", "issue", svcErr.Err.Issue, "error", err)
		return
	}
	fmt.Fprint(stderr, rendered)
}
