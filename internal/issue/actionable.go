// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type (
	// ActionableError is a user-facing failure: what was attempted, on which resource,
	// what the user can do about it, and which catalog entry explains it in depth.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load build file").
	//		WithResource("./nestbuild.cue").
	//		WithIssue(issue.BuildFileParseErrorId).
	//		WithSuggestion("Pass --build to use another file").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "nest jars" or "load configuration".
		Operation string
		// Resource is the archive, build file or config file involved (optional).
		Resource string
		// Issue is the catalog entry with long-form guidance (zero when none applies).
		Issue Id
		// Suggestions are short hints printed under the message.
		Suggestions []string
		// Cause is the underlying error.
		Cause error
	}

	// ErrorContext builds an ActionableError incrementally. Layers that know the operation
	// create it early and the failure site fills in the cause.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause so nest and build sentinels stay matchable with errors.Is.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the message followed by one bullet per suggestion. Verbose output adds
// the numbered cause chain, which is where archive paths and CUE positions show up.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}

	return msg.String()
}

// HasSuggestions reports whether any suggestion is attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// AddSuggestions appends suggestions that are not already present.
func (e *ActionableError) AddSuggestions(suggestions ...string) {
	for _, s := range suggestions {
		if s != "" && !slices.Contains(e.Suggestions, s) {
			e.Suggestions = append(e.Suggestions, s)
		}
	}
}

// Guidance returns the catalog entry for e.Issue, or nil.
func (e *ActionableError) Guidance() *Issue {
	if e.Issue == 0 {
		return nil
	}
	return Get(e.Issue)
}

// WithOperation sets the operation; it is required by Build.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the resource involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithIssue links the catalog entry shown after the message.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

// WithSuggestion adds one suggestion.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.err.AddSuggestions(s)
	return c
}

// WithSuggestions adds several suggestions, skipping duplicates.
func (c *ErrorContext) WithSuggestions(s ...string) *ErrorContext {
	c.err.AddSuggestions(s...)
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set.
// The result does not share its suggestion slice with the context.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = slices.Clone(c.err.Suggestions)
	return &ae
}

// BuildError is Build typed as error, nil when Build would return nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
