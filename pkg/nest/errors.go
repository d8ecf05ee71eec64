// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactNotFound is the sentinel error wrapped by ArtifactNotFoundError.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrInvalidArtifact is the sentinel error wrapped by InvalidArtifactError.
	ErrInvalidArtifact = errors.New("invalid artifact")
	// ErrStagingFailed is the sentinel error wrapped by StagingError.
	ErrStagingFailed = errors.New("staging failed")
	// ErrArchiveRewrite is the sentinel error wrapped by ArchiveRewriteError.
	ErrArchiveRewrite = errors.New("archive rewrite failed")
	// ErrDescriptorParse is the sentinel error wrapped by DescriptorParseError.
	ErrDescriptorParse = errors.New("descriptor parse failed")
)

type (
	// ArtifactNotFoundError is returned when a candidate file does not exist on disk.
	ArtifactNotFoundError struct {
		Path string
	}

	// InvalidArtifactError is returned when a candidate is a directory, lacks the jar
	// extension, or cannot be read as an archive.
	InvalidArtifactError struct {
		Path   string
		Reason string
		// Cause is the underlying error, if any.
		Cause error
	}

	// StagingError is returned when a staged copy cannot be created or patched.
	StagingError struct {
		// Source is the original candidate file.
		Source string
		// Staged is the staging path that was being written.
		Staged string
		Cause  error
	}

	// ArchiveRewriteError is returned when the target archive cannot be rewritten.
	ArchiveRewriteError struct {
		Target string
		Cause  error
	}

	// DescriptorParseError is returned when a descriptor entry is not a valid document.
	DescriptorParseError struct {
		Archive string
		Entry   string
		Cause   error
	}
)

// Error implements the error interface for ArtifactNotFoundError.
func (e *ArtifactNotFoundError) Error() string {
	return "failed to include nested jars, as it could not be found @ " + e.Path
}

// Unwrap returns ErrArtifactNotFound for errors.Is() compatibility.
func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }

// Error implements the error interface for InvalidArtifactError.
func (e *InvalidArtifactError) Error() string {
	msg := fmt.Sprintf("failed to include nested jars, as file was not a jar: %s (%s)", e.Path, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidArtifact and the underlying cause.
func (e *InvalidArtifactError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidArtifact}
	}
	return []error{ErrInvalidArtifact, e.Cause}
}

// Error implements the error interface for StagingError.
func (e *StagingError) Error() string {
	return fmt.Sprintf("failed to stage %s as %s: %v", e.Source, e.Staged, e.Cause)
}

// Unwrap returns ErrStagingFailed and the underlying I/O cause.
func (e *StagingError) Unwrap() []error { return []error{ErrStagingFailed, e.Cause} }

// Error implements the error interface for ArchiveRewriteError.
func (e *ArchiveRewriteError) Error() string {
	return fmt.Sprintf("failed to nest jars into %s: %v", e.Target, e.Cause)
}

// Unwrap returns ErrArchiveRewrite and the underlying cause.
func (e *ArchiveRewriteError) Unwrap() []error { return []error{ErrArchiveRewrite, e.Cause} }

// Error implements the error interface for DescriptorParseError.
func (e *DescriptorParseError) Error() string {
	return fmt.Sprintf("failed to parse %s in %s: %v", e.Entry, e.Archive, e.Cause)
}

// Unwrap returns ErrDescriptorParse and the underlying cause.
func (e *DescriptorParseError) Unwrap() []error { return []error{ErrDescriptorParse, e.Cause} }
