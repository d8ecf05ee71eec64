// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"archive/zip"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jarnest/jarnest/pkg/jarfile"
)

const (
	// StatusUnchanged means there was nothing to nest and the target was not opened.
	StatusUnchanged Status = iota
	// StatusNested means the jars were embedded and recorded in the target descriptor.
	StatusNested
	// StatusNestedWithoutDescriptor means the jars were embedded but the target has no
	// descriptor entry to record them in.
	StatusNestedWithoutDescriptor
)

type (
	// Status is the outcome of a Nest call.
	Status int

	// Result describes what Nest did to the target archive.
	Result struct {
		Status Status
		// Target is the archive that was nested into.
		Target string
		// Entries lists the written nested entry names in first-seen order.
		Entries []string
		// Records lists the jars records appended to the descriptor, one per candidate.
		Records []JarRecord
	}

	// NesterOptions configures a Nester.
	NesterOptions struct {
		Logger *log.Logger
	}

	// Nester rewrites target archives. A Nester holds no per-archive state, but callers must
	// not nest into the same target from two goroutines at once.
	Nester struct {
		logger *log.Logger
	}
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusNested:
		return "nested"
	case StatusNestedWithoutDescriptor:
		return "nested-without-descriptor"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Changed reports whether the target archive was rewritten.
func (r Result) Changed() bool {
	return r.Status != StatusUnchanged
}

// OK reports whether the jars were embedded and recorded in the descriptor.
func (r Result) OK() bool {
	return r.Status == StatusNested
}

// NewNester creates a Nester.
func NewNester(opts NesterOptions) *Nester {
	return &Nester{logger: loggerOrDiscard(opts.Logger)}
}

// Nest embeds every candidate under JarsPrefix and appends one jars record per candidate,
// in candidate order, to the target descriptor.
//
// An empty candidate list returns StatusUnchanged without touching the target. Candidates
// are validated before the target is opened. The rewrite goes through a temporary file,
// so a failure leaves the target as it was.
func (n *Nester) Nest(target string, candidates []Candidate) (Result, error) {
	result := Result{Status: StatusUnchanged, Target: target}
	if len(candidates) == 0 {
		n.logger.Debug("nothing to nest", "target", target)
		return result, nil
	}
	if err := ValidateCandidates(candidates); err != nil {
		return result, err
	}

	// Entry name to the last candidate that maps to it, in first-seen order.
	sources := make(map[string]string, len(candidates))
	var entries []string
	records := make([]JarRecord, 0, len(candidates))
	for _, c := range candidates {
		entry := c.EntryName()
		if prev, ok := sources[entry]; ok {
			n.logger.Warn("nested entry collision, last candidate wins", "entry", entry, "replaced", prev, "by", c.Path)
		} else {
			entries = append(entries, entry)
		}
		sources[entry] = c.Path
		records = append(records, JarRecord{File: entry})
	}

	foundDescriptor := false
	err := jarfile.Rewrite(target, func(src *zip.Reader, dst *zip.Writer) error {
		for _, f := range src.File {
			if _, replaced := sources[f.Name]; replaced {
				continue
			}
			if f.Name == DescriptorEntry {
				foundDescriptor = true
				if err := n.rewriteDescriptor(target, f, dst, records); err != nil {
					return err
				}
				continue
			}
			if err := dst.Copy(f); err != nil {
				return fmt.Errorf("copying entry %s: %w", f.Name, err)
			}
		}

		for _, entry := range entries {
			if err := jarfile.AddFile(dst, entry, sources[entry]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var parseErr *DescriptorParseError
		if errors.As(err, &parseErr) {
			return result, parseErr
		}
		return result, &ArchiveRewriteError{Target: target, Cause: err}
	}

	result.Entries = entries
	if !foundDescriptor {
		result.Status = StatusNestedWithoutDescriptor
		n.logger.Warn("target has no descriptor, jars embedded but not recorded", "target", target, "entry", DescriptorEntry)
		return result, nil
	}
	result.Status = StatusNested
	result.Records = records
	n.logger.Info("nested jars", "target", target, "count", len(records))
	return result, nil
}

func (n *Nester) rewriteDescriptor(target string, f *zip.File, dst *zip.Writer, records []JarRecord) error {
	data, err := jarfile.ReadFile(f)
	if err != nil {
		return err
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return &DescriptorParseError{Archive: target, Entry: f.Name, Cause: err}
	}
	if err := doc.AppendJars(records...); err != nil {
		return &DescriptorParseError{Archive: target, Entry: f.Name, Cause: err}
	}
	out, err := doc.Marshal()
	if err != nil {
		return err
	}

	modified := f.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	return jarfile.WriteEntry(dst, f.Name, modified, out)
}
