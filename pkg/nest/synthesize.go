// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jarnest/jarnest/pkg/jarfile"
)

const (
	// DefaultWorkers is the preparation pool size used when none is configured.
	DefaultWorkers = 4
	// DefaultProbeCacheSize bounds the number of remembered descriptor probes.
	DefaultProbeCacheSize = 512

	stagingSubdir = "temp/modprocessing"
)

type (
	// SynthesizerOptions configures a Synthesizer.
	SynthesizerOptions struct {
		// CacheDir is the build-owned cache root; staged copies live under temp/modprocessing.
		CacheDir string
		// Workers bounds concurrent candidate preparation. Zero or less uses DefaultWorkers.
		Workers int
		// ProbeCacheSize bounds the descriptor probe cache. Zero or less uses DefaultProbeCacheSize.
		ProbeCacheSize int
		Logger         *log.Logger
	}

	// Synthesizer stages copies of jars that lack a descriptor and adds a generated one.
	// It is safe for concurrent use.
	Synthesizer struct {
		stagingDir string
		workers    int
		logger     *log.Logger
		probes     *lru.Cache[string, probe]
	}

	// probe is a remembered descriptor lookup, valid while size and mtime are unchanged.
	probe struct {
		size          int64
		modTime       time.Time
		hasDescriptor bool
	}
)

// NewSynthesizer creates a Synthesizer staging into opts.CacheDir.
func NewSynthesizer(opts SynthesizerOptions) (*Synthesizer, error) {
	if opts.CacheDir == "" {
		return nil, errors.New("synthesizer requires a cache directory")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	size := opts.ProbeCacheSize
	if size <= 0 {
		size = DefaultProbeCacheSize
	}
	probes, err := lru.New[string, probe](size)
	if err != nil {
		return nil, fmt.Errorf("creating probe cache: %w", err)
	}

	return &Synthesizer{
		stagingDir: filepath.Join(opts.CacheDir, filepath.FromSlash(stagingSubdir)),
		workers:    workers,
		logger:     loggerOrDiscard(opts.Logger),
		probes:     probes,
	}, nil
}

// StagingDir returns the directory staged copies are written to.
func (s *Synthesizer) StagingDir() string {
	return s.stagingDir
}

// HasDescriptor reports whether the jar at path carries a root descriptor entry.
// A file that cannot be read as an archive yields an InvalidArtifactError.
func (s *Synthesizer) HasDescriptor(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, &ArtifactNotFoundError{Path: path}
		}
		return false, &InvalidArtifactError{Path: path, Reason: "cannot be accessed", Cause: err}
	}

	if p, ok := s.probes.Get(path); ok && p.size == info.Size() && p.modTime.Equal(info.ModTime()) {
		return p.hasDescriptor, nil
	}

	found, err := jarfile.ContainsEntry(path, DescriptorEntry)
	if err != nil {
		return false, &InvalidArtifactError{Path: path, Reason: "not a readable archive", Cause: err}
	}
	s.probes.Add(path, probe{size: info.Size(), modTime: info.ModTime(), hasDescriptor: found})
	return found, nil
}

// Prepare returns the candidates with every external jar lacking a descriptor replaced by
// a staged copy carrying a generated one. Output order matches input order.
//
// Candidates run on a bounded worker pool. Candidates sharing a file name share a staged
// path and are processed one after another in input order, so the last one wins.
func (s *Synthesizer) Prepare(ctx context.Context, candidates []Candidate) ([]Candidate, error) {
	out := make([]Candidate, len(candidates))

	var order []string
	groups := make(map[string][]int)
	for i, c := range candidates {
		name := c.FileName()
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, name := range order {
		indices := groups[name]
		g.Go(func() error {
			for _, i := range indices {
				if err := gctx.Err(); err != nil {
					return err
				}
				prepared, err := s.prepare(candidates[i])
				if err != nil {
					return err
				}
				out[i] = prepared
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Synthesizer) prepare(c Candidate) (Candidate, error) {
	// Project outputs are build-owned and never staged.
	if c.Origin.Kind == KindProject || c.Synthesized {
		return c, nil
	}

	has, err := s.HasDescriptor(c.Path)
	if err != nil {
		return Candidate{}, err
	}
	if has {
		s.logger.Debug("descriptor present", "jar", c.FileName())
		return c, nil
	}

	staged := filepath.Join(s.stagingDir, c.FileName())
	if err := s.stage(c.Path, staged); err != nil {
		return Candidate{}, &StagingError{Source: c.Path, Staged: staged, Cause: err}
	}

	data, err := Synthesize(c.Origin.Coordinate()).Marshal()
	if err != nil {
		return Candidate{}, &StagingError{Source: c.Path, Staged: staged, Cause: err}
	}
	if err := jarfile.AddEntry(staged, DescriptorEntry, data); err != nil {
		return Candidate{}, &StagingError{Source: c.Path, Staged: staged, Cause: err}
	}

	s.logger.Info("synthesized descriptor", "jar", c.FileName(), "id", c.Origin.Coordinate().ModID())
	return Candidate{Path: staged, Origin: c.Origin, Synthesized: true}, nil
}

// stage copies src to dst, replacing any stale copy.
func (s *Synthesizer) stage(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if absSrc == absDst {
		return errors.New("source is already inside the staging directory")
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale copy: %w", err)
	}
	return copyFile(src, dst)
}

// copyFile copies a single file, keeping its modification time.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }() // Read-only handle

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func loggerOrDiscard(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(io.Discard)
}
