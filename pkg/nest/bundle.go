// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"context"

	"github.com/charmbracelet/log"
)

type (
	// BundlerOptions configures a Bundler.
	BundlerOptions struct {
		// CacheDir is the build-owned cache root used for staged copies.
		CacheDir string
		// Workers bounds concurrent candidate preparation.
		Workers int
		Logger  *log.Logger
	}

	// Bundler runs classification, validation, preparation and nesting in sequence.
	Bundler struct {
		synth  *Synthesizer
		nester *Nester
		logger *log.Logger
	}

	// Plan is the validated outcome of classification, before anything is staged.
	Plan struct {
		// Candidates are the jars to embed, in nesting order.
		Candidates []Candidate
		// Required lists the sibling tasks that must run before nesting.
		Required []Task
	}
)

// NewBundler creates a Bundler.
func NewBundler(opts BundlerOptions) (*Bundler, error) {
	logger := loggerOrDiscard(opts.Logger)
	synth, err := NewSynthesizer(SynthesizerOptions{
		CacheDir: opts.CacheDir,
		Workers:  opts.Workers,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	return &Bundler{
		synth:  synth,
		nester: NewNester(NesterOptions{Logger: logger}),
		logger: logger,
	}, nil
}

// Synthesizer returns the synthesizer used for candidate preparation.
func (b *Bundler) Synthesizer() *Synthesizer {
	return b.synth
}

// Plan classifies cfg and validates every candidate. Nothing is written.
func (b *Bundler) Plan(cfg IncludeConfig) (Plan, error) {
	if cfg.Disabled {
		b.logger.Info("nesting disabled by build profile")
		return Plan{}, nil
	}

	candidates := Classify(cfg)
	b.logger.Debug("classified include set", "declared", len(cfg.Declared), "resolved", len(cfg.Resolved), "candidates", len(candidates))
	if err := ValidateCandidates(candidates); err != nil {
		return Plan{}, err
	}
	return Plan{Candidates: candidates, Required: RequiredTasks(cfg)}, nil
}

// Bundle nests the include set of cfg into target.
// Every candidate is validated before any staging happens, and staging completes before the
// target is rewritten.
func (b *Bundler) Bundle(ctx context.Context, target string, cfg IncludeConfig) (Result, error) {
	plan, err := b.Plan(cfg)
	if err != nil {
		return Result{Status: StatusUnchanged, Target: target}, err
	}
	if len(plan.Candidates) == 0 {
		return Result{Status: StatusUnchanged, Target: target}, nil
	}

	prepared, err := b.synth.Prepare(ctx, plan.Candidates)
	if err != nil {
		return Result{Status: StatusUnchanged, Target: target}, err
	}
	return b.nester.Nest(target, prepared)
}
