// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
	"github.com/latticehq/lattice/services/sheet/view"
)

// defaultChunkSize is how many rows a step processes between context
// cancellation checks.
const defaultChunkSize = 256

// Runner executes transform pipelines against a grid through its history
// manager.
//
// # Description
//
// A run validates every step, plans all of them against a scratch copy of
// the grid (so later steps see earlier results), then commits the combined
// command list as a single batch. The live grid mutates exactly once, at
// commit, and one undo reverts the entire run.
//
// The selection's generation is checked before planning and again before
// commit. A mismatch fails the run with no mutation.
//
// # Thread Safety
//
// Safe for concurrent use as long as the grid's single-writer discipline
// is upheld by the caller (the session runs transforms under its writer
// lock).
type Runner struct {
	hist   *command.Manager
	logger *slog.Logger
}

// NewRunner creates a pipeline runner committing through hist.
func NewRunner(hist *command.Manager, logger *slog.Logger) (*Runner, error) {
	if hist == nil {
		return nil, fmt.Errorf("history manager is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		hist:   hist,
		logger: logger.With("component", "transform.Runner"),
	}, nil
}

// Run executes steps in order over the selection and commits the result
// as one history entry.
//
// # Inputs
//
//   - ctx: Cancels planning between chunks. The commit itself is atomic.
//   - g: The live grid; must be the one the runner's history manager owns.
//   - sel: Target rows and column, tagged with the generation they were
//     derived from.
//   - steps: At least one step.
//   - desc: History description. Empty derives one from the step names.
//
// # Outputs
//
//   - Report: Aggregate changed/unchanged/errored cell counts.
//   - error: ErrNoSteps, ErrValidation (wrapped per step),
//     view.ErrStaleView on a generation mismatch, ErrCancelled, or the
//     history manager's rejection.
func (r *Runner) Run(ctx context.Context, g *grid.Grid, sel Selection, steps []Step, desc string) (Report, error) {
	if len(steps) == 0 {
		return Report{}, ErrNoSteps
	}
	if err := checkGeneration(g, sel); err != nil {
		return Report{}, err
	}

	// Steps validate independently against the untouched grid.
	var eg errgroup.Group
	for _, s := range steps {
		s := s
		eg.Go(func() error {
			if err := s.Validate(g, sel); err != nil {
				return fmt.Errorf("step %q: %w", s.Name(), err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Report{}, err
	}

	start := time.Now()
	scratch := g.Snapshot().Materialize()

	var (
		all   []command.Command
		total Report
	)
	for _, s := range steps {
		cmds, rep, err := s.Plan(ctx, scratch, sel)
		if err != nil {
			return Report{}, fmt.Errorf("step %q: %w", s.Name(), err)
		}
		for _, cmd := range cmds {
			if err := command.Replay(scratch, cmd); err != nil {
				return Report{}, fmt.Errorf("step %q: %w", s.Name(), err)
			}
		}
		all = append(all, cmds...)
		total.add(rep)
	}

	if len(all) == 0 {
		r.logger.Debug("transform produced no edits", "steps", len(steps))
		return total, nil
	}

	// The grid must not have moved under the plan.
	if err := checkGeneration(g, sel); err != nil {
		return Report{}, err
	}

	if desc == "" {
		desc = describe(steps)
	}
	batch, err := command.NewBatch(desc, all)
	if err != nil {
		return Report{}, err
	}
	if err := r.hist.Apply(ctx, batch); err != nil {
		recordRun(ctx, len(steps), total, time.Since(start), err)
		return Report{}, err
	}

	recordRun(ctx, len(steps), total, time.Since(start), nil)
	r.logger.Info("transform committed",
		"description", desc,
		"steps", len(steps),
		"changed", total.Changed,
		"errored", total.Errored,
		"duration_ms", time.Since(start).Milliseconds())
	return total, nil
}

func checkGeneration(g *grid.Grid, sel Selection) error {
	if g.Generation() != sel.Generation {
		return fmt.Errorf("selection generation %d, grid generation %d: %w",
			sel.Generation, g.Generation(), view.ErrStaleView)
	}
	return nil
}

func describe(steps []Step) string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	return "Transform: " + strings.Join(names, ", ")
}
