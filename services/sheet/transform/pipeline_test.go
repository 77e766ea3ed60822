// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
	"github.com/latticehq/lattice/services/sheet/view"
)

func newRunner(t *testing.T, g *grid.Grid) (*Runner, *command.Manager) {
	t.Helper()
	hist, err := command.NewManager(g, command.DefaultConfig(), nil)
	require.NoError(t, err)
	r, err := NewRunner(hist, nil)
	require.NoError(t, err)
	return r, hist
}

func TestRunner_TrimIsOneHistoryEntry(t *testing.T) {
	g := textGrid(t, " x ", "y", " z ")
	r, hist := newRunner(t, g)

	rep, err := r.Run(context.Background(), g, WholeColumn(g, 0),
		[]Step{TrimStep{Mode: TrimBoth}}, "Trim whitespace")
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Changed)
	assert.Equal(t, 1, rep.Unchanged)
	assert.Equal(t, "x", textAt(t, g, 0, 0))
	assert.Equal(t, "y", textAt(t, g, 1, 0))
	assert.Equal(t, "z", textAt(t, g, 2, 0))
	require.Equal(t, 1, hist.UndoCount(), "whole run is a single undo step")

	_, err = hist.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, " x ", textAt(t, g, 0, 0), "undo restores original whitespace")
	assert.Equal(t, " z ", textAt(t, g, 2, 0))
}

func TestRunner_StepsCompose(t *testing.T) {
	g := textGrid(t, "  hello WORLD  ")
	r, _ := newRunner(t, g)

	_, err := r.Run(context.Background(), g, WholeColumn(g, 0), []Step{
		TrimStep{Mode: TrimCollapse},
		CaseStep{Mode: CaseTitle},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", textAt(t, g, 0, 0), "second step sees the first step's output")
}

func TestRunner_ViewScopedRun(t *testing.T) {
	g := textGrid(t, "a", "b", "c")
	r, _ := newRunner(t, g)

	v, err := view.Build(g, func(row int, _ []grid.Cell) bool { return row != 1 }, nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), g, FromView(v, 0),
		[]Step{CaseStep{Mode: CaseUpper}}, "")
	require.NoError(t, err)

	assert.Equal(t, "A", textAt(t, g, 0, 0))
	assert.Equal(t, "b", textAt(t, g, 1, 0), "filtered-out row untouched")
	assert.Equal(t, "C", textAt(t, g, 2, 0))
}

func TestRunner_StaleSelectionRejected(t *testing.T) {
	g := textGrid(t, "a")
	r, _ := newRunner(t, g)
	sel := WholeColumn(g, 0)

	_, err := g.Set(0, 0, grid.Text("changed"))
	require.NoError(t, err)

	_, err = r.Run(context.Background(), g, sel, []Step{CaseStep{Mode: CaseUpper}}, "")
	assert.ErrorIs(t, err, view.ErrStaleView)
	assert.Equal(t, "changed", textAt(t, g, 0, 0), "grid untouched")
}

func TestRunner_ValidationFailureTouchesNothing(t *testing.T) {
	g := textGrid(t, "a")
	r, hist := newRunner(t, g)

	_, err := r.Run(context.Background(), g, WholeColumn(g, 0), []Step{
		CaseStep{Mode: CaseUpper},
		&ReplaceStep{Find: `[`, Regexp: true},
	}, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "a", textAt(t, g, 0, 0))
	assert.Equal(t, 0, hist.UndoCount())
}

func TestRunner_CancelledContext(t *testing.T) {
	g := textGrid(t, "a", "b")
	r, hist := newRunner(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, g, WholeColumn(g, 0), []Step{TrimStep{}}, "")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, hist.UndoCount())
}

func TestRunner_NoSteps(t *testing.T) {
	g := textGrid(t, "a")
	r, _ := newRunner(t, g)
	_, err := r.Run(context.Background(), g, WholeColumn(g, 0), nil, "")
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestRunner_NoEditsNoHistoryEntry(t *testing.T) {
	g := textGrid(t, "clean")
	r, hist := newRunner(t, g)

	rep, err := r.Run(context.Background(), g, WholeColumn(g, 0),
		[]Step{TrimStep{Mode: TrimBoth}}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Unchanged)
	assert.Equal(t, 0, hist.UndoCount(), "a no-op run leaves no history")
}

func TestRunner_StructuralRunUndoes(t *testing.T) {
	g := textGrid(t, "a", "a", "b")
	r, hist := newRunner(t, g)

	rep, err := r.Run(context.Background(), g, WholeColumn(g, 0),
		[]Step{DedupStep{}}, "Remove duplicates")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Changed)
	require.Equal(t, 2, g.RowCount())

	_, err = hist.Undo(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, g.RowCount())
	assert.Equal(t, "a", textAt(t, g, 1, 0))
}

func TestRunner_DescriptionDefaultsToStepNames(t *testing.T) {
	g := textGrid(t, " a ")
	r, hist := newRunner(t, g)

	_, err := r.Run(context.Background(), g, WholeColumn(g, 0),
		[]Step{TrimStep{Mode: TrimBoth}, CaseStep{Mode: CaseUpper}}, "")
	require.NoError(t, err)

	entries := hist.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Transform: trim whitespace, uppercase", entries[0].Description)
	assert.Equal(t, command.KindBulkTransform, entries[0].Kind)
}
