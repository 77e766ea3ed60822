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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/assist"
	"github.com/latticehq/lattice/services/sheet/grid"
)

func TestDedupStep_FirstOccurrenceWins(t *testing.T) {
	g := textGrid(t, "apple", "banana", "apple", "cherry", "banana")
	rep := applyPlan(t, g, DedupStep{}, WholeColumn(g, 0))

	assert.Equal(t, 2, rep.Changed)
	require.Equal(t, 3, g.RowCount())
	assert.Equal(t, "apple", textAt(t, g, 0, 0))
	assert.Equal(t, "banana", textAt(t, g, 1, 0))
	assert.Equal(t, "cherry", textAt(t, g, 2, 0))
}

func TestDedupStep_Normalize(t *testing.T) {
	g := textGrid(t, "Acme  Corp", "acme corp", "ACME CORP ")
	rep := applyPlan(t, g, DedupStep{Normalize: true}, WholeColumn(g, 0))

	assert.Equal(t, 2, rep.Changed)
	require.Equal(t, 1, g.RowCount())
	assert.Equal(t, "Acme  Corp", textAt(t, g, 0, 0), "first occurrence keeps its original text")
}

func TestDedupStep_MultiColumnKey(t *testing.T) {
	g := grid.New(3, 2)
	set := func(r int, a, b string) {
		_, _ = g.Set(r, 0, grid.Text(a))
		_, _ = g.Set(r, 1, grid.Text(b))
	}
	set(0, "a", "1")
	set(1, "a", "2")
	set(2, "a", "1")

	rep := applyPlan(t, g, DedupStep{KeyCols: []int{0, 1}}, WholeColumn(g, 0))
	assert.Equal(t, 1, rep.Changed)
	assert.Equal(t, 2, g.RowCount())
}

func TestFillStep_ForwardLeavesLeadingEmpties(t *testing.T) {
	g := textGrid(t, "", "a", "", "", "b", "")
	rep := applyPlan(t, g, FillStep{Mode: FillForward}, WholeColumn(g, 0))

	assert.Equal(t, "", textAt(t, g, 0, 0), "no earlier value to copy")
	assert.Equal(t, "a", textAt(t, g, 2, 0))
	assert.Equal(t, "a", textAt(t, g, 3, 0))
	assert.Equal(t, "b", textAt(t, g, 5, 0))
	assert.Equal(t, 3, rep.Changed, "rows 2, 3 and 5; the leading empty has no source")
}

func TestFillStep_ForwardCopiesFormat(t *testing.T) {
	g := grid.New(2, 1)
	src := grid.NewCell(grid.Number(0.5))
	src.Format.NumberFormat = "0.00%"
	_, err := g.SetCell(0, 0, src)
	require.NoError(t, err)

	applyPlan(t, g, FillStep{Mode: FillForward}, WholeColumn(g, 0))
	c, err := g.Get(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "0.00%", c.Format.NumberFormat)
	assert.InDelta(t, 0.5, c.Value.Number(), 1e-9)
}

func TestFillStep_Backward(t *testing.T) {
	g := textGrid(t, "", "x", "")
	applyPlan(t, g, FillStep{Mode: FillBackward}, WholeColumn(g, 0))
	assert.Equal(t, "x", textAt(t, g, 0, 0))
	assert.Equal(t, "", textAt(t, g, 2, 0), "no later value to copy")
}

func TestFillStep_Constant(t *testing.T) {
	g := textGrid(t, "", "keep", "")
	applyPlan(t, g, FillStep{Mode: FillConstant, Constant: grid.Text("n/a")}, WholeColumn(g, 0))
	assert.Equal(t, "n/a", textAt(t, g, 0, 0))
	assert.Equal(t, "keep", textAt(t, g, 1, 0))
	assert.Equal(t, "n/a", textAt(t, g, 2, 0))
}

// stubSuggester fills every asked cell with a fixed value.
type stubSuggester struct {
	v     grid.Value
	calls int
}

func (s *stubSuggester) SuggestFill(_ context.Context, _ *grid.Snapshot, _, _ int) (grid.Value, error) {
	s.calls++
	return s.v, nil
}

func TestFillStep_Model(t *testing.T) {
	g := textGrid(t, "a", "", "c")
	stub := &stubSuggester{v: grid.Text("guess")}
	rep := applyPlan(t, g, FillStep{Mode: FillModel, Suggester: stub}, WholeColumn(g, 0))

	assert.Equal(t, 1, stub.calls, "only empty cells are asked")
	assert.Equal(t, "guess", textAt(t, g, 1, 0))
	assert.Equal(t, 1, rep.Changed)
}

func TestFillStep_ModelRequiresSuggester(t *testing.T) {
	g := textGrid(t, "")
	s := FillStep{Mode: FillModel}
	err := s.Validate(g, WholeColumn(g, 0))
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, assist.ErrUnavailable)
}

func TestSeriesStep_Numeric(t *testing.T) {
	g := grid.New(3, 1)
	s := SeriesStep{Start: grid.Number(10), Step: 5}
	rep := applyPlan(t, g, s, WholeColumn(g, 0))

	assert.Equal(t, 3, rep.Changed)
	assert.InDelta(t, 10, numberAt(t, g, 0, 0), 1e-9)
	assert.InDelta(t, 15, numberAt(t, g, 1, 0), 1e-9)
	assert.InDelta(t, 20, numberAt(t, g, 2, 0), 1e-9)
}

func TestSeriesStep_Monthly(t *testing.T) {
	g := grid.New(3, 1)
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	s := SeriesStep{Start: grid.DateTime(start), Step: 1, Interval: IntervalMonthly}
	applyPlan(t, g, s, WholeColumn(g, 0))

	assert.Equal(t, start, timeAt(t, g, 0, 0))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), timeAt(t, g, 1, 0))
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), timeAt(t, g, 2, 0))
}

func TestSeriesStep_ValidatesStart(t *testing.T) {
	g := grid.New(1, 1)
	s := SeriesStep{Start: grid.Text("x")}
	assert.ErrorIs(t, s.Validate(g, WholeColumn(g, 0)), ErrValidation)
}

func TestConvertStep_ToNumber(t *testing.T) {
	g := textGrid(t, "42", "abc")
	rep := applyPlan(t, g, ConvertStep{Target: grid.KindNumber}, WholeColumn(g, 0))

	assert.InDelta(t, 42, numberAt(t, g, 0, 0), 1e-9)
	assert.Equal(t, "abc", textAt(t, g, 1, 0), "lenient mode keeps inconvertible cells")
	assert.Equal(t, 1, rep.Changed)
	assert.Equal(t, 1, rep.Unchanged)
}

func TestConvertStep_StrictErrorsInconvertible(t *testing.T) {
	g := textGrid(t, "abc")
	rep := applyPlan(t, g, ConvertStep{Target: grid.KindNumber, Strict: true}, WholeColumn(g, 0))

	c, err := g.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.KindError, c.Value.Kind())
	assert.Equal(t, 1, rep.Errored)
}

func TestConvertStep_ToBoolAndDate(t *testing.T) {
	g := textGrid(t, "true")
	applyPlan(t, g, ConvertStep{Target: grid.KindBool}, WholeColumn(g, 0))
	c, err := g.Get(0, 0)
	require.NoError(t, err)
	require.Equal(t, grid.KindBool, c.Value.Kind())
	assert.True(t, c.Value.Bool())

	g2 := textGrid(t, "2024-06-01")
	applyPlan(t, g2, ConvertStep{Target: grid.KindDateTime}, WholeColumn(g2, 0))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), timeAt(t, g2, 0, 0))
}
