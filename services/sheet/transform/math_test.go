// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// numberGrid builds a one-column grid of numbers.
func numberGrid(t *testing.T, vals ...float64) *grid.Grid {
	t.Helper()
	g := grid.New(len(vals), 1)
	for i, v := range vals {
		_, err := g.Set(i, 0, grid.Number(v))
		require.NoError(t, err)
	}
	return g
}

func numberAt(t *testing.T, g *grid.Grid, row, col int) float64 {
	t.Helper()
	c, err := g.Get(row, col)
	require.NoError(t, err)
	require.Equal(t, grid.KindNumber, c.Value.Kind())
	return c.Value.Number()
}

func TestArithStep_ScalarOps(t *testing.T) {
	cases := []struct {
		op      ArithOp
		operand float64
		want    float64
	}{
		{OpAdd, 3, 13},
		{OpSub, 3, 7},
		{OpMul, 2, 20},
		{OpDiv, 4, 2.5},
		{OpPow, 2, 100},
		{OpMod, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.op.String(), func(t *testing.T) {
			g := numberGrid(t, 10)
			applyPlan(t, g, NewArithStep(tc.op, tc.operand), WholeColumn(g, 0))
			assert.InDelta(t, tc.want, numberAt(t, g, 0, 0), 1e-9)
		})
	}
}

func TestArithStep_DivisionByZeroErrorsCellAndContinues(t *testing.T) {
	g := numberGrid(t, 10, 20)
	rep := applyPlan(t, g, NewArithStep(OpDiv, 0), WholeColumn(g, 0))

	assert.Equal(t, 2, rep.Errored)
	assert.Equal(t, 0, rep.Changed)
	c, err := g.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.KindError, c.Value.Kind())
	assert.Equal(t, "division by zero", c.Value.ErrorReason())
}

func TestArithStep_ColumnOperand(t *testing.T) {
	g := grid.New(2, 2)
	_, _ = g.Set(0, 0, grid.Number(10))
	_, _ = g.Set(0, 1, grid.Number(2))
	_, _ = g.Set(1, 0, grid.Number(9))
	_, _ = g.Set(1, 1, grid.Number(0))

	rep := applyPlan(t, g, NewColumnArithStep(OpDiv, 1), WholeColumn(g, 0))

	assert.InDelta(t, 5, numberAt(t, g, 0, 0), 1e-9)
	c, err := g.Get(1, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.KindError, c.Value.Kind(), "per-row zero divisor errors only that cell")
	assert.Equal(t, 1, rep.Changed)
	assert.Equal(t, 1, rep.Errored)
}

func TestArithStep_SkipsNonNumeric(t *testing.T) {
	g := textGrid(t, "abc")
	rep := applyPlan(t, g, NewArithStep(OpAdd, 1), WholeColumn(g, 0))
	assert.Equal(t, 1, rep.Unchanged)
	assert.Equal(t, "abc", textAt(t, g, 0, 0))
}

func TestUnaryStep(t *testing.T) {
	g := numberGrid(t, -4)
	applyPlan(t, g, UnaryStep{Op: OpAbs}, WholeColumn(g, 0))
	assert.InDelta(t, 4, numberAt(t, g, 0, 0), 1e-9)

	applyPlan(t, g, UnaryStep{Op: OpNegate}, WholeColumn(g, 0))
	assert.InDelta(t, -4, numberAt(t, g, 0, 0), 1e-9)
}

func TestUnaryStep_SqrtNegativeErrors(t *testing.T) {
	g := numberGrid(t, -9, 9)
	rep := applyPlan(t, g, UnaryStep{Op: OpSqrt}, WholeColumn(g, 0))

	c, err := g.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.KindError, c.Value.Kind())
	assert.InDelta(t, 3, numberAt(t, g, 1, 0), 1e-9)
	assert.Equal(t, 1, rep.Errored)
	assert.Equal(t, 1, rep.Changed)
}

func TestRoundStep(t *testing.T) {
	g := numberGrid(t, 2.345, 2.5, -2.5)
	applyPlan(t, g, RoundStep{Digits: 1}, WholeColumn(g, 0))
	assert.InDelta(t, 2.3, numberAt(t, g, 0, 0), 1e-9)

	g2 := numberGrid(t, 2.5, -2.5)
	applyPlan(t, g2, RoundStep{Digits: 0}, WholeColumn(g2, 0))
	assert.InDelta(t, 3, numberAt(t, g2, 0, 0), 1e-9, "halves round away from zero")
	assert.InDelta(t, -3, numberAt(t, g2, 1, 0), 1e-9)
}

func TestPercentOfTotalStep(t *testing.T) {
	g := numberGrid(t, 25, 75)
	rep := applyPlan(t, g, PercentOfTotalStep{}, WholeColumn(g, 0))

	assert.InDelta(t, 25, numberAt(t, g, 0, 0), 1e-9)
	assert.InDelta(t, 75, numberAt(t, g, 1, 0), 1e-9)
	assert.Equal(t, 2, rep.Changed)
}

func TestPercentOfTotalStep_ZeroTotal(t *testing.T) {
	g := numberGrid(t, 0, 0)
	rep := applyPlan(t, g, PercentOfTotalStep{}, WholeColumn(g, 0))
	assert.Equal(t, 2, rep.Errored)
}

func TestPercentStyleStep_ChangesFormatOnly(t *testing.T) {
	g := numberGrid(t, 0.5)
	rep := applyPlan(t, g, PercentStyleStep{}, WholeColumn(g, 0))

	c, err := g.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "0.00%", c.Format.NumberFormat)
	assert.InDelta(t, 0.5, c.Value.Number(), 1e-9, "stored value untouched")
	assert.Equal(t, 1, rep.Changed)

	rep = applyPlan(t, g, PercentStyleStep{}, WholeColumn(g, 0))
	assert.Equal(t, 1, rep.Unchanged, "idempotent on second run")
}
