// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/grid"
)

func dateGrid(t *testing.T, dates ...time.Time) *grid.Grid {
	t.Helper()
	g := grid.New(len(dates), 1)
	for i, d := range dates {
		_, err := g.Set(i, 0, grid.DateTime(d))
		require.NoError(t, err)
	}
	return g
}

func timeAt(t *testing.T, g *grid.Grid, row, col int) time.Time {
	t.Helper()
	c, err := g.Get(row, col)
	require.NoError(t, err)
	require.Equal(t, grid.KindDateTime, c.Value.Kind())
	return c.Value.Time()
}

func TestParseDateStep_FirstMatchWins(t *testing.T) {
	g := textGrid(t, "2024-03-15", "03/04/2024", "Jan 2, 2024")
	rep := applyPlan(t, g, ParseDateStep{}, WholeColumn(g, 0))

	assert.Equal(t, 3, rep.Changed)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), timeAt(t, g, 0, 0))
	// Ambiguous slash dates resolve month-first because that layout is
	// earlier in the default list.
	assert.Equal(t, time.Month(3), timeAt(t, g, 1, 0).Month())
	assert.Equal(t, 4, timeAt(t, g, 1, 0).Day())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), timeAt(t, g, 2, 0))
}

func TestParseDateStep_UnparseableErrors(t *testing.T) {
	g := textGrid(t, "not a date", "")
	rep := applyPlan(t, g, ParseDateStep{}, WholeColumn(g, 0))

	assert.Equal(t, 1, rep.Errored)
	assert.Equal(t, 1, rep.Unchanged, "empty cells skipped")
	c, err := g.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.KindError, c.Value.Kind())
}

func TestParseDateStep_CustomPattern(t *testing.T) {
	g := textGrid(t, "15.03.2024")
	applyPlan(t, g, ParseDateStep{Patterns: []string{"02.01.2006"}}, WholeColumn(g, 0))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), timeAt(t, g, 0, 0))
}

func TestFormatDateStep(t *testing.T) {
	g := dateGrid(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	applyPlan(t, g, FormatDateStep{Layout: "Jan 2, 2006"}, WholeColumn(g, 0))
	assert.Equal(t, "Mar 15, 2024", textAt(t, g, 0, 0))
}

func TestShiftDaysStep(t *testing.T) {
	g := dateGrid(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))
	applyPlan(t, g, ShiftDaysStep{Days: 2}, WholeColumn(g, 0))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), timeAt(t, g, 0, 0), "2024 is a leap year")
}

func TestShiftMonthsStep_ClampsToMonthEnd(t *testing.T) {
	g := dateGrid(t,
		time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	applyPlan(t, g, ShiftMonthsStep{Months: 1}, WholeColumn(g, 0))

	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), timeAt(t, g, 0, 0))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), timeAt(t, g, 1, 0), "leap February")
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), timeAt(t, g, 2, 0))
}

func TestShiftMonthsStep_Negative(t *testing.T) {
	g := dateGrid(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	applyPlan(t, g, ShiftMonthsStep{Months: -1}, WholeColumn(g, 0))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), timeAt(t, g, 0, 0))
}

func TestAddMonthsClamped_PreservesTimeOfDay(t *testing.T) {
	in := time.Date(2024, 1, 31, 13, 45, 30, 0, time.UTC)
	out := addMonthsClamped(in, 1)
	assert.Equal(t, time.Date(2024, 2, 29, 13, 45, 30, 0, time.UTC), out)
}

func TestExtractComponentStep(t *testing.T) {
	d := time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		comp DateComponent
		want grid.Value
	}{
		{CompYear, grid.Number(2024)},
		{CompMonth, grid.Number(11)},
		{CompDay, grid.Number(5)},
		{CompWeekday, grid.Text("Tuesday")},
		{CompQuarter, grid.Number(4)},
		{CompISOWeek, grid.Number(45)},
		{CompDayOfYear, grid.Number(310)},
	}
	for _, tc := range cases {
		t.Run(tc.comp.String(), func(t *testing.T) {
			g := dateGrid(t, d)
			applyPlan(t, g, ExtractComponentStep{Component: tc.comp}, WholeColumn(g, 0))
			c, err := g.Get(0, 0)
			require.NoError(t, err)
			assert.True(t, c.Value.Equal(tc.want), "got %s", c.Value)
		})
	}
}
