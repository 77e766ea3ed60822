// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/grid"
)

func mkCmd(t *testing.T, g *grid.Grid, n float64) Command {
	t.Helper()
	c, err := NewCellValueEdit(g, 0, 0, grid.Number(n))
	require.NoError(t, err)
	return c
}

func TestRingStack_PushPopLIFO(t *testing.T) {
	g := grid.New(1, 1)
	s := newRingStack(4)

	a, b, c := mkCmd(t, g, 1), mkCmd(t, g, 2), mkCmd(t, g, 3)
	assert.False(t, s.push(a))
	assert.False(t, s.push(b))
	assert.False(t, s.push(c))
	assert.Equal(t, 3, s.len())

	got, ok := s.pop()
	require.True(t, ok)
	assert.Equal(t, c.ID(), got.ID())
	got, ok = s.pop()
	require.True(t, ok)
	assert.Equal(t, b.ID(), got.ID())
	got, ok = s.pop()
	require.True(t, ok)
	assert.Equal(t, a.ID(), got.ID())

	_, ok = s.pop()
	assert.False(t, ok)
}

func TestRingStack_EvictsOldestAtCapacity(t *testing.T) {
	g := grid.New(1, 1)
	s := newRingStack(2)

	a, b, c := mkCmd(t, g, 1), mkCmd(t, g, 2), mkCmd(t, g, 3)
	assert.False(t, s.push(a))
	assert.False(t, s.push(b))
	assert.True(t, s.push(c), "third push into capacity-2 stack must evict")
	assert.Equal(t, 2, s.len())
	assert.Equal(t, int64(1), s.evictedCount())

	items := s.items()
	require.Len(t, items, 2)
	assert.Equal(t, c.ID(), items[0].ID(), "newest first")
	assert.Equal(t, b.ID(), items[1].ID())
}

func TestRingStack_WrapAround(t *testing.T) {
	g := grid.New(1, 1)
	s := newRingStack(3)

	var last Command
	for i := 0; i < 10; i++ {
		last = mkCmd(t, g, float64(i))
		s.push(last)
	}
	assert.Equal(t, 3, s.len())

	top, ok := s.peek()
	require.True(t, ok)
	assert.Equal(t, last.ID(), top.ID())
}

func TestRingStack_Clear(t *testing.T) {
	g := grid.New(1, 1)
	s := newRingStack(2)
	s.push(mkCmd(t, g, 1))
	s.clear()
	assert.Equal(t, 0, s.len())
	assert.Nil(t, s.items())
}

func TestNewRingStack_PanicsOnBadCapacity(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("newRingStack(0) should panic")
		}
	}()
	newRingStack(0)
}
