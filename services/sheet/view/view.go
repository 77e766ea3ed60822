// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package view maps logical row selections used by filters and transforms
// to physical grid coordinates without copying cell data. A View is tagged
// with the grid generation it was built from; any structural edit makes it
// stale and every consumer must rebuild before the next use.
package view

import (
	"errors"
	"fmt"
	"sort"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// ErrStaleView indicates a view built against an older grid generation.
// The view must be rebuilt; operating through it could silently target
// rows that have shifted.
var ErrStaleView = errors.New("view is stale, rebuild against the current grid")

// Predicate decides whether a physical row belongs to a view. It receives
// the physical row index and a copy-free accessor for the row's cells.
type Predicate func(row int, cells []grid.Cell) bool

// SortKey orders view rows by one column.
type SortKey struct {
	// Col is the physical column index.
	Col int

	// Descending reverses the order for this key.
	Descending bool
}

// View is an ordered projection of physical row indices, optionally
// restricted to a column mask.
//
// # Description
//
// Views support filtered/sorted presentations and transform selections
// without copying grid data. Evaluation order is stable: rows compare by
// the sort keys, ties break by original physical order. A view built with
// no keys preserves physical order.
//
// # Thread Safety
//
// A View is immutable after Build and safe for concurrent reads.
type View struct {
	rows       []int
	colMask    []bool // nil = all columns
	generation uint64
}

// Build produces a view over the grid's current rows.
//
// # Inputs
//
//   - g: Source grid. Must not be nil.
//   - pred: Row filter; nil admits every row.
//   - keys: Sort keys applied in order; nil keeps physical order.
//
// # Outputs
//
//   - *View: The projection, tagged with the grid's current generation.
//   - error: Non-nil when a sort key column is out of bounds.
func Build(g *grid.Grid, pred Predicate, keys []SortKey) (*View, error) {
	for _, k := range keys {
		if k.Col < 0 || k.Col >= g.ColCount() {
			return nil, fmt.Errorf("sort key column %d: %w", k.Col, grid.ErrOutOfBounds)
		}
	}

	var rows []int
	cache := make(map[int][]grid.Cell)
	rowCells := func(i int) []grid.Cell {
		if c, ok := cache[i]; ok {
			return c
		}
		c, _ := g.Row(i)
		cache[i] = c
		return c
	}

	for i := 0; i < g.RowCount(); i++ {
		if pred == nil || pred(i, rowCells(i)) {
			rows = append(rows, i)
		}
	}

	if len(keys) > 0 {
		sort.SliceStable(rows, func(a, b int) bool {
			ra, rb := rowCells(rows[a]), rowCells(rows[b])
			for _, k := range keys {
				c := compareValues(ra[k.Col].Value, rb[k.Col].Value)
				if c == 0 {
					continue
				}
				if k.Descending {
					return c > 0
				}
				return c < 0
			}
			// Ties break by original physical order.
			return rows[a] < rows[b]
		})
	}

	return &View{rows: rows, generation: g.Generation()}, nil
}

// WithColumns returns a copy of the view restricted to the given physical
// column indices. Used by transforms that target a column subset.
func (v *View) WithColumns(colCount int, cols []int) *View {
	mask := make([]bool, colCount)
	for _, c := range cols {
		if c >= 0 && c < colCount {
			mask[c] = true
		}
	}
	return &View{rows: v.rows, colMask: mask, generation: v.generation}
}

// Generation returns the grid generation the view was built from.
func (v *View) Generation() uint64 { return v.generation }

// Len returns the number of visible rows.
func (v *View) Len() int { return len(v.rows) }

// Rows returns a copy of the visible physical row indices in view order.
func (v *View) Rows() []int {
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// Row returns the physical row index at view position i.
func (v *View) Row(i int) (int, error) {
	if i < 0 || i >= len(v.rows) {
		return 0, fmt.Errorf("view position %d: %w", i, grid.ErrOutOfBounds)
	}
	return v.rows[i], nil
}

// IncludesColumn reports whether the view admits a column.
func (v *View) IncludesColumn(col int) bool {
	if v.colMask == nil {
		return true
	}
	return col >= 0 && col < len(v.colMask) && v.colMask[col]
}

// Validate fails with ErrStaleView when the grid has mutated since the
// view was built. Every consumer must call this before dereferencing row
// indices.
func (v *View) Validate(g *grid.Grid) error {
	if g.Generation() != v.generation {
		return fmt.Errorf("view generation %d, grid generation %d: %w",
			v.generation, g.Generation(), ErrStaleView)
	}
	return nil
}

// Each walks the visible rows in order, stopping early when fn returns
// false. The sequence is restartable: Each can be called any number of
// times.
func (v *View) Each(fn func(pos, physicalRow int) bool) {
	for pos, r := range v.rows {
		if !fn(pos, r) {
			return
		}
	}
}

// compareValues orders cell values for sorting: empties first, then
// numbers/datetimes/bools by magnitude, then text lexically, errors last.
// Cross-kind comparisons order by kind rank.
func compareValues(a, b grid.Value) int {
	ra, rb := kindRank(a.Kind()), kindRank(b.Kind())
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind() {
	case grid.KindNumber:
		switch {
		case a.Number() < b.Number():
			return -1
		case a.Number() > b.Number():
			return 1
		}
		return 0
	case grid.KindDateTime:
		switch {
		case a.Time().Before(b.Time()):
			return -1
		case a.Time().After(b.Time()):
			return 1
		}
		return 0
	case grid.KindBool:
		switch {
		case !a.Bool() && b.Bool():
			return -1
		case a.Bool() && !b.Bool():
			return 1
		}
		return 0
	case grid.KindText, grid.KindError:
		at, bt := a.AsText(), b.AsText()
		switch {
		case at < bt:
			return -1
		case at > bt:
			return 1
		}
		return 0
	default:
		return 0
	}
}

func kindRank(k grid.Kind) int {
	switch k {
	case grid.KindEmpty:
		return 0
	case grid.KindNumber:
		return 1
	case grid.KindDateTime:
		return 2
	case grid.KindBool:
		return 3
	case grid.KindText:
		return 4
	case grid.KindError:
		return 5
	default:
		return 6
	}
}
