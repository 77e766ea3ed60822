// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package grid

// Snapshot is an immutable, point-in-time copy of grid contents.
//
// # Description
//
// Snapshots are handed to concurrent readers (rendering, AI feature
// extraction, cloud upload) so they never observe a half-applied command
// and never block the writer. A snapshot is tagged with the generation it
// was taken at.
//
// # Thread Safety
//
// Snapshot is deeply copied at creation and never mutated afterwards; it
// is safe for concurrent use without synchronization.
type Snapshot struct {
	generation uint64
	hasHeaders bool
	cols       []Column
	rows       [][]Cell
}

// Snapshot returns an immutable deep copy of the grid at its current
// generation.
func (g *Grid) Snapshot() *Snapshot {
	s := &Snapshot{
		generation: g.generation,
		hasHeaders: g.hasHeaders,
		cols:       make([]Column, len(g.cols)),
		rows:       make([][]Cell, len(g.rows)),
	}
	copy(s.cols, g.cols)
	for i := range g.rows {
		s.rows[i] = make([]Cell, len(g.rows[i]))
		copy(s.rows[i], g.rows[i])
	}
	return s
}

// Generation returns the generation the snapshot was taken at.
func (s *Snapshot) Generation() uint64 { return s.generation }

// HasHeaders reports the header flag at snapshot time.
func (s *Snapshot) HasHeaders() bool { return s.hasHeaders }

// RowCount returns the number of rows in the snapshot.
func (s *Snapshot) RowCount() int { return len(s.rows) }

// ColCount returns the number of columns in the snapshot.
func (s *Snapshot) ColCount() int { return len(s.cols) }

// Get returns the cell at (row, col).
func (s *Snapshot) Get(row, col int) (Cell, error) {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.cols) {
		return Cell{}, outOfBounds("snapshot_get", row, col)
	}
	return s.rows[row][col], nil
}

// Columns returns a copy of the column metadata at snapshot time.
func (s *Snapshot) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

// Row returns a copy of the row at the given index.
func (s *Snapshot) Row(at int) ([]Cell, error) {
	if at < 0 || at >= len(s.rows) {
		return nil, outOfBounds("snapshot_row", at, -1)
	}
	out := make([]Cell, len(s.rows[at]))
	copy(out, s.rows[at])
	return out, nil
}

// Materialize reconstructs a mutable Grid from the snapshot contents. The
// new grid starts at generation zero; it is a fresh document, not a fork
// of the source's history.
func (s *Snapshot) Materialize() *Grid {
	g := NewWithColumns(s.cols)
	g.hasHeaders = s.hasHeaders
	g.rows = make([][]Cell, len(s.rows))
	for i := range s.rows {
		g.rows[i] = make([]Cell, len(s.rows[i]))
		copy(g.rows[i], s.rows[i])
	}
	return g
}
