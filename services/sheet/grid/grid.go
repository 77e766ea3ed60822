// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package grid

import "fmt"

// Grid is the row/column-indexed cell store.
//
// # Description
//
// Grid owns a dense matrix of cells plus per-column metadata. It is the
// sole mutable data authority of a document: every other component reads
// either the grid (under the session's writer lock) or an immutable
// Snapshot.
//
// Every row always has exactly ColCount() cells, indices are dense
// (deletion compacts) and every mutation increments a monotonic generation
// counter used to detect stale derived data.
//
// # Thread Safety
//
// Grid is NOT internally synchronized. Mutations must be serialized by the
// owning session; concurrent readers must use Snapshot().
type Grid struct {
	rows       [][]Cell
	cols       []Column
	hasHeaders bool
	generation uint64
}

// New creates a grid of the given dimensions filled with empty cells and
// generated column names.
func New(rowCount, colCount int) *Grid {
	if rowCount < 0 || colCount < 0 {
		rowCount, colCount = 0, 0
	}
	g := &Grid{
		rows: make([][]Cell, rowCount),
		cols: make([]Column, colCount),
	}
	for i := range g.rows {
		g.rows[i] = make([]Cell, colCount)
	}
	for j := range g.cols {
		g.cols[j] = Column{Name: defaultColumnName(j)}
	}
	return g
}

// NewWithColumns creates an empty grid with the given column metadata.
func NewWithColumns(cols []Column) *Grid {
	g := &Grid{cols: make([]Column, len(cols))}
	copy(g.cols, cols)
	for j := range g.cols {
		if g.cols[j].Name == "" {
			g.cols[j].Name = defaultColumnName(j)
		}
	}
	return g
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rows) }

// ColCount returns the number of columns.
func (g *Grid) ColCount() int { return len(g.cols) }

// Generation returns the current mutation counter.
func (g *Grid) Generation() uint64 { return g.generation }

// HasHeaders reports whether the first row is treated as a header row by
// consumers (the grid itself stores headers in column metadata, not row 0).
func (g *Grid) HasHeaders() bool { return g.hasHeaders }

// SetHasHeaders toggles the header flag. Metadata only; not a mutation of
// cell content, but still bumps the generation since views may depend on it.
func (g *Grid) SetHasHeaders(v bool) {
	if g.hasHeaders != v {
		g.hasHeaders = v
		g.bump()
	}
}

func (g *Grid) bump() { g.generation++ }

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < len(g.rows) && col >= 0 && col < len(g.cols)
}

// Get returns the cell at (row, col).
//
// # Outputs
//
//   - Cell: A copy of the stored cell.
//   - error: ErrOutOfBounds (wrapped) when indices exceed dimensions.
func (g *Grid) Get(row, col int) (Cell, error) {
	if !g.inBounds(row, col) {
		return Cell{}, outOfBounds("get", row, col)
	}
	return g.rows[row][col], nil
}

// Set replaces the value of the cell at (row, col), preserving its format,
// and returns the prior cell for reversal.
func (g *Grid) Set(row, col int, v Value) (Cell, error) {
	if !g.inBounds(row, col) {
		return Cell{}, outOfBounds("set", row, col)
	}
	prior := g.rows[row][col]
	g.rows[row][col].Value = v
	g.bump()
	return prior, nil
}

// SetCell replaces both value and format of the cell at (row, col) and
// returns the prior cell for reversal. Used by transforms that explicitly
// change formatting (e.g. percent conversion).
func (g *Grid) SetCell(row, col int, c Cell) (Cell, error) {
	if !g.inBounds(row, col) {
		return Cell{}, outOfBounds("set", row, col)
	}
	prior := g.rows[row][col]
	g.rows[row][col] = c
	g.bump()
	return prior, nil
}

// Row returns a copy of the row at the given index.
func (g *Grid) Row(at int) ([]Cell, error) {
	if at < 0 || at >= len(g.rows) {
		return nil, outOfBounds("row", at, -1)
	}
	out := make([]Cell, len(g.rows[at]))
	copy(out, g.rows[at])
	return out, nil
}

// InsertRow inserts data as a new row at the given index, shifting rows at
// index >= at down by one.
//
// # Inputs
//
//   - at: Target index in [0, RowCount()]. at == RowCount() appends.
//   - data: Exactly ColCount() cells. nil inserts an empty row.
//
// # Outputs
//
//   - error: ErrInvalidPosition when at is outside [0, RowCount()];
//     ErrShapeMismatch when data has the wrong length.
func (g *Grid) InsertRow(at int, data []Cell) error {
	if at < 0 || at > len(g.rows) {
		return invalidPosition("insert_row", at, -1)
	}
	if data == nil {
		data = make([]Cell, len(g.cols))
	}
	if len(data) != len(g.cols) {
		return fmt.Errorf("insert_row: row has %d cells, grid has %d columns: %w",
			len(data), len(g.cols), ErrShapeMismatch)
	}
	row := make([]Cell, len(data))
	copy(row, data)
	g.rows = append(g.rows, nil)
	copy(g.rows[at+1:], g.rows[at:])
	g.rows[at] = row
	g.bump()
	return nil
}

// DeleteRow removes the row at the given index, compacting indices, and
// returns the removed contents for reversal.
func (g *Grid) DeleteRow(at int) ([]Cell, error) {
	if at < 0 || at >= len(g.rows) {
		return nil, outOfBounds("delete_row", at, -1)
	}
	removed := g.rows[at]
	g.rows = append(g.rows[:at], g.rows[at+1:]...)
	g.bump()
	return removed, nil
}

// MoveRow removes the row at from and reinserts it at to, as one logical
// step (one generation bump).
func (g *Grid) MoveRow(from, to int) error {
	if from < 0 || from >= len(g.rows) {
		return outOfBounds("move_row", from, -1)
	}
	if to < 0 || to >= len(g.rows) {
		return outOfBounds("move_row", to, -1)
	}
	if from == to {
		return nil
	}
	row := g.rows[from]
	rest := append(g.rows[:from], g.rows[from+1:]...)
	rest = append(rest, nil)
	copy(rest[to+1:], rest[to:])
	rest[to] = row
	g.rows = rest
	g.bump()
	return nil
}

// InsertColumn inserts a column at the given index, updating every row
// uniformly in one logical step.
//
// # Inputs
//
//   - at: Target index in [0, ColCount()].
//   - meta: Column metadata. An empty Name gets a generated one.
//   - cells: One cell per row, or nil for all-empty.
//
// # Outputs
//
//   - error: ErrInvalidPosition or ErrShapeMismatch. On any error the grid
//     is unchanged (all-or-nothing).
func (g *Grid) InsertColumn(at int, meta Column, cells []Cell) error {
	if at < 0 || at > len(g.cols) {
		return invalidPosition("insert_column", -1, at)
	}
	if cells != nil && len(cells) != len(g.rows) {
		return fmt.Errorf("insert_column: %d cells for %d rows: %w",
			len(cells), len(g.rows), ErrShapeMismatch)
	}
	if meta.Name == "" {
		meta.Name = defaultColumnName(at)
	}
	g.cols = append(g.cols, Column{})
	copy(g.cols[at+1:], g.cols[at:])
	g.cols[at] = meta
	for i := range g.rows {
		var c Cell
		if cells != nil {
			c = cells[i]
		}
		g.rows[i] = append(g.rows[i], Cell{})
		copy(g.rows[i][at+1:], g.rows[i][at:])
		g.rows[i][at] = c
	}
	g.bump()
	return nil
}

// DeleteColumn removes the column at the given index from the metadata and
// from every row in one logical step, returning the removed metadata and
// cells for reversal.
func (g *Grid) DeleteColumn(at int) (Column, []Cell, error) {
	if at < 0 || at >= len(g.cols) {
		return Column{}, nil, outOfBounds("delete_column", -1, at)
	}
	meta := g.cols[at]
	removed := make([]Cell, len(g.rows))
	g.cols = append(g.cols[:at], g.cols[at+1:]...)
	for i := range g.rows {
		removed[i] = g.rows[i][at]
		g.rows[i] = append(g.rows[i][:at], g.rows[i][at+1:]...)
	}
	g.bump()
	return meta, removed, nil
}

// ColumnMeta returns the metadata of the column at the given index.
func (g *Grid) ColumnMeta(at int) (Column, error) {
	if at < 0 || at >= len(g.cols) {
		return Column{}, outOfBounds("column_meta", -1, at)
	}
	return g.cols[at], nil
}

// Columns returns a copy of all column metadata.
func (g *Grid) Columns() []Column {
	out := make([]Column, len(g.cols))
	copy(out, g.cols)
	return out
}

// RenameColumn updates a column's header name.
func (g *Grid) RenameColumn(at int, name string) error {
	if at < 0 || at >= len(g.cols) {
		return outOfBounds("rename_column", -1, at)
	}
	g.cols[at].Name = name
	g.bump()
	return nil
}

// ColumnIndex returns the index of the column with the given name, or -1.
func (g *Grid) ColumnIndex(name string) int {
	for i, c := range g.cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnCells returns a copy of all cells in one column, top to bottom.
func (g *Grid) ColumnCells(at int) ([]Cell, error) {
	if at < 0 || at >= len(g.cols) {
		return nil, outOfBounds("column_cells", -1, at)
	}
	out := make([]Cell, len(g.rows))
	for i := range g.rows {
		out[i] = g.rows[i][at]
	}
	return out, nil
}

// InferKinds re-infers the dominant value kind of every column and stores
// it in the column metadata. Does not bump the generation: inference is
// derived data, not content.
func (g *Grid) InferKinds() {
	for j := range g.cols {
		cells := make([]Cell, len(g.rows))
		for i := range g.rows {
			cells[i] = g.rows[i][j]
		}
		g.cols[j].Kind = inferKind(cells)
	}
}

// Equal reports whether two grids have identical dimensions, metadata and
// cell contents (values and formats).
func (g *Grid) Equal(o *Grid) bool {
	if g.RowCount() != o.RowCount() || g.ColCount() != o.ColCount() {
		return false
	}
	if g.hasHeaders != o.hasHeaders {
		return false
	}
	for j := range g.cols {
		if g.cols[j].Name != o.cols[j].Name {
			return false
		}
	}
	for i := range g.rows {
		for j := range g.rows[i] {
			if !g.rows[i][j].Equal(o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}
