// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

import (
	"fmt"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// =============================================================================
// Cell edit
// =============================================================================

type cellEdit struct {
	meta
	row, col int
	before   grid.Cell
	after    grid.Cell
}

// NewCellEdit builds a command that replaces the cell at (row, col) with
// after (value and format). The current cell is captured as the inversion
// state; construction fails if the coordinates are out of bounds.
func NewCellEdit(g *grid.Grid, row, col int, after grid.Cell) (Command, error) {
	before, err := g.Get(row, col)
	if err != nil {
		return nil, err
	}
	return &cellEdit{
		meta:   newMeta(KindCellEdit, fmt.Sprintf("Edit cell (%d,%d)", row, col), Range{row, row, col, col}),
		row:    row,
		col:    col,
		before: before,
		after:  after,
	}, nil
}

// NewCellValueEdit builds a cell edit that replaces only the value,
// preserving the current format.
func NewCellValueEdit(g *grid.Grid, row, col int, v grid.Value) (Command, error) {
	before, err := g.Get(row, col)
	if err != nil {
		return nil, err
	}
	return &cellEdit{
		meta:   newMeta(KindCellEdit, fmt.Sprintf("Edit cell (%d,%d)", row, col), Range{row, row, col, col}),
		row:    row,
		col:    col,
		before: before,
		after:  grid.Cell{Value: v, Format: before.Format},
	}, nil
}

func (c *cellEdit) validate(g *grid.Grid) error {
	_, err := g.Get(c.row, c.col)
	return err
}

func (c *cellEdit) apply(g *grid.Grid) error {
	_, err := g.SetCell(c.row, c.col, c.after)
	return err
}

func (c *cellEdit) invert(g *grid.Grid) error {
	_, err := g.SetCell(c.row, c.col, c.before)
	return err
}

// =============================================================================
// Row commands
// =============================================================================

type rowInsert struct {
	meta
	at   int
	data []grid.Cell
}

// NewRowInsert builds a command inserting data as a new row at the given
// index. nil data inserts an empty row.
func NewRowInsert(at int, data []grid.Cell) Command {
	return &rowInsert{
		meta: newMeta(KindRowInsert, fmt.Sprintf("Insert row %d", at), Range{at, at, -1, -1}),
		at:   at,
		data: data,
	}
}

func (c *rowInsert) validate(g *grid.Grid) error {
	if c.at < 0 || c.at > g.RowCount() {
		return &grid.PositionError{Op: "insert_row", Row: c.at, Col: -1, Err: grid.ErrInvalidPosition}
	}
	if c.data != nil && len(c.data) != g.ColCount() {
		return fmt.Errorf("row has %d cells, grid has %d columns: %w",
			len(c.data), g.ColCount(), grid.ErrShapeMismatch)
	}
	return nil
}

func (c *rowInsert) apply(g *grid.Grid) error {
	return g.InsertRow(c.at, c.data)
}

func (c *rowInsert) invert(g *grid.Grid) error {
	_, err := g.DeleteRow(c.at)
	return err
}

type rowDelete struct {
	meta
	at      int
	removed []grid.Cell
}

// NewRowDelete builds a command deleting the row at the given index. The
// removed contents are captured at apply time for inversion.
func NewRowDelete(at int) Command {
	return &rowDelete{
		meta: newMeta(KindRowDelete, fmt.Sprintf("Delete row %d", at), Range{at, at, -1, -1}),
		at:   at,
	}
}

func (c *rowDelete) validate(g *grid.Grid) error {
	if c.at < 0 || c.at >= g.RowCount() {
		return &grid.PositionError{Op: "delete_row", Row: c.at, Col: -1, Err: grid.ErrOutOfBounds}
	}
	return nil
}

func (c *rowDelete) apply(g *grid.Grid) error {
	removed, err := g.DeleteRow(c.at)
	if err != nil {
		return err
	}
	c.removed = removed
	return nil
}

func (c *rowDelete) invert(g *grid.Grid) error {
	return g.InsertRow(c.at, c.removed)
}

type rowMove struct {
	meta
	from, to int
}

// NewRowMove builds a command moving a row from one index to another as a
// single undo step.
func NewRowMove(from, to int) Command {
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	return &rowMove{
		meta: newMeta(KindRowMove, fmt.Sprintf("Move row %d to %d", from, to), Range{lo, hi, -1, -1}),
		from: from,
		to:   to,
	}
}

func (c *rowMove) validate(g *grid.Grid) error {
	if c.from < 0 || c.from >= g.RowCount() {
		return &grid.PositionError{Op: "move_row", Row: c.from, Col: -1, Err: grid.ErrOutOfBounds}
	}
	if c.to < 0 || c.to >= g.RowCount() {
		return &grid.PositionError{Op: "move_row", Row: c.to, Col: -1, Err: grid.ErrOutOfBounds}
	}
	return nil
}

func (c *rowMove) apply(g *grid.Grid) error {
	return g.MoveRow(c.from, c.to)
}

func (c *rowMove) invert(g *grid.Grid) error {
	return g.MoveRow(c.to, c.from)
}

// =============================================================================
// Column commands
// =============================================================================

type columnInsert struct {
	meta
	at    int
	cmeta grid.Column
	cells []grid.Cell
}

// NewColumnInsert builds a command inserting a column at the given index.
// nil cells inserts an all-empty column.
func NewColumnInsert(at int, cm grid.Column, cells []grid.Cell) Command {
	name := cm.Name
	if name == "" {
		name = fmt.Sprintf("column %d", at)
	}
	return &columnInsert{
		meta:  newMeta(KindColumnInsert, fmt.Sprintf("Insert column %q", name), Range{-1, -1, at, at}),
		at:    at,
		cmeta: cm,
		cells: cells,
	}
}

func (c *columnInsert) validate(g *grid.Grid) error {
	if c.at < 0 || c.at > g.ColCount() {
		return &grid.PositionError{Op: "insert_column", Row: -1, Col: c.at, Err: grid.ErrInvalidPosition}
	}
	if c.cells != nil && len(c.cells) != g.RowCount() {
		return fmt.Errorf("column has %d cells, grid has %d rows: %w",
			len(c.cells), g.RowCount(), grid.ErrShapeMismatch)
	}
	return nil
}

func (c *columnInsert) apply(g *grid.Grid) error {
	return g.InsertColumn(c.at, c.cmeta, c.cells)
}

func (c *columnInsert) invert(g *grid.Grid) error {
	_, _, err := g.DeleteColumn(c.at)
	return err
}

type columnDelete struct {
	meta
	at      int
	cmeta   grid.Column
	removed []grid.Cell
}

// NewColumnDelete builds a command deleting the column at the given index
// together with every row's corresponding cell. Metadata and cells are
// captured at apply time for inversion.
func NewColumnDelete(at int) Command {
	return &columnDelete{
		meta: newMeta(KindColumnDelete, fmt.Sprintf("Delete column %d", at), Range{-1, -1, at, at}),
		at:   at,
	}
}

func (c *columnDelete) validate(g *grid.Grid) error {
	if c.at < 0 || c.at >= g.ColCount() {
		return &grid.PositionError{Op: "delete_column", Row: -1, Col: c.at, Err: grid.ErrOutOfBounds}
	}
	return nil
}

func (c *columnDelete) apply(g *grid.Grid) error {
	cm, removed, err := g.DeleteColumn(c.at)
	if err != nil {
		return err
	}
	c.cmeta = cm
	c.removed = removed
	return nil
}

func (c *columnDelete) invert(g *grid.Grid) error {
	return g.InsertColumn(c.at, c.cmeta, c.removed)
}
