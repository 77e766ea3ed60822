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

	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
	"github.com/latticehq/lattice/services/sheet/view"
)

// Selection names the cells a transform run targets: a set of physical
// rows in evaluation order and one target column. It is tagged with the
// grid generation it was derived from.
type Selection struct {
	// Rows are physical row indices in evaluation order.
	Rows []int

	// Col is the physical index of the target column.
	Col int

	// Generation is the grid generation the selection was built against.
	Generation uint64
}

// FromView derives a selection from a view's visible rows, in view order.
func FromView(v *view.View, col int) Selection {
	return Selection{Rows: v.Rows(), Col: col, Generation: v.Generation()}
}

// WholeColumn selects every row of one column in physical order.
func WholeColumn(g *grid.Grid, col int) Selection {
	rows := make([]int, g.RowCount())
	for i := range rows {
		rows[i] = i
	}
	return Selection{Rows: rows, Col: col, Generation: g.Generation()}
}

// validate bounds-checks the selection against a grid.
func (s Selection) validate(g *grid.Grid) error {
	if s.Col < 0 || s.Col >= g.ColCount() {
		return fmt.Errorf("selection column %d of %d: %w", s.Col, g.ColCount(), grid.ErrOutOfBounds)
	}
	for _, r := range s.Rows {
		if r < 0 || r >= g.RowCount() {
			return fmt.Errorf("selection row %d of %d: %w", r, g.RowCount(), grid.ErrOutOfBounds)
		}
	}
	return nil
}

// Report summarizes one run: how many targeted cells changed, how many
// were left alone, and how many were rewritten to error values.
type Report struct {
	Changed   int
	Unchanged int
	Errored   int
}

func (r *Report) add(o Report) {
	r.Changed += o.Changed
	r.Unchanged += o.Unchanged
	r.Errored += o.Errored
}

// Step is one stage of a transform pipeline.
//
// # Description
//
// Validate runs before any planning and must be side-effect free. Plan
// reads the grid (a scratch copy during pipeline runs) and returns the
// commands that would realize the step, without applying them.
type Step interface {
	// Name returns the step's history-facing name ("trim whitespace").
	Name() string

	// Validate rejects impossible configurations up front.
	Validate(g *grid.Grid, sel Selection) error

	// Plan computes the step's commands against the grid's current state.
	Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error)
}

// Outcome classifies what a cell function did with one cell.
type Outcome int

const (
	// OutcomeUnchanged leaves the cell as is.
	OutcomeUnchanged Outcome = iota

	// OutcomeChanged replaces the cell value.
	OutcomeChanged

	// OutcomeErrored replaces the cell with an error value.
	OutcomeErrored
)

// CellFunc maps one cell of the target column to its replacement value.
type CellFunc func(row int, cell grid.Cell) (grid.Value, Outcome)

// planCellEdits walks the selection in chunks, applying fn to each
// targeted cell and collecting value edits. Context cancellation is
// observed between chunks and surfaces as ErrCancelled.
func planCellEdits(ctx context.Context, g *grid.Grid, sel Selection, chunkSize int, fn CellFunc) ([]command.Command, Report, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	var (
		cmds []command.Command
		rep  Report
	)
	for start := 0; start < len(sel.Rows); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, Report{}, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		end := start + chunkSize
		if end > len(sel.Rows) {
			end = len(sel.Rows)
		}
		for _, row := range sel.Rows[start:end] {
			cell, err := g.Get(row, sel.Col)
			if err != nil {
				return nil, Report{}, err
			}
			v, outcome := fn(row, cell)
			if outcome == OutcomeUnchanged {
				rep.Unchanged++
				continue
			}
			cmd, err := command.NewCellValueEdit(g, row, sel.Col, v)
			if err != nil {
				return nil, Report{}, err
			}
			cmds = append(cmds, cmd)
			if outcome == OutcomeErrored {
				rep.Errored++
			} else {
				rep.Changed++
			}
		}
	}
	return cmds, rep, nil
}
