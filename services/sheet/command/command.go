// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

import (
	"time"

	"github.com/google/uuid"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// Kind identifies the category of a command.
type Kind string

const (
	KindCellEdit      Kind = "cell_edit"
	KindRowInsert     Kind = "row_insert"
	KindRowDelete     Kind = "row_delete"
	KindRowMove       Kind = "row_move"
	KindColumnInsert  Kind = "column_insert"
	KindColumnDelete  Kind = "column_delete"
	KindBulkTransform Kind = "bulk_transform"
)

// Range is the inclusive rectangle of cells a command touches.
// Structural commands over whole rows/columns use -1 for the unconstrained
// axis.
type Range struct {
	StartRow, EndRow int
	StartCol, EndCol int
}

// union expands r to cover o.
func (r Range) union(o Range) Range {
	min := func(a, b int) int {
		if a < 0 || b < 0 {
			return -1
		}
		if a < b {
			return a
		}
		return b
	}
	max := func(a, b int) int {
		if a < 0 || b < 0 {
			return -1
		}
		if a > b {
			return a
		}
		return b
	}
	return Range{
		StartRow: min(r.StartRow, o.StartRow),
		EndRow:   max(r.EndRow, o.EndRow),
		StartCol: min(r.StartCol, o.StartCol),
		EndCol:   max(r.EndCol, o.EndCol),
	}
}

// Command is an atomic, invertible grid mutation.
//
// # Description
//
// A command carries enough before/after state to apply itself to a grid
// and to invert that application exactly. Commands are built by the
// constructors in this package, applied once by the history Manager, and
// exclusively owned by it afterwards. The grid never holds references to
// historical commands.
//
// validate must be side-effect free; apply and invert must either fully
// succeed or leave the grid untouched.
type Command interface {
	// ID returns the unique command identifier.
	ID() uuid.UUID

	// Kind returns the command category.
	Kind() Kind

	// Description returns a short human-readable summary for history
	// viewers ("Delete row 3", "Trim whitespace in Name").
	Description() string

	// Timestamp returns the construction time.
	Timestamp() time.Time

	// AffectedRange returns the inclusive cell rectangle the command
	// touches.
	AffectedRange() Range

	validate(g *grid.Grid) error
	apply(g *grid.Grid) error
	invert(g *grid.Grid) error
}

// meta is the shared identity of every concrete command.
type meta struct {
	id   uuid.UUID
	kind Kind
	desc string
	ts   time.Time
	rng  Range
}

func newMeta(kind Kind, desc string, rng Range) meta {
	return meta{
		id:   uuid.New(),
		kind: kind,
		desc: desc,
		ts:   time.Now(),
		rng:  rng,
	}
}

func (m meta) ID() uuid.UUID        { return m.id }
func (m meta) Kind() Kind           { return m.kind }
func (m meta) Description() string  { return m.desc }
func (m meta) Timestamp() time.Time { return m.ts }
func (m meta) AffectedRange() Range { return m.rng }
