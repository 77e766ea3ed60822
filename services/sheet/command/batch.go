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

// batch groups child commands into one history entry.
type batch struct {
	meta
	children []Command
}

// NewBatch builds a composite command from children, applied in order and
// inverted in reverse order. A bulk transform over N rows is one batch, so
// one undo reverts the whole thing.
//
// # Inputs
//
//   - desc: History description ("Trim whitespace in Name", "Remove 12
//     duplicate rows").
//   - children: At least one child command.
//
// # Outputs
//
//   - Command: The composite, or nil with ErrEmptyBatch.
func NewBatch(desc string, children []Command) (Command, error) {
	if len(children) == 0 {
		return nil, ErrEmptyBatch
	}
	rng := children[0].AffectedRange()
	for _, c := range children[1:] {
		rng = rng.union(c.AffectedRange())
	}
	return &batch{
		meta:     newMeta(KindBulkTransform, desc, rng),
		children: children,
	}, nil
}

// Size returns the number of children when cmd is a batch, else 1.
func Size(cmd Command) int {
	if b, ok := cmd.(*batch); ok {
		return len(b.children)
	}
	return 1
}

func (b *batch) validate(g *grid.Grid) error {
	// Children run sequentially against the mutating grid, so only the
	// first child can be bounds-checked against the current state; the
	// apply path rolls back on any later failure.
	return b.children[0].validate(g)
}

func (b *batch) apply(g *grid.Grid) error {
	for i, c := range b.children {
		if err := c.validate(g); err == nil {
			err = c.apply(g)
			if err == nil {
				continue
			}
			b.rollback(g, i)
			return fmt.Errorf("batch child %d/%d: %w", i+1, len(b.children), err)
		} else {
			b.rollback(g, i)
			return fmt.Errorf("batch child %d/%d: %w", i+1, len(b.children), err)
		}
	}
	return nil
}

// rollback inverts children [0, upto) in reverse order, restoring the grid
// to its pre-batch state after a mid-batch failure.
func (b *batch) rollback(g *grid.Grid, upto int) {
	for i := upto - 1; i >= 0; i-- {
		// Inversion of a just-applied child cannot fail on a grid it
		// just mutated; ignore the error to finish the unwind.
		_ = b.children[i].invert(g)
	}
}

func (b *batch) invert(g *grid.Grid) error {
	for i := len(b.children) - 1; i >= 0; i-- {
		if err := b.children[i].invert(g); err != nil {
			return fmt.Errorf("batch invert child %d: %w", i, err)
		}
	}
	return nil
}

// Replay validates and applies cmd to g outside of history tracking.
//
// Planners use it to dry-run commands against a scratch grid before
// committing the real batch through a Manager. Durable mutations must
// never bypass the Manager.
func Replay(g *grid.Grid, cmd Command) error {
	if err := cmd.validate(g); err != nil {
		return err
	}
	return cmd.apply(g)
}
