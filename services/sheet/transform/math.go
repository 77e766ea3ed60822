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
	"math"

	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
)

// ArithOp is a binary arithmetic operation.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpMod
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "subtract"
	case OpMul:
		return "multiply"
	case OpDiv:
		return "divide"
	case OpPow:
		return "power"
	case OpMod:
		return "modulo"
	default:
		return "arith"
	}
}

// ArithStep applies a binary operation to every numeric-coercible cell of
// the target column. The right operand is either the scalar Operand or,
// when OperandCol is non-negative, the same row's cell in that column.
//
// Division or modulo by zero rewrites the cell to an error value and the
// run continues; the count shows up in Report.Errored.
type ArithStep struct {
	Op      ArithOp
	Operand float64

	// OperandCol, when >= 0, takes the right operand from this column
	// row by row instead of the scalar.
	OperandCol int
}

// NewArithStep builds a scalar arithmetic step.
func NewArithStep(op ArithOp, operand float64) ArithStep {
	return ArithStep{Op: op, Operand: operand, OperandCol: -1}
}

// NewColumnArithStep builds an arithmetic step whose right operand comes
// from another column.
func NewColumnArithStep(op ArithOp, operandCol int) ArithStep {
	return ArithStep{Op: op, OperandCol: operandCol}
}

func (s ArithStep) Name() string { return s.Op.String() }

func (s ArithStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Op < OpAdd || s.Op > OpMod {
		return fmt.Errorf("%w: unknown arithmetic op %d", ErrValidation, s.Op)
	}
	if s.OperandCol >= g.ColCount() {
		return fmt.Errorf("operand column %d: %w", s.OperandCol, grid.ErrOutOfBounds)
	}
	return sel.validate(g)
}

func (s ArithStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(row int, cell grid.Cell) (grid.Value, Outcome) {
		x, ok := cell.Value.AsNumber()
		if !ok {
			return cell.Value, OutcomeUnchanged
		}
		y := s.Operand
		if s.OperandCol >= 0 {
			other, err := g.Get(row, s.OperandCol)
			if err != nil {
				return cell.Value, OutcomeUnchanged
			}
			y, ok = other.Value.AsNumber()
			if !ok {
				return cell.Value, OutcomeUnchanged
			}
		}
		switch s.Op {
		case OpAdd:
			return grid.Number(x + y), OutcomeChanged
		case OpSub:
			return grid.Number(x - y), OutcomeChanged
		case OpMul:
			return grid.Number(x * y), OutcomeChanged
		case OpDiv:
			if y == 0 {
				return grid.ErrorValue("division by zero"), OutcomeErrored
			}
			return grid.Number(x / y), OutcomeChanged
		case OpPow:
			return grid.Number(math.Pow(x, y)), OutcomeChanged
		default:
			if y == 0 {
				return grid.ErrorValue("modulo by zero"), OutcomeErrored
			}
			return grid.Number(math.Mod(x, y)), OutcomeChanged
		}
	})
}

// UnaryOp is a single-operand numeric operation.
type UnaryOp int

const (
	OpAbs UnaryOp = iota
	OpSqrt
	OpFloor
	OpCeil
	OpNegate
)

func (op UnaryOp) String() string {
	switch op {
	case OpAbs:
		return "absolute value"
	case OpSqrt:
		return "square root"
	case OpFloor:
		return "floor"
	case OpCeil:
		return "ceiling"
	default:
		return "negate"
	}
}

// UnaryStep applies a single-operand operation to numeric-coercible cells.
// Square root of a negative rewrites the cell to an error value.
type UnaryStep struct {
	Op UnaryOp
}

func (s UnaryStep) Name() string { return s.Op.String() }

func (s UnaryStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Op < OpAbs || s.Op > OpNegate {
		return fmt.Errorf("%w: unknown unary op %d", ErrValidation, s.Op)
	}
	return sel.validate(g)
}

func (s UnaryStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		x, ok := cell.Value.AsNumber()
		if !ok {
			return cell.Value, OutcomeUnchanged
		}
		switch s.Op {
		case OpAbs:
			return grid.Number(math.Abs(x)), OutcomeChanged
		case OpSqrt:
			if x < 0 {
				return grid.ErrorValue("square root of negative"), OutcomeErrored
			}
			return grid.Number(math.Sqrt(x)), OutcomeChanged
		case OpFloor:
			return grid.Number(math.Floor(x)), OutcomeChanged
		case OpCeil:
			return grid.Number(math.Ceil(x)), OutcomeChanged
		default:
			return grid.Number(-x), OutcomeChanged
		}
	})
}

// RoundStep rounds numeric-coercible cells to a fixed number of decimal
// digits, halves away from zero.
type RoundStep struct {
	Digits int
}

func (s RoundStep) Name() string { return "round" }

func (s RoundStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Digits < 0 || s.Digits > 15 {
		return fmt.Errorf("%w: round digits %d out of [0,15]", ErrValidation, s.Digits)
	}
	return sel.validate(g)
}

func (s RoundStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	pow := math.Pow(10, float64(s.Digits))
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		x, ok := cell.Value.AsNumber()
		if !ok {
			return cell.Value, OutcomeUnchanged
		}
		out := math.Round(x*pow) / pow
		if out == x && cell.Value.Kind() == grid.KindNumber {
			return cell.Value, OutcomeUnchanged
		}
		return grid.Number(out), OutcomeChanged
	})
}

// PercentOfTotalStep rewrites each numeric cell to its share of the
// selection's sum, in percent. A zero total errors every numeric cell.
type PercentOfTotalStep struct{}

func (PercentOfTotalStep) Name() string { return "percent of total" }

func (PercentOfTotalStep) Validate(g *grid.Grid, sel Selection) error {
	return sel.validate(g)
}

func (PercentOfTotalStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	total := 0.0
	for _, row := range sel.Rows {
		cell, err := g.Get(row, sel.Col)
		if err != nil {
			return nil, Report{}, err
		}
		if x, ok := cell.Value.AsNumber(); ok {
			total += x
		}
	}
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		x, ok := cell.Value.AsNumber()
		if !ok {
			return cell.Value, OutcomeUnchanged
		}
		if total == 0 {
			return grid.ErrorValue("percent of zero total"), OutcomeErrored
		}
		return grid.Number(x / total * 100), OutcomeChanged
	})
}

// PercentStyleStep marks numeric cells with a percent number format. The
// stored value is untouched; only presentation changes.
type PercentStyleStep struct{}

func (PercentStyleStep) Name() string { return "percent format" }

func (PercentStyleStep) Validate(g *grid.Grid, sel Selection) error {
	return sel.validate(g)
}

func (PercentStyleStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	var (
		cmds []command.Command
		rep  Report
	)
	for _, row := range sel.Rows {
		if err := ctx.Err(); err != nil {
			return nil, Report{}, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		cell, err := g.Get(row, sel.Col)
		if err != nil {
			return nil, Report{}, err
		}
		if cell.Value.Kind() != grid.KindNumber || cell.Format.NumberFormat == "0.00%" {
			rep.Unchanged++
			continue
		}
		next := cell
		next.Format.NumberFormat = "0.00%"
		cmd, err := command.NewCellEdit(g, row, sel.Col, next)
		if err != nil {
			return nil, Report{}, err
		}
		cmds = append(cmds, cmd)
		rep.Changed++
	}
	return cmds, rep, nil
}
