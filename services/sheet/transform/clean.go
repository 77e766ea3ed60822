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
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/latticehq/lattice/services/sheet/assist"
	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
)

// =============================================================================
// Dedup
// =============================================================================

var dedupSpace = regexp.MustCompile(`\s+`)

// DedupStep removes rows whose key columns repeat an earlier row's key.
// The first occurrence in selection order wins.
type DedupStep struct {
	// KeyCols are the columns forming the identity key. Empty uses the
	// selection's target column.
	KeyCols []int

	// Normalize lowercases and collapses whitespace before comparing, so
	// "Acme  Corp" and "acme corp" count as duplicates.
	Normalize bool
}

func (s DedupStep) Name() string { return "remove duplicate rows" }

func (s DedupStep) Validate(g *grid.Grid, sel Selection) error {
	for _, c := range s.KeyCols {
		if c < 0 || c >= g.ColCount() {
			return fmt.Errorf("dedup key column %d: %w", c, grid.ErrOutOfBounds)
		}
	}
	return sel.validate(g)
}

func (s DedupStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, Report{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	keyCols := s.KeyCols
	if len(keyCols) == 0 {
		keyCols = []int{sel.Col}
	}

	seen := make(map[string]bool, len(sel.Rows))
	var doomed []int
	var rep Report
	for _, row := range sel.Rows {
		var parts []string
		for _, c := range keyCols {
			cell, err := g.Get(row, c)
			if err != nil {
				return nil, Report{}, err
			}
			parts = append(parts, cell.Value.AsText())
		}
		key := strings.Join(parts, "\x1f")
		if s.Normalize {
			key = dedupSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(key)), " ")
		}
		if seen[key] {
			doomed = append(doomed, row)
			rep.Changed++
		} else {
			seen[key] = true
			rep.Unchanged++
		}
	}

	// Delete bottom-up so earlier deletions never shift later targets.
	sort.Sort(sort.Reverse(sort.IntSlice(doomed)))
	cmds := make([]command.Command, 0, len(doomed))
	for _, row := range doomed {
		cmds = append(cmds, command.NewRowDelete(row))
	}
	return cmds, rep, nil
}

// =============================================================================
// Fill
// =============================================================================

// FillMode selects how FillStep fills empty cells.
type FillMode int

const (
	// FillConstant writes a fixed value into every empty cell.
	FillConstant FillMode = iota

	// FillForward copies the nearest earlier non-empty cell downward.
	// Leading empties with no earlier value stay empty.
	FillForward

	// FillBackward copies the nearest later non-empty cell upward.
	FillBackward

	// FillModel asks the configured assistant for each empty cell.
	FillModel
)

// FillStep fills empty cells of the target column.
//
// Forward and backward fill copy the source cell's value and format, so a
// filled-down percentage keeps its presentation.
type FillStep struct {
	Mode     FillMode
	Constant grid.Value

	// Suggester serves FillModel. Required for that mode only.
	Suggester assist.FillSuggester
}

func (s FillStep) Name() string {
	switch s.Mode {
	case FillForward:
		return "fill down"
	case FillBackward:
		return "fill up"
	case FillModel:
		return "fill with suggestions"
	default:
		return "fill constant"
	}
}

func (s FillStep) Validate(g *grid.Grid, sel Selection) error {
	switch s.Mode {
	case FillConstant:
		if s.Constant.IsEmpty() {
			return fmt.Errorf("%w: constant fill with empty value", ErrValidation)
		}
	case FillForward, FillBackward:
	case FillModel:
		if s.Suggester == nil {
			return fmt.Errorf("%w: %w", ErrValidation, assist.ErrUnavailable)
		}
	default:
		return fmt.Errorf("%w: unknown fill mode %d", ErrValidation, s.Mode)
	}
	return sel.validate(g)
}

func (s FillStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	switch s.Mode {
	case FillForward, FillBackward:
		return s.planDirectional(ctx, g, sel)
	case FillModel:
		return s.planModel(ctx, g, sel)
	default:
		return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
			if !cell.Value.IsEmpty() {
				return cell.Value, OutcomeUnchanged
			}
			return s.Constant, OutcomeChanged
		})
	}
}

func (s FillStep) planDirectional(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	rows := sel.Rows
	if s.Mode == FillBackward {
		rows = make([]int, len(sel.Rows))
		for i, r := range sel.Rows {
			rows[len(rows)-1-i] = r
		}
	}

	var (
		cmds    []command.Command
		rep     Report
		carried grid.Cell
		have    bool
	)
	for i, row := range rows {
		if i%defaultChunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, Report{}, fmt.Errorf("%w: %v", ErrCancelled, err)
			}
		}
		cell, err := g.Get(row, sel.Col)
		if err != nil {
			return nil, Report{}, err
		}
		if !cell.Value.IsEmpty() {
			carried, have = cell, true
			rep.Unchanged++
			continue
		}
		if !have {
			rep.Unchanged++
			continue
		}
		cmd, err := command.NewCellEdit(g, row, sel.Col, carried)
		if err != nil {
			return nil, Report{}, err
		}
		cmds = append(cmds, cmd)
		rep.Changed++
	}
	return cmds, rep, nil
}

func (s FillStep) planModel(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	snap := g.Snapshot()
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
		if !cell.Value.IsEmpty() {
			rep.Unchanged++
			continue
		}
		v, err := s.Suggester.SuggestFill(ctx, snap, sel.Col, row)
		if err != nil {
			return nil, Report{}, fmt.Errorf("fill suggestion for row %d: %w", row, err)
		}
		if v.IsEmpty() {
			rep.Unchanged++
			continue
		}
		cmd, err := command.NewCellValueEdit(g, row, sel.Col, v)
		if err != nil {
			return nil, Report{}, err
		}
		cmds = append(cmds, cmd)
		rep.Changed++
	}
	return cmds, rep, nil
}

// =============================================================================
// Series
// =============================================================================

// SeriesInterval selects the increment of a SeriesStep.
type SeriesInterval int

const (
	// IntervalNumeric adds Step to a numeric start each row.
	IntervalNumeric SeriesInterval = iota

	// IntervalDaily adds Step days to a date start each row.
	IntervalDaily

	// IntervalWeekly adds Step weeks.
	IntervalWeekly

	// IntervalMonthly adds Step calendar months, day clamped.
	IntervalMonthly
)

// SeriesStep overwrites the selection with a generated sequence: numbers
// with a fixed stride, or dates walking daily, weekly or monthly from a
// start value.
type SeriesStep struct {
	Start    grid.Value
	Step     float64
	Interval SeriesInterval
}

func (s SeriesStep) Name() string { return "fill series" }

func (s SeriesStep) Validate(g *grid.Grid, sel Selection) error {
	switch s.Interval {
	case IntervalNumeric:
		if s.Start.Kind() != grid.KindNumber {
			return fmt.Errorf("%w: numeric series needs a number start", ErrValidation)
		}
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		if s.Start.Kind() != grid.KindDateTime {
			return fmt.Errorf("%w: date series needs a datetime start", ErrValidation)
		}
		if s.Step != float64(int(s.Step)) {
			return fmt.Errorf("%w: date series stride must be whole", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown series interval %d", ErrValidation, s.Interval)
	}
	return sel.validate(g)
}

func (s SeriesStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	i := 0
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		var v grid.Value
		switch s.Interval {
		case IntervalNumeric:
			v = grid.Number(s.Start.Number() + s.Step*float64(i))
		case IntervalDaily:
			v = grid.DateTime(s.Start.Time().AddDate(0, 0, int(s.Step)*i))
		case IntervalWeekly:
			v = grid.DateTime(s.Start.Time().AddDate(0, 0, 7*int(s.Step)*i))
		default:
			v = grid.DateTime(addMonthsClamped(s.Start.Time(), int(s.Step)*i))
		}
		i++
		if cell.Value.Equal(v) {
			return cell.Value, OutcomeUnchanged
		}
		return v, OutcomeChanged
	})
}

// =============================================================================
// Type conversion
// =============================================================================

// ConvertStep coerces the target column to one value kind.
//
// Cells that cannot be represented in the target kind either become error
// values (Strict) or stay untouched.
type ConvertStep struct {
	Target grid.Kind

	// Strict rewrites inconvertible non-empty cells to error values
	// instead of leaving them alone.
	Strict bool

	// DatePatterns feeds text-to-date conversion. nil uses
	// DefaultDatePatterns.
	DatePatterns []string
}

func (s ConvertStep) Name() string { return "convert type" }

func (s ConvertStep) Validate(g *grid.Grid, sel Selection) error {
	switch s.Target {
	case grid.KindText, grid.KindNumber, grid.KindBool, grid.KindDateTime:
	default:
		return fmt.Errorf("%w: cannot convert to kind %s", ErrValidation, s.Target)
	}
	return sel.validate(g)
}

func (s ConvertStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	patterns := s.DatePatterns
	if len(patterns) == 0 {
		patterns = DefaultDatePatterns
	}
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.IsEmpty() || cell.Value.Kind() == s.Target {
			return cell.Value, OutcomeUnchanged
		}
		if v, ok := convertValue(cell.Value, s.Target, patterns); ok {
			return v, OutcomeChanged
		}
		if s.Strict {
			return grid.ErrorValue("cannot convert to " + s.Target.String()), OutcomeErrored
		}
		return cell.Value, OutcomeUnchanged
	})
}

func convertValue(v grid.Value, target grid.Kind, patterns []string) (grid.Value, bool) {
	switch target {
	case grid.KindText:
		return grid.Text(v.AsText()), true
	case grid.KindNumber:
		if n, ok := v.AsNumber(); ok {
			return grid.Number(n), true
		}
		return grid.Empty(), false
	case grid.KindBool:
		switch v.Kind() {
		case grid.KindBool:
			return v, true
		case grid.KindNumber:
			return grid.Bool(v.Number() != 0), true
		case grid.KindText:
			if b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(v.Text()))); err == nil {
				return grid.Bool(b), true
			}
		}
		return grid.Empty(), false
	case grid.KindDateTime:
		if v.Kind() == grid.KindText {
			in := strings.TrimSpace(v.Text())
			for _, layout := range patterns {
				if t, err := time.Parse(layout, in); err == nil {
					return grid.DateTime(t), true
				}
			}
		}
		return grid.Empty(), false
	default:
		return grid.Empty(), false
	}
}
