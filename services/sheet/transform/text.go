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
	"strings"
	"unicode"

	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
)

// =============================================================================
// Case
// =============================================================================

// CaseMode selects a case rewrite.
type CaseMode int

const (
	CaseUpper CaseMode = iota
	CaseLower
	CaseTitle
)

// CaseStep rewrites the case of text cells. Non-text cells are skipped.
type CaseStep struct {
	Mode CaseMode
}

func (s CaseStep) Name() string {
	switch s.Mode {
	case CaseUpper:
		return "uppercase"
	case CaseLower:
		return "lowercase"
	default:
		return "title case"
	}
}

func (s CaseStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Mode < CaseUpper || s.Mode > CaseTitle {
		return fmt.Errorf("%w: unknown case mode %d", ErrValidation, s.Mode)
	}
	return sel.validate(g)
}

func (s CaseStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindText {
			return cell.Value, OutcomeUnchanged
		}
		in := cell.Value.Text()
		var out string
		switch s.Mode {
		case CaseUpper:
			out = strings.ToUpper(in)
		case CaseLower:
			out = strings.ToLower(in)
		case CaseTitle:
			out = titleCase(in)
		}
		if out == in {
			return cell.Value, OutcomeUnchanged
		}
		return grid.Text(out), OutcomeChanged
	})
}

// titleCase uppercases the first letter of each space-separated word and
// lowercases the rest. ASCII-oriented; words keep their separators.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	atStart := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			atStart = true
			b.WriteRune(r)
		case atStart:
			b.WriteRune(unicode.ToUpper(r))
			atStart = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// =============================================================================
// Trim
// =============================================================================

// TrimMode selects which whitespace a TrimStep removes.
type TrimMode int

const (
	// TrimBoth strips leading and trailing whitespace.
	TrimBoth TrimMode = iota

	// TrimLeading strips leading whitespace only.
	TrimLeading

	// TrimTrailing strips trailing whitespace only.
	TrimTrailing

	// TrimCollapse strips both ends and collapses internal runs of
	// whitespace to a single space.
	TrimCollapse
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// TrimStep removes whitespace from text cells.
type TrimStep struct {
	Mode TrimMode
}

func (s TrimStep) Name() string { return "trim whitespace" }

func (s TrimStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Mode < TrimBoth || s.Mode > TrimCollapse {
		return fmt.Errorf("%w: unknown trim mode %d", ErrValidation, s.Mode)
	}
	return sel.validate(g)
}

func (s TrimStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindText {
			return cell.Value, OutcomeUnchanged
		}
		in := cell.Value.Text()
		var out string
		switch s.Mode {
		case TrimLeading:
			out = strings.TrimLeftFunc(in, unicode.IsSpace)
		case TrimTrailing:
			out = strings.TrimRightFunc(in, unicode.IsSpace)
		case TrimCollapse:
			out = whitespaceRun.ReplaceAllString(strings.TrimSpace(in), " ")
		default:
			out = strings.TrimSpace(in)
		}
		if out == in {
			return cell.Value, OutcomeUnchanged
		}
		return grid.Text(out), OutcomeChanged
	})
}

// =============================================================================
// Find and replace
// =============================================================================

// ReplaceStep substitutes text in text cells, either as a literal match or
// a regular expression.
type ReplaceStep struct {
	Find    string
	Replace string
	Regexp  bool

	re *regexp.Regexp
}

func (s *ReplaceStep) Name() string { return "find and replace" }

func (s *ReplaceStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Find == "" {
		return fmt.Errorf("%w: empty find pattern", ErrValidation)
	}
	if s.Regexp {
		re, err := regexp.Compile(s.Find)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		s.re = re
	}
	return sel.validate(g)
}

func (s *ReplaceStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindText {
			return cell.Value, OutcomeUnchanged
		}
		in := cell.Value.Text()
		var out string
		if s.Regexp {
			out = s.re.ReplaceAllString(in, s.Replace)
		} else {
			out = strings.ReplaceAll(in, s.Find, s.Replace)
		}
		if out == in {
			return cell.Value, OutcomeUnchanged
		}
		return grid.Text(out), OutcomeChanged
	})
}

// =============================================================================
// Scrub
// =============================================================================

// ScrubMode selects a character-class rewrite.
type ScrubMode int

const (
	// ScrubRemoveSpecial keeps letters, digits and spaces only.
	ScrubRemoveSpecial ScrubMode = iota

	// ScrubRemoveDigits strips all digits.
	ScrubRemoveDigits

	// ScrubExtractDigits keeps digits only.
	ScrubExtractDigits
)

// ScrubStep strips character classes from text cells.
type ScrubStep struct {
	Mode ScrubMode
}

func (s ScrubStep) Name() string {
	switch s.Mode {
	case ScrubRemoveDigits:
		return "remove digits"
	case ScrubExtractDigits:
		return "extract digits"
	default:
		return "remove special characters"
	}
}

func (s ScrubStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Mode < ScrubRemoveSpecial || s.Mode > ScrubExtractDigits {
		return fmt.Errorf("%w: unknown scrub mode %d", ErrValidation, s.Mode)
	}
	return sel.validate(g)
}

func (s ScrubStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	keep := func(r rune) bool {
		switch s.Mode {
		case ScrubRemoveDigits:
			return !unicode.IsDigit(r)
		case ScrubExtractDigits:
			return unicode.IsDigit(r)
		default:
			return unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' '
		}
	}
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindText {
			return cell.Value, OutcomeUnchanged
		}
		in := cell.Value.Text()
		var b strings.Builder
		b.Grow(len(in))
		for _, r := range in {
			if keep(r) {
				b.WriteRune(r)
			}
		}
		out := b.String()
		if out == in {
			return cell.Value, OutcomeUnchanged
		}
		return grid.Text(out), OutcomeChanged
	})
}

// =============================================================================
// Split
// =============================================================================

// SplitStep splits the target column's text on a separator into new
// "<name>_PartN" columns inserted directly after it. The source column is
// left intact. The number of part columns is the widest split observed in
// the selection, capped by MaxParts when positive.
type SplitStep struct {
	Separator string
	MaxParts  int
}

func (s SplitStep) Name() string { return "split column" }

func (s SplitStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Separator == "" {
		return fmt.Errorf("%w: empty split separator", ErrValidation)
	}
	return sel.validate(g)
}

func (s SplitStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, Report{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	// First pass: split every selected cell and find the widest result.
	parts := make(map[int][]string, len(sel.Rows))
	width := 0
	var rep Report
	for _, row := range sel.Rows {
		cell, err := g.Get(row, sel.Col)
		if err != nil {
			return nil, Report{}, err
		}
		if cell.Value.Kind() != grid.KindText {
			rep.Unchanged++
			continue
		}
		p := strings.Split(cell.Value.Text(), s.Separator)
		if s.MaxParts > 0 && len(p) > s.MaxParts {
			head := p[:s.MaxParts-1]
			tail := strings.Join(p[s.MaxParts-1:], s.Separator)
			p = append(append([]string{}, head...), tail)
		}
		parts[row] = p
		if len(p) > width {
			width = len(p)
		}
		rep.Changed++
	}
	if width == 0 {
		return nil, rep, nil
	}

	meta, err := g.ColumnMeta(sel.Col)
	if err != nil {
		return nil, Report{}, err
	}

	cmds := make([]command.Command, 0, width)
	for n := 0; n < width; n++ {
		cells := make([]grid.Cell, g.RowCount())
		for row, p := range parts {
			if n < len(p) && p[n] != "" {
				cells[row] = grid.NewCell(grid.Text(p[n]))
			}
		}
		cmds = append(cmds, command.NewColumnInsert(
			sel.Col+1+n,
			grid.Column{Name: fmt.Sprintf("%s_Part%d", meta.Name, n+1), Kind: grid.KindText},
			cells,
		))
	}
	return cmds, rep, nil
}

// =============================================================================
// Combine
// =============================================================================

// CombineStep joins the text of several columns into one new column
// appended at the right edge of the grid.
type CombineStep struct {
	// Cols are the physical source column indices, joined in order.
	Cols []int

	// Separator goes between non-empty parts.
	Separator string

	// Header is the new column's name. Empty derives one from the sources.
	Header string
}

func (s CombineStep) Name() string { return "combine columns" }

func (s CombineStep) Validate(g *grid.Grid, sel Selection) error {
	if len(s.Cols) < 2 {
		return fmt.Errorf("%w: combine needs at least two source columns", ErrValidation)
	}
	for _, c := range s.Cols {
		if c < 0 || c >= g.ColCount() {
			return fmt.Errorf("combine source column %d: %w", c, grid.ErrOutOfBounds)
		}
	}
	return sel.validate(g)
}

func (s CombineStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, Report{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	name := s.Header
	if name == "" {
		var ns []string
		for _, c := range s.Cols {
			meta, err := g.ColumnMeta(c)
			if err != nil {
				return nil, Report{}, err
			}
			ns = append(ns, meta.Name)
		}
		name = strings.Join(ns, "_")
	}

	var rep Report
	cells := make([]grid.Cell, g.RowCount())
	for _, row := range sel.Rows {
		var pieces []string
		for _, c := range s.Cols {
			cell, err := g.Get(row, c)
			if err != nil {
				return nil, Report{}, err
			}
			if !cell.Value.IsEmpty() {
				pieces = append(pieces, cell.Value.AsText())
			}
		}
		if len(pieces) == 0 {
			rep.Unchanged++
			continue
		}
		cells[row] = grid.NewCell(grid.Text(strings.Join(pieces, s.Separator)))
		rep.Changed++
	}

	cmd := command.NewColumnInsert(g.ColCount(), grid.Column{Name: name, Kind: grid.KindText}, cells)
	return []command.Command{cmd}, rep, nil
}
