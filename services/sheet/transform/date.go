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
	"strings"
	"time"

	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
)

// DefaultDatePatterns is the ordered list of layouts ParseDateStep tries
// when none are configured. First match wins, so the unambiguous ISO form
// leads and US month-first precedes day-first.
var DefaultDatePatterns = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDateStep converts text cells to datetime values by trying each
// layout in order. Unparseable non-empty text becomes an error value.
type ParseDateStep struct {
	// Patterns are Go time layouts tried in order. nil uses
	// DefaultDatePatterns.
	Patterns []string
}

func (s ParseDateStep) Name() string { return "parse dates" }

func (s ParseDateStep) Validate(g *grid.Grid, sel Selection) error {
	for _, p := range s.Patterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty date pattern", ErrValidation)
		}
	}
	return sel.validate(g)
}

func (s ParseDateStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	patterns := s.Patterns
	if len(patterns) == 0 {
		patterns = DefaultDatePatterns
	}
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindText {
			return cell.Value, OutcomeUnchanged
		}
		in := strings.TrimSpace(cell.Value.Text())
		if in == "" {
			return cell.Value, OutcomeUnchanged
		}
		for _, layout := range patterns {
			if t, err := time.Parse(layout, in); err == nil {
				return grid.DateTime(t), OutcomeChanged
			}
		}
		return grid.ErrorValue("unparseable date: " + in), OutcomeErrored
	})
}

// FormatDateStep renders datetime cells as text in a fixed layout.
type FormatDateStep struct {
	Layout string
}

func (s FormatDateStep) Name() string { return "format dates" }

func (s FormatDateStep) Validate(g *grid.Grid, sel Selection) error {
	if strings.TrimSpace(s.Layout) == "" {
		return fmt.Errorf("%w: empty date layout", ErrValidation)
	}
	return sel.validate(g)
}

func (s FormatDateStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindDateTime {
			return cell.Value, OutcomeUnchanged
		}
		return grid.Text(cell.Value.Time().Format(s.Layout)), OutcomeChanged
	})
}

// ShiftDaysStep moves datetime cells by a signed number of days.
type ShiftDaysStep struct {
	Days int
}

func (s ShiftDaysStep) Name() string { return "shift days" }

func (s ShiftDaysStep) Validate(g *grid.Grid, sel Selection) error {
	return sel.validate(g)
}

func (s ShiftDaysStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindDateTime || s.Days == 0 {
			return cell.Value, OutcomeUnchanged
		}
		return grid.DateTime(cell.Value.Time().AddDate(0, 0, s.Days)), OutcomeChanged
	})
}

// ShiftMonthsStep moves datetime cells by a signed number of calendar
// months. The day of month clamps to the target month's length, so
// Jan 31 + 1 month is Feb 28 (or 29), never Mar 2.
type ShiftMonthsStep struct {
	Months int
}

func (s ShiftMonthsStep) Name() string { return "shift months" }

func (s ShiftMonthsStep) Validate(g *grid.Grid, sel Selection) error {
	return sel.validate(g)
}

func (s ShiftMonthsStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindDateTime || s.Months == 0 {
			return cell.Value, OutcomeUnchanged
		}
		return grid.DateTime(addMonthsClamped(cell.Value.Time(), s.Months)), OutcomeChanged
	})
}

// addMonthsClamped adds n calendar months, clamping the day of month to
// the target month's last day instead of letting overflow roll forward.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DateComponent selects what ExtractComponentStep pulls out of a date.
type DateComponent int

const (
	CompYear DateComponent = iota
	CompMonth
	CompDay
	CompWeekday
	CompQuarter
	CompISOWeek
	CompDayOfYear
)

func (c DateComponent) String() string {
	switch c {
	case CompYear:
		return "year"
	case CompMonth:
		return "month"
	case CompDay:
		return "day"
	case CompWeekday:
		return "weekday"
	case CompQuarter:
		return "quarter"
	case CompISOWeek:
		return "iso week"
	default:
		return "day of year"
	}
}

// ExtractComponentStep rewrites datetime cells to one component: numeric
// year/month/day/quarter/ISO-week/day-of-year or the weekday name.
type ExtractComponentStep struct {
	Component DateComponent
}

func (s ExtractComponentStep) Name() string { return "extract " + s.Component.String() }

func (s ExtractComponentStep) Validate(g *grid.Grid, sel Selection) error {
	if s.Component < CompYear || s.Component > CompDayOfYear {
		return fmt.Errorf("%w: unknown date component %d", ErrValidation, s.Component)
	}
	return sel.validate(g)
}

func (s ExtractComponentStep) Plan(ctx context.Context, g *grid.Grid, sel Selection) ([]command.Command, Report, error) {
	return planCellEdits(ctx, g, sel, 0, func(_ int, cell grid.Cell) (grid.Value, Outcome) {
		if cell.Value.Kind() != grid.KindDateTime {
			return cell.Value, OutcomeUnchanged
		}
		t := cell.Value.Time()
		switch s.Component {
		case CompYear:
			return grid.Number(float64(t.Year())), OutcomeChanged
		case CompMonth:
			return grid.Number(float64(t.Month())), OutcomeChanged
		case CompDay:
			return grid.Number(float64(t.Day())), OutcomeChanged
		case CompWeekday:
			return grid.Text(t.Weekday().String()), OutcomeChanged
		case CompQuarter:
			return grid.Number(float64((int(t.Month())-1)/3 + 1)), OutcomeChanged
		case CompISOWeek:
			_, week := t.ISOWeek()
			return grid.Number(float64(week)), OutcomeChanged
		default:
			return grid.Number(float64(t.YearDay())), OutcomeChanged
		}
	})
}
