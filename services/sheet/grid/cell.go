// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package grid

// Alignment controls horizontal cell alignment.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Borders is a bitmask of cell border edges.
type Borders uint8

const (
	BorderTop Borders = 1 << iota
	BorderBottom
	BorderLeft
	BorderRight
)

// Format is the display annotation attached to a cell.
//
// Format is independent of the value kind: a numeric cell may carry a date
// number format while awaiting re-validation. The zero Format means
// "inherit defaults".
type Format struct {
	// NumberFormat is a display pattern for numeric/datetime values
	// (e.g. "0.00", "yyyy-mm-dd", "0%").
	NumberFormat string

	FontName string
	FontSize float64
	Bold     bool
	Italic   bool

	// Foreground and Background are hex colors like "#1a1a1a"; empty
	// means theme default.
	Foreground string
	Background string

	Align   Alignment
	Borders Borders
}

// IsZero reports whether the format carries no explicit settings.
func (f Format) IsZero() bool {
	return f == Format{}
}

// Cell pairs a value with its display format.
type Cell struct {
	Value  Value
	Format Format
}

// NewCell returns a cell holding the given value with default formatting.
func NewCell(v Value) Cell {
	return Cell{Value: v}
}

// Equal reports whether value and format both match.
func (c Cell) Equal(o Cell) bool {
	return c.Value.Equal(o.Value) && c.Format == o.Format
}
