// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds indicates a row or column index outside the current
	// grid dimensions.
	ErrOutOfBounds = errors.New("index out of bounds")

	// ErrInvalidPosition indicates an insertion position beyond the end of
	// the grid (at > count).
	ErrInvalidPosition = errors.New("invalid insertion position")

	// ErrShapeMismatch indicates row or column data whose length does not
	// match the grid dimensions.
	ErrShapeMismatch = errors.New("data shape does not match grid dimensions")
)

// PositionError wraps a bounds failure with the operation and coordinates
// that caused it.
//
// # Thread Safety
//
// PositionError is immutable after creation and safe for concurrent reads.
type PositionError struct {
	// Op is the grid operation that failed (e.g. "get", "insert_row").
	Op string

	// Row is the offending row index (-1 if not applicable).
	Row int

	// Col is the offending column index (-1 if not applicable).
	Col int

	// Err is the underlying sentinel (ErrOutOfBounds or ErrInvalidPosition).
	Err error
}

// Error returns a formatted message including coordinates.
func (e *PositionError) Error() string {
	switch {
	case e.Row >= 0 && e.Col >= 0:
		return fmt.Sprintf("grid %s at (%d,%d): %v", e.Op, e.Row, e.Col, e.Err)
	case e.Row >= 0:
		return fmt.Sprintf("grid %s at row %d: %v", e.Op, e.Row, e.Err)
	case e.Col >= 0:
		return fmt.Sprintf("grid %s at column %d: %v", e.Op, e.Col, e.Err)
	default:
		return fmt.Sprintf("grid %s: %v", e.Op, e.Err)
	}
}

// Unwrap enables errors.Is checks against the sentinel errors.
func (e *PositionError) Unwrap() error {
	return e.Err
}

// Compile-time interface satisfaction check
var _ error = (*PositionError)(nil)

func outOfBounds(op string, row, col int) error {
	return &PositionError{Op: op, Row: row, Col: col, Err: ErrOutOfBounds}
}

func invalidPosition(op string, row, col int) error {
	return &PositionError{Op: op, Row: row, Col: col, Err: ErrInvalidPosition}
}
