// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package assist defines the boundary to external AI collaborators:
// fill suggestion, anomaly detection and formula suggestion.
//
// The core treats every assistant as potentially slow and potentially
// absent. Absence is signaled with ErrUnavailable and must degrade to the
// feature being disabled, never to a hard failure. Assistants only ever
// see immutable snapshots; they cannot mutate the grid.
package assist

import (
	"context"
	"errors"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// ErrUnavailable indicates the assistant feature is not configured or not
// reachable. Callers disable the dependent feature and continue.
var ErrUnavailable = errors.New("assistant unavailable")

// CellRef addresses one cell in a snapshot.
type CellRef struct {
	Row int
	Col int
}

// FillSuggester proposes a value for a missing cell.
type FillSuggester interface {
	// SuggestFill returns a suggested value for the empty cell at
	// (row, col), given the surrounding snapshot. Returning an empty
	// value means "no suggestion". ErrUnavailable when the feature is
	// absent.
	SuggestFill(ctx context.Context, s *grid.Snapshot, col, row int) (grid.Value, error)
}

// AnomalyDetector flags suspicious cells.
type AnomalyDetector interface {
	// DetectAnomalies returns the set of cells that look anomalous.
	DetectAnomalies(ctx context.Context, s *grid.Snapshot) ([]CellRef, error)
}

// FormulaSuggester turns a natural-language intent into a formula string.
type FormulaSuggester interface {
	SuggestFormula(ctx context.Context, s *grid.Snapshot, intent string) (string, error)
}

// Assistant bundles all three capabilities.
type Assistant interface {
	FillSuggester
	AnomalyDetector
	FormulaSuggester
}

// Noop is the absent assistant: every capability reports ErrUnavailable.
type Noop struct{}

// Compile-time interface satisfaction check
var _ Assistant = Noop{}

func (Noop) SuggestFill(context.Context, *grid.Snapshot, int, int) (grid.Value, error) {
	return grid.Empty(), ErrUnavailable
}

func (Noop) DetectAnomalies(context.Context, *grid.Snapshot) ([]CellRef, error) {
	return nil, ErrUnavailable
}

func (Noop) SuggestFormula(context.Context, *grid.Snapshot, string) (string, error) {
	return "", ErrUnavailable
}

// Available reports whether err indicates a working assistant. Use to
// decide between disabling a feature and surfacing a real failure.
func Available(err error) bool {
	return !errors.Is(err, ErrUnavailable)
}
