// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package grid

import "fmt"

// Column holds per-column metadata.
//
// Lifecycle: created with the grid or by a column insertion, removed
// atomically with the column deletion that takes every row's cell with it.
type Column struct {
	// Name is the header label.
	Name string

	// Kind is the inferred dominant value kind, used by formatting and
	// the assist layer. KindEmpty when the column has no typed content.
	Kind Kind

	// Width is a display width hint in characters (0 = auto).
	Width int
}

// defaultColumnName returns the generated name for column index i
// ("Column1", "Column2", ...).
func defaultColumnName(i int) string {
	return fmt.Sprintf("Column%d", i+1)
}

// inferKind returns the dominant non-empty kind in a column of cells.
//
// Error cells are ignored for inference. Ties resolve in kind order
// (text before number), matching how mixed columns display as text.
func inferKind(cells []Cell) Kind {
	var counts [6]int
	for _, c := range cells {
		k := c.Value.Kind()
		if k == KindEmpty || k == KindError {
			continue
		}
		counts[k]++
	}
	best := KindEmpty
	bestCount := 0
	for _, k := range []Kind{KindText, KindNumber, KindBool, KindDateTime} {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}
