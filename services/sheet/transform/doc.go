// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package transform implements the composable column transform pipeline:
// text scrubbing, arithmetic, date handling, deduplication, gap filling
// and type conversion.
//
// A Step never mutates the grid. It plans a list of invertible commands
// against a scratch copy; the Runner replays each step's plan onto the
// scratch so later steps see earlier results, then commits the combined
// plan to the live grid as a single history batch. One undo reverts the
// whole run.
//
// Selections carry the grid generation they were built from. The Runner
// rejects a run when the generation no longer matches, so a transform can
// never target rows that shifted under it.
package transform
