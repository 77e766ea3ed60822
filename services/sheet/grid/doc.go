// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package grid implements the in-memory tabular document store: tagged
// cell values, display formats, per-column metadata and the dense
// row/column matrix that is the single mutable authority of a document.
//
// The grid is deliberately free of any undo, transform or concurrency
// logic. Reversibility lives in the command package (every mutator here
// returns the prior state for inversion), serialization of writers lives
// in the session package, and concurrent readers use Snapshot.
//
// Every mutation bumps a monotonic generation counter. Derived structures
// (views, snapshots) carry the generation they were computed at and must
// be considered stale once the counters diverge.
package grid
