// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package command implements reversible grid mutations and the linear
// undo/redo history that owns them.
//
// A Command is an atomic, invertible description of one structural or
// content edit. Commands are constructed against a live grid (capturing
// whatever before-state inversion needs), then handed to the Manager,
// which validates, applies, and takes ownership. Batch groups many edits
// into one history entry so a bulk transform undoes in a single step.
//
// The Manager keeps two stacks: a bounded undo ring (oldest entries are
// evicted permanently once depth is exceeded) and a redo stack that is
// cleared whenever a fresh command is applied. At most one mutation is in
// flight at a time; all error paths leave the grid untouched.
//
// Telemetry follows the house pattern: OpenTelemetry counters and
// histograms in metrics.go, slog-backed span tracing in observability.go,
// both collapsing to no-ops when disabled.
package command
