// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transform

import "errors"

// ErrValidation indicates a step rejected its configuration or selection
// before any planning began. The grid is untouched.
var ErrValidation = errors.New("transform validation failed")

// ErrCancelled indicates the run observed context cancellation between
// chunks. The live grid is untouched; only scratch work is discarded.
var ErrCancelled = errors.New("transform cancelled")

// ErrNoSteps indicates a run was requested with an empty step list.
var ErrNoSteps = errors.New("transform pipeline has no steps")
