// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingToUndo is returned by Undo when the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrApplyInFlight is returned when Apply, Undo or Redo is invoked
	// reentrantly while another mutation is being applied.
	ErrApplyInFlight = errors.New("another mutation is already in flight")

	// ErrEmptyBatch is returned when a batch command is built with no
	// children.
	ErrEmptyBatch = errors.New("batch command has no children")
)

// RejectedError reports a command that failed validation and was not
// applied. The grid is guaranteed unchanged.
type RejectedError struct {
	// Kind is the kind of the rejected command.
	Kind Kind

	// Description is the human-readable command description.
	Description string

	// Err is the violated invariant.
	Err error
}

// Error returns a formatted rejection message.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("command %s (%s) rejected: %v", e.Kind, e.Description, e.Err)
}

// Unwrap enables errors.Is checks against the underlying invariant error.
func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Compile-time interface satisfaction check
var _ error = (*RejectedError)(nil)
