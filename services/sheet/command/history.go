// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// Config configures a history Manager.
type Config struct {
	// MaxDepth bounds the undo stack. Oldest entries are evicted
	// permanently once exceeded. Default 50.
	MaxDepth int

	// MetricsEnabled controls OpenTelemetry metric recording.
	MetricsEnabled bool

	// TracingEnabled controls span creation for apply/undo/redo.
	TracingEnabled bool
}

// DefaultConfig returns the default history configuration.
func DefaultConfig() Config {
	return Config{MaxDepth: 50}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = 50
	}
}

// Validate checks the configuration for usability.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("MaxDepth must be >= 1, got %d", c.MaxDepth)
	}
	return nil
}

// Entry describes one history stack item for viewers.
type Entry struct {
	ID          uuid.UUID
	Kind        Kind
	Description string
	Timestamp   time.Time
}

// Manager owns the undo/redo history of one grid.
//
// # Description
//
// The manager is the only component allowed to mutate a grid after
// document load. Apply validates a command against the live grid, applies
// it, clears the redo stack and pushes it onto the bounded undo stack.
// Undo/Redo move commands between the two stacks, inverting or reapplying
// them. Exactly one mutation is in flight at a time; every failure path
// leaves the grid byte-for-byte unchanged.
//
// # Thread Safety
//
// All public methods are safe for concurrent use. Reentrant calls from
// within an in-flight apply are rejected with ErrApplyInFlight.
type Manager struct {
	config   Config
	grid     *grid.Grid
	undo     *ringStack
	redo     []Command
	applying bool
	mu       sync.Mutex
	logger   *slog.Logger
	tracer   *Tracer
}

// NewManager creates a history manager for the given grid.
//
// # Inputs
//
//   - g: The grid this manager owns mutation rights to. Must not be nil.
//   - config: History configuration. Zero values use defaults.
//   - logger: Structured logger. Uses slog.Default() if nil.
//
// # Outputs
//
//   - *Manager: Ready-to-use manager.
//   - error: Non-nil if g is nil or the configuration is invalid.
func NewManager(g *grid.Grid, config Config, logger *slog.Logger) (*Manager, error) {
	if g == nil {
		return nil, fmt.Errorf("grid is required")
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid history config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history.Manager")

	SetMetricsEnabled(config.MetricsEnabled)

	return &Manager{
		config: config,
		grid:   g,
		undo:   newRingStack(config.MaxDepth),
		logger: logger,
		tracer: NewTracer(logger, config.TracingEnabled),
	}, nil
}

// Apply validates and applies a command, taking ownership of it.
//
// # Description
//
// On success the redo stack is cleared (linear history, no branching), the
// command is pushed onto the undo stack (evicting the oldest entry at
// capacity) and the grid generation advances. On validation failure a
// *RejectedError is returned and the grid is unchanged.
func (m *Manager) Apply(ctx context.Context, cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("command is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applying {
		return ErrApplyInFlight
	}
	m.applying = true
	defer func() { m.applying = false }()

	ctx, span := m.tracer.StartApply(ctx, cmd)
	start := time.Now()

	if err := cmd.validate(m.grid); err != nil {
		rej := &RejectedError{Kind: cmd.Kind(), Description: cmd.Description(), Err: err}
		m.tracer.EndApply(span, cmd, rej)
		recordApply(ctx, cmd.Kind(), time.Since(start), rej)
		return rej
	}

	if err := cmd.apply(m.grid); err != nil {
		// Concrete commands and batches roll themselves back; the grid
		// is unchanged here.
		rej := &RejectedError{Kind: cmd.Kind(), Description: cmd.Description(), Err: err}
		m.tracer.EndApply(span, cmd, rej)
		recordApply(ctx, cmd.Kind(), time.Since(start), rej)
		return rej
	}

	if len(m.redo) > 0 {
		m.redo = m.redo[:0]
	}
	if evicted := m.undo.push(cmd); evicted {
		recordEviction(ctx)
		m.logger.Debug("evicted oldest undo entry",
			"depth", m.undo.len(),
			"total_evicted", m.undo.evictedCount())
	}

	m.tracer.EndApply(span, cmd, nil)
	recordApply(ctx, cmd.Kind(), time.Since(start), nil)
	recordDepth(ctx, m.undo.len())

	m.logger.Debug("applied command",
		"kind", string(cmd.Kind()),
		"description", cmd.Description(),
		"generation", m.grid.Generation())
	return nil
}

// Undo inverts the most recent command and moves it to the redo stack.
//
// # Outputs
//
//   - Command: The undone command (for notification payloads).
//   - error: ErrNothingToUndo when the undo stack is empty.
func (m *Manager) Undo(ctx context.Context) (Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applying {
		return nil, ErrApplyInFlight
	}
	m.applying = true
	defer func() { m.applying = false }()

	cmd, ok := m.undo.peek()
	if !ok {
		return nil, ErrNothingToUndo
	}

	ctx, span := m.tracer.StartUndo(ctx, cmd)
	start := time.Now()

	if err := cmd.invert(m.grid); err != nil {
		err = fmt.Errorf("undo %s: %w", cmd.Kind(), err)
		m.tracer.EndUndo(span, err)
		recordUndo(ctx, time.Since(start), err)
		return nil, err
	}
	m.undo.pop()
	m.redo = append(m.redo, cmd)

	m.tracer.EndUndo(span, nil)
	recordUndo(ctx, time.Since(start), nil)
	recordDepth(ctx, m.undo.len())

	m.logger.Debug("undid command", "description", cmd.Description())
	return cmd, nil
}

// Redo reapplies the most recently undone command.
//
// # Outputs
//
//   - Command: The redone command.
//   - error: ErrNothingToRedo when the redo stack is empty.
func (m *Manager) Redo(ctx context.Context) (Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applying {
		return nil, ErrApplyInFlight
	}
	m.applying = true
	defer func() { m.applying = false }()

	if len(m.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	cmd := m.redo[len(m.redo)-1]

	ctx, span := m.tracer.StartRedo(ctx, cmd)
	start := time.Now()

	if err := cmd.apply(m.grid); err != nil {
		err = fmt.Errorf("redo %s: %w", cmd.Kind(), err)
		m.tracer.EndRedo(span, err)
		recordRedo(ctx, time.Since(start), err)
		return nil, err
	}
	m.redo = m.redo[:len(m.redo)-1]
	m.undo.push(cmd)

	m.tracer.EndRedo(span, nil)
	recordRedo(ctx, time.Since(start), nil)
	recordDepth(ctx, m.undo.len())

	m.logger.Debug("redid command", "description", cmd.Description())
	return cmd, nil
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.undo.len() > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// UndoCount returns the undo stack depth.
func (m *Manager) UndoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.undo.len()
}

// RedoCount returns the redo stack depth.
func (m *Manager) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo)
}

// Entries returns the undo history newest-first for history viewers.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmds := m.undo.items()
	out := make([]Entry, len(cmds))
	for i, c := range cmds {
		out[i] = Entry{
			ID:          c.ID(),
			Kind:        c.Kind(),
			Description: c.Description(),
			Timestamp:   c.Timestamp(),
		}
	}
	return out
}

// Clear drops all history. Used when a new document is loaded; undo state
// never survives a load.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo.clear()
	m.redo = nil
}
