// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session owns one open document: the grid, its history and the
// transform runner, behind a single writer lock.
//
// All mutations flow through the session. Readers either take the lock for
// a short read or grab an immutable snapshot and work unlocked. Observers
// subscribe to change events; delivery is non-blocking and a slow observer
// loses events rather than stalling the writer.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/latticehq/lattice/services/sheet/assist"
	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
	"github.com/latticehq/lattice/services/sheet/transform"
	"github.com/latticehq/lattice/services/sheet/view"
)

// Config configures a session.
type Config struct {
	// History configures the undo/redo manager.
	History command.Config

	// EventBuffer is the per-subscriber channel capacity. Default 16.
	EventBuffer int
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{History: command.DefaultConfig(), EventBuffer: 16}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	c.History.ApplyDefaults()
	if c.EventBuffer == 0 {
		c.EventBuffer = 16
	}
}

// Validate checks the configuration for usability.
func (c Config) Validate() error {
	if err := c.History.Validate(); err != nil {
		return err
	}
	if c.EventBuffer < 1 {
		return fmt.Errorf("EventBuffer must be >= 1, got %d", c.EventBuffer)
	}
	return nil
}

// Session is one open document.
//
// # Description
//
// The session enforces the single-writer rule: every mutation takes the
// session lock, goes through the history manager and ends with an event
// broadcast. Concurrent readers use Snapshot, which never blocks writers
// for longer than a deep copy.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	grid      *grid.Grid
	hist      *command.Manager
	runner    *transform.Runner
	assistant assist.Assistant

	config Config
	logger *slog.Logger
	hub    *hub
}

// New creates a session over g. A nil grid starts an empty document; a
// nil assistant disables AI features via assist.Noop.
func New(g *grid.Grid, config Config, assistant assist.Assistant, logger *slog.Logger) (*Session, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if g == nil {
		g = grid.New(0, 0)
	}
	if assistant == nil {
		assistant = assist.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session.Session")

	hist, err := command.NewManager(g, config.History, logger)
	if err != nil {
		return nil, err
	}
	runner, err := transform.NewRunner(hist, logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		grid:      g,
		hist:      hist,
		runner:    runner,
		assistant: assistant,
		config:    config,
		logger:    logger,
		hub:       newHub(logger),
	}, nil
}

// Snapshot returns an immutable copy of the current document state.
func (s *Session) Snapshot() *grid.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Snapshot()
}

// Generation returns the grid's current mutation counter.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Generation()
}

// Apply routes a prebuilt command through history and broadcasts the
// change.
func (s *Session) Apply(ctx context.Context, cmd command.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hist.Apply(ctx, cmd); err != nil {
		return err
	}
	s.hub.publish(Event{
		Kind:        EventApply,
		Generation:  s.grid.Generation(),
		Description: cmd.Description(),
		Range:       cmd.AffectedRange(),
	})
	return nil
}

// EditCell sets the value of one cell as an undoable step.
func (s *Session) EditCell(ctx context.Context, row, col int, v grid.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, err := command.NewCellValueEdit(s.grid, row, col, v)
	if err != nil {
		return err
	}
	if err := s.hist.Apply(ctx, cmd); err != nil {
		return err
	}
	s.hub.publish(Event{
		Kind:        EventApply,
		Generation:  s.grid.Generation(),
		Description: cmd.Description(),
		Range:       cmd.AffectedRange(),
	})
	return nil
}

// InsertRow inserts an empty row at the given index as an undoable step.
func (s *Session) InsertRow(ctx context.Context, at int) error {
	return s.Apply(ctx, command.NewRowInsert(at, nil))
}

// DeleteRow removes the row at the given index as an undoable step.
func (s *Session) DeleteRow(ctx context.Context, at int) error {
	return s.Apply(ctx, command.NewRowDelete(at))
}

// MoveRow moves a row as an undoable step.
func (s *Session) MoveRow(ctx context.Context, from, to int) error {
	return s.Apply(ctx, command.NewRowMove(from, to))
}

// InsertColumn inserts an empty column as an undoable step.
func (s *Session) InsertColumn(ctx context.Context, at int, meta grid.Column) error {
	return s.Apply(ctx, command.NewColumnInsert(at, meta, nil))
}

// DeleteColumn removes a column as an undoable step.
func (s *Session) DeleteColumn(ctx context.Context, at int) error {
	return s.Apply(ctx, command.NewColumnDelete(at))
}

// RenameColumn updates a column header. Renames are metadata, not
// content; they bypass history and cannot be undone.
func (s *Session) RenameColumn(at int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.grid.RenameColumn(at, name); err != nil {
		return err
	}
	s.hub.publish(Event{
		Kind:        EventApply,
		Generation:  s.grid.Generation(),
		Description: fmt.Sprintf("Rename column %d to %q", at, name),
		Range:       command.Range{StartRow: -1, EndRow: -1, StartCol: at, EndCol: at},
	})
	return nil
}

// Undo reverts the most recent step.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, err := s.hist.Undo(ctx)
	if err != nil {
		return err
	}
	s.hub.publish(Event{
		Kind:        EventUndo,
		Generation:  s.grid.Generation(),
		Description: cmd.Description(),
		Range:       cmd.AffectedRange(),
	})
	return nil
}

// Redo reapplies the most recently undone step.
func (s *Session) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, err := s.hist.Redo(ctx)
	if err != nil {
		return err
	}
	s.hub.publish(Event{
		Kind:        EventRedo,
		Generation:  s.grid.Generation(),
		Description: cmd.Description(),
		Range:       cmd.AffectedRange(),
	})
	return nil
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// History returns the undo stack newest-first.
func (s *Session) History() []command.Entry { return s.hist.Entries() }

// BuildView builds a filtered/sorted view of the current grid.
func (s *Session) BuildView(pred view.Predicate, keys []view.SortKey) (*view.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.Build(s.grid, pred, keys)
}

// Transform runs a pipeline over a selection as one undoable step.
func (s *Session) Transform(ctx context.Context, sel transform.Selection, steps []transform.Step, desc string) (transform.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, err := s.runner.Run(ctx, s.grid, sel, steps, desc)
	if err != nil {
		return rep, err
	}
	if rep.Changed > 0 || rep.Errored > 0 {
		s.hub.publish(Event{
			Kind:        EventApply,
			Generation:  s.grid.Generation(),
			Description: desc,
			Range:       command.Range{StartRow: -1, EndRow: -1, StartCol: sel.Col, EndCol: sel.Col},
		})
	}
	return rep, nil
}

// SelectColumn builds a whole-column selection under the writer lock.
func (s *Session) SelectColumn(col int) transform.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return transform.WholeColumn(s.grid, col)
}

// Assistant returns the configured AI assistant (assist.Noop when none).
func (s *Session) Assistant() assist.Assistant { return s.assistant }

// LoadGrid replaces the document contents. History never survives a
// load; the undo and redo stacks start empty.
func (s *Session) LoadGrid(g *grid.Grid) error {
	if g == nil {
		return fmt.Errorf("grid is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	hist, err := command.NewManager(g, s.config.History, s.logger)
	if err != nil {
		return err
	}
	runner, err := transform.NewRunner(hist, s.logger)
	if err != nil {
		return err
	}
	g.InferKinds()
	s.grid = g
	s.hist = hist
	s.runner = runner

	s.hub.publish(Event{
		Kind:        EventLoad,
		Generation:  g.Generation(),
		Description: fmt.Sprintf("Loaded %d rows, %d columns", g.RowCount(), g.ColCount()),
		Range:       command.Range{StartRow: -1, EndRow: -1, StartCol: -1, EndCol: -1},
	})
	s.logger.Info("document loaded", "rows", g.RowCount(), "cols", g.ColCount())
	return nil
}

// Subscribe registers a change observer. The returned cancel function
// must be called to release the subscription.
func (s *Session) Subscribe(name string) (<-chan Event, func()) {
	return s.hub.subscribe(name, s.config.EventBuffer)
}
