// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
	"github.com/latticehq/lattice/services/sheet/transform"
	"github.com/latticehq/lattice/services/sheet/view"
)

func newSession(t *testing.T, g *grid.Grid) *Session {
	t.Helper()
	s, err := New(g, DefaultConfig(), nil, nil)
	require.NoError(t, err)
	return s
}

func namesGrid(t *testing.T, names ...string) *grid.Grid {
	t.Helper()
	g := grid.New(len(names), 1)
	for i, n := range names {
		_, err := g.Set(i, 0, grid.Text(n))
		require.NoError(t, err)
	}
	return g
}

func TestSession_EditUndoRedo(t *testing.T) {
	s := newSession(t, namesGrid(t, "a"))
	ctx := context.Background()

	require.NoError(t, s.EditCell(ctx, 0, 0, grid.Text("b")))
	snap := s.Snapshot()
	c, err := snap.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", c.Value.Text())

	require.NoError(t, s.Undo(ctx))
	c, err = s.Snapshot().Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", c.Value.Text())

	require.NoError(t, s.Redo(ctx))
	c, err = s.Snapshot().Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", c.Value.Text())
}

func TestSession_UndoEmpty(t *testing.T) {
	s := newSession(t, nil)
	err := s.Undo(context.Background())
	assert.ErrorIs(t, err, command.ErrNothingToUndo)
}

func TestSession_EventsReachSubscriber(t *testing.T) {
	s := newSession(t, namesGrid(t, "a"))
	ch, cancel := s.Subscribe("test")
	defer cancel()

	require.NoError(t, s.EditCell(context.Background(), 0, 0, grid.Text("b")))

	ev := <-ch
	assert.Equal(t, EventApply, ev.Kind)
	assert.Equal(t, uint64(2), ev.Generation, "one edit on a generation-1 grid")

	require.NoError(t, s.Undo(context.Background()))
	ev = <-ch
	assert.Equal(t, EventUndo, ev.Kind)
}

func TestSession_SlowSubscriberLosesEventsNotWriter(t *testing.T) {
	s, err := New(namesGrid(t, "a"), Config{EventBuffer: 1}, nil, nil)
	require.NoError(t, err)
	_, cancel := s.Subscribe("slow")
	defer cancel()

	ctx := context.Background()
	// Nobody drains the buffer; the writer must not block.
	for i := 0; i < 5; i++ {
		require.NoError(t, s.EditCell(ctx, 0, 0, grid.Text("x")))
	}
}

func TestSession_SnapshotIsolatedFromLaterEdits(t *testing.T) {
	s := newSession(t, namesGrid(t, "a"))
	snap := s.Snapshot()

	require.NoError(t, s.EditCell(context.Background(), 0, 0, grid.Text("b")))

	c, err := snap.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", c.Value.Text())
}

func TestSession_TransformSingleUndoStep(t *testing.T) {
	s := newSession(t, namesGrid(t, " x ", " y "))
	ctx := context.Background()

	sel := s.SelectColumn(0)
	rep, err := s.Transform(ctx, sel, []transform.Step{transform.TrimStep{}}, "Trim")
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Changed)
	require.Len(t, s.History(), 1)

	require.NoError(t, s.Undo(ctx))
	c, err := s.Snapshot().Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, " x ", c.Value.Text())
}

func TestSession_StaleSelectionAfterConcurrentEdit(t *testing.T) {
	s := newSession(t, namesGrid(t, "a"))
	ctx := context.Background()

	sel := s.SelectColumn(0)
	require.NoError(t, s.EditCell(ctx, 0, 0, grid.Text("b")))

	_, err := s.Transform(ctx, sel, []transform.Step{transform.CaseStep{Mode: transform.CaseUpper}}, "")
	assert.ErrorIs(t, err, view.ErrStaleView)
}

func TestSession_LoadGridResetsHistory(t *testing.T) {
	s := newSession(t, namesGrid(t, "a"))
	ctx := context.Background()
	require.NoError(t, s.EditCell(ctx, 0, 0, grid.Text("b")))
	require.True(t, s.CanUndo())

	ch, cancel := s.Subscribe("loader")
	defer cancel()

	require.NoError(t, s.LoadGrid(namesGrid(t, "fresh")))
	assert.False(t, s.CanUndo(), "history never survives a load")

	ev := <-ch
	assert.Equal(t, EventLoad, ev.Kind)

	err := s.Undo(ctx)
	assert.ErrorIs(t, err, command.ErrNothingToUndo)
}

func TestSession_StructuralOps(t *testing.T) {
	s := newSession(t, namesGrid(t, "a", "b"))
	ctx := context.Background()

	require.NoError(t, s.InsertRow(ctx, 1))
	assert.Equal(t, 3, s.Snapshot().RowCount())

	require.NoError(t, s.DeleteRow(ctx, 1))
	assert.Equal(t, 2, s.Snapshot().RowCount())

	require.NoError(t, s.MoveRow(ctx, 0, 1))
	c, err := s.Snapshot().Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", c.Value.Text())

	require.NoError(t, s.InsertColumn(ctx, 1, grid.Column{Name: "Extra"}))
	assert.Equal(t, 2, s.Snapshot().ColCount())

	require.NoError(t, s.DeleteColumn(ctx, 1))
	assert.Equal(t, 1, s.Snapshot().ColCount())
}

func TestSession_RenameColumnBypassesHistory(t *testing.T) {
	s := newSession(t, namesGrid(t, "a"))
	require.NoError(t, s.RenameColumn(0, "Name"))
	assert.Equal(t, "Name", s.Snapshot().Columns()[0].Name)
	assert.False(t, s.CanUndo())
}

func TestSession_ConcurrentReadersOneWriter(t *testing.T) {
	s := newSession(t, namesGrid(t, "a", "b", "c"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := s.Snapshot()
				_ = snap.RowCount()
				if c, err := snap.Get(0, 0); err == nil {
					_ = c.Value.AsText()
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			_ = s.EditCell(ctx, 0, 0, grid.Text("w"))
		}
	}()
	wg.Wait()

	c, err := s.Snapshot().Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "w", c.Value.Text())
}
