// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/grid"
)

func TestNoop_AllCapabilitiesUnavailable(t *testing.T) {
	g := grid.New(2, 2)
	s := g.Snapshot()
	ctx := context.Background()

	v, err := Noop{}.SuggestFill(ctx, s, 0, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, v.IsEmpty())

	refs, err := Noop{}.DetectAnomalies(ctx, s)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, refs)

	f, err := Noop{}.SuggestFormula(ctx, s, "sum the totals")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, f)
}

func TestAvailable(t *testing.T) {
	assert.False(t, Available(ErrUnavailable))
	assert.False(t, Available(errors.Join(errors.New("wrapped"), ErrUnavailable)))
	assert.True(t, Available(nil))
	assert.True(t, Available(errors.New("network down")))
}

func TestNewOpenAIAssistant_NoKey(t *testing.T) {
	_, err := NewOpenAIAssistant("", "", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewOpenAIAssistant_DefaultsModel(t *testing.T) {
	a, err := NewOpenAIAssistant("sk-test", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", a.model)
}

func TestRenderSnapshot_CapsRows(t *testing.T) {
	g := grid.New(5, 1)
	for i := 0; i < 5; i++ {
		_, err := g.Set(i, 0, grid.Number(float64(i)))
		require.NoError(t, err)
	}
	out := renderSnapshot(g.Snapshot(), 2)
	assert.Contains(t, out, "Column1")
	assert.Contains(t, out, "0\n1\n")
	assert.NotContains(t, out, "4")
}
