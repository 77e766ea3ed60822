// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package codec

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/services/sheet/grid"
)

func TestForPath(t *testing.T) {
	c, err := ForPath("data/report.csv")
	require.NoError(t, err)
	assert.IsType(t, &CSVCodec{}, c)

	c, err = ForPath("Report.XLSX")
	require.NoError(t, err)
	assert.IsType(t, &XLSXCodec{}, c)

	_, err = ForPath("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseScalar(t *testing.T) {
	assert.Equal(t, grid.KindEmpty, parseScalar("  ").Kind())
	assert.Equal(t, grid.KindNumber, parseScalar("3.14").Kind())
	assert.Equal(t, grid.KindBool, parseScalar("TRUE").Kind())
	assert.Equal(t, grid.KindText, parseScalar("hello").Kind())
	assert.Equal(t, grid.KindText, parseScalar("2024-01-01").Kind(),
		"dates stay text until an explicit parse")
}

func TestCSV_ReadHeaderAndTypes(t *testing.T) {
	in := "Name,Score,Active\nada,92.5,true\nalan,,false\n"
	c := &CSVCodec{}
	g, err := c.read(strings.NewReader(in))
	require.NoError(t, err)

	require.Equal(t, 2, g.RowCount())
	require.Equal(t, 3, g.ColCount())
	assert.True(t, g.HasHeaders())
	assert.Equal(t, "Score", g.Columns()[1].Name)

	cell, err := g.Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, grid.KindNumber, cell.Value.Kind())
	assert.InDelta(t, 92.5, cell.Value.Number(), 1e-9)

	cell, err = g.Get(1, 1)
	require.NoError(t, err)
	assert.True(t, cell.Value.IsEmpty())

	cell, err = g.Get(1, 2)
	require.NoError(t, err)
	assert.Equal(t, grid.KindBool, cell.Value.Kind())
}

func TestCSV_RaggedRowsPad(t *testing.T) {
	in := "A,B\n1\n2,3,4\n"
	c := &CSVCodec{}
	g, err := c.read(strings.NewReader(in))
	require.NoError(t, err)

	require.Equal(t, 3, g.ColCount(), "widest row wins")
	cell, err := g.Get(0, 1)
	require.NoError(t, err)
	assert.True(t, cell.Value.IsEmpty())
}

func TestCSV_Roundtrip(t *testing.T) {
	g := grid.NewWithColumns([]grid.Column{{Name: "City"}, {Name: "Pop"}})
	require.NoError(t, g.InsertRow(0, []grid.Cell{
		grid.NewCell(grid.Text("Oslo")),
		grid.NewCell(grid.Number(709000)),
	}))
	g.SetHasHeaders(true)

	c := &CSVCodec{}
	var buf bytes.Buffer
	require.NoError(t, c.write(&buf, g.Snapshot()))

	back, err := c.read(&buf)
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
}

func TestCSV_FileRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	g := grid.NewWithColumns([]grid.Column{{Name: "K"}})
	require.NoError(t, g.InsertRow(0, []grid.Cell{grid.NewCell(grid.Text("v"))}))
	g.SetHasHeaders(true)

	require.NoError(t, SaveFile(path, g.Snapshot()))
	back, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestXLSX_Roundtrip(t *testing.T) {
	g := grid.NewWithColumns([]grid.Column{{Name: "Item"}, {Name: "Qty"}})
	require.NoError(t, g.InsertRow(0, []grid.Cell{
		grid.NewCell(grid.Text("bolt")),
		grid.NewCell(grid.Number(12)),
	}))
	require.NoError(t, g.InsertRow(1, []grid.Cell{
		grid.NewCell(grid.Text("nut")),
		grid.NewCell(grid.Number(30)),
	}))
	g.SetHasHeaders(true)

	x := &XLSXCodec{}
	wb, err := x.build(g.Snapshot())
	require.NoError(t, err)
	defer wb.Close()

	var buf bytes.Buffer
	_, err = wb.WriteTo(&buf)
	require.NoError(t, err)

	back, err := x.read(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, back.RowCount())
	assert.Equal(t, "Qty", back.Columns()[1].Name)

	cell, err := back.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, grid.KindNumber, cell.Value.Kind())
	assert.InDelta(t, 30, cell.Value.Number(), 1e-9)
}

func TestXLSX_ColumnWidthHint(t *testing.T) {
	g := grid.NewWithColumns([]grid.Column{{Name: "Notes", Width: 42}})
	require.NoError(t, g.InsertRow(0, []grid.Cell{grid.NewCell(grid.Text("n"))}))

	x := &XLSXCodec{}
	wb, err := x.build(g.Snapshot())
	require.NoError(t, err)
	defer wb.Close()

	w, err := wb.GetColWidth("Sheet1", "A")
	require.NoError(t, err)
	assert.InDelta(t, 42, w, 1e-9)
}

func TestXLSX_NamedSheet(t *testing.T) {
	g := grid.NewWithColumns([]grid.Column{{Name: "A"}})
	require.NoError(t, g.InsertRow(0, []grid.Cell{grid.NewCell(grid.Text("x"))}))

	x := &XLSXCodec{Sheet: "Data"}
	wb, err := x.build(g.Snapshot())
	require.NoError(t, err)
	defer wb.Close()

	var buf bytes.Buffer
	_, err = wb.WriteTo(&buf)
	require.NoError(t, err)

	back, err := x.read(&buf)
	require.NoError(t, err)
	require.Equal(t, 1, back.RowCount())
	cell, err := back.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "x", cell.Value.Text())
}
