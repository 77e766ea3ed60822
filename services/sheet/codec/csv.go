// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// CSVCodec reads and writes RFC 4180 comma-separated files. The first
// row is always treated as the header on load and written from column
// names on save.
type CSVCodec struct{}

// Compile-time interface satisfaction check
var _ Codec = (*CSVCodec)(nil)

func (*CSVCodec) Extensions() []string { return []string{".csv"} }

func (c *CSVCodec) Load(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return c.read(f)
}

func (c *CSVCodec) read(r io.Reader) (*grid.Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows pad to the widest

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return grid.New(0, 0), nil
	}

	header := records[0]
	body := records[1:]
	width := len(header)
	for _, rec := range body {
		if len(rec) > width {
			width = len(rec)
		}
	}

	cols := make([]grid.Column, width)
	for j := range cols {
		if j < len(header) {
			cols[j].Name = header[j]
		}
	}
	g := grid.NewWithColumns(cols)
	g.SetHasHeaders(true)

	for _, rec := range body {
		row := make([]grid.Cell, width)
		for j, raw := range rec {
			row[j] = grid.NewCell(parseScalar(raw))
		}
		if err := g.InsertRow(g.RowCount(), row); err != nil {
			return nil, err
		}
	}
	g.InferKinds()
	return g, nil
}

func (c *CSVCodec) Save(path string, s *grid.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *CSVCodec) write(w io.Writer, s *grid.Snapshot) error {
	cw := csv.NewWriter(w)

	header := make([]string, s.ColCount())
	for j, col := range s.Columns() {
		header[j] = col.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := 0; i < s.RowCount(); i++ {
		cells, err := s.Row(i)
		if err != nil {
			return err
		}
		rec := make([]string, len(cells))
		for j, cell := range cells {
			rec[j] = cell.Value.AsText()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
