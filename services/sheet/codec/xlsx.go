// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// XLSXCodec reads and writes Excel workbooks.
//
// Load takes the first worksheet (or Sheet when set); the first row is
// the header. Save writes a single worksheet with typed cells: numbers,
// booleans and dates keep their kind, error values serialize as their
// display text.
type XLSXCodec struct {
	// Sheet names the worksheet to load. Empty takes the first one.
	Sheet string
}

// Compile-time interface satisfaction check
var _ Codec = (*XLSXCodec)(nil)

func (*XLSXCodec) Extensions() []string { return []string{".xlsx", ".xlsm"} }

func (x *XLSXCodec) Load(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return x.read(f)
}

func (x *XLSXCodec) read(r io.Reader) (*grid.Grid, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return grid.New(0, 0), nil
		}
		sheet = sheets[0]
	}

	records, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
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

func (x *XLSXCodec) Save(path string, s *grid.Snapshot) error {
	wb, err := x.build(s)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (x *XLSXCodec) build(s *grid.Snapshot) (*excelize.File, error) {
	wb := excelize.NewFile()
	sheet := x.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := wb.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}

	for j, col := range s.Columns() {
		name, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetCellValue(sheet, name, col.Name); err != nil {
			return nil, err
		}
		if col.Width > 0 {
			colName, err := excelize.ColumnNumberToName(j + 1)
			if err != nil {
				return nil, err
			}
			if err := wb.SetColWidth(sheet, colName, colName, float64(col.Width)); err != nil {
				return nil, err
			}
		}
	}

	for i := 0; i < s.RowCount(); i++ {
		cells, err := s.Row(i)
		if err != nil {
			return nil, err
		}
		for j, cell := range cells {
			if cell.Value.IsEmpty() {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			var v any
			switch cell.Value.Kind() {
			case grid.KindNumber:
				v = cell.Value.Number()
			case grid.KindBool:
				v = cell.Value.Bool()
			case grid.KindDateTime:
				v = cell.Value.Time()
			default:
				v = cell.Value.AsText()
			}
			if err := wb.SetCellValue(sheet, name, v); err != nil {
				return nil, err
			}
		}
	}
	return wb, nil
}
