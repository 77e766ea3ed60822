// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package codec loads and saves documents in tabular file formats.
//
// Serialization is a boundary concern: codecs build fresh grids on load
// and read immutable snapshots on save, so no history or view state ever
// leaks into a file.
package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// ErrUnsupportedFormat indicates a file extension no codec handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Codec converts between one file format and the grid model.
type Codec interface {
	// Load parses a document into a fresh grid. The returned grid's
	// generation reflects the inserts done while loading; callers build
	// selections against it after load, never before.
	Load(path string) (*grid.Grid, error)

	// Save writes a snapshot to path, truncating any existing file.
	Save(path string, s *grid.Snapshot) error

	// Extensions lists the lowercase file extensions this codec owns,
	// with the leading dot.
	Extensions() []string
}

// ForPath picks a codec by file extension.
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range []Codec{&CSVCodec{}, &XLSXCodec{}} {
		for _, e := range c.Extensions() {
			if e == ext {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
}

// LoadFile loads a document, picking the codec from the extension.
func LoadFile(path string) (*grid.Grid, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return c.Load(path)
}

// SaveFile saves a snapshot, picking the codec from the extension.
func SaveFile(path string, s *grid.Snapshot) error {
	c, err := ForPath(path)
	if err != nil {
		return err
	}
	return c.Save(path, s)
}

// parseScalar interprets one raw text field as the richest value kind it
// cleanly represents: number, boolean, otherwise text. Dates stay text
// until an explicit parse transform runs.
func parseScalar(raw string) grid.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return grid.Empty()
	}
	if n, ok := grid.Text(trimmed).AsNumber(); ok {
		return grid.Number(n)
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return grid.Bool(true)
	case "false":
		return grid.Bool(false)
	}
	return grid.Text(raw)
}
