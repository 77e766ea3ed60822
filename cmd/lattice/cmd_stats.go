// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/services/sheet/codec"
	"github.com/latticehq/lattice/services/sheet/grid"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Print per-column summary statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

// columnStats is one summary row: counts for every column, numeric
// aggregates only where the column holds numbers.
type columnStats struct {
	name     string
	kind     grid.Kind
	nonEmpty int
	errors   int
	distinct int

	numeric       int
	min, max, sum float64
}

func runStats(cmd *cobra.Command, args []string) error {
	g, err := codec.LoadFile(args[0])
	if err != nil {
		return err
	}
	g.InferKinds()

	fmt.Printf("%s: %d rows, %d columns\n\n", args[0], g.RowCount(), g.ColCount())

	header := []string{
		pad("column", 20), pad("kind", 8), pad("filled", 6),
		pad("errors", 6), pad("distinct", 8), pad("min", 12),
		pad("max", 12), pad("mean", 12),
	}
	fmt.Println(headerStyle.Render(strings.Join(header, "  ")))

	for j, col := range g.Columns() {
		cells, err := g.ColumnCells(j)
		if err != nil {
			return err
		}
		st := summarize(col, cells)

		minS, maxS, meanS := "-", "-", "-"
		if st.numeric > 0 {
			minS = trimFloat(st.min)
			maxS = trimFloat(st.max)
			meanS = trimFloat(st.sum / float64(st.numeric))
		}
		fields := []string{
			pad(st.name, 20),
			pad(st.kind.String(), 8),
			pad(fmt.Sprintf("%d", st.nonEmpty), 6),
			pad(fmt.Sprintf("%d", st.errors), 6),
			pad(fmt.Sprintf("%d", st.distinct), 8),
			pad(minS, 12), pad(maxS, 12), pad(meanS, 12),
		}
		line := strings.Join(fields, "  ")
		if st.errors > 0 {
			line = errorCellStyle.Render(line)
		}
		fmt.Println(line)
	}
	return nil
}

func summarize(col grid.Column, cells []grid.Cell) columnStats {
	st := columnStats{
		name: col.Name,
		kind: col.Kind,
		min:  math.Inf(1),
		max:  math.Inf(-1),
	}
	seen := make(map[string]struct{})
	for _, c := range cells {
		switch c.Value.Kind() {
		case grid.KindEmpty:
			continue
		case grid.KindError:
			st.errors++
			continue
		}
		st.nonEmpty++
		seen[c.Value.AsText()] = struct{}{}
		if n, ok := c.Value.AsNumber(); ok {
			st.numeric++
			st.sum += n
			st.min = math.Min(st.min, n)
			st.max = math.Max(st.max, n)
		}
	}
	st.distinct = len(seen)
	return st
}

// trimFloat renders a float without trailing zero noise.
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
