// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/services/sheet/codec"
	"github.com/latticehq/lattice/services/sheet/grid"
	"github.com/latticehq/lattice/services/sheet/view"
)

var (
	viewSort   string
	viewDesc   bool
	viewFilter string
	viewLimit  int

	viewCmd = &cobra.Command{
		Use:   "view <file>",
		Short: "Print a tabular file, optionally filtered and sorted",
		Args:  cobra.ExactArgs(1),
		RunE:  runView,
	}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))
	errorCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func init() {
	f := viewCmd.Flags()
	f.StringVar(&viewSort, "sort", "", "sort by this column (header name or index)")
	f.BoolVar(&viewDesc, "desc", false, "sort descending")
	f.StringVar(&viewFilter, "contains", "", "only show rows whose sort column contains this text")
	f.IntVar(&viewLimit, "limit", 40, "maximum rows to print (0 = all)")
}

func runView(cmd *cobra.Command, args []string) error {
	g, err := codec.LoadFile(args[0])
	if err != nil {
		return err
	}

	var keys []view.SortKey
	filterCol := 0
	if viewSort != "" {
		col, err := resolveColumn(g, viewSort)
		if err != nil {
			return err
		}
		keys = []view.SortKey{{Col: col, Descending: viewDesc}}
		filterCol = col
	}

	var pred view.Predicate
	if viewFilter != "" {
		needle := strings.ToLower(viewFilter)
		pred = func(_ int, cells []grid.Cell) bool {
			return strings.Contains(strings.ToLower(cells[filterCol].Value.AsText()), needle)
		}
	}

	v, err := view.Build(g, pred, keys)
	if err != nil {
		return err
	}
	printTable(g, v)
	return nil
}

func printTable(g *grid.Grid, v *view.View) {
	cols := g.Columns()

	// Column widths from headers and visible cells.
	widths := make([]int, len(cols))
	for j, c := range cols {
		widths[j] = len(c.Name)
	}
	shown := 0
	v.Each(func(_, row int) bool {
		cells, err := g.Row(row)
		if err != nil {
			return false
		}
		for j, c := range cells {
			if l := len(c.Value.AsText()); l > widths[j] {
				widths[j] = l
			}
		}
		shown++
		return viewLimit == 0 || shown < viewLimit
	})

	var header []string
	for j, c := range cols {
		header = append(header, pad(c.Name, widths[j]))
	}
	fmt.Println(headerStyle.Render(strings.Join(header, "  ")))

	printed := 0
	v.Each(func(_, row int) bool {
		cells, err := g.Row(row)
		if err != nil {
			return false
		}
		var fields []string
		for j, c := range cells {
			text := pad(c.Value.AsText(), widths[j])
			if c.Value.Kind() == grid.KindError {
				text = errorCellStyle.Render(text)
			}
			fields = append(fields, text)
		}
		fmt.Println(strings.Join(fields, "  "))
		printed++
		return viewLimit == 0 || printed < viewLimit
	})

	if viewLimit > 0 && v.Len() > printed {
		fmt.Println(dimStyle.Render(fmt.Sprintf("... %d more rows", v.Len()-printed)))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
