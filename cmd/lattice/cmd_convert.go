// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/services/sheet/codec"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a tabular file between formats (csv, xlsx)",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	g, err := codec.LoadFile(in)
	if err != nil {
		return err
	}
	if err := codec.SaveFile(out, g.Snapshot()); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows, %d columns to %s\n", g.RowCount(), g.ColCount(), out)
	return nil
}
