// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/cmd/lattice/config"
	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/transform"
)

// --- Global Command Variables ---
var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "lattice",
		Short: "A cli for cleaning and transforming tabular data files",
		Long: `Lattice loads CSV and Excel files into an in-memory document,
				runs undoable transform pipelines over them and writes the
				result back out.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			if err := config.Load(); err != nil {
				slog.Error("config load failed", "error", err)
				os.Exit(1)
			}
			command.SetMetricsEnabled(config.Global.Telemetry.Metrics)
			transform.SetMetricsEnabled(config.Global.Telemetry.Metrics)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(viewCmd)
}
