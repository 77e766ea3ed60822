// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/cmd/lattice/config"
	"github.com/latticehq/lattice/services/sheet/assist"
	"github.com/latticehq/lattice/services/sheet/codec"
	"github.com/latticehq/lattice/services/sheet/command"
	"github.com/latticehq/lattice/services/sheet/grid"
	"github.com/latticehq/lattice/services/sheet/session"
	"github.com/latticehq/lattice/services/sheet/transform"
)

var (
	transformCol     string
	transformOps     []string
	transformOut     string
	transformFind    string
	transformReplace string
	transformRegexp  bool
	transformOperand float64
	transformDigits  int
	transformLayout  string
	transformValue   string
	transformTo      string
	transformStrict  bool
	transformNorm    bool

	transformCmd = &cobra.Command{
		Use:   "transform <file>",
		Short: "Run a transform pipeline over one column of a tabular file",
		Long: `Runs one or more transform steps, in order, over a column and
				writes the result back (or to --out). Steps compose: each one
				sees the previous step's output.`,
		Args: cobra.ExactArgs(1),
		RunE: runTransform,
	}
)

func init() {
	f := transformCmd.Flags()
	f.StringVarP(&transformCol, "col", "c", "0", "target column, by header name or index")
	f.StringSliceVar(&transformOps, "op", nil, "steps to run, in order (trim, upper, title, dedup, ...)")
	f.StringVarP(&transformOut, "out", "o", "", "output path (default: overwrite input)")
	f.StringVar(&transformFind, "find", "", "pattern for the replace step")
	f.StringVar(&transformReplace, "replace", "", "replacement for the replace step")
	f.BoolVar(&transformRegexp, "regexp", false, "treat --find as a regular expression")
	f.Float64Var(&transformOperand, "operand", 0, "right operand for arithmetic and shift steps")
	f.IntVar(&transformDigits, "digits", 2, "decimal digits for the round step")
	f.StringVar(&transformLayout, "layout", "2006-01-02", "Go time layout for format-dates")
	f.StringVar(&transformValue, "value", "", "value for the fill-constant step")
	f.StringVar(&transformTo, "to", "", "target kind for the convert step (text, number, bool, datetime)")
	f.BoolVar(&transformStrict, "strict", false, "convert: rewrite inconvertible cells to errors")
	f.BoolVar(&transformNorm, "normalize", false, "dedup: ignore case and whitespace when comparing")
	_ = transformCmd.MarkFlagRequired("op")
}

func runTransform(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := transformOut
	if out == "" {
		out = path
	}

	g, err := codec.LoadFile(path)
	if err != nil {
		return err
	}

	s, err := session.New(g, session.Config{
		History: command.Config{
			MaxDepth:       config.Global.History.MaxDepth,
			MetricsEnabled: config.Global.Telemetry.Metrics,
			TracingEnabled: config.Global.Telemetry.Tracing,
		},
	}, buildAssistant(), nil)
	if err != nil {
		return err
	}

	col, err := resolveColumn(g, transformCol)
	if err != nil {
		return err
	}

	steps := make([]transform.Step, 0, len(transformOps))
	for _, op := range transformOps {
		step, err := buildStep(op, s.Assistant())
		if err != nil {
			return err
		}
		steps = append(steps, step)
	}

	rep, err := s.Transform(cmd.Context(), s.SelectColumn(col), steps, "")
	if err != nil {
		return err
	}

	if err := codec.SaveFile(out, s.Snapshot()); err != nil {
		return err
	}
	fmt.Printf("Changed %d cells (%d untouched, %d errors), wrote %s\n",
		rep.Changed, rep.Unchanged, rep.Errored, out)
	return nil
}

// resolveColumn accepts a header name or a zero-based index.
func resolveColumn(g *grid.Grid, ref string) (int, error) {
	if i := g.ColumnIndex(ref); i >= 0 {
		return i, nil
	}
	i, err := strconv.Atoi(ref)
	if err != nil || i < 0 || i >= g.ColCount() {
		return 0, fmt.Errorf("no column named or indexed %q", ref)
	}
	return i, nil
}

func buildAssistant() assist.Assistant {
	if !config.Global.Assistant.Enabled {
		return assist.Noop{}
	}
	a, err := assist.NewOpenAIAssistant(os.Getenv("OPENAI_API_KEY"), config.Global.Assistant.Model, nil)
	if err != nil {
		if errors.Is(err, assist.ErrUnavailable) {
			slog.Warn("assistant enabled but OPENAI_API_KEY is not set, AI steps disabled")
		}
		return assist.Noop{}
	}
	return a
}

func buildStep(op string, assistant assist.Assistant) (transform.Step, error) {
	switch op {
	case "trim":
		return transform.TrimStep{Mode: transform.TrimBoth}, nil
	case "collapse":
		return transform.TrimStep{Mode: transform.TrimCollapse}, nil
	case "upper":
		return transform.CaseStep{Mode: transform.CaseUpper}, nil
	case "lower":
		return transform.CaseStep{Mode: transform.CaseLower}, nil
	case "title":
		return transform.CaseStep{Mode: transform.CaseTitle}, nil
	case "remove-special":
		return transform.ScrubStep{Mode: transform.ScrubRemoveSpecial}, nil
	case "remove-digits":
		return transform.ScrubStep{Mode: transform.ScrubRemoveDigits}, nil
	case "extract-digits":
		return transform.ScrubStep{Mode: transform.ScrubExtractDigits}, nil
	case "replace":
		return &transform.ReplaceStep{Find: transformFind, Replace: transformReplace, Regexp: transformRegexp}, nil
	case "add":
		return transform.NewArithStep(transform.OpAdd, transformOperand), nil
	case "sub":
		return transform.NewArithStep(transform.OpSub, transformOperand), nil
	case "mul":
		return transform.NewArithStep(transform.OpMul, transformOperand), nil
	case "div":
		return transform.NewArithStep(transform.OpDiv, transformOperand), nil
	case "pow":
		return transform.NewArithStep(transform.OpPow, transformOperand), nil
	case "mod":
		return transform.NewArithStep(transform.OpMod, transformOperand), nil
	case "abs":
		return transform.UnaryStep{Op: transform.OpAbs}, nil
	case "sqrt":
		return transform.UnaryStep{Op: transform.OpSqrt}, nil
	case "floor":
		return transform.UnaryStep{Op: transform.OpFloor}, nil
	case "ceil":
		return transform.UnaryStep{Op: transform.OpCeil}, nil
	case "negate":
		return transform.UnaryStep{Op: transform.OpNegate}, nil
	case "round":
		return transform.RoundStep{Digits: transformDigits}, nil
	case "percent-of-total":
		return transform.PercentOfTotalStep{}, nil
	case "percent-format":
		return transform.PercentStyleStep{}, nil
	case "parse-dates":
		return transform.ParseDateStep{Patterns: config.Global.DatePatterns}, nil
	case "format-dates":
		return transform.FormatDateStep{Layout: transformLayout}, nil
	case "shift-days":
		return transform.ShiftDaysStep{Days: int(transformOperand)}, nil
	case "shift-months":
		return transform.ShiftMonthsStep{Months: int(transformOperand)}, nil
	case "year":
		return transform.ExtractComponentStep{Component: transform.CompYear}, nil
	case "month":
		return transform.ExtractComponentStep{Component: transform.CompMonth}, nil
	case "day":
		return transform.ExtractComponentStep{Component: transform.CompDay}, nil
	case "weekday":
		return transform.ExtractComponentStep{Component: transform.CompWeekday}, nil
	case "quarter":
		return transform.ExtractComponentStep{Component: transform.CompQuarter}, nil
	case "iso-week":
		return transform.ExtractComponentStep{Component: transform.CompISOWeek}, nil
	case "day-of-year":
		return transform.ExtractComponentStep{Component: transform.CompDayOfYear}, nil
	case "dedup":
		return transform.DedupStep{Normalize: transformNorm}, nil
	case "fill-down":
		return transform.FillStep{Mode: transform.FillForward}, nil
	case "fill-up":
		return transform.FillStep{Mode: transform.FillBackward}, nil
	case "fill-constant":
		return transform.FillStep{Mode: transform.FillConstant, Constant: grid.Text(transformValue)}, nil
	case "fill-suggest":
		return transform.FillStep{Mode: transform.FillModel, Suggester: assistant}, nil
	case "convert":
		kind, err := parseKind(transformTo)
		if err != nil {
			return nil, err
		}
		return transform.ConvertStep{Target: kind, Strict: transformStrict, DatePatterns: config.Global.DatePatterns}, nil
	default:
		return nil, fmt.Errorf("unknown transform op %q", op)
	}
}

func parseKind(name string) (grid.Kind, error) {
	switch name {
	case "text":
		return grid.KindText, nil
	case "number":
		return grid.KindNumber, nil
	case "bool":
		return grid.KindBool, nil
	case "datetime", "date":
		return grid.KindDateTime, nil
	default:
		return grid.KindEmpty, fmt.Errorf("unknown target kind %q (text, number, bool, datetime)", name)
	}
}
