// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/latticehq/lattice/services/sheet/grid"
)

// OpenAIAssistant backs the assist boundary with an OpenAI chat model.
//
// # Description
//
// Builds compact text renderings of snapshot context and asks the model
// for fill values, anomalous cells or formulas. All failures that mean
// "not configured" surface as ErrUnavailable so callers degrade to the
// feature being off.
//
// # Thread Safety
//
// Safe for concurrent use; the underlying client is stateless per call.
type OpenAIAssistant struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIAssistant creates an assistant for the given API key and model.
//
// # Inputs
//
//   - apiKey: OpenAI API key. Empty returns ErrUnavailable so callers can
//     fall back to Noop without special-casing.
//   - model: Model name; defaults to gpt-4o-mini when empty.
//   - logger: Structured logger. Uses slog.Default() if nil.
func NewOpenAIAssistant(apiKey, model string, logger *slog.Logger) (*OpenAIAssistant, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIAssistant{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger.With("component", "assist.OpenAIAssistant"),
	}, nil
}

// Compile-time interface satisfaction check
var _ Assistant = (*OpenAIAssistant)(nil)

func (a *OpenAIAssistant) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// SuggestFill asks the model for a value for the empty cell at (row, col).
func (a *OpenAIAssistant) SuggestFill(ctx context.Context, s *grid.Snapshot, col, row int) (grid.Value, error) {
	prompt := fillPrompt(s, col, row)
	out, err := a.complete(ctx,
		"You complete missing spreadsheet cells. Reply with the bare value only, or NONE if you cannot tell.",
		prompt)
	if err != nil {
		a.logger.Warn("fill suggestion failed", "error", err)
		return grid.Empty(), err
	}
	if out == "" || strings.EqualFold(out, "NONE") {
		return grid.Empty(), nil
	}
	if f, perr := strconv.ParseFloat(out, 64); perr == nil {
		return grid.Number(f), nil
	}
	return grid.Text(out), nil
}

// DetectAnomalies asks the model for suspicious cells, as "row,col" pairs.
func (a *OpenAIAssistant) DetectAnomalies(ctx context.Context, s *grid.Snapshot) ([]CellRef, error) {
	out, err := a.complete(ctx,
		"You audit spreadsheet data. Reply with one 'row,col' pair per line for cells that look anomalous, or NONE.",
		renderSnapshot(s, 50))
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(out, "NONE") {
		return nil, nil
	}
	var refs []CellRef
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ",", 2)
		if len(parts) != 2 {
			continue
		}
		r, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		c, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		if r >= 0 && r < s.RowCount() && c >= 0 && c < s.ColCount() {
			refs = append(refs, CellRef{Row: r, Col: c})
		}
	}
	return refs, nil
}

// SuggestFormula turns intent text into a formula over the snapshot's
// column names.
func (a *OpenAIAssistant) SuggestFormula(ctx context.Context, s *grid.Snapshot, intent string) (string, error) {
	var names []string
	for _, c := range s.Columns() {
		names = append(names, c.Name)
	}
	prompt := fmt.Sprintf("Columns: %s\nIntent: %s", strings.Join(names, ", "), intent)
	return a.complete(ctx,
		"You write spreadsheet formulas referencing columns as [Name]. Reply with the formula only.",
		prompt)
}

// fillPrompt renders the target column plus a handful of context rows.
func fillPrompt(s *grid.Snapshot, col, row int) string {
	var b strings.Builder
	cols := s.Columns()
	if col >= 0 && col < len(cols) {
		fmt.Fprintf(&b, "Target column: %s\n", cols[col].Name)
	}
	fmt.Fprintf(&b, "Target row index: %d\n", row)
	b.WriteString(renderSnapshot(s, 20))
	return b.String()
}

// renderSnapshot writes up to maxRows rows as tab-separated text.
func renderSnapshot(s *grid.Snapshot, maxRows int) string {
	var b strings.Builder
	var names []string
	for _, c := range s.Columns() {
		names = append(names, c.Name)
	}
	b.WriteString(strings.Join(names, "\t"))
	b.WriteByte('\n')
	n := s.RowCount()
	if n > maxRows {
		n = maxRows
	}
	for i := 0; i < n; i++ {
		row, err := s.Row(i)
		if err != nil {
			continue
		}
		var vals []string
		for _, c := range row {
			vals = append(vals, c.Value.AsText())
		}
		b.WriteString(strings.Join(vals, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
