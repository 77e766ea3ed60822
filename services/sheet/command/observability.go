// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const historyTracerName = "lattice.history"

// Tracer provides OpenTelemetry tracing for history operations.
//
// # Description
//
// Wraps the OpenTelemetry tracer with history-specific span creation and
// attribute management. When disabled, returns noop spans for zero
// overhead.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Tracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewTracer creates a new history tracer.
//
// # Inputs
//
//   - logger: Logger for structured logging. Uses slog.Default() if nil.
//   - enabled: Whether tracing is enabled. When false, uses noop spans.
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{
		tracer:  otel.Tracer(historyTracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// StartApply starts a span for a command apply operation.
func (t *Tracer) StartApply(ctx context.Context, cmd Command) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, "history.apply",
		trace.WithAttributes(
			attribute.String("command.id", cmd.ID().String()),
			attribute.String("command.kind", string(cmd.Kind())),
			attribute.Int("command.size", Size(cmd)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndApply completes an apply span.
func (t *Tracer) EndApply(span trace.Span, cmd Command, err error) {
	if span == nil {
		return
	}
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// StartUndo starts a span for an undo operation.
func (t *Tracer) StartUndo(ctx context.Context, cmd Command) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, "history.undo",
		trace.WithAttributes(
			attribute.String("command.id", cmd.ID().String()),
			attribute.String("command.kind", string(cmd.Kind())),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndUndo completes an undo span.
func (t *Tracer) EndUndo(span trace.Span, err error) {
	if span == nil {
		return
	}
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// StartRedo starts a span for a redo operation.
func (t *Tracer) StartRedo(ctx context.Context, cmd Command) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, "history.redo",
		trace.WithAttributes(
			attribute.String("command.id", cmd.ID().String()),
			attribute.String("command.kind", string(cmd.Kind())),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndRedo completes a redo span.
func (t *Tracer) EndRedo(span trace.Span, err error) {
	t.EndUndo(span, err)
}
