// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for history metrics.
var meter = otel.Meter("lattice.history")

// Metric instruments for history operations.
var (
	applyTotal    metric.Int64Counter
	rejectedTotal metric.Int64Counter
	undoTotal     metric.Int64Counter
	redoTotal     metric.Int64Counter
	evictedTotal  metric.Int64Counter
	applyDuration metric.Float64Histogram
	historyDepth  metric.Int64Gauge

	metricsOnce sync.Once
	metricsErr  error
)

// metricsEnabled controls whether metrics are recorded.
//
// Thread Safety: Uses atomic operations for safe concurrent access.
var metricsEnabled atomic.Bool

// SetMetricsEnabled controls whether metrics are recorded.
//
// Thread Safety: Safe for concurrent use.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

// initMetrics initializes all metric instruments.
// Safe to call multiple times; uses sync.Once internally.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		applyTotal, err = meter.Int64Counter(
			"history_apply_total",
			metric.WithDescription("Total number of commands applied"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rejectedTotal, err = meter.Int64Counter(
			"history_rejected_total",
			metric.WithDescription("Total number of commands rejected by validation"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		undoTotal, err = meter.Int64Counter(
			"history_undo_total",
			metric.WithDescription("Total number of undo operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		redoTotal, err = meter.Int64Counter(
			"history_redo_total",
			metric.WithDescription("Total number of redo operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		evictedTotal, err = meter.Int64Counter(
			"history_evicted_total",
			metric.WithDescription("Total number of undo entries evicted at capacity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		applyDuration, err = meter.Float64Histogram(
			"history_apply_duration_seconds",
			metric.WithDescription("Duration of command apply operations in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		historyDepth, err = meter.Int64Gauge(
			"history_undo_depth",
			metric.WithDescription("Current undo stack depth"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordApply(ctx context.Context, kind Kind, d time.Duration, err error) {
	if !metricsEnabled.Load() || initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("command.kind", string(kind)))
	if err != nil {
		rejectedTotal.Add(ctx, 1, attrs)
		return
	}
	applyTotal.Add(ctx, 1, attrs)
	applyDuration.Record(ctx, d.Seconds(), attrs)
}

func recordUndo(ctx context.Context, d time.Duration, err error) {
	if !metricsEnabled.Load() || initMetrics() != nil {
		return
	}
	undoTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("error", err != nil)))
	if err == nil {
		applyDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
			attribute.String("command.kind", "undo")))
	}
}

func recordRedo(ctx context.Context, d time.Duration, err error) {
	if !metricsEnabled.Load() || initMetrics() != nil {
		return
	}
	redoTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("error", err != nil)))
	if err == nil {
		applyDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
			attribute.String("command.kind", "redo")))
	}
}

func recordEviction(ctx context.Context) {
	if !metricsEnabled.Load() || initMetrics() != nil {
		return
	}
	evictedTotal.Add(ctx, 1)
}

func recordDepth(ctx context.Context, depth int) {
	if !metricsEnabled.Load() || initMetrics() != nil {
		return
	}
	historyDepth.Record(ctx, int64(depth))
}
