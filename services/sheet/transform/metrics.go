// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transform

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// =============================================================================
// Metrics
// =============================================================================

var (
	meter = otel.Meter("lattice.transform")

	runTotal        metric.Int64Counter
	runDuration     metric.Float64Histogram
	cellsChanged    metric.Int64Counter
	cellsErrored    metric.Int64Counter
	metricsOnce     sync.Once
	metricsInitErr  error
	metricsEnabled  atomic.Bool
)

// SetMetricsEnabled toggles OpenTelemetry metric recording for transform
// runs. Disabled by default.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

func initMetrics() error {
	metricsOnce.Do(func() {
		runTotal, metricsInitErr = meter.Int64Counter(
			"lattice.transform.runs",
			metric.WithDescription("Total transform pipeline runs"),
		)
		if metricsInitErr != nil {
			return
		}
		runDuration, metricsInitErr = meter.Float64Histogram(
			"lattice.transform.run.duration",
			metric.WithDescription("Transform run duration in seconds"),
			metric.WithUnit("s"),
		)
		if metricsInitErr != nil {
			return
		}
		cellsChanged, metricsInitErr = meter.Int64Counter(
			"lattice.transform.cells.changed",
			metric.WithDescription("Cells rewritten by transform runs"),
		)
		if metricsInitErr != nil {
			return
		}
		cellsErrored, metricsInitErr = meter.Int64Counter(
			"lattice.transform.cells.errored",
			metric.WithDescription("Cells rewritten to error values by transform runs"),
		)
	})
	return metricsInitErr
}

func recordRun(ctx context.Context, steps int, rep Report, d time.Duration, err error) {
	if !metricsEnabled.Load() || initMetrics() != nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.Int("steps", steps),
		attribute.String("status", status),
	)
	runTotal.Add(ctx, 1, attrs)
	runDuration.Record(ctx, d.Seconds(), attrs)
	if err == nil {
		cellsChanged.Add(ctx, int64(rep.Changed))
		cellsErrored.Add(ctx, int64(rep.Errored))
	}
}
