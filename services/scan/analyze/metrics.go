// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyze

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for scan operations.
var (
	tracer = otel.Tracer("codescan.analyze")
	meter  = otel.Meter("codescan.analyze")
)

// Metrics for scan operations.
var (
	scanLatency   metric.Float64Histogram
	scanTotal     metric.Int64Counter
	issuesFound   metric.Int64Histogram
	errorsFound   metric.Int64Counter
	warningsFound metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		scanLatency, err = meter.Float64Histogram(
			"scan_duration_seconds",
			metric.WithDescription("Duration of repository scan operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		scanTotal, err = meter.Int64Counter(
			"scan_total",
			metric.WithDescription("Total number of scan operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesFound, err = meter.Int64Histogram(
			"scan_issues_found",
			metric.WithDescription("Number of issues found per scan"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		errorsFound, err = meter.Int64Counter(
			"scan_errors_found_total",
			metric.WithDescription("Total number of error-severity issues found"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		warningsFound, err = meter.Int64Counter(
			"scan_warnings_found_total",
			metric.WithDescription("Total number of warning-severity issues found"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startScanSpan creates a span for a scan operation.
func startScanSpan(ctx context.Context, language, repoURL string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Orchestrator.Run",
		trace.WithAttributes(
			attribute.String("scan.language", language),
			attribute.String("scan.repository_url", repoURL),
		),
	)
}

// setScanSpanResult sets the result attributes on a scan span.
func setScanSpanResult(span trace.Span, tool, branch string, errorCount, warningCount int) {
	span.SetAttributes(
		attribute.String("scan.tool", tool),
		attribute.String("scan.branch", branch),
		attribute.Int("scan.error_count", errorCount),
		attribute.Int("scan.warning_count", warningCount),
	)
}

// recordScanMetrics records metrics for a scan operation.
func recordScanMetrics(ctx context.Context, language string, duration time.Duration, errorCount, warningCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)

	scanLatency.Record(ctx, duration.Seconds(), attrs)
	scanTotal.Add(ctx, 1, attrs)

	if success {
		langAttrs := metric.WithAttributes(attribute.String("language", language))
		issuesFound.Record(ctx, int64(errorCount+warningCount), langAttrs)
		errorsFound.Add(ctx, int64(errorCount), langAttrs)
		warningsFound.Add(ctx, int64(warningCount), langAttrs)
	}
}
