// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyze sequences one full repository analysis: workspace
// creation, sparse checkout, analyzer execution, standardization, and
// content attachment.
//
// The workspace is destroyed on every exit path, success or failure; file
// contents are copied into the result before cleanup so nothing references
// the workspace afterwards.
package analyze

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/codescan/pkg/config"
	"github.com/AleutianAI/codescan/services/scan/adapters"
	"github.com/AleutianAI/codescan/services/scan/checkout"
	"github.com/AleutianAI/codescan/services/scan/standardize"
	"github.com/AleutianAI/codescan/services/scan/workspace"
)

// =============================================================================
// TYPES
// =============================================================================

// Request describes one analysis run.
type Request struct {
	// RepositoryURL is the remote repository to analyze.
	RepositoryURL string

	// Language selects the analyzer (java, typescript, javascript,
	// python, php).
	Language string

	// Branch is the requested branch; empty means "main" with fallback.
	Branch string

	// FilePatterns overrides the language's default sparse-checkout
	// patterns. Manifest files are always added.
	FilePatterns []string

	// ConfigPath is a workspace-relative analyzer config file (ESLint).
	ConfigPath string

	// Rulesets is a comma-separated ruleset reference list (PMD).
	Rulesets string

	// Extensions overrides the file extensions the analyzer scans
	// (ESLint, PHPCS).
	Extensions []string

	// SkipContents disables file-content attachment.
	SkipContents bool
}

// checkoutFunc performs the sparse checkout; swappable in tests.
type checkoutFunc func(ctx context.Context, ws *workspace.Workspace, spec checkout.Spec, patterns []string) (string, error)

// adapterFactory builds the analyzer adapter; swappable in tests.
type adapterFactory func(language string, cfg adapters.Config) (adapters.Adapter, error)

// Orchestrator runs analyses end to end.
//
// Thread Safety: safe for concurrent use; every run owns its own workspace.
type Orchestrator struct {
	cfg        *config.Config
	logger     *slog.Logger
	checkout   checkoutFunc
	newAdapter adapterFactory
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New constructs an Orchestrator from configuration.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		logger:     slog.Default(),
		newAdapter: adapters.ForLanguage,
	}
	for _, opt := range opts {
		opt(o)
	}

	engine := checkout.NewEngine(
		checkout.WithFetchTimeout(cfg.FetchTimeout),
		checkout.WithBranchListTimeout(cfg.BranchListTimeout),
		checkout.WithLogger(o.logger),
	)
	o.checkout = engine.Checkout
	return o
}

// =============================================================================
// RUN
// =============================================================================

// Run executes one analysis.
//
// Description:
//
//	Pipeline: validate request -> create workspace -> sparse checkout ->
//	run analyzer -> standardize output -> attach file contents. The
//	workspace is removed before Run returns, on every path. Failures
//	carry the phase they occurred in via PhaseError.
//
// Outputs:
//
//	*standardize.Result - The standardized analysis outcome
//	error - A *PhaseError wrapping the underlying failure
func (o *Orchestrator) Run(ctx context.Context, req Request) (*standardize.Result, error) {
	start := time.Now()
	ctx, span := startScanSpan(ctx, req.Language, req.RepositoryURL)
	defer span.End()

	result, err := o.run(ctx, req)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordScanMetrics(ctx, req.Language, duration, 0, 0, false)
		o.logger.Error("analysis failed",
			slog.String("repository", req.RepositoryURL),
			slog.String("language", req.Language),
			slog.Any("error", err),
		)
		return nil, err
	}

	result.Duration = duration
	setScanSpanResult(span, result.Tool, result.Branch, result.Summary.ErrorCount, result.Summary.WarningCount)
	recordScanMetrics(ctx, req.Language, duration, result.Summary.ErrorCount, result.Summary.WarningCount, true)
	o.logger.Info("analysis complete",
		slog.String("repository", req.RepositoryURL),
		slog.String("language", req.Language),
		slog.String("tool", result.Tool),
		slog.String("branch", result.Branch),
		slog.Int("errors", result.Summary.ErrorCount),
		slog.Int("warnings", result.Summary.WarningCount),
		slog.Duration("duration", duration),
	)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) (*standardize.Result, error) {
	if !checkout.SupportedLanguage(req.Language) {
		return nil, phaseErr(PhaseValidate, adapters.ErrUnsupportedLanguage)
	}

	spec := checkout.Spec{
		RepositoryURL: req.RepositoryURL,
		Branch:        req.Branch,
		FilePatterns:  req.FilePatterns,
	}
	if err := checkout.ValidateSpec(spec); err != nil {
		return nil, phaseErr(PhaseValidate, err)
	}

	adapter, err := o.newAdapter(req.Language, adapters.Config{
		PMDPath: o.cfg.PMDPath,
		Timeout: o.cfg.AnalyzerTimeout,
		Logger:  o.logger,
	})
	if err != nil {
		return nil, phaseErr(PhaseValidate, err)
	}

	ws, err := workspace.New(o.cfg.WorkspaceRoot)
	if err != nil {
		return nil, phaseErr(PhaseWorkspace, err)
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			o.logger.Warn("workspace cleanup failed", slog.Any("error", cerr))
		}
	}()

	patterns := checkout.PatternsForLanguage(req.Language, req.FilePatterns)
	branch, err := o.checkout(ctx, ws, spec, patterns)
	if err != nil {
		return nil, phaseErr(PhaseCheckout, err)
	}

	raw, err := adapter.Run(ctx, ws.Path(), adapters.Options{
		ConfigPath: req.ConfigPath,
		Rulesets:   req.Rulesets,
		Extensions: req.Extensions,
	})
	if err != nil {
		return nil, phaseErr(PhaseAnalyze, err)
	}

	standardizer := standardize.New(ws.Path(),
		standardize.WithLogger(o.logger),
		standardize.WithPMDPriorityCutoffs(o.cfg.PMDErrorMaxPriority, o.cfg.PMDWarningMaxPriority),
	)
	issues, summary, err := standardizer.Standardize(adapter.Tool(), raw)
	if err != nil {
		return nil, phaseErr(PhaseStandardize, err)
	}

	result := &standardize.Result{
		Tool:     adapter.Tool(),
		Language: req.Language,
		Branch:   branch,
		Summary:  summary,
		Issues:   issues,
	}
	if !req.SkipContents && len(issues) > 0 {
		result.FileContents = attachContents(ctx, ws, issues, o.logger)
	}
	return result, nil
}
