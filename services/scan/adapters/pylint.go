// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adapters

import (
	"context"
	"log/slog"
	"time"
)

// Pylint runs the Pylint analyzer for Python.
type Pylint struct {
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPylint constructs the Pylint adapter.
func NewPylint(language string, cfg Config) *Pylint {
	return &Pylint{
		language: language,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Tool returns "pylint".
func (a *Pylint) Tool() string { return "pylint" }

// Language returns the language this instance analyzes.
func (a *Pylint) Language() string { return a.language }

// Run executes Pylint against the workspace.
//
// Pylint exits non-zero whenever any message is emitted, so the universal
// non-fatal-success rule in execute carries most runs: the JSON report on
// stdout is the result regardless of exit status. Repository pylintrc or
// pyproject.toml settings are discovered by pylint itself.
func (a *Pylint) Run(ctx context.Context, workspaceDir string, opts Options) ([]byte, error) {
	args := []string{
		"--output-format=json",
		"--recursive=y",
		"--exit-zero=n",
		".",
	}

	inv := invocation{
		tool:     a.Tool(),
		language: a.language,
		bin:      "pylint",
		args:     args,
		dir:      workspaceDir,
		timeout:  pickTimeout(opts.Timeout, a.timeout),
	}
	return execute(ctx, inv, a.logger)
}
