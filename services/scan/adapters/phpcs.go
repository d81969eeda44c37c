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
	"os"
	"path/filepath"
	"strings"
	"time"
)

// phpcsConfigFiles are the ruleset filenames PHP_CodeSniffer discovers on
// its own.
var phpcsConfigFiles = []string{
	"phpcs.xml",
	"phpcs.xml.dist",
	".phpcs.xml",
	".phpcs.xml.dist",
}

// defaultPHPCSStandard is used when the repository ships no ruleset.
const defaultPHPCSStandard = "PSR12"

// PHPCS runs the PHP_CodeSniffer analyzer.
type PHPCS struct {
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPHPCS constructs the PHP_CodeSniffer adapter.
func NewPHPCS(language string, cfg Config) *PHPCS {
	return &PHPCS{
		language: language,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Tool returns "phpcs".
func (a *PHPCS) Tool() string { return "phpcs" }

// Language returns the language this instance analyzes.
func (a *PHPCS) Language() string { return a.language }

// Run executes PHP_CodeSniffer against the workspace.
//
// The -q flag suppresses progress chatter so stdout holds only the JSON
// report. A repository phpcs.xml wins over the default standard.
func (a *PHPCS) Run(ctx context.Context, workspaceDir string, opts Options) ([]byte, error) {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = []string{"php"}
	}

	args := []string{
		"--report=json",
		"-q",
		"--extensions=" + strings.Join(normalizeExtensions(extensions), ","),
	}
	if !a.hasRepositoryStandard(workspaceDir) {
		args = append(args, "--standard="+defaultPHPCSStandard)
	}
	args = append(args, ".")

	inv := invocation{
		tool:     a.Tool(),
		language: a.language,
		bin:      "phpcs",
		args:     args,
		dir:      workspaceDir,
		timeout:  pickTimeout(opts.Timeout, a.timeout),
	}
	return execute(ctx, inv, a.logger)
}

func (a *PHPCS) hasRepositoryStandard(workspaceDir string) bool {
	for _, name := range phpcsConfigFiles {
		if _, err := os.Stat(filepath.Join(workspaceDir, name)); err == nil {
			return true
		}
	}
	return false
}

// normalizeExtensions strips leading dots; phpcs wants bare extensions.
func normalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	return out
}
