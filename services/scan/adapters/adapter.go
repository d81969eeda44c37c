// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package adapters runs external static-analysis tools against a checked-out
// workspace.
//
// One adapter exists per supported tool: ESLint (TypeScript/JavaScript),
// PMD (Java-family rule engine), Pylint (Python), and PHP_CodeSniffer (PHP).
// Each adapter prepares tool configuration when absent, builds an argument
// vector (never a shell string), executes the tool as an external process,
// and classifies the outcome.
//
// The universal non-fatal-success rule: these tools exit non-zero when they
// FIND issues, not only when they FAIL. An adapter therefore treats a
// non-zero exit with parseable structured stdout as success, and classifies
// everything else via stderr heuristics into ErrExecutableNotFound,
// ErrConfiguration, or ErrExecutionFailed.
package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Options carries caller-supplied, tool-specific settings for one run.
type Options struct {
	// ConfigPath is a workspace-relative tool config file. Validated
	// through the path safety layer before use. ESLint only.
	ConfigPath string

	// Rulesets is a comma-separated ruleset reference list. Each entry is
	// validated via pathsafety.ValidateRulesetRef. PMD only.
	Rulesets string

	// Extensions is an explicit file-extension list for tools that scan
	// by extension. ESLint and PHPCS; PMD selects files by language.
	Extensions []string

	// Timeout bounds the tool process. Zero means the adapter default.
	Timeout time.Duration
}

// Adapter is the common contract: run one tool against a workspace and
// return its raw structured output.
type Adapter interface {
	// Tool returns the analyzer name as known to the standardizer.
	Tool() string

	// Language returns the language this adapter instance analyzes.
	Language() string

	// Run executes the tool against workspaceDir.
	//
	// Outputs:
	//
	//	[]byte - Raw structured (JSON) tool output
	//	error - ErrExecutableNotFound, ErrConfiguration,
	//	        ErrExecutionFailed, or ErrTimeout, wrapped in AdapterError
	Run(ctx context.Context, workspaceDir string, opts Options) ([]byte, error)
}

// Config carries environment-level adapter settings.
type Config struct {
	// PMDPath is the PMD executable path or name (default "pmd").
	PMDPath string

	// Timeout is the default per-process bound.
	Timeout time.Duration

	// Logger receives adapter diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.PMDPath == "" {
		c.PMDPath = "pmd"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// ForLanguage returns the adapter responsible for a language.
//
// Description:
//
//	Routing: java -> PMD, typescript/javascript -> ESLint,
//	python -> Pylint, php -> PHP_CodeSniffer. Unknown languages fail
//	with ErrUnsupportedLanguage.
func ForLanguage(language string, cfg Config) (Adapter, error) {
	cfg = cfg.withDefaults()
	switch language {
	case "java":
		return NewPMD(language, cfg), nil
	case "typescript", "javascript":
		return NewESLint(language, cfg), nil
	case "python":
		return NewPylint(language, cfg), nil
	case "php":
		return NewPHPCS(language, cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}
}
