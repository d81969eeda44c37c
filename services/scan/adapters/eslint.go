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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/codescan/pkg/pathsafety"
)

// eslintConfigFiles are the configuration filenames ESLint discovers on its
// own, in its own lookup order. If any is present the adapter synthesizes
// nothing.
var eslintConfigFiles = []string{
	"eslint.config.js",
	"eslint.config.mjs",
	"eslint.config.cjs",
	".eslintrc.js",
	".eslintrc.cjs",
	".eslintrc.yaml",
	".eslintrc.yml",
	".eslintrc.json",
	".eslintrc",
}

// defaultESLintConfig is written into the workspace when the repository
// ships no ESLint configuration at all. Legacy eslintrc format; ESLint 8
// discovers it directly and ESLint 9 still accepts it in projects without
// a flat config.
const defaultESLintConfig = `{
  "root": true,
  "env": {
    "browser": true,
    "node": true,
    "es2022": true
  },
  "parserOptions": {
    "ecmaVersion": "latest",
    "sourceType": "module"
  },
  "extends": ["eslint:recommended"]
}
`

// synthesizedESLintConfigName is the filename the adapter writes when it has
// to supply a default configuration.
const synthesizedESLintConfigName = ".eslintrc.json"

// ESLint runs the ESLint analyzer for TypeScript and JavaScript.
type ESLint struct {
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewESLint constructs the ESLint adapter for a language ("typescript" or
// "javascript").
func NewESLint(language string, cfg Config) *ESLint {
	return &ESLint{
		language: language,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Tool returns "eslint".
func (a *ESLint) Tool() string { return "eslint" }

// Language returns the language this instance analyzes.
func (a *ESLint) Language() string { return a.language }

// extensions returns the file extensions scanned for the instance language.
func (a *ESLint) extensions(opts Options) []string {
	if len(opts.Extensions) > 0 {
		return opts.Extensions
	}
	if a.language == "typescript" {
		return []string{".ts", ".tsx", ".js", ".jsx"}
	}
	return []string{".js", ".jsx", ".mjs", ".cjs"}
}

// Run executes ESLint against the workspace.
//
// Description:
//
//	Prefers the project's own eslint binary (node_modules/.bin/eslint)
//	over a global install so plugin resolution matches the repository.
//	When neither the repository nor the caller supplies a configuration,
//	a minimal recommended-rules config is synthesized; the synthesis is
//	idempotent and never overwrites an existing file.
func (a *ESLint) Run(ctx context.Context, workspaceDir string, opts Options) ([]byte, error) {
	configArg, err := a.ensureConfig(workspaceDir, opts)
	if err != nil {
		return nil, &AdapterError{
			Tool:     a.Tool(),
			Language: a.language,
			ExitCode: -1,
			Err:      fmt.Errorf("%w: %w", ErrConfiguration, err),
		}
	}

	args := []string{
		"--format", "json",
		"--no-error-on-unmatched-pattern",
	}
	for _, ext := range a.extensions(opts) {
		args = append(args, "--ext", ext)
	}
	if configArg != "" {
		args = append(args, "--config", configArg)
	}
	args = append(args, ".")

	inv := invocation{
		tool:     a.Tool(),
		language: a.language,
		bin:      a.resolveBinary(workspaceDir),
		args:     args,
		dir:      workspaceDir,
		timeout:  pickTimeout(opts.Timeout, a.timeout),
	}
	return execute(ctx, inv, a.logger)
}

// resolveBinary prefers the workspace-local eslint install.
func (a *ESLint) resolveBinary(workspaceDir string) string {
	local := filepath.Join(workspaceDir, "node_modules", ".bin", "eslint")
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		a.logger.Debug("using project-local eslint", slog.String("path", local))
		return local
	}
	return "eslint"
}

// ensureConfig resolves the effective config argument for the run.
//
// A caller-supplied ConfigPath is validated against the workspace boundary
// and must exist. Without one, repository config files win; only when none
// exist is the default config written.
func (a *ESLint) ensureConfig(workspaceDir string, opts Options) (string, error) {
	if opts.ConfigPath != "" {
		resolved, err := pathsafety.SafeJoin(workspaceDir, opts.ConfigPath)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(resolved); err != nil {
			return "", fmt.Errorf("config file %s: %w", opts.ConfigPath, err)
		}
		return resolved, nil
	}

	for _, name := range eslintConfigFiles {
		if _, err := os.Stat(filepath.Join(workspaceDir, name)); err == nil {
			return "", nil // repository config, let eslint discover it
		}
	}

	target := filepath.Join(workspaceDir, synthesizedESLintConfigName)
	if _, err := os.Stat(target); err == nil {
		return "", nil
	}
	a.logger.Info("no eslint config found, synthesizing default",
		slog.String("file", synthesizedESLintConfigName))
	if err := os.WriteFile(target, []byte(defaultESLintConfig), 0o644); err != nil {
		return "", fmt.Errorf("write default config: %w", err)
	}
	return "", nil
}

// pickTimeout returns the per-run override if set, else the adapter default.
func pickTimeout(override, fallback time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return fallback
}
