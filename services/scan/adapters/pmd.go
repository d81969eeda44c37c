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
	"strings"
	"time"

	"github.com/AleutianAI/codescan/pkg/pathsafety"
)

// pmdDefaultRulesets maps a language to its bundled quickstart ruleset.
var pmdDefaultRulesets = map[string]string{
	"java":       "rulesets/java/quickstart.xml",
	"apex":       "rulesets/apex/quickstart.xml",
	"kotlin":     "category/kotlin/bestpractices.xml",
	"javascript": "category/ecmascript/bestpractices.xml",
}

// PMD runs the PMD source-code analyzer. Primarily Java; the engine also
// covers other languages via --force-language.
type PMD struct {
	language string
	binPath  string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPMD constructs the PMD adapter.
func NewPMD(language string, cfg Config) *PMD {
	return &PMD{
		language: language,
		binPath:  cfg.PMDPath,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Tool returns "pmd".
func (a *PMD) Tool() string { return "pmd" }

// Language returns the language this instance analyzes.
func (a *PMD) Language() string { return a.language }

// Run executes PMD against the workspace.
//
// Description:
//
//	Resolves the effective ruleset list BEFORE any process is spawned:
//	caller-supplied references are each validated through the path safety
//	layer (bundled category tokens or http(s) URLs; never filesystem
//	escapes), and an invalid reference fails the run with
//	ErrConfiguration without executing PMD.
func (a *PMD) Run(ctx context.Context, workspaceDir string, opts Options) ([]byte, error) {
	rulesets, err := a.resolveRulesets(opts)
	if err != nil {
		return nil, &AdapterError{
			Tool:     a.Tool(),
			Language: a.language,
			ExitCode: -1,
			Err:      fmt.Errorf("%w: %w", ErrConfiguration, err),
		}
	}

	args := []string{
		"check",
		"--dir", ".",
		"--format", "json",
		"--rulesets", rulesets,
		"--no-cache",
		"--no-progress",
	}
	if a.language != "java" {
		args = append(args, "--force-language", a.language)
	}

	inv := invocation{
		tool:     a.Tool(),
		language: a.language,
		bin:      a.binPath,
		args:     args,
		dir:      workspaceDir,
		timeout:  pickTimeout(opts.Timeout, a.timeout),
	}
	return execute(ctx, inv, a.logger)
}

// resolveRulesets validates every caller-supplied ruleset reference, or
// falls back to the language's default bundle.
func (a *PMD) resolveRulesets(opts Options) (string, error) {
	if opts.Rulesets == "" {
		if def, ok := pmdDefaultRulesets[a.language]; ok {
			return def, nil
		}
		return "", fmt.Errorf("no default ruleset for language %q", a.language)
	}

	refs := strings.Split(opts.Rulesets, ",")
	validated := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		clean, err := pathsafety.ValidateRulesetRef(ref)
		if err != nil {
			return "", fmt.Errorf("ruleset %q: %w", ref, err)
		}
		validated = append(validated, clean)
	}
	if len(validated) == 0 {
		return "", fmt.Errorf("ruleset list %q resolved to nothing", opts.Rulesets)
	}
	return strings.Join(validated, ","), nil
}
