// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package standardize

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/AleutianAI/codescan/pkg/pathsafety"
)

// Sentinel errors for the standardize package.
var (
	// ErrUnknownTool indicates no parser is registered for the tool.
	ErrUnknownTool = errors.New("unknown analyzer tool")

	// ErrParseOutput indicates the tool's output was not parseable.
	ErrParseOutput = errors.New("failed to parse analyzer output")
)

// DefaultExcludedDirs are dependency install trees and build output
// directories whose findings are never surfaced.
var DefaultExcludedDirs = []string{
	"node_modules",
	"vendor",
	"dist",
	"build",
	"target",
	".git",
	"__pycache__",
	"venv",
	".venv",
}

// Standardizer converts raw tool output into the filtered common schema.
//
// Thread Safety: safe for concurrent use after construction.
type Standardizer struct {
	root     string
	excluded []string
	logger   *slog.Logger
	parsers  map[string]ParserFunc
}

// Option configures the Standardizer.
type Option func(*Standardizer)

// WithExcludedDirs replaces the default excluded directory list.
func WithExcludedDirs(dirs []string) Option {
	return func(s *Standardizer) { s.excluded = dirs }
}

// WithLogger sets the standardizer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Standardizer) { s.logger = logger }
}

// WithPMDPriorityCutoffs overrides the PMD priority-to-severity cutoffs.
func WithPMDPriorityCutoffs(errorMax, warningMax int) Option {
	return func(s *Standardizer) {
		s.parsers["pmd"] = NewPMDParser(errorMax, warningMax)
	}
}

// WithParser registers or replaces the parser for a tool.
func WithParser(tool string, parser ParserFunc) Option {
	return func(s *Standardizer) { s.parsers[tool] = parser }
}

// New creates a Standardizer for a workspace root.
//
// Description:
//
//	Registers the built-in parsers (eslint, pmd, pylint, phpcs) with
//	default settings; PMD uses the reference cutoffs (priority <= 2 is
//	error, <= 4 is warning).
//
// Inputs:
//
//	workspaceRoot - The base all issue paths are relativized against
//	opts - Optional configuration
//
// Outputs:
//
//	*Standardizer - Ready for concurrent use
func New(workspaceRoot string, opts ...Option) *Standardizer {
	s := &Standardizer{
		root:     workspaceRoot,
		excluded: DefaultExcludedDirs,
		logger:   slog.Default(),
		parsers: map[string]ParserFunc{
			"eslint": ParseESLint,
			"pmd":    NewPMDParser(2, 4),
			"pylint": ParsePylint,
			"phpcs":  ParsePHPCS,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Standardize parses raw tool output and normalizes it into the common
// schema.
//
// Description:
//
//	Parses with the tool's registered parser, relativizes every file
//	reference against the workspace root, applies the post-filter, sorts
//	issues by file, line, and column for a stable order, and recomputes
//	the summary from the retained set.
//
//	The post-filter is silent data cleaning, not an error condition:
//	dropped issues are logged at debug level and omitted.
//
// Inputs:
//
//	tool - The analyzer name ("eslint", "pmd", "pylint", "phpcs")
//	raw - The tool's raw JSON output
//
// Outputs:
//
//	[]Issue - Retained, normalized, ordered issues
//	Summary - Counts recomputed from the retained issues
//	error - ErrUnknownTool or ErrParseOutput
func (s *Standardizer) Standardize(tool string, raw []byte) ([]Issue, Summary, error) {
	parser, ok := s.parsers[tool]
	if !ok {
		return nil, Summary{}, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
	}

	parsed, err := parser(raw)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("%w: %v", ErrParseOutput, err)
	}

	issues := make([]Issue, 0, len(parsed))
	for _, issue := range parsed {
		rel := pathsafety.Relativize(issue.File, s.root, false)
		if !s.retain(rel, issue) {
			continue
		}
		issue.File = rel
		issues = append(issues, issue)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Column < issues[j].Column
	})

	return issues, Summarize(issues), nil
}

// retain applies the post-filter to one relativized issue.
func (s *Standardizer) retain(rel string, issue Issue) bool {
	if rel == "" || rel == "." {
		s.logger.Debug("dropping issue with unresolved file",
			slog.String("file", issue.File))
		return false
	}
	if issue.Line <= 0 {
		s.logger.Debug("dropping issue with non-positive line",
			slog.String("file", rel),
			slog.Int("line", issue.Line))
		return false
	}
	for _, segment := range strings.Split(rel, "/") {
		for _, excluded := range s.excluded {
			if segment == excluded {
				s.logger.Debug("dropping issue under excluded directory",
					slog.String("file", rel),
					slog.String("dir", excluded))
				return false
			}
		}
	}
	return true
}

// Tools returns the registered tool names.
func (s *Standardizer) Tools() []string {
	tools := make([]string, 0, len(s.parsers))
	for tool := range s.parsers {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	return tools
}
