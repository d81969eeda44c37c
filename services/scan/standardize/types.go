// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package standardize maps heterogeneous analyzer outputs into one issue
// schema.
//
// Each supported tool has a pure parser producing the common Issue shape,
// and every tool-native severity scale (numeric priority, categorical type,
// boolean error/warning) collapses deterministically into the three-level
// {error, warning, info} taxonomy. Paths are relativized against the
// workspace root; issues that cannot be placed inside the workspace, sit
// under dependency install trees, or carry a non-positive line number are
// silently dropped. Summary counts are recomputed from the retained issues,
// never trusted from the tool's own totals.
package standardize

import "time"

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the three-level taxonomy all tool-native severities collapse
// into.
type Severity int

const (
	// SeverityInfo covers style and informational findings.
	SeverityInfo Severity = iota

	// SeverityWarning covers findings worth noting.
	SeverityWarning

	// SeverityError covers findings the tool considers defects.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize as
// their names in JSON records.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		*s = SeverityInfo
	}
	return nil
}

// =============================================================================
// ISSUE
// =============================================================================

// Issue is the standardized record for one analyzer finding.
//
// Invariants: File is a forward-slash path relative to the workspace root,
// never absolute, never resolving outside the workspace; Line is positive.
// Parsers may emit issues violating these; Normalize drops them.
//
// Thread Safety: immutable after creation.
type Issue struct {
	// File is the path relative to the workspace root.
	File string `json:"file"`

	// Line is the 1-indexed line number of the finding.
	Line int `json:"line"`

	// EndLine is the ending line for multi-line findings, 0 if unknown.
	EndLine int `json:"end_line,omitempty"`

	// Column is the 1-indexed column, 0 if the tool omits it.
	Column int `json:"column,omitempty"`

	// EndColumn is the ending column, 0 if unknown.
	EndColumn int `json:"end_column,omitempty"`

	// Rule is the tool rule identifier (e.g. "no-unused-vars", "E501").
	Rule string `json:"rule"`

	// Ruleset is the rule bundle or source the rule belongs to.
	Ruleset string `json:"ruleset,omitempty"`

	// Severity is the collapsed three-level severity.
	Severity Severity `json:"severity"`

	// Message is the human-readable finding description.
	Message string `json:"message"`

	// Suggestion is a tool-specific fix hint, when available.
	Suggestion string `json:"suggestion,omitempty"`
}

// =============================================================================
// RESULT
// =============================================================================

// Summary aggregates counts over the retained issue set.
type Summary struct {
	// ErrorCount is the number of retained issues with SeverityError.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of retained issues with SeverityWarning.
	WarningCount int `json:"warning_count"`

	// FileCount is the number of distinct files with at least one issue.
	FileCount int `json:"file_count"`
}

// Result is the full outcome of one analysis run.
//
// Ownership: a Result owns copies of issue data and file content; no live
// references back into the workspace survive its destruction.
type Result struct {
	// Tool is the analyzer that produced the findings.
	Tool string `json:"tool"`

	// Language is the analyzed language.
	Language string `json:"language"`

	// Branch is the branch the workspace was checked out from.
	Branch string `json:"branch,omitempty"`

	// Summary holds recomputed aggregate counts.
	Summary Summary `json:"summary"`

	// Issues is the ordered, filtered issue set.
	Issues []Issue `json:"issues"`

	// FileContents maps relative file paths to file text, for every file
	// referenced by at least one issue and readable at attach time.
	FileContents map[string]string `json:"file_contents,omitempty"`

	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration"`
}

// Summarize recomputes aggregate counts from an issue set.
//
// Description:
//
//	Counts are always derived from the filtered issues; tools'
//	self-reported totals may include findings the post-filter dropped.
func Summarize(issues []Issue) Summary {
	files := make(map[string]struct{}, len(issues))
	var s Summary
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			s.ErrorCount++
		case SeverityWarning:
			s.WarningCount++
		}
		files[issue.File] = struct{}{}
	}
	s.FileCount = len(files)
	return s
}
