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
	"encoding/json"
	"fmt"
	"strings"
)

// ParserFunc parses one tool's raw JSON output into issues. The File field
// of parsed issues still carries the tool-reported path; Normalize handles
// relativization and filtering.
type ParserFunc func(data []byte) ([]Issue, error)

// =============================================================================
// ESLINT PARSER
// =============================================================================

// eslintOutput is the `eslint --format=json` shape: one entry per file.
type eslintOutput []eslintFile

type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID      string             `json:"ruleId"`
	Severity    int                `json:"severity"` // 1 = warning, 2 = error
	Message     string             `json:"message"`
	Line        int                `json:"line"`
	Column      int                `json:"column"`
	EndLine     int                `json:"endLine"`
	EndColumn   int                `json:"endColumn"`
	Suggestions []eslintSuggestion `json:"suggestions"`
}

type eslintSuggestion struct {
	Desc string `json:"desc"`
}

// ParseESLint parses `eslint --format=json` output.
func ParseESLint(data []byte) ([]Issue, error) {
	var output eslintOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parsing eslint output: %w", err)
	}

	var issues []Issue
	for _, file := range output {
		for _, msg := range file.Messages {
			issue := Issue{
				File:      file.FilePath,
				Line:      msg.Line,
				EndLine:   msg.EndLine,
				Column:    msg.Column,
				EndColumn: msg.EndColumn,
				Rule:      msg.RuleID,
				Ruleset:   "eslint",
				Severity:  mapESLintSeverity(msg.Severity),
				Message:   msg.Message,
			}
			if len(msg.Suggestions) > 0 {
				issue.Suggestion = msg.Suggestions[0].Desc
			}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// mapESLintSeverity collapses ESLint's numeric scale. Unknown values map to
// the least severe bucket.
func mapESLintSeverity(severity int) Severity {
	switch severity {
	case 2:
		return SeverityError
	case 1:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// =============================================================================
// PMD PARSER
// =============================================================================

// pmdOutput is the `pmd -f json` shape.
type pmdOutput struct {
	Files []pmdFile `json:"files"`
}

type pmdFile struct {
	Filename   string         `json:"filename"`
	Violations []pmdViolation `json:"violations"`
}

type pmdViolation struct {
	BeginLine   int    `json:"beginline"`
	BeginColumn int    `json:"begincolumn"`
	EndLine     int    `json:"endline"`
	EndColumn   int    `json:"endcolumn"`
	Description string `json:"description"`
	Rule        string `json:"rule"`
	Ruleset     string `json:"ruleset"`
	Priority    int    `json:"priority"`
	ExternalURL string `json:"externalInfoUrl"`
}

// NewPMDParser builds a PMD parser with the given priority cutoffs.
//
// Description:
//
//	PMD reports a numeric priority from 1 (highest) to 5. Priorities up
//	to errorMax map to error, up to warningMax map to warning, the rest
//	to info. The default cutoffs (2, 4) preserve the reference product
//	behavior; they are configuration, not an invariant.
//
// Inputs:
//
//	errorMax - Highest priority value still mapped to error
//	warningMax - Highest priority value still mapped to warning
//
// Outputs:
//
//	ParserFunc - Parser for `pmd -f json` output
func NewPMDParser(errorMax, warningMax int) ParserFunc {
	return func(data []byte) ([]Issue, error) {
		var output pmdOutput
		if err := json.Unmarshal(data, &output); err != nil {
			return nil, fmt.Errorf("parsing pmd output: %w", err)
		}

		var issues []Issue
		for _, file := range output.Files {
			for _, v := range file.Violations {
				issue := Issue{
					File:      file.Filename,
					Line:      v.BeginLine,
					EndLine:   v.EndLine,
					Column:    v.BeginColumn,
					EndColumn: v.EndColumn,
					Rule:      v.Rule,
					Ruleset:   v.Ruleset,
					Severity:  mapPMDPriority(v.Priority, errorMax, warningMax),
					Message:   v.Description,
				}
				if v.ExternalURL != "" {
					issue.Suggestion = "See " + v.ExternalURL
				}
				issues = append(issues, issue)
			}
		}
		return issues, nil
	}
}

// mapPMDPriority collapses a PMD priority using the configured cutoffs.
// Non-positive priorities are malformed and map to the least severe bucket.
func mapPMDPriority(priority, errorMax, warningMax int) Severity {
	switch {
	case priority <= 0:
		return SeverityInfo
	case priority <= errorMax:
		return SeverityError
	case priority <= warningMax:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// =============================================================================
// PYLINT PARSER
// =============================================================================

// pylintMessage is one entry of `pylint --output-format=json`.
type pylintMessage struct {
	Type      string `json:"type"` // fatal, error, warning, convention, refactor, info
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
	Symbol    string `json:"symbol"`
	MessageID string `json:"message-id"`
	Message   string `json:"message"`
}

// ParsePylint parses `pylint --output-format=json` output.
func ParsePylint(data []byte) ([]Issue, error) {
	var messages []pylintMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parsing pylint output: %w", err)
	}

	issues := make([]Issue, 0, len(messages))
	for _, msg := range messages {
		rule := msg.Symbol
		if rule == "" {
			rule = msg.MessageID
		}
		issues = append(issues, Issue{
			File:      msg.Path,
			Line:      msg.Line,
			EndLine:   msg.EndLine,
			Column:    msg.Column,
			EndColumn: msg.EndColumn,
			Rule:      rule,
			Ruleset:   "pylint",
			Severity:  mapPylintType(msg.Type),
			Message:   msg.Message,
		})
	}
	return issues, nil
}

// mapPylintType collapses pylint's categorical message types. Unknown
// categories map to the least severe bucket.
func mapPylintType(t string) Severity {
	switch strings.ToLower(t) {
	case "fatal", "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	default: // convention, refactor, info, unknown
		return SeverityInfo
	}
}

// =============================================================================
// PHPCS PARSER
// =============================================================================

// phpcsOutput is the `phpcs --report=json` shape. Files is keyed by path.
type phpcsOutput struct {
	Files map[string]phpcsFile `json:"files"`
}

type phpcsFile struct {
	Messages []phpcsMessage `json:"messages"`
}

type phpcsMessage struct {
	Message string `json:"message"`
	Source  string `json:"source"`
	Type    string `json:"type"` // ERROR or WARNING
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Fixable bool   `json:"fixable"`
}

// ParsePHPCS parses `phpcs --report=json` output.
func ParsePHPCS(data []byte) ([]Issue, error) {
	var output phpcsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parsing phpcs output: %w", err)
	}

	var issues []Issue
	for path, file := range output.Files {
		for _, msg := range file.Messages {
			issue := Issue{
				File:     path,
				Line:     msg.Line,
				Column:   msg.Column,
				Rule:     msg.Source,
				Ruleset:  "phpcs",
				Severity: mapPHPCSType(msg.Type),
				Message:  msg.Message,
			}
			if msg.Fixable {
				issue.Suggestion = "Fixable with phpcbf"
			}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// mapPHPCSType collapses phpcs's boolean-ish type field. Unknown types map
// to the least severe bucket.
func mapPHPCSType(t string) Severity {
	switch strings.ToUpper(t) {
	case "ERROR":
		return SeverityError
	case "WARNING":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
