// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pathsafety validates and normalizes filesystem paths against a
// trusted base directory.
//
// Every filesystem access derived from caller-influenced input (config file
// names, cache locations, issue file references, ruleset identifiers) must
// pass through this package before touching the disk. The functions here are
// pure path math with no filesystem I/O; the one side effect is Relativize
// logging its basename fallback through the default slog logger.
//
// Security posture: rejections are fatal to the operation that triggered
// them (ErrPathTraversal, ErrInvalidRulesetPath), with one deliberate
// exception — Relativize falls back to the basename for paths that resolve
// outside the base, because analyzer tools report paths using inconsistent
// conventions and a misreported path must not abort a whole run.
package pathsafety

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// Sentinel errors for path safety violations.
var (
	// ErrPathTraversal indicates a path resolved outside its trusted base.
	ErrPathTraversal = errors.New("path escapes base directory")

	// ErrInvalidRulesetPath indicates a ruleset reference that is absolute
	// or contains a parent-directory segment.
	ErrInvalidRulesetPath = errors.New("invalid ruleset path")
)

// categoryTokenPattern matches built-in rule-bundle identifiers such as
// "rulesets.java.quickstart" or "category/java/errorprone.xml".
var categoryTokenPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_./-]*$`)

// SafeJoin joins segments onto base and verifies the result stays inside base.
//
// Description:
//
//	Joins and lexically resolves the segments against base. An absolute
//	segment is rejected outright: filepath.Join would fold it under base
//	as an ordinary component, silently reinterpreting a path that was
//	meant to point elsewhere. The resolved path must be equal to, or a
//	descendant of, the resolved base; otherwise ErrPathTraversal is
//	returned and the path must not be used.
//
//	With zero segments the resolved base itself is returned.
//
// Inputs:
//
//	base - The trusted base directory
//	segments - Path segments derived from caller-influenced input
//
// Outputs:
//
//	string - The joined path, guaranteed under base
//	error - ErrPathTraversal if the result escapes base
func SafeJoin(base string, segments ...string) (string, error) {
	cleanBase := filepath.Clean(base)
	for _, seg := range segments {
		if filepath.IsAbs(seg) {
			return "", fmt.Errorf("%w: absolute segment %q", ErrPathTraversal, seg)
		}
	}
	joined := filepath.Join(append([]string{cleanBase}, segments...)...)

	if !isWithin(joined, cleanBase) {
		return "", fmt.Errorf("%w: %q + %v", ErrPathTraversal, base, segments)
	}
	return joined, nil
}

// Relativize converts an absolute path to a forward-slash path under base.
//
// Description:
//
//	Returns the path relative to base using forward slashes regardless of
//	platform. If the path resolves outside base and allowOutside is false,
//	the basename is returned and a warning is logged — a safety fallback,
//	not an error, because analyzer tools sometimes report paths using
//	conventions that don't match the workspace layout.
//
// Inputs:
//
//	path - The path reported by a tool (absolute or already relative)
//	base - The workspace root
//	allowOutside - When true, outside paths are returned as-is (relative,
//	               forward-slash) instead of collapsing to the basename
//
// Outputs:
//
//	string - Forward-slash relative path, or the basename on fallback
func Relativize(path, base string, allowOutside bool) string {
	cleanBase := filepath.Clean(base)
	cleanPath := filepath.Clean(path)

	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(cleanBase, cleanPath)
	}

	rel, err := filepath.Rel(cleanBase, cleanPath)
	if err != nil || (!allowOutside && escapesUpward(rel)) {
		fallback := filepath.Base(cleanPath)
		slog.Warn("path outside workspace, using basename",
			slog.String("path", path),
			slog.String("base", base),
			slog.String("fallback", fallback),
		)
		return fallback
	}
	return filepath.ToSlash(rel)
}

// ValidateRulesetRef validates a ruleset reference before it reaches a tool.
//
// Description:
//
//	Accepts three reference forms:
//	  1. An absolute http/https URL.
//	  2. A built-in rule-bundle identifier (dotted category token).
//	  3. A relative file path.
//
//	Absolute filesystem paths and any reference containing a ".." segment
//	fail with ErrInvalidRulesetPath. The reference is validated, never
//	resolved — the external tool interprets relative references against
//	its own working directory.
//
// Inputs:
//
//	ref - The ruleset reference as supplied by the caller
//
// Outputs:
//
//	string - The validated reference, trimmed
//	error - ErrInvalidRulesetPath on rejection
func ValidateRulesetRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidRulesetPath)
	}

	// Remote rulesets: http/https URLs only.
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidRulesetPath, ref)
		}
		return ref, nil
	}

	if filepath.IsAbs(ref) || strings.HasPrefix(ref, `\`) {
		return "", fmt.Errorf("%w: absolute path %q", ErrInvalidRulesetPath, ref)
	}
	if hasDotDotSegment(ref) {
		return "", fmt.Errorf("%w: parent traversal in %q", ErrInvalidRulesetPath, ref)
	}
	if !categoryTokenPattern.MatchString(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRulesetPath, ref)
	}
	return ref, nil
}

// isWithin reports whether path equals base or is a descendant of it.
func isWithin(path, base string) bool {
	if path == base {
		return true
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return !escapesUpward(rel)
}

// escapesUpward reports whether a relative path points above its origin.
func escapesUpward(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hasDotDotSegment reports whether any slash- or backslash-delimited
// segment of ref is "..".
func hasDotDotSegment(ref string) bool {
	for _, seg := range strings.FieldsFunc(ref, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if seg == ".." {
			return true
		}
	}
	return false
}
