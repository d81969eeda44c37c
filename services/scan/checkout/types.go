// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package checkout materializes a minimal slice of a remote repository.
//
// Given a repository URL, a branch, and a set of file-glob patterns, the
// engine produces a local workspace containing only the matching files using
// a sparse, shallow git handshake:
//
//	init -> remote -> sparse rules -> branch resolution -> fetch -> checkout
//
// The engine is linear with no branching re-entry. Every transition failure
// removes the workspace before the error propagates; callers never see a
// partially populated workspace.
package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the checkout package.
var (
	// ErrValidation indicates a malformed repository URL, branch, or
	// pattern. Caller's fault; retrying with the same input cannot succeed.
	ErrValidation = errors.New("invalid checkout specification")

	// ErrNoSuitableBranch indicates neither the requested branch nor any
	// fallback (main, master) exists on the remote.
	ErrNoSuitableBranch = errors.New("no suitable branch on remote")

	// ErrCheckoutFailed indicates a git step failed to execute.
	ErrCheckoutFailed = errors.New("checkout failed")

	// ErrTimeout indicates a git step exceeded its configured bound.
	ErrTimeout = errors.New("checkout timed out")
)

// Spec describes one sparse checkout request.
//
// Thread Safety: treat as immutable once validated.
type Spec struct {
	// RepositoryURL is the remote to fetch from. Restricted to a
	// conservative syntax; shell metacharacters fail validation.
	RepositoryURL string `validate:"required,repourl"`

	// Branch is the branch to check out. Empty means "main". Restricted
	// syntax: no traversal, no control characters, no leading or trailing
	// separators.
	Branch string `validate:"omitempty,gitbranch"`

	// FilePatterns are the sparse-checkout globs, in order. Empty means
	// the language defaults from PatternsForLanguage.
	FilePatterns []string `validate:"dive,fileglob"`
}

// BranchOrDefault returns the requested branch, defaulting to "main".
func (s Spec) BranchOrDefault() string {
	if s.Branch == "" {
		return "main"
	}
	return s.Branch
}

// GitError carries diagnostics from a failed git invocation.
//
// Thread Safety: immutable after creation.
type GitError struct {
	// Args is the argument vector passed to git, without the binary name.
	Args []string

	// Stderr is the captured standard error output.
	Stderr string

	// Err is the underlying error (ErrCheckoutFailed or ErrTimeout).
	Err error
}

// Error implements the error interface.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *GitError) Unwrap() error {
	return e.Err
}
