// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package checkout

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/AleutianAI/codescan/services/scan/workspace"
)

// Engine drives the sparse checkout state machine.
//
// Thread Safety: safe for concurrent use; all per-run state lives in the
// workspace passed to Checkout.
type Engine struct {
	gitPath           string
	fetchTimeout      time.Duration
	branchListTimeout time.Duration
	logger            *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithGitPath overrides the git executable (default "git" on PATH).
func WithGitPath(path string) Option {
	return func(e *Engine) { e.gitPath = path }
}

// WithFetchTimeout bounds the shallow fetch step.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) { e.fetchTimeout = d }
}

// WithBranchListTimeout bounds the remote branch listing step.
func WithBranchListTimeout(d time.Duration) Option {
	return func(e *Engine) { e.branchListTimeout = d }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a checkout engine with defaults: git on PATH, 5 minute
// fetch bound, 30 second branch-list bound.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		gitPath:           "git",
		fetchTimeout:      5 * time.Minute,
		branchListTimeout: 30 * time.Second,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Checkout populates ws with the files matching the sparse patterns.
//
// Description:
//
//	Runs the linear state machine: init the repository, register the
//	remote, enable sparse mode and write the pattern list, resolve the
//	branch against the remote (requested, then main, then master), fetch
//	it at depth 1, and materialize the matching files.
//
//	The spec must already have passed ValidateSpec; Checkout performs no
//	input validation of its own. Every failure removes the workspace
//	contents before the error propagates — the caller never has to clean
//	up a partially populated workspace.
//
// Inputs:
//
//	ctx - Context for cancellation; per-step timeouts are layered on top
//	ws - The workspace to populate, exclusively owned by this run
//	spec - The validated checkout specification
//	patterns - Sparse-checkout patterns (see PatternsForLanguage)
//
// Outputs:
//
//	string - The branch actually checked out (after fallback)
//	error - ErrNoSuitableBranch, ErrTimeout, or ErrCheckoutFailed
func (e *Engine) Checkout(ctx context.Context, ws *workspace.Workspace, spec Spec, patterns []string) (string, error) {
	branch, err := e.checkout(ctx, ws, spec, patterns)
	if err != nil {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			e.logger.Error("workspace cleanup after failed checkout",
				slog.String("workspace", ws.Path()),
				slog.String("error", cleanupErr.Error()),
			)
		}
		return "", err
	}
	return branch, nil
}

func (e *Engine) checkout(ctx context.Context, ws *workspace.Workspace, spec Spec, patterns []string) (string, error) {
	// Init: empty repository plus remote registration.
	if _, err := e.runGit(ctx, ws.Path(), 0, "init", "--quiet"); err != nil {
		return "", err
	}
	if _, err := e.runGit(ctx, ws.Path(), 0, "remote", "add", "origin", spec.RepositoryURL); err != nil {
		return "", err
	}

	// Configure: sparse mode and the pattern list. The sparse-rules file
	// is written through the path safety layer, never by joining strings.
	if _, err := e.runGit(ctx, ws.Path(), 0, "config", "core.sparseCheckout", "true"); err != nil {
		return "", err
	}
	rules := strings.Join(patterns, "\n") + "\n"
	if err := ws.WriteFile(".git/info/sparse-checkout", []byte(rules), 0640); err != nil {
		return "", fmt.Errorf("%w: writing sparse rules: %v", ErrCheckoutFailed, err)
	}

	// Resolve branch: one remote listing, then local fallback logic.
	out, err := e.runGit(ctx, ws.Path(), e.branchListTimeout, "ls-remote", "--heads", "origin")
	if err != nil {
		return "", err
	}
	branch, err := pickBranch(spec.BranchOrDefault(), parseRemoteHeads(out))
	if err != nil {
		return "", err
	}
	if branch != spec.BranchOrDefault() {
		e.logger.Info("requested branch absent, falling back",
			slog.String("requested", spec.BranchOrDefault()),
			slog.String("resolved", branch),
		)
	}

	// Fetch: depth 1, resolved branch only. Dominant cost of the run.
	if _, err := e.runGit(ctx, ws.Path(), e.fetchTimeout, "fetch", "--depth", "1", "origin", branch); err != nil {
		return "", err
	}

	// Checkout: materialize only the files matching the sparse rules.
	if _, err := e.runGit(ctx, ws.Path(), 0, "checkout", "--quiet", "FETCH_HEAD"); err != nil {
		return "", err
	}

	e.logger.Debug("sparse checkout complete",
		slog.String("repository", spec.RepositoryURL),
		slog.String("branch", branch),
		slog.Int("patterns", len(patterns)),
	)
	return branch, nil
}

// runGit executes one git step with an argument vector, never a shell
// string. A zero timeout means the step runs under ctx alone.
func (e *Engine) runGit(ctx context.Context, dir string, timeout time.Duration, args ...string) (string, error) {
	stepCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(stepCtx, e.gitPath, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stepCtx.Err() == context.DeadlineExceeded {
		return "", &GitError{Args: args, Stderr: stderr.String(), Err: ErrTimeout}
	}
	if err != nil {
		return "", &GitError{Args: args, Stderr: stderr.String(), Err: ErrCheckoutFailed}
	}
	return stdout.String(), nil
}

// parseRemoteHeads extracts branch names from `git ls-remote --heads`
// output ("<sha>\trefs/heads/<name>" per line).
func parseRemoteHeads(out string) map[string]bool {
	heads := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		name, ok := strings.CutPrefix(fields[1], "refs/heads/")
		if !ok {
			continue
		}
		heads[name] = true
	}
	return heads
}

// pickBranch resolves the branch to fetch: the requested branch when it
// exists, otherwise main, otherwise master. No further fallback.
func pickBranch(requested string, heads map[string]bool) (string, error) {
	for _, candidate := range []string{requested, "main", "master"} {
		if heads[candidate] {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: requested %q, remote has %d heads",
		ErrNoSuitableBranch, requested, len(heads))
}
