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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// maxCapturedOutput bounds stderr/stdout retained in errors.
const maxCapturedOutput = 16 * 1024

// invocation describes one external analyzer process.
type invocation struct {
	tool     string
	language string
	bin      string
	args     []string
	dir      string
	timeout  time.Duration
}

// execute runs an analyzer process and applies the universal
// non-fatal-success rule.
//
// Description:
//
//	Runs the binary with an argument vector in the workspace directory.
//	Outcome classification:
//
//	  - zero exit: success, stdout returned
//	  - non-zero exit, stdout parses as JSON: success (the tool found
//	    violations), stdout returned
//	  - binary missing: ErrExecutableNotFound
//	  - deadline exceeded: ErrTimeout
//	  - otherwise: stderr heuristics pick ErrExecutableNotFound,
//	    ErrConfiguration, or ErrExecutionFailed
func execute(ctx context.Context, inv invocation, logger *slog.Logger) ([]byte, error) {
	cmdCtx := ctx
	if inv.timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, inv.bin, inv.args...)
	cmd.Dir = inv.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	logger.Debug("analyzer process finished",
		slog.String("tool", inv.tool),
		slog.String("bin", inv.bin),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("failed", runErr != nil),
	)

	if cmdCtx.Err() == context.DeadlineExceeded {
		return nil, newAdapterError(inv, -1, stdout.String(), stderr.String(), ErrTimeout)
	}
	if runErr == nil {
		return stdout.Bytes(), nil
	}

	// Binary missing entirely.
	var execErr *exec.Error
	if errors.As(runErr, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return nil, newAdapterError(inv, -1, stdout.String(), stderr.String(), ErrExecutableNotFound)
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	// Non-zero because violations were found: stdout is still the tool's
	// structured output.
	if parseableJSON(stdout.Bytes()) {
		return stdout.Bytes(), nil
	}

	sentinel := classifyStderr(stderr.String())
	return nil, newAdapterError(inv, exitCode, stdout.String(), stderr.String(), sentinel)
}

// parseableJSON reports whether data is non-empty, syntactically valid JSON.
func parseableJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && json.Valid(trimmed)
}

// classifyStderr maps tool failure chatter onto the error taxonomy.
//
// Heuristics, not guarantees: the tools have no common failure protocol, so
// the best available signal is their stderr phrasing.
func classifyStderr(stderr string) error {
	lower := strings.ToLower(stderr)

	for _, marker := range []string{
		"command not found",
		"not recognized as an internal or external command",
		"no such file or directory",
		"executable file not found",
	} {
		if strings.Contains(lower, marker) {
			return ErrExecutableNotFound
		}
	}

	for _, marker := range []string{
		"config",
		"ruleset",
		"rule set",
		"cannot load",
		"can't find",
		"could not find",
		"couldn't find",
		"invalid option",
		"unknown option",
		"usage:",
	} {
		if strings.Contains(lower, marker) {
			return ErrConfiguration
		}
	}

	return ErrExecutionFailed
}

func newAdapterError(inv invocation, exitCode int, stdout, stderr string, sentinel error) *AdapterError {
	return &AdapterError{
		Tool:     inv.tool,
		Language: inv.language,
		ExitCode: exitCode,
		Stdout:   truncate(stdout),
		Stderr:   truncate(stderr),
		Err:      sentinel,
	}
}

func truncate(s string) string {
	if len(s) > maxCapturedOutput {
		return s[:maxCapturedOutput] + "...(truncated)"
	}
	return s
}
