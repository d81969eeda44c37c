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
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the adapter layer.
var (
	// ErrExecutableNotFound indicates the analyzer binary is absent from
	// the execution path. Environment misconfiguration; operator-actionable.
	ErrExecutableNotFound = errors.New("analyzer executable not found")

	// ErrConfiguration indicates the analyzer rejected its configuration
	// (bad ruleset, malformed config file).
	ErrConfiguration = errors.New("analyzer configuration error")

	// ErrExecutionFailed indicates an opaque analyzer failure; the
	// wrapping AdapterError carries the captured diagnostics.
	ErrExecutionFailed = errors.New("analyzer execution failed")

	// ErrTimeout indicates the analyzer exceeded its configured bound.
	ErrTimeout = errors.New("analyzer timed out")

	// ErrUnsupportedLanguage indicates no adapter exists for the language.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// AdapterError wraps an analyzer failure with its captured diagnostics.
//
// Thread Safety: immutable after creation.
type AdapterError struct {
	// Tool is the analyzer that failed (e.g. "pmd").
	Tool string

	// Language is the language being analyzed.
	Language string

	// ExitCode is the process exit code, -1 if the process never ran.
	ExitCode int

	// Stdout and Stderr are the captured process output, possibly
	// truncated.
	Stdout string
	Stderr string

	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *AdapterError) Error() string {
	msg := fmt.Sprintf("%s (%s): %v", e.Tool, e.Language, e.Err)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns the underlying sentinel for errors.Is/As support.
func (e *AdapterError) Unwrap() error {
	return e.Err
}
