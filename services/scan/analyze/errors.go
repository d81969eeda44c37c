// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyze

import "fmt"

// Phase identifies the pipeline stage an analysis failed in.
type Phase string

// Pipeline phases in execution order.
const (
	PhaseValidate    Phase = "validate"
	PhaseWorkspace   Phase = "workspace"
	PhaseCheckout    Phase = "checkout"
	PhaseAnalyze     Phase = "analyze"
	PhaseStandardize Phase = "standardize"
)

// PhaseError tags a failure with the pipeline phase it occurred in, so
// callers can distinguish "bad request" from "bad environment" without
// string-matching messages.
type PhaseError struct {
	// Phase is the stage that failed.
	Phase Phase

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("analysis failed during %s: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PhaseError) Unwrap() error {
	return e.Err
}

func phaseErr(phase Phase, err error) *PhaseError {
	return &PhaseError{Phase: phase, Err: err}
}
