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
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Restrictive syntaxes for caller-supplied checkout input. These run before
// any external process starts; validation failure is a caller error, never a
// runtime error.
var (
	// repoURLPattern allows https, http, ssh, and scp-like git URLs.
	// No whitespace, no shell metacharacters.
	repoURLPattern = regexp.MustCompile(`^(https?://|ssh://|git@)[A-Za-z0-9][A-Za-z0-9._~:/@+-]*$`)

	// branchPattern allows typical branch names (feature/x, v1.2, fix-bug).
	branchPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

	// globPattern allows sparse-checkout globs (**/*.java, src/**, *.ts).
	globPattern = regexp.MustCompile(`^[A-Za-z0-9*?_.][A-Za-z0-9*?_./-]*$`)
)

// newSpecValidator builds the validator with the custom checkout rules
// registered: repourl, gitbranch, fileglob.
func newSpecValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for blank tags or nil funcs.
	_ = v.RegisterValidation("repourl", func(fl validator.FieldLevel) bool {
		return validRepoURL(fl.Field().String())
	})
	_ = v.RegisterValidation("gitbranch", func(fl validator.FieldLevel) bool {
		return validBranch(fl.Field().String())
	})
	_ = v.RegisterValidation("fileglob", func(fl validator.FieldLevel) bool {
		return validGlob(fl.Field().String())
	})
	return v
}

var specValidator = newSpecValidator()

// ValidateSpec checks a Spec against the restrictive input syntaxes.
//
// Description:
//
//	Fails with ErrValidation on the first malformed field. Runs no I/O
//	and starts no processes; safe to call on hostile input.
//
// Inputs:
//
//	spec - The checkout specification to validate
//
// Outputs:
//
//	error - ErrValidation wrapping the field detail, or nil
func ValidateSpec(spec Spec) error {
	if err := specValidator.Struct(spec); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func validRepoURL(url string) bool {
	if len(url) > 2048 || !repoURLPattern.MatchString(url) {
		return false
	}
	// scp-like form needs host:path after git@.
	if strings.HasPrefix(url, "git@") && !strings.Contains(url, ":") {
		return false
	}
	return true
}

func validBranch(branch string) bool {
	if len(branch) > 255 || !branchPattern.MatchString(branch) {
		return false
	}
	if strings.Contains(branch, "..") || strings.Contains(branch, "//") {
		return false
	}
	if strings.HasSuffix(branch, "/") || strings.HasSuffix(branch, ".") ||
		strings.HasSuffix(branch, ".lock") {
		return false
	}
	for _, r := range branch {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

func validGlob(glob string) bool {
	if glob == "" || len(glob) > 512 {
		return false
	}
	if !globPattern.MatchString(glob) {
		return false
	}
	return !strings.Contains(glob, "..")
}
