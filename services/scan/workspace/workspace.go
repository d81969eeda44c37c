// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workspace manages the ephemeral directory backing one analysis run.
//
// Each workspace is uniquely named per invocation so concurrent runs never
// collide, exclusively owned by one run, and destroyed unconditionally at
// run end. Nothing outside the owning run may retain references into the
// workspace after Cleanup.
package workspace

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/AleutianAI/codescan/pkg/pathsafety"
)

// Workspace is an ephemeral per-run directory.
//
// Thread Safety: a Workspace is owned by a single run; methods are not
// synchronized.
type Workspace struct {
	path string
}

// New creates a uniquely named workspace directory under root.
//
// Description:
//
//	Creates root if needed, then a child directory named
//	"codescan-<uuid>". The uuid suffix makes concurrent runs
//	collision-free without shared state.
//
// Inputs:
//
//	root - The configured workspace root directory
//
// Outputs:
//
//	*Workspace - The created workspace; caller must Cleanup
//	error - Non-nil if the directory cannot be created
func New(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("creating workspace root: %w", err)
	}

	path, err := pathsafety.SafeJoin(root, "codescan-"+uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := os.Mkdir(path, 0750); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{path: path}, nil
}

// Path returns the workspace directory.
func (w *Workspace) Path() string {
	return w.path
}

// Join resolves segments inside the workspace via the path safety layer.
func (w *Workspace) Join(segments ...string) (string, error) {
	return pathsafety.SafeJoin(w.path, segments...)
}

// ReadFile reads a workspace-relative file, rejecting traversal.
func (w *Workspace) ReadFile(relPath string) ([]byte, error) {
	path, err := w.Join(relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// WriteFile writes a workspace-relative file, rejecting traversal.
func (w *Workspace) WriteFile(relPath string, data []byte, perm os.FileMode) error {
	path, err := w.Join(relPath)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// Cleanup removes the workspace and everything beneath it.
//
// Description:
//
//	Removal is unconditional and idempotent; calling Cleanup on an
//	already-removed workspace returns nil.
func (w *Workspace) Cleanup() error {
	if w == nil || w.path == "" {
		return nil
	}
	if err := os.RemoveAll(w.path); err != nil {
		return fmt.Errorf("removing workspace %s: %w", w.path, err)
	}
	return nil
}
