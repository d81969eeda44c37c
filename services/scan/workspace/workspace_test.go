// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workspace

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/AleutianAI/codescan/pkg/pathsafety"
)

func TestNewCreatesUniqueDirectories(t *testing.T) {
	root := t.TempDir()

	a, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Cleanup()

	b, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Cleanup()

	if a.Path() == b.Path() {
		t.Fatalf("two workspaces share a path: %s", a.Path())
	}
	for _, ws := range []*Workspace{a, b} {
		info, err := os.Stat(ws.Path())
		if err != nil || !info.IsDir() {
			t.Errorf("workspace %s not a directory: %v", ws.Path(), err)
		}
		if !strings.HasPrefix(ws.Path(), root) {
			t.Errorf("workspace %s outside root %s", ws.Path(), root)
		}
	}
}

func TestCleanupRemovesEverything(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ws.WriteFile("nested.txt", []byte("data"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(ws.Path()); !os.IsNotExist(err) {
		t.Errorf("workspace still exists after Cleanup")
	}

	// Idempotent.
	if err := ws.Cleanup(); err != nil {
		t.Errorf("second Cleanup: %v", err)
	}
}

func TestReadWriteRejectTraversal(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ws.Cleanup()

	if err := ws.WriteFile("../escape.txt", []byte("x"), 0600); !errors.Is(err, pathsafety.ErrPathTraversal) {
		t.Errorf("WriteFile traversal error = %v, want ErrPathTraversal", err)
	}
	if _, err := ws.ReadFile("../../etc/passwd"); !errors.Is(err, pathsafety.ErrPathTraversal) {
		t.Errorf("ReadFile traversal error = %v, want ErrPathTraversal", err)
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ws.Cleanup()

	want := []byte("package main\n")
	if err := ws.WriteFile("main.go", want, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ws.ReadFile("main.go")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("ReadFile = %q, want %q", got, want)
	}
}
