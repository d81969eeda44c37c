// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewStderrOnly(t *testing.T) {
	logger := New(Config{Service: "test"})
	defer logger.Close()

	if logger.Logger == nil {
		t.Fatal("expected non-nil slog.Logger")
	}
	// No file configured, Close is a no-op.
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Service: "scan",
		LogDir:  dir,
		Quiet:   true,
	})

	logger.Info("checkout complete", "branch", "main")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	name := "scan_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "checkout complete") {
		t.Errorf("log file missing message: %q", content)
	}
	if !strings.Contains(content, `"service":"scan"`) {
		t.Errorf("log file missing service attribute: %q", content)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Service: "scan",
		LogDir:  dir,
		Level:   slog.LevelWarn,
		Quiet:   true,
	})

	logger.Debug("too quiet")
	logger.Info("still too quiet")
	logger.Warn("loud enough")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	name := "scan_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "too quiet") {
		t.Errorf("filtered messages leaked: %q", content)
	}
	if !strings.Contains(content, "loud enough") {
		t.Errorf("warn message missing: %q", content)
	}
}
