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
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/codescan/services/scan/workspace"
)

func TestParseRemoteHeads(t *testing.T) {
	out := "a1b2c3d4\trefs/heads/main\n" +
		"e5f6a7b8\trefs/heads/feature/login\n" +
		"09aabbcc\trefs/tags/v1.0\n" +
		"malformed line without tab\n" +
		"\n"

	heads := parseRemoteHeads(out)
	if !heads["main"] {
		t.Error("main missing from parsed heads")
	}
	if !heads["feature/login"] {
		t.Error("feature/login missing from parsed heads")
	}
	if heads["v1.0"] {
		t.Error("tag parsed as head")
	}
	if len(heads) != 2 {
		t.Errorf("parsed %d heads, want 2", len(heads))
	}
}

func TestPickBranch(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		heads     map[string]bool
		want      string
		wantErr   bool
	}{
		{"requested exists", "develop", map[string]bool{"develop": true, "main": true}, "develop", false},
		{"fallback to main", "feature-x", map[string]bool{"main": true}, "main", false},
		{"fallback to master", "feature-x", map[string]bool{"master": true}, "master", false},
		{"main preferred over master", "feature-x", map[string]bool{"main": true, "master": true}, "main", false},
		{"no suitable branch", "feature-x", map[string]bool{"develop": true}, "", true},
		{"empty remote", "main", map[string]bool{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickBranch(tt.requested, tt.heads)
			if tt.wantErr {
				if !errors.Is(err, ErrNoSuitableBranch) {
					t.Fatalf("pickBranch() error = %v, want ErrNoSuitableBranch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("pickBranch() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("pickBranch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPatternsForLanguage(t *testing.T) {
	java := PatternsForLanguage("java", nil)
	if java[0] != "**/*.java" {
		t.Errorf("java defaults start with %q", java[0])
	}
	assertContains(t, java, "pom.xml")
	assertContains(t, java, "package.json")

	override := PatternsForLanguage("java", []string{"src/main/**"})
	if override[0] != "src/main/**" {
		t.Errorf("override not first: %v", override[0])
	}
	for _, p := range override {
		if p == "**/*.java" {
			t.Error("language defaults leaked past override")
		}
	}

	unknown := PatternsForLanguage("cobol", nil)
	assertContains(t, unknown, "pom.xml") // manifest set only
}

func assertContains(t *testing.T, list []string, want string) {
	t.Helper()
	for _, s := range list {
		if s == want {
			return
		}
	}
	t.Errorf("%q missing from %v", want, list)
}

// =============================================================================
// Integration tests (require git on PATH)
// =============================================================================

// buildOriginRepo creates a local repository with a Java-flavored layout on
// the given branch, for use as a checkout remote.
func buildOriginRepo(t *testing.T, branch string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	mustGit(t, dir, "init", "--quiet", "--initial-branch="+branch)
	mustGit(t, dir, "config", "user.email", "test@test.com")
	mustGit(t, dir, "config", "user.name", "Test")

	files := map[string]string{
		"pom.xml":                    "<project/>",
		"src/main/java/App.java":     "class App {}",
		"src/main/java/Util.java":    "class Util {}",
		"docs/README.md":             "# readme",
		"scripts/deploy.sh":          "echo deploy",
		"src/main/resources/app.yml": "key: value",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0640); err != nil {
			t.Fatal(err)
		}
	}
	mustGit(t, dir, "add", ".")
	mustGit(t, dir, "commit", "--quiet", "-m", "initial")
	return dir
}

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestCheckoutSparseJavaOnly(t *testing.T) {
	origin := buildOriginRepo(t, "main")

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Cleanup()

	engine := NewEngine()
	spec := Spec{RepositoryURL: origin, Branch: "main"}
	branch, err := engine.Checkout(context.Background(), ws, spec, PatternsForLanguage("java", nil))
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if branch != "main" {
		t.Errorf("branch = %q, want main", branch)
	}

	// Declared patterns and the manifest set are present.
	for _, rel := range []string{"src/main/java/App.java", "src/main/java/Util.java", "pom.xml"} {
		if _, err := os.Stat(filepath.Join(ws.Path(), filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected file missing: %s", rel)
		}
	}
	// Nothing extraneous is materialized.
	for _, rel := range []string{"docs/README.md", "scripts/deploy.sh", "src/main/resources/app.yml"} {
		if _, err := os.Stat(filepath.Join(ws.Path(), filepath.FromSlash(rel))); !os.IsNotExist(err) {
			t.Errorf("extraneous file materialized: %s", rel)
		}
	}
}

func TestCheckoutBranchFallback(t *testing.T) {
	origin := buildOriginRepo(t, "main")

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Cleanup()

	// Requested branch is absent; main exists. No error expected.
	spec := Spec{RepositoryURL: origin, Branch: "feature-x"}
	branch, err := NewEngine().Checkout(context.Background(), ws, spec, PatternsForLanguage("java", nil))
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if branch != "main" {
		t.Errorf("branch = %q, want fallback to main", branch)
	}
}

func TestCheckoutNoSuitableBranch(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	// An empty repository has no heads at all.
	origin := t.TempDir()
	mustGit(t, origin, "init", "--quiet", "--initial-branch=trunk")

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	spec := Spec{RepositoryURL: origin, Branch: "feature-x"}
	_, err = NewEngine().Checkout(context.Background(), ws, spec, PatternsForLanguage("java", nil))
	if !errors.Is(err, ErrNoSuitableBranch) {
		t.Fatalf("Checkout error = %v, want ErrNoSuitableBranch", err)
	}
	// Failed checkout removes the workspace.
	if _, statErr := os.Stat(ws.Path()); !os.IsNotExist(statErr) {
		t.Error("workspace not removed after failed checkout")
	}
}

func TestCheckoutBadRemoteCleansUp(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	spec := Spec{RepositoryURL: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err = NewEngine().Checkout(context.Background(), ws, spec, PatternsForLanguage("java", nil))
	if !errors.Is(err, ErrCheckoutFailed) {
		t.Fatalf("Checkout error = %v, want ErrCheckoutFailed", err)
	}
	if _, statErr := os.Stat(ws.Path()); !os.IsNotExist(statErr) {
		t.Error("workspace not removed after failed checkout")
	}
}
