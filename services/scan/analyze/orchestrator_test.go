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

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codescan/pkg/config"
	"github.com/AleutianAI/codescan/services/scan/adapters"
	"github.com/AleutianAI/codescan/services/scan/checkout"
	"github.com/AleutianAI/codescan/services/scan/workspace"
)

// fakeAdapter satisfies adapters.Adapter with canned behavior and records
// the options it was invoked with.
type fakeAdapter struct {
	tool     string
	language string
	output   []byte
	err      error
	gotOpts  adapters.Options
}

func (f *fakeAdapter) Tool() string     { return f.tool }
func (f *fakeAdapter) Language() string { return f.language }
func (f *fakeAdapter) Run(_ context.Context, _ string, opts adapters.Options) ([]byte, error) {
	f.gotOpts = opts
	return f.output, f.err
}

func newTestOrchestrator(t *testing.T, fake *fakeAdapter, seed map[string]string) (*Orchestrator, *string) {
	t.Helper()
	cfg := config.Default()
	cfg.WorkspaceRoot = t.TempDir()

	o := New(&cfg, WithLogger(slog.New(slog.DiscardHandler)))
	o.newAdapter = func(string, adapters.Config) (adapters.Adapter, error) {
		return fake, nil
	}

	var wsPath string
	o.checkout = func(_ context.Context, ws *workspace.Workspace, _ checkout.Spec, _ []string) (string, error) {
		wsPath = ws.Path()
		for rel, content := range seed {
			dir, derr := ws.Join(filepath.Dir(rel))
			require.NoError(t, derr)
			require.NoError(t, os.MkdirAll(dir, 0o750))
			require.NoError(t, ws.WriteFile(rel, []byte(content), 0o644))
		}
		return "main", nil
	}
	return o, &wsPath
}

func TestRunSuccessAttachesContentsAndCleansUp(t *testing.T) {
	raw := `[{"filePath": "src/app.ts", "messages": [
		{"ruleId": "semi", "severity": 2, "message": "Missing semicolon.", "line": 1, "column": 10}
	]}]`
	fake := &fakeAdapter{tool: "eslint", language: "typescript", output: []byte(raw)}
	o, wsPath := newTestOrchestrator(t, fake, map[string]string{
		"src/app.ts": "const x = 1\n",
	})

	result, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/org/repo.git",
		Language:      "typescript",
	})
	require.NoError(t, err)

	assert.Equal(t, "eslint", result.Tool)
	assert.Equal(t, "main", result.Branch)
	assert.Equal(t, 1, result.Summary.ErrorCount)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "src/app.ts", result.Issues[0].File)
	assert.Equal(t, "const x = 1\n", result.FileContents["src/app.ts"])

	// Workspace destroyed after a successful run.
	_, statErr := os.Stat(*wsPath)
	assert.True(t, os.IsNotExist(statErr), "workspace %s still exists", *wsPath)
}

// Tool-specific request options must reach the adapter untouched.
func TestRunForwardsAdapterOptions(t *testing.T) {
	fake := &fakeAdapter{tool: "phpcs", language: "php", output: []byte(`{"files":{}}`)}
	o, _ := newTestOrchestrator(t, fake, nil)

	_, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/org/repo.git",
		Language:      "php",
		ConfigPath:    "phpcs.xml",
		Rulesets:      "category/java/design.xml",
		Extensions:    []string{"php", "inc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "phpcs.xml", fake.gotOpts.ConfigPath)
	assert.Equal(t, "category/java/design.xml", fake.gotOpts.Rulesets)
	assert.Equal(t, []string{"php", "inc"}, fake.gotOpts.Extensions)
}

func TestRunSkipContents(t *testing.T) {
	raw := `[{"filePath": "src/app.ts", "messages": [
		{"ruleId": "semi", "severity": 1, "message": "m", "line": 1, "column": 1}
	]}]`
	fake := &fakeAdapter{tool: "eslint", language: "typescript", output: []byte(raw)}
	o, _ := newTestOrchestrator(t, fake, map[string]string{"src/app.ts": "x"})

	result, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/org/repo.git",
		Language:      "typescript",
		SkipContents:  true,
	})
	require.NoError(t, err)
	assert.Nil(t, result.FileContents)
}

// Missing analyzer binary: the run fails in the analyze phase and the
// workspace does not survive.
func TestRunAdapterFailureCleansUpWorkspace(t *testing.T) {
	fake := &fakeAdapter{
		tool:     "pylint",
		language: "python",
		err: &adapters.AdapterError{
			Tool: "pylint", Language: "python", ExitCode: -1,
			Err: adapters.ErrExecutableNotFound,
		},
	}
	o, wsPath := newTestOrchestrator(t, fake, nil)

	_, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/org/repo.git",
		Language:      "python",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, adapters.ErrExecutableNotFound)

	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseAnalyze, perr.Phase)

	_, statErr := os.Stat(*wsPath)
	assert.True(t, os.IsNotExist(statErr), "workspace %s still exists", *wsPath)
}

func TestRunRejectsUnsupportedLanguage(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeAdapter{}, nil)
	_, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/org/repo.git",
		Language:      "fortran",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, adapters.ErrUnsupportedLanguage)

	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseValidate, perr.Phase)
}

func TestRunRejectsInvalidSpec(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeAdapter{}, nil)
	_, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/repo.git; rm -rf /",
		Language:      "python",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, checkout.ErrValidation)
}

func TestRunCheckoutFailure(t *testing.T) {
	fake := &fakeAdapter{tool: "pmd", language: "java"}
	o, _ := newTestOrchestrator(t, fake, nil)
	o.checkout = func(context.Context, *workspace.Workspace, checkout.Spec, []string) (string, error) {
		return "", checkout.ErrNoSuitableBranch
	}

	_, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/org/repo.git",
		Language:      "java",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, checkout.ErrNoSuitableBranch)

	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseCheckout, perr.Phase)
}

func TestRunStandardizeFailure(t *testing.T) {
	fake := &fakeAdapter{tool: "pmd", language: "java", output: []byte("not json at all")}
	o, _ := newTestOrchestrator(t, fake, nil)

	_, err := o.Run(context.Background(), Request{
		RepositoryURL: "https://example.com/org/repo.git",
		Language:      "java",
	})
	require.Error(t, err)

	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseStandardize, perr.Phase)
}

func TestPhaseErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := phaseErr(PhaseCheckout, base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "checkout")
}
