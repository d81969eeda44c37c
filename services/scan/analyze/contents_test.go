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
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codescan/services/scan/standardize"
	"github.com/AleutianAI/codescan/services/scan/workspace"
)

func TestAttachContents(t *testing.T) {
	ws, err := workspace.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Cleanup() })

	require.NoError(t, ws.WriteFile("a.py", []byte("print('a')\n"), 0o644))
	require.NoError(t, ws.WriteFile("b.py", []byte("print('b')\n"), 0o644))

	issues := []standardize.Issue{
		{File: "a.py", Line: 1},
		{File: "a.py", Line: 2}, // duplicate file, read once
		{File: "b.py", Line: 1},
		{File: "missing.py", Line: 1}, // unreadable, omitted
	}

	logger := slog.New(slog.DiscardHandler)
	contents := attachContents(context.Background(), ws, issues, logger)

	assert.Len(t, contents, 2)
	assert.Equal(t, "print('a')\n", contents["a.py"])
	assert.Equal(t, "print('b')\n", contents["b.py"])
	_, ok := contents["missing.py"]
	assert.False(t, ok)
}

func TestAttachContentsTraversalOmitted(t *testing.T) {
	ws, err := workspace.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Cleanup() })

	issues := []standardize.Issue{{File: "../../etc/passwd", Line: 1}}
	contents := attachContents(context.Background(), ws, issues, slog.New(slog.DiscardHandler))
	assert.Empty(t, contents)
}

func TestAttachContentsEmptyIssues(t *testing.T) {
	ws, err := workspace.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Cleanup() })

	contents := attachContents(context.Background(), ws, nil, slog.New(slog.DiscardHandler))
	assert.Empty(t, contents)
}
