// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "pmd", cfg.PMDPath)
	assert.Equal(t, 2, cfg.PMDErrorMaxPriority)
	assert.Equal(t, 4, cfg.PMDWarningMaxPriority)
	assert.NotEmpty(t, cfg.WorkspaceRoot)
	assert.Equal(t, 5*time.Minute, cfg.FetchTimeout)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codescan.yaml")
	content := `
workspace_root: /srv/scan
pmd_path: /opt/pmd/bin/pmd
fetch_timeout: 90s
pmd_error_max_priority: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/scan", cfg.WorkspaceRoot)
	assert.Equal(t, "/opt/pmd/bin/pmd", cfg.PMDPath)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 1, cfg.PMDErrorMaxPriority)
	// Unset keys keep defaults.
	assert.Equal(t, 4, cfg.PMDWarningMaxPriority)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvPMDPath, "/usr/local/bin/pmd7")
	t.Setenv(EnvWorkspaceRoot, "/var/scan")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/pmd7", cfg.PMDPath)
	assert.Equal(t, "/var/scan", cfg.WorkspaceRoot)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace_root: [oops"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
