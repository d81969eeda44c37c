// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads codescan configuration from a YAML file with
// environment-variable overrides.
//
// Resolution order, later wins:
//
//	defaults -> YAML file -> environment
//
// The workspace root is threaded explicitly into the orchestrator rather
// than read from ambient process state, so concurrent runs and tests stay
// independent.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by Load.
const (
	// EnvPMDPath points at the PMD executable. Default: "pmd" on PATH.
	EnvPMDPath = "CODESCAN_PMD_PATH"

	// EnvWorkspaceRoot overrides the directory under which per-run
	// workspaces are created. Default: the OS temp directory.
	EnvWorkspaceRoot = "CODESCAN_WORKSPACE_ROOT"
)

// Config holds all tunable settings for the analysis core.
type Config struct {
	// WorkspaceRoot is the directory under which ephemeral per-run
	// workspaces are created.
	WorkspaceRoot string `yaml:"workspace_root"`

	// PMDPath is the PMD executable path or name.
	PMDPath string `yaml:"pmd_path"`

	// FetchTimeout bounds the shallow fetch, the dominant network cost.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// BranchListTimeout bounds the remote branch listing.
	BranchListTimeout time.Duration `yaml:"branch_list_timeout"`

	// AnalyzerTimeout bounds a single analyzer process invocation.
	AnalyzerTimeout time.Duration `yaml:"analyzer_timeout"`

	// PMDErrorMaxPriority maps PMD priorities <= this value to error.
	PMDErrorMaxPriority int `yaml:"pmd_error_max_priority"`

	// PMDWarningMaxPriority maps PMD priorities <= this value (and above
	// the error cutoff) to warning. Higher priorities map to info.
	PMDWarningMaxPriority int `yaml:"pmd_warning_max_priority"`

	// LogDir enables JSON file logging when set.
	LogDir string `yaml:"log_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WorkspaceRoot:         os.TempDir(),
		PMDPath:               "pmd",
		FetchTimeout:          5 * time.Minute,
		BranchListTimeout:     30 * time.Second,
		AnalyzerTimeout:       10 * time.Minute,
		PMDErrorMaxPriority:   2,
		PMDWarningMaxPriority: 4,
	}
}

// Load reads configuration from an optional YAML file and the environment.
//
// Description:
//
//	Starts from Default, merges the YAML file at path when path is
//	non-empty, then applies environment overrides. A missing file at a
//	non-empty path is an error; an empty path skips the file layer.
//
// Inputs:
//
//	path - YAML config file path, or "" for defaults + environment only
//
// Outputs:
//
//	Config - The merged configuration
//	error - Non-nil on unreadable or malformed YAML
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvPMDPath); v != "" {
		cfg.PMDPath = v
	}
	if v := os.Getenv(EnvWorkspaceRoot); v != "" {
		cfg.WorkspaceRoot = v
	}

	return cfg, nil
}
