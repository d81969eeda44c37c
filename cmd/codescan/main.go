// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codescan/pkg/config"
	"github.com/AleutianAI/codescan/pkg/logging"
)

var (
	cfg    config.Config
	logger *logging.Logger
)

func main() {
	defer func() {
		if logger != nil {
			logger.Close()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = logging.New(logging.Config{
			Level:   level,
			LogDir:  cfg.LogDir,
			Service: "codescan",
			JSON:    jsonLogs,
		})
		slog.SetDefault(logger.Logger)
	}
}
