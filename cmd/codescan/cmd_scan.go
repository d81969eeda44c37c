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
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codescan/services/scan/analyze"
	"github.com/AleutianAI/codescan/services/scan/store"
)

// runScan executes one analysis and prints the standardized result to
// stdout as JSON. With --store, the result is also persisted and its record
// id logged.
func runScan(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := analyze.New(&cfg, analyze.WithLogger(logger.Logger))
	result, err := orchestrator.Run(ctx, analyze.Request{
		RepositoryURL: args[0],
		Language:      language,
		Branch:        branch,
		FilePatterns:  filePatterns,
		ConfigPath:    eslintConfig,
		Rulesets:      pmdRulesets,
		Extensions:    extensions,
		SkipContents:  noContents,
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	if storePath != "" {
		s, err := store.Open(store.DefaultConfig(storePath))
		if err != nil {
			log.Fatalf("Error opening result store: %v", err)
		}
		defer s.Close()

		id, err := s.Save(ctx, &store.Record{
			RepositoryURL: args[0],
			Result:        result,
		})
		if err != nil {
			log.Fatalf("Error storing result: %v", err)
		}
		logger.Info("result stored", "id", id)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Error encoding result: %v", err)
	}
}
