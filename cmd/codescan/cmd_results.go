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
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codescan/services/scan/store"
)

// openStore opens the result store from --store or exits.
func openStore() *store.Store {
	if storePath == "" {
		log.Fatal("--store is required for result commands")
	}
	s, err := store.Open(store.DefaultConfig(storePath))
	if err != nil {
		log.Fatalf("Error opening result store: %v", err)
	}
	return s
}

func runResultsList(cmd *cobra.Command, args []string) {
	s := openStore()
	defer s.Close()

	records, err := s.List(context.Background())
	if err != nil {
		log.Fatalf("Error listing results: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tREPOSITORY\tTOOL\tERRORS\tWARNINGS")
	for _, rec := range records {
		tool := ""
		var errCount, warnCount int
		if rec.Result != nil {
			tool = rec.Result.Tool
			errCount = rec.Result.Summary.ErrorCount
			warnCount = rec.Result.Summary.WarningCount
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			rec.ID,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.RepositoryURL,
			tool,
			errCount,
			warnCount,
		)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Error writing table: %v", err)
	}
}

func runResultsShow(cmd *cobra.Command, args []string) {
	s := openStore()
	defer s.Close()

	rec, err := s.Get(context.Background(), args[0])
	if err != nil {
		log.Fatalf("Error loading result: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rec); err != nil {
		log.Fatalf("Error encoding result: %v", err)
	}
}

func runResultsDelete(cmd *cobra.Command, args []string) {
	s := openStore()
	defer s.Close()

	if err := s.Delete(context.Background(), args[0]); err != nil {
		log.Fatalf("Error deleting result: %v", err)
	}
	logger.Info("result deleted", "id", args[0])
}
