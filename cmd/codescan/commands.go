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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	verbose    bool
	jsonLogs   bool
	storePath  string

	// scan flags
	language     string
	branch       string
	filePatterns []string
	eslintConfig string
	pmdRulesets  string
	extensions   []string
	noContents   bool

	rootCmd = &cobra.Command{
		Use:   "codescan",
		Short: "A cli to run static analysis against a slice of a remote git repository",
		Long: `Codescan sparse-checks-out only the files a language's analyzer
				needs, runs the analyzer (ESLint, PMD, Pylint, or PHP_CodeSniffer),
				and reports findings in one standardized issue schema.`,
	}

	scanCmd = &cobra.Command{
		Use:   "scan [repository-url]",
		Short: "Analyze a remote repository and print standardized issues",
		Args:  cobra.ExactArgs(1),
		Run:   runScan, // Defined in cmd_scan.go
	}

	// --- Stored Results ---
	resultsCmd = &cobra.Command{
		Use:   "results",
		Short: "Inspect previously stored analysis results",
	}
	resultsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored results, newest first",
		Run:   runResultsList, // Defined in cmd_results.go
	}
	resultsShowCmd = &cobra.Command{
		Use:   "show [result-id]",
		Short: "Print one stored result as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runResultsShow, // Defined in cmd_results.go
	}
	resultsDeleteCmd = &cobra.Command{
		Use:   "delete [result-id]",
		Short: "Delete one stored result",
		Args:  cobra.ExactArgs(1),
		Run:   runResultsDelete, // Defined in cmd_results.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a codescan config YAML file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit stderr logs as JSON")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Directory of the local result store")

	scanCmd.Flags().StringVarP(&language, "language", "l", "", "Language to analyze (java, typescript, javascript, python, php)")
	scanCmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to analyze (default: main, falling back to master)")
	scanCmd.Flags().StringSliceVarP(&filePatterns, "pattern", "p", nil, "Sparse-checkout pattern override (repeatable)")
	scanCmd.Flags().StringVar(&eslintConfig, "eslint-config", "", "Workspace-relative ESLint config file")
	scanCmd.Flags().StringVar(&pmdRulesets, "rulesets", "", "Comma-separated PMD ruleset references")
	scanCmd.Flags().StringSliceVar(&extensions, "extensions", nil, "File extensions to scan (ESLint, PHPCS)")
	scanCmd.Flags().BoolVar(&noContents, "no-contents", false, "Skip attaching file contents to the result")
	_ = scanCmd.MarkFlagRequired("language")

	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd, resultsDeleteCmd)
	rootCmd.AddCommand(scanCmd, resultsCmd)
}
