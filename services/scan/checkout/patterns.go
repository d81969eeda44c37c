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

// alwaysIncludePatterns are manifest and tool-config filenames retained for
// every language. Adapters need them to detect project-local configuration
// (e.g. an .eslintrc shipped with the repository).
var alwaysIncludePatterns = []string{
	"package.json",
	"tsconfig.json",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
	"requirements.txt",
	"pyproject.toml",
	"setup.cfg",
	"composer.json",
	".eslintrc*",
	"eslint.config.*",
	"phpcs.xml",
	"phpcs.xml.dist",
	"ruleset.xml",
}

// languagePatterns maps a language to its default source globs.
var languagePatterns = map[string][]string{
	"java":       {"**/*.java"},
	"typescript": {"**/*.ts", "**/*.tsx"},
	"javascript": {"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs"},
	"python":     {"**/*.py"},
	"php":        {"**/*.php"},
}

// PatternsForLanguage returns the sparse-checkout pattern list for a run.
//
// Description:
//
//	Caller-supplied overrides win over the language defaults; the
//	constant manifest set is always appended so adapters can find
//	project-local tool configuration. Unknown languages with no
//	overrides yield only the manifest set.
//
// Inputs:
//
//	language - The analysis language (e.g. "java", "typescript")
//	overrides - Caller-supplied globs, or nil for defaults
//
// Outputs:
//
//	[]string - Ordered pattern list for the sparse-rules file
func PatternsForLanguage(language string, overrides []string) []string {
	base := overrides
	if len(base) == 0 {
		base = languagePatterns[language]
	}

	patterns := make([]string, 0, len(base)+len(alwaysIncludePatterns))
	patterns = append(patterns, base...)
	patterns = append(patterns, alwaysIncludePatterns...)
	return patterns
}

// SupportedLanguage reports whether default patterns exist for language.
func SupportedLanguage(language string) bool {
	_, ok := languagePatterns[language]
	return ok
}
