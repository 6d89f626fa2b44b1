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
	libraryLocale string
	outputJSON    bool

	rootCmd = &cobra.Command{
		Use:   "sinopulse",
		Short: "Maintenance CLI for the Sino-US-Pulse comparison archive",
		Long: `Operates directly on the comparison archive bucket: inspect the
library index, rebuild it from stored artifacts, and read or remove
individual comparison documents.`,
	}

	// --- Library index ---
	libraryCmd = &cobra.Command{
		Use:   "library",
		Short: "Inspect and repair the shared library index",
	}
	libraryListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the archived comparisons for one locale",
		Run:   runLibraryList, // Defined in cmd_library.go
	}
	libraryRebuildCmd = &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the library index from the stored artifacts",
		Long: `Re-derives the index document from a full bucket listing. Use this
to recover entries dropped by concurrent index writes or a corrupted
index document.`,
		Run: runLibraryRebuild, // Defined in cmd_library.go
	}

	// --- Artifacts ---
	artifactCmd = &cobra.Command{
		Use:   "artifact",
		Short: "Read or remove individual comparison artifacts",
	}
	artifactGetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Print one archived comparison document",
		Args:  cobra.ExactArgs(1),
		Run:   runArtifactGet, // Defined in cmd_artifact.go
	}
	artifactDeleteCmd = &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete one archived comparison document",
		Args:  cobra.ExactArgs(1),
		Run:   runArtifactDelete, // Defined in cmd_artifact.go
	}
)

func init() {
	libraryListCmd.Flags().StringVar(&libraryLocale, "locale", "en", "Locale to list (en or zh)")
	libraryListCmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryRebuildCmd)

	rootCmd.AddCommand(artifactCmd)
	artifactCmd.AddCommand(artifactGetCmd)
	artifactCmd.AddCommand(artifactDeleteCmd)
}
