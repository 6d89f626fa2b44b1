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
	"time"

	"github.com/spf13/cobra"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/archive"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
)

// newLibraryStore connects to the configured bucket.
func newLibraryStore(ctx context.Context) *archive.LibraryStore {
	store, err := archive.NewGCSStoreFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to storage: %v", err)
	}
	return archive.NewLibraryStore(store)
}

func runLibraryList(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lib := newLibraryStore(ctx)
	entries := lib.ListArtifacts(ctx, libraryLocale)

	if outputJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode entries: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	if len(entries) == 0 {
		fmt.Printf("No archived comparisons for locale %q\n", libraryLocale)
		return
	}
	for _, e := range entries {
		fmt.Println(formatEntry(e, libraryLocale))
	}
	fmt.Printf("\n%d archived comparison(s)\n", len(entries))
}

// formatEntry renders one index entry as a listing line.
func formatEntry(e datatypes.LibraryIndexEntry, locale string) string {
	title := e.TitleEn
	if locale == "zh" && e.TitleZh != "" {
		title = e.TitleZh
	}
	if title == "" {
		title = e.Key
	}
	category := e.Category
	if category == "" {
		category = "-"
	}
	return fmt.Sprintf("%-40s  %-12s  %s  %s",
		title, category, e.LastModified.Format("2006-01-02"), e.Key)
}

func runLibraryRebuild(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lib := newLibraryStore(ctx)
	idx, err := lib.RebuildIndex(ctx)
	if err != nil {
		log.Fatalf("Failed to rebuild the library index: %v", err)
	}
	fmt.Printf("Rebuilt the library index with %d entries\n", len(idx.Entries))
}
