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
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/archive"
)

// newArtifactStore connects to the configured bucket.
func newArtifactStore(ctx context.Context) *archive.ArtifactStore {
	store, err := archive.NewGCSStoreFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to storage: %v", err)
	}
	return archive.NewArtifactStore(store)
}

func runArtifactGet(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := args[0]
	artifacts := newArtifactStore(ctx)
	artifact, err := artifacts.ReadArtifact(ctx, key)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			log.Fatalf("No artifact at key %q", key)
		}
		log.Fatalf("Failed to read artifact: %v", err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode artifact: %v", err)
	}
	fmt.Println(string(data))
}

func runArtifactDelete(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := args[0]
	artifacts := newArtifactStore(ctx)
	if err := artifacts.Delete(ctx, key); err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			log.Fatalf("No artifact at key %q", key)
		}
		log.Fatalf("Failed to delete artifact: %v", err)
	}
	fmt.Printf("Deleted %s\n", key)
	fmt.Println("Run 'sinopulse library rebuild' to drop its index entry")
}
