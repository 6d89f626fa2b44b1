// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sinopulse is the maintenance CLI for the comparison archive.
//
// It talks to the storage bucket directly, not through the HTTP service,
// so it works even when the service is down.
//
// # Environment Variables
//
//   - SINOPULSE_GCS_BUCKET: storage bucket (required)
//   - SINOPULSE_GCS_PUBLIC_BASE: public/CDN base URL (optional)
//   - SINOPULSE_GCS_SA_KEY: path to a service account key (optional)
//
// # Usage
//
//	sinopulse library list --locale zh
//	sinopulse library rebuild
//	sinopulse artifact get sino-pulse/v1/en/gdp.json
//	sinopulse artifact delete sino-pulse/v1/en/gdp.json
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
