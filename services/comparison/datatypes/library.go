// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "time"

// LibraryIndexEntry is one line of the shared library index: enough
// metadata to list an archived artifact without fetching its body.
type LibraryIndexEntry struct {
	// Key is the artifact's storage key, e.g.
	// "sino-pulse/v1/en/gdp_per_capita.json".
	Key string `json:"key"`

	TitleEn  string `json:"titleEn"`
	TitleZh  string `json:"titleZh"`
	Category string `json:"category"`

	LastModified time.Time `json:"lastModified"`
}

// LibraryIndex is the single shared index document stored at a well-known
// key. It is a denormalized convenience structure: a stale or missing index
// only degrades listing, never artifact fetches by key.
//
// Invariant: at most one entry per Key. Best effort: at most one entry per
// distinct title, collapsing near-duplicate topics created under slightly
// different request text.
type LibraryIndex struct {
	Entries []LibraryIndexEntry `json:"artifacts"`
}

// FindByKey returns the entry with the given key, or nil.
func (idx *LibraryIndex) FindByKey(key string) *LibraryIndexEntry {
	for i := range idx.Entries {
		if idx.Entries[i].Key == key {
			return &idx.Entries[i]
		}
	}
	return nil
}
