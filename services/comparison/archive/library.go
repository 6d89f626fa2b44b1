// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
)

// LibraryStore manages the single shared index document at IndexKey.
//
// The index is advisory: a missing, corrupt, or unreachable index degrades
// the listing experience but never blocks reading an artifact by key or
// writing a new one.
//
// Concurrency: UpsertEntry is a read-modify-write over a shared document
// with no locking. Two near-simultaneous writers can both read the same
// base index and one write clobbers the other's entry. This lost-update
// risk is accepted: the artifact body is never lost, only its listing
// visibility may be delayed until the next successful upsert includes it.
// A conditional write on the object generation would close the gap if this
// system ever needed it.
type LibraryStore struct {
	objects ObjectStore
}

// NewLibraryStore wraps an ObjectStore.
func NewLibraryStore(objects ObjectStore) *LibraryStore {
	return &LibraryStore{objects: objects}
}

// ReadIndex fetches the index through the cache-friendly path. On any
// failure — missing document, unreachable store, unparsable JSON — it
// returns an empty index, never an error.
func (s *LibraryStore) ReadIndex(ctx context.Context) datatypes.LibraryIndex {
	return s.decodeIndex(ctx, IndexKey, false)
}

// UpsertEntry inserts or replaces one index entry and writes the whole
// document back.
//
// The current index is read through the authenticated path, since the
// write must start from a consistent snapshot rather than a possibly-stale
// CDN copy. Any existing entry with the same key, or the same non-empty
// title within the same locale folder, is dropped first: near-identical
// free-text requests otherwise accumulate duplicate listings for one
// topic. Title collapse never crosses locale folders — a topic's en and
// zh variants carry the same bilingual titles and must coexist.
func (s *LibraryStore) UpsertEntry(ctx context.Context, entry datatypes.LibraryIndexEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("library upsert: entry key required")
	}

	idx := s.decodeIndex(ctx, IndexKey, true)

	folder := entry.Key[:strings.LastIndexByte(entry.Key, '/')+1]
	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if e.Key == entry.Key {
			continue
		}
		if strings.HasPrefix(e.Key, folder) &&
			(sameTitle(e.TitleEn, entry.TitleEn) || sameTitle(e.TitleZh, entry.TitleZh)) {
			continue
		}
		kept = append(kept, e)
	}
	idx.Entries = append(kept, entry)

	data, err := json.Marshal(&idx)
	if err != nil {
		return fmt.Errorf("encode library index: %w", err)
	}
	if err := s.objects.Write(ctx, IndexKey, data, indexWriteOptions); err != nil {
		return fmt.Errorf("write library index: %w", err)
	}
	return nil
}

// ListArtifacts returns the index entries for one locale, most recently
// modified first. When the index has nothing for the locale, it falls back
// to a raw listing of the artifact folder — higher latency, weaker
// metadata, titles reconstructed from filenames — and never returns an
// error: total failure is an empty sequence.
func (s *LibraryStore) ListArtifacts(ctx context.Context, locale string) []datatypes.LibraryIndexEntry {
	folder := LocaleFolder(locale)

	idx := s.ReadIndex(ctx)
	var out []datatypes.LibraryIndexEntry
	for _, e := range idx.Entries {
		if strings.HasPrefix(e.Key, folder) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		out = s.listFromStore(ctx, folder)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out
}

// listFromStore is the degraded listing path: enumerate the artifact
// folder directly and rebuild entries from filenames.
func (s *LibraryStore) listFromStore(ctx context.Context, folder string) []datatypes.LibraryIndexEntry {
	infos, err := s.objects.List(ctx, folder)
	if err != nil {
		slog.Warn("library fallback listing failed", "folder", folder, "error", err)
		return nil
	}
	var out []datatypes.LibraryIndexEntry
	for _, info := range infos {
		if info.Key == IndexKey || !strings.HasSuffix(info.Key, ".json") {
			continue
		}
		titleEn, titleZh := TitlesFromKey(info.Key)
		out = append(out, datatypes.LibraryIndexEntry{
			Key:          info.Key,
			TitleEn:      titleEn,
			TitleZh:      titleZh,
			Category:     CategoryFor(info.Key),
			LastModified: info.Updated,
		})
	}
	return out
}

// RebuildIndex reconstructs the index document from a full listing of the
// artifact folder and writes it back. Maintenance operation: recovers
// entries dropped by concurrent upserts or a corrupted index. Rebuilt
// entries carry filename-derived titles, which the next regular upsert
// refines.
func (s *LibraryStore) RebuildIndex(ctx context.Context) (datatypes.LibraryIndex, error) {
	infos, err := s.objects.List(ctx, keyFolder+"/")
	if err != nil {
		return datatypes.LibraryIndex{}, fmt.Errorf("list artifacts: %w", err)
	}

	// Keep prior entries where possible; their titles came from the
	// generation backend and beat filename reconstruction.
	prior := s.decodeIndex(ctx, IndexKey, true)

	var idx datatypes.LibraryIndex
	for _, info := range infos {
		if info.Key == IndexKey || !strings.HasSuffix(info.Key, ".json") {
			continue
		}
		if e := prior.FindByKey(info.Key); e != nil {
			idx.Entries = append(idx.Entries, *e)
			continue
		}
		titleEn, titleZh := TitlesFromKey(info.Key)
		idx.Entries = append(idx.Entries, datatypes.LibraryIndexEntry{
			Key:          info.Key,
			TitleEn:      titleEn,
			TitleZh:      titleZh,
			Category:     CategoryFor(info.Key),
			LastModified: info.Updated,
		})
	}

	data, err := json.Marshal(&idx)
	if err != nil {
		return datatypes.LibraryIndex{}, fmt.Errorf("encode library index: %w", err)
	}
	if err := s.objects.Write(ctx, IndexKey, data, indexWriteOptions); err != nil {
		return datatypes.LibraryIndex{}, fmt.Errorf("write library index: %w", err)
	}
	return idx, nil
}

// decodeIndex reads and parses the index document, treating every failure
// as an empty index. Corrupt index contents are logged and discarded;
// repair happens naturally on the next successful upsert.
func (s *LibraryStore) decodeIndex(ctx context.Context, key string, authoritative bool) datatypes.LibraryIndex {
	var (
		data []byte
		err  error
	)
	if authoritative {
		data, err = s.objects.ReadAuthoritative(ctx, key)
	} else {
		data, err = s.objects.Read(ctx, key)
	}
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("library index read failed, treating as empty", "error", err)
		}
		return datatypes.LibraryIndex{}
	}

	var idx datatypes.LibraryIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		slog.Warn("library index unparsable, treating as empty", "error", err)
		return datatypes.LibraryIndex{}
	}
	return idx
}

// sameTitle compares display titles, ignoring case and surrounding space.
// Empty titles never match anything.
func sameTitle(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a != "" && a == b
}
