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
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/pkg/extensions"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/observability"
)

// fuzzyMinRunes is the minimum normalized request length for fuzzy title
// containment matching. Shorter requests match too many common substrings.
const fuzzyMinRunes = 6

// syncTimeout bounds one background write-back (artifact body plus index
// upsert).
const syncTimeout = 60 * time.Second

// Session identifies the caller for one request. Passed by value; never a
// mutable global. An unauthenticated session can read the archive but
// cannot trigger generation.
type Session struct {
	Authenticated bool
	UserID        string
	Email         string
	Admin         bool
}

// CanGenerate reports whether this session may invoke the generation
// backend. This is the one authorization gate inside the archive.
func (s Session) CanGenerate() bool {
	return s.Authenticated
}

// SessionFromAuthInfo converts middleware auth output into a Session.
// A nil AuthInfo is an anonymous session.
func SessionFromAuthInfo(info *extensions.AuthInfo) Session {
	if info == nil {
		return Session{}
	}
	return Session{
		Authenticated: true,
		UserID:        info.UserID,
		Email:         info.Email,
		Admin:         info.IsAdmin(),
	}
}

// Generator is the generation backend boundary: an opaque function
// returning a structured comparison document or failing. The archive adds
// no retry or backoff around it; a failure propagates to the caller.
type Generator interface {
	Generate(ctx context.Context, requestText, locale string) (*datatypes.ComparisonArtifact, error)
}

// SyncState is the resolution of one background write-back.
type SyncState string

const (
	// SyncPending means the write-back has not finished.
	SyncPending SyncState = "pending"
	// SyncSynced means the artifact body and its index entry both landed.
	SyncSynced SyncState = "synced"
	// SyncFailed means either step failed. The artifact already handed to
	// the caller stays valid; the recovery path is a user-driven refresh.
	SyncFailed SyncState = "sync-failed"
)

// SyncHandle is the independently-awaitable completion signal for one
// background write-back. Callers must not block their request path on it.
type SyncHandle struct {
	done  chan struct{}
	state SyncState
	err   error
}

func newSyncHandle() *SyncHandle {
	return &SyncHandle{done: make(chan struct{}), state: SyncPending}
}

// Wait blocks until the write-back resolves or ctx is done, and returns
// the final state. Intended for tests and for callers that explicitly opt
// in to waiting.
func (h *SyncHandle) Wait(ctx context.Context) (SyncState, error) {
	select {
	case <-h.done:
		return h.state, h.err
	case <-ctx.Done():
		return SyncPending, ctx.Err()
	}
}

// State returns the current state without blocking.
func (h *SyncHandle) State() SyncState {
	select {
	case <-h.done:
		return h.state
	default:
		return SyncPending
	}
}

// resolve is called exactly once, from the write-back goroutine.
func (h *SyncHandle) resolve(state SyncState, err error) {
	h.state = state
	h.err = err
	close(h.done)
}

// Service is the top-level entry point the HTTP layer consumes: the
// comparison cache orchestrator.
//
// User-perceived latency is bounded by generation time only, never by
// archive-write time: the write-back runs detached and the caller gets a
// SyncHandle instead of waiting.
type Service struct {
	artifacts *ArtifactStore
	library   *LibraryStore
	generator Generator
	metrics   *observability.ComparisonMetrics
}

// NewService assembles the orchestrator from explicitly constructed
// collaborators. metrics may be nil.
func NewService(objects ObjectStore, generator Generator, metrics *observability.ComparisonMetrics) *Service {
	return &Service{
		artifacts: NewArtifactStore(objects),
		library:   NewLibraryStore(objects),
		generator: generator,
		metrics:   metrics,
	}
}

// FetchComparison resolves one comparison request.
//
// Unless forceRefresh is set, the archive is consulted first and a hit is
// returned immediately with provenance "served-from-archive" and a nil
// handle. On a miss the generation backend is invoked (authenticated
// sessions only), the validated artifact is returned with provenance
// "freshly-generated", and a background write-back is started whose
// SyncHandle resolves to SyncSynced or SyncFailed.
func (s *Service) FetchComparison(ctx context.Context, requestText, locale string, forceRefresh bool, sess Session) (*datatypes.ComparisonArtifact, *SyncHandle, error) {
	if NormalizeRequest(requestText) == "" {
		return nil, nil, fmt.Errorf("empty comparison request")
	}
	locale = NormalizeLocale(locale)
	key := DeriveKey(requestText, locale)

	if !forceRefresh {
		if artifact := s.lookup(ctx, requestText, locale, key); artifact != nil {
			s.metrics.RecordLookup(true)
			artifact.Provenance = datatypes.ProvenanceArchived
			return artifact, nil, nil
		}
		s.metrics.RecordLookup(false)
	}

	if !sess.CanGenerate() {
		return nil, nil, ErrPermissionDenied
	}

	start := time.Now()
	artifact, err := s.generator.Generate(ctx, requestText, locale)
	if err != nil {
		s.metrics.RecordGeneration(time.Since(start).Seconds(), false)
		return nil, nil, fmt.Errorf("generation backend: %w", err)
	}
	s.metrics.RecordGeneration(time.Since(start).Seconds(), true)

	if err := artifact.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}

	artifact.Provenance = datatypes.ProvenanceGenerated
	handle := s.startWriteBack(key, artifact)
	return artifact, handle, nil
}

// FetchByKey reads one artifact directly, bypassing text-based matching.
// Used when the UI already holds a key (bookmarked link, index entry).
func (s *Service) FetchByKey(ctx context.Context, key string) (*datatypes.ComparisonArtifact, error) {
	artifact, err := s.artifacts.ReadArtifact(ctx, key)
	if err != nil {
		return nil, err
	}
	artifact.Provenance = datatypes.ProvenanceArchived
	return artifact, nil
}

// ListArchived returns the library entries for one locale, most recent
// first. Never errors: total index failure is an empty sequence.
func (s *Service) ListArchived(ctx context.Context, locale string) []datatypes.LibraryIndexEntry {
	return s.library.ListArtifacts(ctx, locale)
}

// DeleteArtifact removes one artifact body. Administrative operation; the
// handler layer enforces the admin check. The index entry, if any, becomes
// dangling until the next upsert replaces it — acceptable for an advisory
// structure.
func (s *Service) DeleteArtifact(ctx context.Context, key string) error {
	return s.artifacts.Delete(ctx, key)
}

// lookup attempts to serve the request from the archive. Key equality is
// exact and always wins over heuristic title matching. Every failure on
// this path degrades to a miss; the user-visible request must only fail
// when generation itself fails or is disallowed.
func (s *Service) lookup(ctx context.Context, requestText, locale, key string) *datatypes.ComparisonArtifact {
	// Exact key first: even when the index lost this entry to a write
	// race, the body is still addressable.
	if artifact, err := s.artifacts.ReadArtifact(ctx, key); err == nil {
		return artifact
	} else if !errors.Is(err, ErrNotFound) {
		slog.Warn("archive read degraded to miss", "key", key, "error", err)
	}

	entry := s.matchIndexEntry(ctx, requestText, locale)
	if entry == nil {
		return nil
	}
	artifact, err := s.artifacts.ReadArtifact(ctx, entry.Key)
	if err != nil {
		slog.Warn("index entry points at unreadable artifact, treating as miss",
			"key", entry.Key, "error", err)
		return nil
	}
	return artifact
}

// matchIndexEntry searches the index by title: exact normalized match
// first, then fuzzy containment for requests long enough to make
// containment meaningful.
func (s *Service) matchIndexEntry(ctx context.Context, requestText, locale string) *datatypes.LibraryIndexEntry {
	normalized := NormalizeRequest(requestText)
	folder := LocaleFolder(locale)
	idx := s.library.ReadIndex(ctx)

	for i := range idx.Entries {
		e := &idx.Entries[i]
		if !strings.HasPrefix(e.Key, folder) {
			continue
		}
		if NormalizeRequest(e.TitleEn) == normalized || NormalizeRequest(e.TitleZh) == normalized {
			return e
		}
	}

	if len([]rune(normalized)) < fuzzyMinRunes {
		return nil
	}
	for i := range idx.Entries {
		e := &idx.Entries[i]
		if !strings.HasPrefix(e.Key, folder) {
			continue
		}
		for _, title := range []string{NormalizeRequest(e.TitleEn), NormalizeRequest(e.TitleZh)} {
			if title == "" {
				continue
			}
			if strings.Contains(title, normalized) || strings.Contains(normalized, title) {
				return e
			}
		}
	}
	return nil
}

// startWriteBack archives the artifact without blocking the caller: body
// first, then the index entry referencing it, so a reader that sees an
// index entry is guaranteed the body already exists. Fire-and-forget with
// its own context; a teardown mid-write abandons the attempt and the next
// generation for the same key retries naturally.
func (s *Service) startWriteBack(key string, artifact *datatypes.ComparisonArtifact) *SyncHandle {
	handle := newSyncHandle()
	s.metrics.SyncStarted()

	titleEn, titleZh := RepairTitles(key, artifact.TitleEn, artifact.TitleZh)
	category := artifact.Category
	if category == "" {
		category = CategoryFor(key)
	}
	entry := datatypes.LibraryIndexEntry{
		Key:          key,
		TitleEn:      titleEn,
		TitleZh:      titleZh,
		Category:     category,
		LastModified: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if err := s.artifacts.WriteArtifact(ctx, key, artifact); err != nil {
			slog.Error("background artifact write failed", "key", key, "error", err)
			s.metrics.SyncEnded(false)
			handle.resolve(SyncFailed, err)
			return
		}
		if err := s.library.UpsertEntry(ctx, entry); err != nil {
			slog.Error("background index upsert failed", "key", key, "error", err)
			s.metrics.SyncEnded(false)
			handle.resolve(SyncFailed, err)
			return
		}
		slog.Info("artifact archived", "key", key)
		s.metrics.SyncEnded(true)
		handle.resolve(SyncSynced, nil)
	}()
	return handle
}
