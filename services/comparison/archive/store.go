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
	"fmt"
	"time"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
)

// WriteOptions carries per-object write hints.
type WriteOptions struct {
	ContentType  string
	CacheControl string
}

// ObjectInfo describes one stored object, the minimum the degraded listing
// path needs.
type ObjectInfo struct {
	Key     string
	Updated time.Time
}

// ObjectStore is the raw storage boundary the archive builds on.
//
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Read fetches an object through the cheap, cache-friendly path when
	// one exists (public/CDN URL), falling back to an authenticated read.
	// Returns ErrNotFound for a missing object.
	Read(ctx context.Context, key string) ([]byte, error)

	// ReadAuthoritative fetches through the authenticated path only,
	// bypassing any CDN-cached copy. Used when a read-modify-write needs a
	// consistent snapshot. Returns ErrNotFound for a missing object.
	ReadAuthoritative(ctx context.Context, key string) ([]byte, error)

	// Write stores an object through the authenticated path. Public
	// endpoints are read-only.
	Write(ctx context.Context, key string, data []byte, opts WriteOptions) error

	// Delete removes an object. Administrative boundary primitive; the
	// archive itself never deletes artifacts.
	Delete(ctx context.Context, key string) error

	// List enumerates objects under a key prefix. Higher latency and
	// weaker metadata than the index; only the degraded listing path
	// uses it.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Write hints: artifact bodies are immutable once written, so clients and
// CDNs may cache them for a day. The index changes on every write and must
// not be cached.
var (
	artifactWriteOptions = WriteOptions{
		ContentType:  "application/json",
		CacheControl: "public, max-age=86400",
	}
	indexWriteOptions = WriteOptions{
		ContentType:  "application/json",
		CacheControl: "no-cache",
	}
)

// ArtifactStore reads and writes comparison artifacts as JSON documents on
// an ObjectStore.
type ArtifactStore struct {
	objects ObjectStore
}

// NewArtifactStore wraps an ObjectStore.
func NewArtifactStore(objects ObjectStore) *ArtifactStore {
	return &ArtifactStore{objects: objects}
}

// ReadArtifact fetches and decodes one artifact. Returns ErrNotFound for a
// missing key; any other error is transient and callers on the lookup path
// must degrade it to a cache miss.
func (s *ArtifactStore) ReadArtifact(ctx context.Context, key string) (*datatypes.ComparisonArtifact, error) {
	data, err := s.objects.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	var artifact datatypes.ComparisonArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", key, err)
	}
	return &artifact, nil
}

// WriteArtifact stores one artifact. The provenance tag is a per-response
// annotation, not part of the archived body, so it is stripped before
// writing. Write failures surface to the caller; they feed the sync-state
// signal.
func (s *ArtifactStore) WriteArtifact(ctx context.Context, key string, artifact *datatypes.ComparisonArtifact) error {
	body := *artifact
	body.Provenance = ""
	data, err := json.Marshal(&body)
	if err != nil {
		return fmt.Errorf("encode artifact %s: %w", key, err)
	}
	if err := s.objects.Write(ctx, key, data, artifactWriteOptions); err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	return nil
}

// Delete removes one artifact body. Exposed for the administrative
// boundary only.
func (s *ArtifactStore) Delete(ctx context.Context, key string) error {
	return s.objects.Delete(ctx, key)
}
