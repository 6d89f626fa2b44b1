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
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data    []byte
	updated time.Time
}

// MemoryStore implements ObjectStore in process memory. Used by tests and
// by the storage=memory mode for running the service without a bucket.
// Contents do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	objs map[string]memObject
}

// NewMemoryStore returns an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objs: make(map[string]memObject)}
}

// Read returns a copy of the object's bytes. There is no public/CDN tier
// in memory, so Read and ReadAuthoritative behave identically.
func (s *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

// ReadAuthoritative is identical to Read for the memory driver.
func (s *MemoryStore) ReadAuthoritative(ctx context.Context, key string) ([]byte, error) {
	return s.Read(ctx, key)
}

// Write stores a copy of data under key, overwriting any existing object.
func (s *MemoryStore) Write(_ context.Context, key string, data []byte, _ WriteOptions) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.objs[key] = memObject{data: cp, updated: time.Now().UTC()}
	s.mu.Unlock()
	return nil
}

// Delete removes the object, returning ErrNotFound if it was absent.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objs[key]; !ok {
		return ErrNotFound
	}
	delete(s.objs, key)
	return nil
}

// List returns all objects under prefix sorted by key.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ObjectInfo
	for k, v := range s.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Key: k, Updated: v.updated})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Len reports the number of stored objects. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objs)
}
