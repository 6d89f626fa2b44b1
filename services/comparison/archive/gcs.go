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
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// defaultPublicBase is the unauthenticated GCS endpoint. Objects in a
// public bucket are readable at {base}/{bucket}/{key}, and responses are
// CDN-cacheable.
const defaultPublicBase = "https://storage.googleapis.com"

// GCSStore implements ObjectStore on a Google Cloud Storage bucket.
//
// Reads go through the public URL first (cheap, cacheable), then fall back
// to the authenticated client. Writes always use the authenticated client;
// the public endpoint is read-only.
type GCSStore struct {
	client     *storage.Client
	bucket     string
	publicBase string
	httpClient *http.Client
}

// GCSConfig holds explicit construction parameters. Zero values fall back
// to environment-driven defaults.
type GCSConfig struct {
	Bucket     string
	PublicBase string       // default https://storage.googleapis.com
	SAKeyPath  string       // optional; default credentials chain otherwise
	HTTPClient *http.Client // public-read tier; default 10s-timeout client
}

// NewGCSStore creates a GCS-backed object store.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}

	var opts []option.ClientOption
	if cfg.SAKeyPath != "" {
		if _, err := os.Stat(cfg.SAKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", cfg.SAKeyPath)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.SAKeyPath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	publicBase := strings.TrimSuffix(cfg.PublicBase, "/")
	if publicBase == "" {
		publicBase = defaultPublicBase
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &GCSStore{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: publicBase,
		httpClient: httpClient,
	}, nil
}

// NewGCSStoreFromEnv constructs a GCS store from process environment:
//
//	SINOPULSE_GCS_BUCKET       (required)
//	SINOPULSE_GCS_PUBLIC_BASE  (optional, for a CDN in front of the bucket)
//	SINOPULSE_GCS_SA_KEY       (optional, path to a service account key)
func NewGCSStoreFromEnv(ctx context.Context) (*GCSStore, error) {
	bucket := os.Getenv("SINOPULSE_GCS_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("SINOPULSE_GCS_BUCKET environment variable not set")
	}
	return NewGCSStore(ctx, GCSConfig{
		Bucket:     bucket,
		PublicBase: os.Getenv("SINOPULSE_GCS_PUBLIC_BASE"),
		SAKeyPath:  os.Getenv("SINOPULSE_GCS_SA_KEY"),
	})
}

// PublicURL returns the unauthenticated read URL for a key.
func (s *GCSStore) PublicURL(key string) string {
	return s.publicBase + "/" + s.bucket + "/" + key
}

// Read tries the public URL first and falls back to the authenticated
// client on any non-success. Only the authenticated path decides NotFound:
// a public 404 can also mean a private object.
func (s *GCSStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.readPublic(ctx, key)
	if err == nil {
		return data, nil
	}
	slog.Debug("public read failed, falling back to authenticated read",
		"key", key, "error", err)
	return s.ReadAuthoritative(ctx, key)
}

// ReadAuthoritative reads through the authenticated client only.
func (s *GCSStore) ReadAuthoritative(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	return data, nil
}

// Write stores an object through the authenticated client with the given
// content type and cache lifetime hints.
func (s *GCSStore) Write(ctx context.Context, key string, data []byte, opts WriteOptions) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.CacheControl = opts.CacheControl
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	return nil
}

// Delete removes an object. Missing objects map to ErrNotFound.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

// List enumerates objects under a prefix via the authenticated client.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var infos []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list %s: %w", prefix, err)
		}
		infos = append(infos, ObjectInfo{Key: attrs.Name, Updated: attrs.Updated})
	}
	return infos, nil
}

// readPublic fetches via the unauthenticated URL. Any non-200 response is
// an error that triggers the authenticated fallback.
func (s *GCSStore) readPublic(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.PublicURL(key), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("public read %s: status %d", key, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
