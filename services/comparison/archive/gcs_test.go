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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publicOnlyStore builds a GCSStore with just the public-read tier wired,
// pointed at a local test server. The authenticated client stays nil, so
// these tests cover exactly the paths that never touch it.
func publicOnlyStore(serverURL string) *GCSStore {
	return &GCSStore{
		bucket:     "pulse-bucket",
		publicBase: serverURL,
		httpClient: http.DefaultClient,
	}
}

func TestGCSStore_PublicURL(t *testing.T) {
	s := publicOnlyStore("https://storage.googleapis.com")

	url := s.PublicURL("sino-pulse/v1/en/gdp.json")

	assert.Equal(t, "https://storage.googleapis.com/pulse-bucket/sino-pulse/v1/en/gdp.json", url)
}

func TestGCSStore_ReadPublicSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pulse-bucket/sino-pulse/v1/en/gdp.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"GDP"}`))
	}))
	defer srv.Close()
	s := publicOnlyStore(srv.URL)

	data, err := s.readPublic(context.Background(), "sino-pulse/v1/en/gdp.json")

	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"GDP"}`, string(data))
}

func TestGCSStore_ReadUsesPublicTierFirst(t *testing.T) {
	// A public 200 means the authenticated client is never needed; with a
	// nil client, reaching the fallback would panic.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"title":"GDP"}`))
	}))
	defer srv.Close()
	s := publicOnlyStore(srv.URL)

	data, err := s.Read(context.Background(), "sino-pulse/v1/en/gdp.json")

	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"GDP"}`, string(data))
}

func TestGCSStore_ReadPublicNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()
	s := publicOnlyStore(srv.URL)

	_, err := s.readPublic(context.Background(), "sino-pulse/v1/en/gdp.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestNewGCSStore_RequiresBucket(t *testing.T) {
	_, err := NewGCSStore(context.Background(), GCSConfig{})

	assert.Error(t, err)
}

func TestNewGCSStore_MissingKeyFile(t *testing.T) {
	_, err := NewGCSStore(context.Background(), GCSConfig{
		Bucket:    "pulse-bucket",
		SAKeyPath: "/nonexistent/sa-key.json",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "service account key not found")
}

func TestNewGCSStoreFromEnv_RequiresBucket(t *testing.T) {
	t.Setenv("SINOPULSE_GCS_BUCKET", "")

	_, err := NewGCSStoreFromEnv(context.Background())

	assert.Error(t, err)
}
