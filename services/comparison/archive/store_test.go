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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
)

func TestMemoryStore_ReadMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Read(context.Background(), "sino-pulse/v1/en/gdp.json")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_WriteReadDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := "sino-pulse/v1/en/gdp.json"

	require.NoError(t, store.Write(ctx, key, []byte(`{"title":"GDP"}`), artifactWriteOptions))

	data, err := store.Read(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"GDP"}`, string(data))

	auth, err := store.ReadAuthoritative(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, auth)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Read(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, key), ErrNotFound)
}

func TestMemoryStore_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Write(ctx, "k", []byte("abc"), WriteOptions{}))

	data, err := store.Read(ctx, "k")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_ListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Write(ctx, "sino-pulse/v1/en/b.json", nil, WriteOptions{}))
	require.NoError(t, store.Write(ctx, "sino-pulse/v1/en/a.json", nil, WriteOptions{}))
	require.NoError(t, store.Write(ctx, "sino-pulse/v1/zh/c.json", nil, WriteOptions{}))

	infos, err := store.List(ctx, "sino-pulse/v1/en/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "sino-pulse/v1/en/a.json", infos[0].Key)
	assert.Equal(t, "sino-pulse/v1/en/b.json", infos[1].Key)
}

func testArtifact() *datatypes.ComparisonArtifact {
	return &datatypes.ComparisonArtifact{
		Title:   "GDP",
		TitleEn: "GDP",
		TitleZh: "国内生产总值",
		Unit:    "trillion USD",
		Samples: []datatypes.Sample{
			{Year: "2023", USA: 27.36, China: 17.79},
			{Year: "2024", USA: 28.78, China: 18.53},
		},
		Summary: "The United States remains ahead in nominal terms.",
	}
}

func TestArtifactStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore(NewMemoryStore())
	key := "sino-pulse/v1/en/gdp.json"

	require.NoError(t, store.WriteArtifact(ctx, key, testArtifact()))

	got, err := store.ReadArtifact(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "GDP", got.Title)
	require.Len(t, got.Samples, 2)
	assert.Equal(t, 27.36, got.Samples[0].USA)
}

func TestArtifactStore_WriteStripsProvenance(t *testing.T) {
	// Provenance is a per-response annotation; archived bodies never
	// carry it.
	ctx := context.Background()
	objects := NewMemoryStore()
	store := NewArtifactStore(objects)
	key := "sino-pulse/v1/en/gdp.json"

	artifact := testArtifact()
	artifact.Provenance = datatypes.ProvenanceGenerated
	require.NoError(t, store.WriteArtifact(ctx, key, artifact))

	// Caller's copy is untouched.
	assert.Equal(t, datatypes.ProvenanceGenerated, artifact.Provenance)

	raw, err := objects.Read(ctx, key)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, string(raw), string(datatypes.ProvenanceGenerated))
}

func TestArtifactStore_ReadMissing(t *testing.T) {
	store := NewArtifactStore(NewMemoryStore())

	_, err := store.ReadArtifact(context.Background(), "sino-pulse/v1/en/absent.json")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArtifactStore_ReadCorrupt(t *testing.T) {
	ctx := context.Background()
	objects := NewMemoryStore()
	key := "sino-pulse/v1/en/gdp.json"
	require.NoError(t, objects.Write(ctx, key, []byte("not json"), artifactWriteOptions))
	store := NewArtifactStore(objects)

	_, err := store.ReadArtifact(ctx, key)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
