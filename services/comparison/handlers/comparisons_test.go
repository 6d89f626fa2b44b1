// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the comparison handlers

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/pkg/extensions"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/archive"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedGenerator struct {
	artifact *datatypes.ComparisonArtifact
}

func (g *fixedGenerator) Generate(context.Context, string, string) (*datatypes.ComparisonArtifact, error) {
	cp := *g.artifact
	return &cp, nil
}

func sampleArtifact() *datatypes.ComparisonArtifact {
	return &datatypes.ComparisonArtifact{
		Title:   "GDP",
		TitleEn: "GDP",
		TitleZh: "国内生产总值",
		Unit:    "trillion USD",
		Samples: []datatypes.Sample{{Year: "2023", USA: 27.36, China: 17.79}},
		Summary: "The United States leads in nominal GDP.",
	}
}

// testRouter wires handlers the way routes.SetupRoutes does, with an
// in-memory store and a fixed auth identity.
func testRouter(svc *archive.Service, info *extensions.AuthInfo) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetAuthInfo(c, info)
		c.Next()
	})
	router.POST("/v1/comparisons", CreateComparison(svc))
	router.GET("/v1/comparisons/*key", GetComparisonByKey(svc))
	router.DELETE("/v1/comparisons/*key", DeleteComparison(svc))
	router.GET("/v1/library", ListLibrary(svc))
	return router
}

func memService() (*archive.Service, *archive.MemoryStore) {
	store := archive.NewMemoryStore()
	return archive.NewService(store, &fixedGenerator{artifact: sampleArtifact()}, nil), store
}

func adminInfo() *extensions.AuthInfo {
	return &extensions.AuthInfo{UserID: "local-user", Roles: []string{"admin"}}
}

func postComparison(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/comparisons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateComparison_GeneratesOnMiss(t *testing.T) {
	svc, _ := memService()
	router := testRouter(svc, adminInfo())

	w := postComparison(router, `{"metric": "GDP comparison", "locale": "en"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ComparisonResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "GDP", resp.Title)
	assert.Equal(t, datatypes.ProvenanceGenerated, resp.Provenance)
	// The write-back races the response; either in-flight or already done.
	assert.Contains(t, []string{"pending", "synced"}, resp.Sync)
}

func TestCreateComparison_ServesArchiveHit(t *testing.T) {
	svc, store := memService()
	router := testRouter(svc, adminInfo())

	require.Equal(t, http.StatusOK, postComparison(router, `{"metric": "GDP comparison"}`).Code)
	waitForArchive(t, store)

	w := postComparison(router, `{"metric": "GDP comparison"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ComparisonResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, datatypes.ProvenanceArchived, resp.Provenance)
	assert.Equal(t, "none", resp.Sync)
}

// waitForArchive polls until the background write-back lands. Handler
// tests have no access to the sync handle, so they observe the store.
func waitForArchive(t *testing.T, store *archive.MemoryStore) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if store.Len() >= 2 { // artifact body plus index document
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background write-back did not complete")
}

func TestCreateComparison_MissingMetric(t *testing.T) {
	svc, _ := memService()
	router := testRouter(svc, adminInfo())

	w := postComparison(router, `{"locale": "en"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateComparison_AnonymousMissForbidden(t *testing.T) {
	svc, _ := memService()
	router := testRouter(svc, nil)

	w := postComparison(router, `{"metric": "GDP comparison"}`)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "sign in")
}

func TestGetComparisonByKey(t *testing.T) {
	svc, store := memService()
	router := testRouter(svc, adminInfo())
	key := archive.DeriveKey("GDP comparison", "en")
	require.NoError(t, archive.NewArtifactStore(store).WriteArtifact(context.Background(), key, sampleArtifact()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/comparisons/"+key, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var artifact datatypes.ComparisonArtifact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &artifact))
	assert.Equal(t, "GDP", artifact.Title)
	assert.Equal(t, datatypes.ProvenanceArchived, artifact.Provenance)
}

func TestGetComparisonByKey_NotFound(t *testing.T) {
	svc, _ := memService()
	router := testRouter(svc, adminInfo())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/comparisons/sino-pulse/v1/en/absent.json", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteComparison_AdminOnly(t *testing.T) {
	svc, store := memService()
	key := archive.DeriveKey("GDP comparison", "en")
	require.NoError(t, archive.NewArtifactStore(store).WriteArtifact(context.Background(), key, sampleArtifact()))

	// Authenticated but not admin.
	router := testRouter(svc, &extensions.AuthInfo{UserID: "u1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/comparisons/"+key, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin succeeds.
	router = testRouter(svc, adminInfo())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/comparisons/"+key, nil))
	require.Equal(t, http.StatusOK, w.Code)

	// Second delete: gone.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/comparisons/"+key, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListLibrary(t *testing.T) {
	svc, store := memService()
	router := testRouter(svc, adminInfo())

	// Empty archive: empty array, not null.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/library", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp LibraryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "en", resp.Locale)
	assert.NotNil(t, resp.Artifacts)
	assert.Empty(t, resp.Artifacts)

	require.Equal(t, http.StatusOK, postComparison(router, `{"metric": "GDP comparison"}`).Code)
	waitForArchive(t, store)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/library?locale=en", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Artifacts, 1)
	assert.Equal(t, archive.DeriveKey("GDP comparison", "en"), resp.Artifacts[0].Key)
}

func TestHealthCheck_ReturnsOK(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}
