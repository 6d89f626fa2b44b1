// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the Gin HTTP handlers for the comparison
// service. Handlers translate between the HTTP surface and the archive
// orchestrator; all caching and generation policy lives below.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/archive"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/middleware"
)

// Create a new tracer
var comparisonTracer = otel.Tracer("sinopulse.comparison.handlers")

// ComparisonRequest is the POST /v1/comparisons body.
type ComparisonRequest struct {
	// Metric is the free-text comparison request, e.g. "GDP per capita".
	Metric string `json:"metric" binding:"required"`
	// Locale selects the artifact language: "en" (default) or "zh".
	Locale string `json:"locale"`
	// ForceRefresh bypasses the archive and regenerates.
	ForceRefresh bool `json:"force_refresh"`
}

// ComparisonResponse wraps an artifact with its archive sync status:
// "none" for archive hits, "pending" when a background write-back was
// started. The response never waits for the write-back.
type ComparisonResponse struct {
	*datatypes.ComparisonArtifact
	Sync string `json:"sync"`
}

// CreateComparison handles POST /v1/comparisons: resolve a comparison
// from the archive or generate it.
func CreateComparison(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := comparisonTracer.Start(c.Request.Context(), "CreateComparison")
		defer span.End()

		var req ComparisonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		sess := archive.SessionFromAuthInfo(middleware.GetAuthInfo(c))
		artifact, handle, err := svc.FetchComparison(ctx, req.Metric, req.Locale, req.ForceRefresh, sess)
		if err != nil {
			switch {
			case errors.Is(err, archive.ErrPermissionDenied):
				c.JSON(http.StatusForbidden, gin.H{"error": "sign in to generate new comparisons"})
			case errors.Is(err, archive.ErrMalformedArtifact):
				c.JSON(http.StatusBadGateway, gin.H{"error": "generation produced an unusable document"})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			}
			return
		}

		sync := "none"
		if handle != nil {
			sync = string(handle.State())
		}
		c.JSON(http.StatusOK, ComparisonResponse{ComparisonArtifact: artifact, Sync: sync})
	}
}

// GetComparisonByKey handles GET /v1/comparisons/*key: direct artifact
// read for bookmarked links and library entries.
func GetComparisonByKey(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := comparisonTracer.Start(c.Request.Context(), "GetComparisonByKey")
		defer span.End()

		// Gin's wildcard param keeps the leading slash.
		key := strings.TrimPrefix(c.Param("key"), "/")
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "artifact key required"})
			return
		}

		artifact, err := svc.FetchByKey(ctx, key)
		if err != nil {
			if errors.Is(err, archive.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "archive read failed"})
			return
		}
		c.JSON(http.StatusOK, artifact)
	}
}

// DeleteComparison handles DELETE /v1/comparisons/*key. Admin only.
func DeleteComparison(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := comparisonTracer.Start(c.Request.Context(), "DeleteComparison")
		defer span.End()

		info := middleware.GetAuthInfo(c)
		if info == nil || !info.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}

		key := strings.TrimPrefix(c.Param("key"), "/")
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "artifact key required"})
			return
		}

		if err := svc.DeleteArtifact(ctx, key); err != nil {
			if errors.Is(err, archive.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "archive delete failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "key": key})
	}
}
