// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/archive"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
)

// LibraryResponse is the GET /v1/library body.
type LibraryResponse struct {
	Locale    string                        `json:"locale"`
	Artifacts []datatypes.LibraryIndexEntry `json:"artifacts"`
}

// ListLibrary handles GET /v1/library?locale=: the archived comparison
// listing for the sidebar. Open to anonymous callers; an unreachable
// index degrades to an empty listing rather than an error.
func ListLibrary(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := comparisonTracer.Start(c.Request.Context(), "ListLibrary")
		defer span.End()

		locale := archive.NormalizeLocale(c.Query("locale"))
		entries := svc.ListArchived(ctx, locale)
		if entries == nil {
			entries = []datatypes.LibraryIndexEntry{}
		}
		c.JSON(http.StatusOK, LibraryResponse{Locale: locale, Artifacts: entries})
	}
}
