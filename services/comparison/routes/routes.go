// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/pkg/extensions"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/archive"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/handlers"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/middleware"
)

func SetupRoutes(router *gin.Engine, svc *archive.Service, opts extensions.ServiceOptions) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.RequestIDMiddleware())
	v1.Use(middleware.AuthMiddleware(opts.AuthProvider))
	{
		v1.POST("/comparisons", handlers.CreateComparison(svc))
		v1.GET("/comparisons/*key", handlers.GetComparisonByKey(svc))
		v1.DELETE("/comparisons/*key", handlers.DeleteComparison(svc))
		v1.GET("/library", handlers.ListLibrary(svc))
	}
}
