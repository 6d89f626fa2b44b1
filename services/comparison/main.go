// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/pkg/extensions"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/pkg/logging"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/archive"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/generation"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/observability"
	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/routes"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "sinopulse-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("comparison-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newObjectStore picks the storage backend: GCS when a bucket is
// configured, in-process memory otherwise so the service runs without any
// cloud credentials.
func newObjectStore(ctx context.Context) archive.ObjectStore {
	backend := os.Getenv("SINOPULSE_STORAGE_BACKEND")
	if backend == "memory" {
		slog.Warn("Using in-memory storage, artifacts will not survive a restart")
		return archive.NewMemoryStore()
	}
	if backend == "" && os.Getenv("SINOPULSE_GCS_BUCKET") == "" {
		slog.Warn("SINOPULSE_GCS_BUCKET not set, falling back to in-memory storage")
		return archive.NewMemoryStore()
	}

	store, err := archive.NewGCSStoreFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize GCS storage: %v", err)
	}
	slog.Info("Using GCS storage", "bucket", os.Getenv("SINOPULSE_GCS_BUCKET"))
	return store
}

func main() {
	port := os.Getenv("SINOPULSE_PORT")
	if port == "" {
		port = "12230"
	}

	logger := logging.New(logging.Config{
		Service: "comparison",
		JSON:    true,
		LogDir:  os.Getenv("SINOPULSE_LOG_DIR"),
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	ctx := context.Background()
	store := newObjectStore(ctx)

	log.Println("Configuring the generation backend")
	generator, err := generation.NewOpenAIGenerator()
	if err != nil {
		log.Fatalf("Failed to initialize generation backend: %v", err)
	}

	metrics := observability.NewComparisonMetrics(prometheus.DefaultRegisterer)
	svc := archive.NewService(store, generator, metrics)

	router := gin.Default()
	router.Use(otelgin.Middleware("comparison-service"))

	routes.SetupRoutes(router, svc, extensions.DefaultOptions())

	log.Println("Starting the comparison server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
