// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the comparison
// service: cache lookup outcomes, generation latency, and background sync
// results. Metrics are exposed via the /metrics endpoint.
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "sinopulse"

const comparisonSubsystem = "comparison"

// Lookup results.
const (
	LookupHit  = "hit"
	LookupMiss = "miss"
)

// Sync and generation outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ComparisonMetrics holds all Prometheus metrics for the comparison
// pipeline. Construct once at startup via NewComparisonMetrics; tests use
// an isolated registry.
type ComparisonMetrics struct {
	// LookupsTotal counts archive lookups by result (hit, miss).
	LookupsTotal *prometheus.CounterVec

	// GenerationsTotal counts generation backend calls by status.
	GenerationsTotal *prometheus.CounterVec

	// GenerationDurationSeconds measures generation backend latency.
	GenerationDurationSeconds prometheus.Histogram

	// SyncsTotal counts background write-backs by status.
	SyncsTotal *prometheus.CounterVec

	// ActiveSyncs gauges write-backs currently in flight.
	ActiveSyncs prometheus.Gauge
}

// NewComparisonMetrics registers the comparison metrics with the given
// registerer. Pass prometheus.DefaultRegisterer in production.
func NewComparisonMetrics(reg prometheus.Registerer) *ComparisonMetrics {
	factory := promauto.With(reg)
	return &ComparisonMetrics{
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: comparisonSubsystem,
				Name:      "lookups_total",
				Help:      "Archive lookups by result",
			},
			[]string{"result"},
		),
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: comparisonSubsystem,
				Name:      "generations_total",
				Help:      "Generation backend calls by status",
			},
			[]string{"status"},
		),
		GenerationDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: comparisonSubsystem,
				Name:      "generation_duration_seconds",
				Help:      "Generation backend latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		),
		SyncsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: comparisonSubsystem,
				Name:      "syncs_total",
				Help:      "Background archive write-backs by status",
			},
			[]string{"status"},
		),
		ActiveSyncs: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: comparisonSubsystem,
				Name:      "active_syncs",
				Help:      "Background write-backs currently in flight",
			},
		),
	}
}

// RecordLookup records one archive lookup outcome. Nil-safe.
func (m *ComparisonMetrics) RecordLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.LookupsTotal.WithLabelValues(LookupHit).Inc()
	} else {
		m.LookupsTotal.WithLabelValues(LookupMiss).Inc()
	}
}

// RecordGeneration records one generation backend call. Nil-safe.
func (m *ComparisonMetrics) RecordGeneration(seconds float64, success bool) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	m.GenerationsTotal.WithLabelValues(status).Inc()
	m.GenerationDurationSeconds.Observe(seconds)
}

// SyncStarted marks a background write-back in flight. Nil-safe.
func (m *ComparisonMetrics) SyncStarted() {
	if m == nil {
		return
	}
	m.ActiveSyncs.Inc()
}

// SyncEnded records a finished write-back. Nil-safe.
func (m *ComparisonMetrics) SyncEnded(success bool) {
	if m == nil {
		return
	}
	m.ActiveSyncs.Dec()
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	m.SyncsTotal.WithLabelValues(status).Inc()
}
