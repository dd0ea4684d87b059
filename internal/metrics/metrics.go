// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Engine Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of engine operations by outcome",
		},
		[]string{"operation", "status"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Engine operation latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	RecommendBuildDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_build_duration_seconds",
			Help: "Duration of the last engine build stage in seconds",
		},
		[]string{"stage"},
	)

	RecommendCatalogSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_catalog_size",
			Help: "Number of movies, ratings and users in the loaded catalog",
		},
		[]string{"kind"},
	)

	RecommendNeighborCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_neighbor_cache_total",
			Help: "Neighbor cache lookups by result",
		},
		[]string{"result"},
	)

	RecommendFeedback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_feedback_total",
			Help: "Feedback signals stored by value",
		},
		[]string{"value"},
	)

	RecommendEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_evaluations_total",
			Help: "Precision/recall evaluations by result",
		},
		[]string{"result"},
	)

	RecommendEvaluationScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_evaluation_score",
			Help:    "Distribution of precision@k and recall@k values",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"metric"},
	)

	RecommendSnapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_snapshot_operations_total",
			Help: "Engine snapshot saves and loads by result",
		},
		[]string{"operation", "result"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one engine operation. A nil err is "success".
func RecordRecommendation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RecommendRequests.WithLabelValues(operation, status).Inc()
	RecommendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBuildStage records how long one engine build stage took.
func RecordBuildStage(stage string, duration time.Duration) {
	RecommendBuildDuration.WithLabelValues(stage).Set(duration.Seconds())
}

// SetCatalogSize publishes catalog dimensions.
func SetCatalogSize(movies, ratings, users int) {
	RecommendCatalogSize.WithLabelValues("movies").Set(float64(movies))
	RecommendCatalogSize.WithLabelValues("ratings").Set(float64(ratings))
	RecommendCatalogSize.WithLabelValues("users").Set(float64(users))
}

// RecordNeighborCache records a neighbor cache lookup.
func RecordNeighborCache(hit bool) {
	if hit {
		RecommendNeighborCache.WithLabelValues("hit").Inc()
	} else {
		RecommendNeighborCache.WithLabelValues("miss").Inc()
	}
}

// RecordFeedback records a stored like (positive) or dislike.
func RecordFeedback(value int) {
	if value > 0 {
		RecommendFeedback.WithLabelValues("like").Inc()
	} else {
		RecommendFeedback.WithLabelValues("dislike").Inc()
	}
}

// RecordEvaluation records one precision/recall evaluation.
func RecordEvaluation(sufficient bool, precision, recall float64) {
	if !sufficient {
		RecommendEvaluations.WithLabelValues("insufficient").Inc()
		return
	}
	RecommendEvaluations.WithLabelValues("evaluated").Inc()
	RecommendEvaluationScore.WithLabelValues("precision").Observe(precision)
	RecommendEvaluationScore.WithLabelValues("recall").Observe(recall)
}

// RecordSnapshot records a snapshot save or load.
func RecordSnapshot(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	RecommendSnapshotOperations.WithLabelValues(operation, result).Inc()
}
