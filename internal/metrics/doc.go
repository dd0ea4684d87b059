// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package metrics exposes Prometheus instrumentation for Cinerank.

All collectors are registered on the default registry through promauto and
served by promhttp at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Engine:
  - recommend_requests_total{operation,status}
  - recommend_duration_seconds{operation}
  - recommend_build_duration_seconds{stage}
  - recommend_catalog_size{kind}: movies, ratings, users
  - recommend_neighbor_cache_total{result}: hit, miss
  - recommend_feedback_total{value}: like, dislike
  - recommend_evaluations_total{result}: evaluated, insufficient
  - recommend_evaluation_score{metric}: precision, recall histograms
  - recommend_snapshot_operations_total{operation,result}

Callers use the Record* helpers rather than touching collectors directly so
that label values stay consistent.
*/
package metrics
