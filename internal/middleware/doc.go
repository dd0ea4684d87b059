// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package middleware provides HTTP middleware components for the API.

Key Components:

  - Request ID: UUID-based request tracking, propagated into the logging
    context as request_id and correlation_id
  - Prometheus Metrics: request counts, latency and in-flight gauge,
    labelled by chi route pattern to keep label cardinality bounded

Both are written as http.HandlerFunc wrappers and adapted to chi's
func(http.Handler) http.Handler signature by the api package.
*/
package middleware
