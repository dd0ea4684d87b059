// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package api provides the HTTP JSON API over the recommendation engine.

Key Components:

  - Router: chi route table and middleware stack
  - Handler: one method per engine operation
  - ResponseWriter: the APIResponse envelope shared by every endpoint
  - ChiMiddleware: go-chi/cors and go-chi/httprate factories

Endpoints (all under /api/v1):

	GET  /health
	GET  /genres
	GET  /movies/top?n=&genre=
	GET  /movies/{movieID}/explanation
	GET  /movies/{movieID}/explanation/text?user_id=
	GET  /recommendations/cold-start?genres=a,b&n=
	GET  /users/{userID}/recommendations?n=&remove_watched=
	GET  /users/{userID}/recommendations/genre/{genre}?n=
	POST /users/{userID}/feedback
	GET  /users/{userID}/evaluation?k=&test_ratio=

/metrics serves Prometheus metrics outside the versioned prefix.

Error Mapping:

Engine sentinel errors map to HTTP status codes: unknown users and
movies are 404, invalid arguments and feedback values are 400, and an
unavailable explainer is 503. Insufficient evaluation history is a
successful response with null precision and recall.
*/
package api
