// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package recommend implements the movie recommendation engine.
//
// # Architecture
//
// The Engine is a facade over independent components, each in its own
// subpackage:
//
//   - algorithms: Bayesian weighted popularity, user-user cosine
//     similarity, neighbor-based collaborative filtering and genre
//     matching
//   - feedback: like/dislike signals added to personalized scores
//   - explain: surrogate linear model, additive feature attribution and
//     textual explanations
//   - evaluate: held-out precision and recall at k
//   - storage: versioned snapshots of the derived models
//
// Everything except feedback is derived once in NewEngine from an
// immutable dataset.Catalog. When a snapshot store is configured, the
// popularity table and the similarity matrix are reloaded on the next
// start as long as the catalog fingerprint is unchanged.
//
// # Usage
//
//	catalog, err := dataset.Load(ctx, paths, dataset.Options{})
//	engine, err := recommend.NewEngine(ctx, recommend.DefaultConfig(), catalog, nil, logger)
//
//	top, err := engine.GlobalTopN(10)
//	recs, err := engine.PersonalizedTopN(ctx, userID, 10, true)
//
// # Errors
//
// Operations return ErrUnknownUser, ErrUnknownMovie, ErrInvalidArgument
// or ErrExplainerUnavailable wrapped with context. Test them with
// errors.Is. Insufficient evaluation history is a result state, not an
// error.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Derived models are read-only,
// feedback stores serialize writes and the evaluator guards its random
// source with a mutex.
package recommend
