// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package algorithms implements the scoring models behind the
// recommendation engine.
//
// # Models
//
// Popularity:
//   - Per-movie vote count v and mean rating R
//   - Weighted rating WR = v/(v+m)*R + m/(v+m)*C, with m the 90th
//     percentile of vote counts and C the global mean rating
//
// Similarity:
//   - Zero-filled user x movie rating matrix (gonum mat.Dense)
//   - Dense user-user cosine similarity (gonum mat.SymDense)
//
// UserBasedCF:
//   - Top-k neighbors per user, cached in an LRU
//   - Scores are the similarity-weighted sum of neighbor rating rows plus
//     an optional per-movie bias
//
// GenreFilter:
//   - Case-insensitive substring match over the pipe-delimited genre string
//
// # Determinism
//
// Every ranking uses a stable sort over a fixed base order (movie IDs
// ascending, or user IDs ascending for neighbors), so equal scores always
// rank the same way.
//
// # Usage Example
//
//	pop := algorithms.NewPopularity(algorithms.PopularityConfig{VoteQuantile: 0.9})
//	if err := pop.Train(ctx, catalog.Ratings()); err != nil {
//	    return err
//	}
//	top, err := pop.TopN(10, nil)
//
//	sim := algorithms.NewSimilarity()
//	if err := sim.Train(ctx, catalog.Ratings()); err != nil {
//	    return err
//	}
//	cf, err := algorithms.NewUserBasedCF(sim, algorithms.UserCFConfig{Neighbors: 5})
//	recs, err := cf.Recommend(userID, 10, true, nil)
//
// # Thread Safety
//
// All models are safe for concurrent use. Training acquires an exclusive
// lock while queries use a shared lock.
package algorithms
