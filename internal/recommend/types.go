// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import (
	"time"

	"github.com/tomtom215/cinerank/internal/recommend/algorithms"
	"github.com/tomtom215/cinerank/internal/recommend/explain"
)

// Sentinel errors. Callers test them with errors.Is.
var (
	// ErrUnknownUser indicates a user with no row in the rating matrix.
	ErrUnknownUser = algorithms.ErrUnknownUser

	// ErrUnknownMovie indicates a movie without ratings or metadata.
	ErrUnknownMovie = explain.ErrUnknownMovie

	// ErrInvalidArgument indicates an out-of-range request parameter.
	ErrInvalidArgument = algorithms.ErrInvalidArgument

	// ErrExplainerUnavailable indicates the surrogate model could not be
	// fitted.
	ErrExplainerUnavailable = explain.ErrExplainerUnavailable
)

// ScoredMovie is one row of a recommendation list.
type ScoredMovie struct {
	MovieID int      `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`

	// WeightedRating is nil for movies nobody rated.
	WeightedRating *float64 `json:"weighted_rating"`

	// Votes is the number of ratings behind WeightedRating.
	Votes int `json:"votes"`

	// Score is the personalized score; nil for popularity rankings.
	Score *float64 `json:"score,omitempty"`
}

// BuildInfo describes how the engine's derived state was obtained.
type BuildInfo struct {
	// Fingerprint identifies the catalog the state was derived from.
	Fingerprint string `json:"fingerprint"`

	// FromSnapshot lists the models restored from disk rather than built.
	FromSnapshot []string `json:"from_snapshot,omitempty"`

	Movies  int `json:"movies"`
	Ratings int `json:"ratings"`
	Users   int `json:"users"`

	// MinVotes and GlobalMean are m and C of the weighted rating.
	MinVotes   float64 `json:"min_votes"`
	GlobalMean float64 `json:"global_mean"`

	// ExplainerError is set when the explainer is unavailable.
	ExplainerError string `json:"explainer_error,omitempty"`

	BuiltAt       time.Time `json:"built_at"`
	BuildDuration string    `json:"build_duration"`
}
