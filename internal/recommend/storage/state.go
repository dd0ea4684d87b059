// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package storage

import (
	"encoding/gob"

	"github.com/tomtom215/cinerank/internal/recommend/algorithms"
)

// Snapshot names.
const (
	PopularitySnapshot = "popularity"
	SimilaritySnapshot = "similarity"
)

// PopularityState is the serializable state of the popularity scorer.
type PopularityState struct {
	Stats  []algorithms.MovieStats
	Params algorithms.PopularityParams
}

// SimilarityState is the serializable user-user similarity matrix.
// Similarity is row-major with len(UserIDs) rows and columns.
type SimilarityState struct {
	UserIDs    []int
	MovieIDs   []int
	Similarity []float64
}

//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(PopularityState{})
	gob.Register(SimilarityState{})
	gob.Register(SnapshotMetadata{})
	gob.Register(storedFile{})
}
