// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package algorithms

import (
	"strings"

	"github.com/tomtom215/cinerank/internal/dataset"
)

// GenreFilter matches movies by case-insensitive substring search over
// their pipe-delimited genre string. "Action" therefore also matches a
// hypothetical "Action-Adventure" tag, and an empty query matches every
// movie.
type GenreFilter struct {
	folded map[int]string
}

// NewGenreFilter indexes the genre strings of movies.
func NewGenreFilter(movies []dataset.Movie) *GenreFilter {
	folded := make(map[int]string, len(movies))
	for _, m := range movies {
		folded[m.ID] = strings.ToLower(m.GenreString())
	}
	return &GenreFilter{folded: folded}
}

// Match reports whether movieID carries genre. Unknown movies never
// match.
func (f *GenreFilter) Match(movieID int, genre string) bool {
	return f.Predicate(genre)(movieID)
}

// Predicate returns a matcher accepting movies that carry genre.
func (f *GenreFilter) Predicate(genre string) func(movieID int) bool {
	return f.AnyPredicate([]string{genre})
}

// AnyPredicate returns a matcher accepting movies that carry at least
// one of genres. An empty list accepts every known movie.
func (f *GenreFilter) AnyPredicate(genres []string) func(movieID int) bool {
	needles := make([]string, len(genres))
	for i, g := range genres {
		needles[i] = strings.ToLower(g)
	}

	return func(movieID int) bool {
		s, ok := f.folded[movieID]
		if !ok {
			return false
		}
		if len(needles) == 0 {
			return true
		}
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	}
}
