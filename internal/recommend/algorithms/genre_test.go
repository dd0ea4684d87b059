// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package algorithms

import (
	"testing"

	"github.com/tomtom215/cinerank/internal/dataset"
)

func TestGenreFilter(t *testing.T) {
	f := NewGenreFilter([]dataset.Movie{
		{ID: 1, Title: "Toy Story (1995)", Genres: []string{"Animation", "Children's", "Comedy"}},
		{ID: 2, Title: "Heat (1995)", Genres: []string{"Action", "Crime", "Thriller"}},
		{ID: 3, Title: "Untagged", Genres: nil},
	})

	tests := []struct {
		name    string
		movieID int
		genres  []string
		want    bool
	}{
		{"exact tag", 1, []string{"Comedy"}, true},
		{"case insensitive", 2, []string{"action"}, true},
		{"substring of tag", 1, []string{"child"}, true},
		{"spans separator", 2, []string{"crime|thr"}, true},
		{"no match", 2, []string{"Comedy"}, false},
		{"any of several", 2, []string{"Comedy", "Crime"}, true},
		{"empty list matches all", 3, nil, true},
		{"empty needle matches all", 2, []string{""}, true},
		{"unknown movie", 42, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.AnyPredicate(tt.genres)(tt.movieID); got != tt.want {
				t.Errorf("AnyPredicate(%q)(%d) = %v, want %v", tt.genres, tt.movieID, got, tt.want)
			}
		})
	}

	if !f.Match(1, "ANIMATION") {
		t.Error("Match(1, ANIMATION) = false")
	}
	if f.Predicate("Horror")(1) {
		t.Error("Predicate(Horror)(1) = true")
	}
}
