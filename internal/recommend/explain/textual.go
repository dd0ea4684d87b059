// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package explain

import (
	"sort"
	"strings"

	"github.com/tomtom215/cinerank/internal/dataset"
)

// Fixed explanation texts.
const (
	ColdStartText = "These movies are recommended because they are highly rated and popular among users."
	FallbackText  = "Recommended based on your overall viewing patterns and similar users' preferences."

	matchTextPrefix = "Recommended because you often watch and rate "
	matchTextSuffix = " movies."
)

// DefaultProfileGenres is the size of a user's genre preference profile.
const DefaultProfileGenres = 3

// Narrator writes one-sentence reasons for recommending a movie.
type Narrator struct {
	catalog     *dataset.Catalog
	profileSize int
}

// NewNarrator creates a Narrator over catalog.
func NewNarrator(catalog *dataset.Catalog, profileSize int) *Narrator {
	if profileSize <= 0 {
		profileSize = DefaultProfileGenres
	}
	return &Narrator{catalog: catalog, profileSize: profileSize}
}

// Profile returns the user's preferred genres. Genres are ranked by the
// sum of the user's ratings over movies carrying them. Equal sums keep
// the order in which the genres first appear in the user's history.
func (n *Narrator) Profile(userID int) []string {
	type score struct {
		genre string
		sum   float64
	}
	var scores []score
	pos := make(map[string]int)

	for _, r := range n.catalog.UserRatings(userID) {
		movie, ok := n.catalog.Movie(r.MovieID)
		if !ok {
			continue
		}
		for _, g := range movie.Genres {
			i, seen := pos[g]
			if !seen {
				i = len(scores)
				pos[g] = i
				scores = append(scores, score{genre: g})
			}
			scores[i].sum += r.Value
		}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].sum > scores[j].sum })
	if len(scores) > n.profileSize {
		scores = scores[:n.profileSize]
	}

	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.genre
	}
	return out
}

// Describe explains why movie is recommended to userID. A nil userID
// means a cold-start visitor.
func (n *Narrator) Describe(userID *int, movie dataset.Movie) string {
	if userID == nil {
		return ColdStartText
	}

	tags := make(map[string]struct{}, len(movie.Genres))
	for _, g := range movie.Genres {
		tags[g] = struct{}{}
	}

	var matched []string
	for _, g := range n.Profile(*userID) {
		if _, ok := tags[g]; ok {
			matched = append(matched, g)
		}
	}
	if len(matched) == 0 {
		return FallbackText
	}
	return matchTextPrefix + strings.Join(matched, ", ") + matchTextSuffix
}
