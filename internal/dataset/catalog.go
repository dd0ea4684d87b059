// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// Catalog holds the movies table and the joined ratings table.
// A Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	movies     []Movie
	movieIndex map[int]int

	ratings     []Rating
	userRatings map[int][]int
	dropped     int
}

type pairKey struct {
	user  int
	movie int
}

// NewCatalog joins ratings with movies. Ratings for unknown movies are
// dropped; duplicate (user, movie) pairs keep the latest timestamp.
func NewCatalog(movies []Movie, ratings []Rating) (*Catalog, error) {
	c := &Catalog{
		movies:      make([]Movie, len(movies)),
		movieIndex:  make(map[int]int, len(movies)),
		userRatings: make(map[int][]int),
	}
	copy(c.movies, movies)

	for i, m := range c.movies {
		if _, dup := c.movieIndex[m.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateMovie, m.ID)
		}
		c.movieIndex[m.ID] = i
	}

	seen := make(map[pairKey]int, len(ratings))
	c.ratings = make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		if _, ok := c.movieIndex[r.MovieID]; !ok {
			c.dropped++
			continue
		}
		key := pairKey{user: r.UserID, movie: r.MovieID}
		if pos, dup := seen[key]; dup {
			if r.Timestamp >= c.ratings[pos].Timestamp {
				c.ratings[pos] = r
			}
			continue
		}
		seen[key] = len(c.ratings)
		c.ratings = append(c.ratings, r)
	}

	for i, r := range c.ratings {
		c.userRatings[r.UserID] = append(c.userRatings[r.UserID], i)
	}

	return c, nil
}

// Movies returns the movies table in source order.
// The returned slice must not be modified.
func (c *Catalog) Movies() []Movie {
	return c.movies
}

// Movie looks up a movie by ID.
func (c *Catalog) Movie(id int) (Movie, bool) {
	i, ok := c.movieIndex[id]
	if !ok {
		return Movie{}, false
	}
	return c.movies[i], true
}

// Ratings returns the joined ratings table in source order.
// The returned slice must not be modified.
func (c *Catalog) Ratings() []Rating {
	return c.ratings
}

// UserRatings returns the ratings of one user in source order.
// Unknown users yield an empty slice.
func (c *Catalog) UserRatings(userID int) []Rating {
	idx := c.userRatings[userID]
	out := make([]Rating, len(idx))
	for i, j := range idx {
		out[i] = c.ratings[j]
	}
	return out
}

// RatedMovies returns the IDs of the movies a user rated, in source order.
func (c *Catalog) RatedMovies(userID int) []int {
	idx := c.userRatings[userID]
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = c.ratings[j].MovieID
	}
	return out
}

// HasRated reports whether userID rated movieID.
func (c *Catalog) HasRated(userID, movieID int) bool {
	for _, j := range c.userRatings[userID] {
		if c.ratings[j].MovieID == movieID {
			return true
		}
	}
	return false
}

// Users returns every user with at least one rating, ascending.
func (c *Catalog) Users() []int {
	users := make([]int, 0, len(c.userRatings))
	for u := range c.userRatings {
		users = append(users, u)
	}
	sort.Ints(users)
	return users
}

// Genres returns the distinct genre tags of the catalog, sorted.
func (c *Catalog) Genres() []string {
	set := make(map[string]struct{})
	for _, m := range c.movies {
		for _, g := range m.Genres {
			set[g] = struct{}{}
		}
	}
	genres := make([]string, 0, len(set))
	for g := range set {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// DroppedRatings returns how many ratings referenced unknown movies.
func (c *Catalog) DroppedRatings() int {
	return c.dropped
}

// Fingerprint returns a hex SHA-256 over the movie IDs and the joined
// ratings table. Two catalogs with equal fingerprints produce identical
// derived models.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte

	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:]) //nolint:errcheck // hash.Hash never returns an error
	}

	write(uint64(len(c.movies)))
	for _, m := range c.movies {
		write(uint64(int64(m.ID)))
	}
	write(uint64(len(c.ratings)))
	for _, r := range c.ratings {
		write(uint64(int64(r.UserID)))
		write(uint64(int64(r.MovieID)))
		write(math.Float64bits(r.Value))
	}
	return hex.EncodeToString(h.Sum(nil))
}
