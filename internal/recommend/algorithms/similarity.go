// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/cinerank/internal/dataset"
)

// Neighbor is a similar user and its cosine similarity to the target.
type Neighbor struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// Similarity holds the zero-filled user x movie rating matrix and the
// dense user-user cosine similarity matrix derived from it.
//
// Rows are users ascending by ID, columns are rated movies ascending by
// ID. Missing ratings are zero, so the similarity is cosine over the
// full movie vector rather than over co-rated movies only.
type Similarity struct {
	BaseAlgorithm

	users      []int
	userIndex  map[int]int
	movies     []int
	movieIndex map[int]int

	ratings *mat.Dense
	sim     *mat.SymDense
}

// NewSimilarity creates an untrained similarity engine.
func NewSimilarity() *Similarity {
	return &Similarity{
		BaseAlgorithm: NewBaseAlgorithm("cosine"),
	}
}

// Train builds the rating matrix and the similarity matrix.
func (s *Similarity) Train(ctx context.Context, ratings []dataset.Rating) error {
	users, movies, x, err := buildRatingMatrix(ratings)
	if err != nil {
		return err
	}
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	sim := cosineMatrix(x)
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	s.acquireTrainLock()
	defer s.releaseTrainLock()
	s.install(users, movies, x, sim)
	return nil
}

// Restore rebuilds the rating matrix from ratings and adopts a
// previously computed similarity matrix. data is the row-major n x n
// matrix; only its upper triangle is read. userIDs and movieIDs must
// equal the users and movies of ratings in ascending order.
func (s *Similarity) Restore(ratings []dataset.Rating, userIDs, movieIDs []int, data []float64) error {
	users, movies, x, err := buildRatingMatrix(ratings)
	if err != nil {
		return err
	}
	if err := sameIDs("user", users, userIDs); err != nil {
		return err
	}
	if err := sameIDs("movie", movies, movieIDs); err != nil {
		return err
	}

	n := len(users)
	if len(data) != n*n {
		return fmt.Errorf("similarity snapshot has %d cells, want %d", len(data), n*n)
	}

	cp := make([]float64, len(data))
	copy(cp, data)

	s.acquireTrainLock()
	defer s.releaseTrainLock()
	s.install(users, movies, x, mat.NewSymDense(n, cp))
	return nil
}

// sameIDs checks that a snapshot axis matches the one built from ratings.
func sameIDs(kind string, want, got []int) error {
	if len(got) != len(want) {
		return fmt.Errorf("similarity snapshot has %d %ss, ratings have %d", len(got), kind, len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("similarity snapshot %s %d at index %d, ratings have %d", kind, got[i], i, want[i])
		}
	}
	return nil
}

func (s *Similarity) install(users, movies []int, x *mat.Dense, sim *mat.SymDense) {
	s.users = users
	s.userIndex = indexOf(users)
	s.movies = movies
	s.movieIndex = indexOf(movies)
	s.ratings = x
	s.sim = sim
	s.markTrained()
}

// buildRatingMatrix lays the ratings out as a dense users x movies
// matrix.
func buildRatingMatrix(ratings []dataset.Rating) (users, movies []int, x *mat.Dense, err error) {
	if len(ratings) == 0 {
		return nil, nil, nil, ErrNoRatings
	}

	userSet := make(map[int]struct{})
	movieSet := make(map[int]struct{})
	for _, r := range ratings {
		userSet[r.UserID] = struct{}{}
		movieSet[r.MovieID] = struct{}{}
	}
	users = sortedKeys(userSet)
	movies = sortedKeys(movieSet)

	ui := indexOf(users)
	mi := indexOf(movies)
	x = mat.NewDense(len(users), len(movies), nil)
	for _, r := range ratings {
		x.Set(ui[r.UserID], mi[r.MovieID], r.Value)
	}
	return users, movies, x, nil
}

// cosineMatrix returns Xn * Xn^T where Xn is x with unit-length rows.
// The diagonal is pinned to exactly 1.
func cosineMatrix(x *mat.Dense) *mat.SymDense {
	rows, _ := x.Dims()
	xn := mat.DenseCopyOf(x)
	nonZero := make([]bool, rows)
	for i := 0; i < rows; i++ {
		row := xn.RawRowView(i)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
			nonZero[i] = true
		}
	}

	sim := mat.NewSymDense(rows, nil)
	sim.SymOuterK(1, xn)
	for i := 0; i < rows; i++ {
		if nonZero[i] {
			sim.SetSym(i, i, 1)
		}
	}
	return sim
}

// Users returns the matrix row user IDs in ascending order.
func (s *Similarity) Users() []int {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	return append([]int(nil), s.users...)
}

// Movies returns the matrix column movie IDs in ascending order.
func (s *Similarity) Movies() []int {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	return append([]int(nil), s.movies...)
}

// Pair returns the similarity between two users.
func (s *Similarity) Pair(a, b int) (float64, error) {
	s.acquirePredictLock()
	defer s.releasePredictLock()

	if !s.trained {
		return 0, ErrNotTrained
	}
	i, ok := s.userIndex[a]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownUser, a)
	}
	j, ok := s.userIndex[b]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownUser, b)
	}
	return s.sim.At(i, j), nil
}

// Data returns a row-major copy of the full similarity matrix.
func (s *Similarity) Data() []float64 {
	s.acquirePredictLock()
	defer s.releasePredictLock()

	n := len(s.users)
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := s.sim.At(i, j)
			out[i*n+j] = v
			out[j*n+i] = v
		}
	}
	return out
}

// Neighbors returns the k users most similar to userID, excluding the
// user itself, by similarity descending. Ties keep ascending user ID
// order.
func (s *Similarity) Neighbors(userID, k int) ([]Neighbor, error) {
	s.acquirePredictLock()
	defer s.releasePredictLock()

	if !s.trained {
		return nil, ErrNotTrained
	}
	idx, ok := s.userIndex[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}

	candidates := make([]Neighbor, 0, len(s.users)-1)
	for j, id := range s.users {
		if j == idx {
			continue
		}
		candidates = append(candidates, Neighbor{UserID: id, Similarity: s.sim.At(idx, j)})
	}

	sortStableDesc(candidates, func(n Neighbor) float64 { return n.Similarity })
	return head(candidates, k), nil
}

// scoreColumns sums the neighbors' rating rows weighted by similarity,
// one entry per movie column. The caller must hold the predict lock.
func (s *Similarity) scoreColumns(neighbors []Neighbor) []float64 {
	_, cols := s.ratings.Dims()
	scores := make([]float64, cols)
	for _, n := range neighbors {
		floats.AddScaled(scores, n.Similarity, s.ratings.RawRowView(s.userIndex[n.UserID]))
	}
	return scores
}

func indexOf(ids []int) map[int]int {
	m := make(map[int]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
