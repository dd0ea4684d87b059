// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cinerank/internal/dataset"
	"github.com/tomtom215/cinerank/internal/metrics"
)

// cfRatings yields unit rows u1=(.6,.8,0) u2=(.8,.6,0) u3=(0,0,1)
// u4=(.6,0,.8) over movies 1..3.
func cfRatings() []dataset.Rating {
	return []dataset.Rating{
		{UserID: 1, MovieID: 1, Value: 3},
		{UserID: 1, MovieID: 2, Value: 4},
		{UserID: 2, MovieID: 1, Value: 4},
		{UserID: 2, MovieID: 2, Value: 3},
		{UserID: 3, MovieID: 3, Value: 5},
		{UserID: 4, MovieID: 1, Value: 3},
		{UserID: 4, MovieID: 3, Value: 4},
	}
}

func trainedSimilarity(t *testing.T) *Similarity {
	t.Helper()
	s := NewSimilarity()
	if err := s.Train(context.Background(), cfRatings()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return s
}

func TestSimilarityMatrix(t *testing.T) {
	s := trainedSimilarity(t)

	if got := s.Users(); len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Errorf("Users() = %v", got)
	}
	if got := s.Movies(); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Movies() = %v", got)
	}

	tests := []struct {
		a, b int
		want float64
	}{
		{1, 2, 0.96},
		{1, 3, 0},
		{1, 4, 0.36},
		{2, 4, 0.48},
		{3, 4, 0.8},
	}
	for _, tt := range tests {
		got, err := s.Pair(tt.a, tt.b)
		if err != nil {
			t.Fatalf("Pair(%d, %d) error = %v", tt.a, tt.b, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Pair(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		back, _ := s.Pair(tt.b, tt.a)
		if back != got {
			t.Errorf("Pair not symmetric: %v vs %v", got, back)
		}
	}

	for _, u := range s.Users() {
		if got, _ := s.Pair(u, u); got != 1 {
			t.Errorf("diagonal for user %d = %v, want exactly 1", u, got)
		}
	}
}

func TestSimilarityNeighbors(t *testing.T) {
	s := trainedSimilarity(t)

	got, err := s.Neighbors(1, 2)
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if len(got) != 2 || got[0].UserID != 2 || got[1].UserID != 4 {
		t.Errorf("Neighbors(1, 2) = %+v, want users [2 4]", got)
	}

	// Users 1 and 2 tie at 0 for user 3 and keep ascending ID order.
	got, _ = s.Neighbors(3, 3)
	if len(got) != 3 || got[0].UserID != 4 || got[1].UserID != 1 || got[2].UserID != 2 {
		t.Errorf("Neighbors(3, 3) = %+v, want users [4 1 2]", got)
	}

	got, _ = s.Neighbors(1, 10)
	if len(got) != 3 {
		t.Errorf("Neighbors(1, 10) len = %d, want 3", len(got))
	}
	for _, n := range got {
		if n.UserID == 1 {
			t.Error("target user listed as its own neighbor")
		}
	}

	if _, err := s.Neighbors(99, 5); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("Neighbors(99) error = %v, want ErrUnknownUser", err)
	}
}

func TestSimilarityRestore(t *testing.T) {
	s := trainedSimilarity(t)

	restored := NewSimilarity()
	if err := restored.Restore(cfRatings(), s.Users(), s.Movies(), s.Data()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	want, _ := s.Neighbors(4, 3)
	got, _ := restored.Neighbors(4, 3)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("restored neighbor %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if err := restored.Restore(cfRatings(), []int{1, 2, 3}, s.Movies(), s.Data()); err == nil {
		t.Error("Restore() with mismatched users should fail")
	}
	if err := restored.Restore(cfRatings(), s.Users(), s.Movies(), []float64{1}); err == nil {
		t.Error("Restore() with short data should fail")
	}

	movies := s.Movies()
	if err := restored.Restore(cfRatings(), s.Users(), movies[:len(movies)-1], s.Data()); err == nil {
		t.Error("Restore() with a missing movie should fail")
	}
	shifted := append([]int(nil), movies...)
	shifted[0] += 1000
	if err := restored.Restore(cfRatings(), s.Users(), shifted, s.Data()); err == nil {
		t.Error("Restore() with different movie IDs should fail")
	}
}

func TestSimilarityUntrained(t *testing.T) {
	s := NewSimilarity()
	if _, err := s.Neighbors(1, 5); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Neighbors() error = %v, want ErrNotTrained", err)
	}
	if err := s.Train(context.Background(), nil); !errors.Is(err, ErrNoRatings) {
		t.Errorf("Train(nil) error = %v, want ErrNoRatings", err)
	}
}

func TestUserBasedCFRecommend(t *testing.T) {
	cf, err := NewUserBasedCF(trainedSimilarity(t), UserCFConfig{Neighbors: 2})
	if err != nil {
		t.Fatalf("NewUserBasedCF() error = %v", err)
	}

	tests := []struct {
		name          string
		user          int
		n             int
		removeWatched bool
		bias          map[int]float64
		wantIDs       []int
		wantScores    []float64
	}{
		{
			name:       "all columns",
			user:       1,
			n:          10,
			wantIDs:    []int{1, 2, 3},
			wantScores: []float64{4.92, 2.88, 1.44},
		},
		{
			name:          "watched removed",
			user:          1,
			n:             10,
			removeWatched: true,
			wantIDs:       []int{3},
			wantScores:    []float64{1.44},
		},
		{
			name:       "bias reorders and unknown movies are ignored",
			user:       1,
			n:          10,
			bias:       map[int]float64{3: 2, 99: 1},
			wantIDs:    []int{1, 3, 2},
			wantScores: []float64{4.92, 3.44, 2.88},
		},
		{
			name:          "zero-similarity neighbor contributes nothing",
			user:          3,
			n:             10,
			removeWatched: true,
			wantIDs:       []int{1, 2},
			wantScores:    []float64{2.4, 0},
		},
		{
			name:       "truncated",
			user:       1,
			n:          1,
			wantIDs:    []int{1},
			wantScores: []float64{4.92},
		},
		{
			name:    "zero n",
			user:    1,
			n:       0,
			wantIDs: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cf.Recommend(tt.user, tt.n, tt.removeWatched, tt.bias)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Recommend() = %+v, want ids %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i].MovieID != tt.wantIDs[i] {
					t.Errorf("rank %d = movie %d, want %d", i, got[i].MovieID, tt.wantIDs[i])
				}
				if math.Abs(got[i].Score-tt.wantScores[i]) > 1e-9 {
					t.Errorf("rank %d score = %v, want %v", i, got[i].Score, tt.wantScores[i])
				}
			}
		})
	}

	if _, err := cf.Recommend(99, 5, true, nil); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("Recommend(99) error = %v, want ErrUnknownUser", err)
	}
}

func TestUserBasedCFNeighborCache(t *testing.T) {
	sim := trainedSimilarity(t)
	cf, err := NewUserBasedCF(sim, UserCFConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if cf.config.Neighbors != DefaultNeighbors {
		t.Errorf("Neighbors default = %d, want %d", cf.config.Neighbors, DefaultNeighbors)
	}

	hits := metrics.RecommendNeighborCache.WithLabelValues("hit")
	before := testutil.ToFloat64(hits)

	first, err := cf.Neighbors(2)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := cf.Neighbors(2)
	if got := testutil.ToFloat64(hits); got != before+1 {
		t.Errorf("cache hits = %v, want %v", got, before+1)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("cached neighbors differ: %v vs %v", first, second)
	}

	if err := sim.Train(context.Background(), cfRatings()[:4]); err != nil {
		t.Fatal(err)
	}
	after, _ := cf.Neighbors(2)
	if len(after) != 1 {
		t.Errorf("neighbors after retrain = %+v, want only user 1", after)
	}
}

func TestNewUserBasedCFNilSimilarity(t *testing.T) {
	if _, err := NewUserBasedCF(nil, UserCFConfig{}); err == nil {
		t.Error("NewUserBasedCF(nil) should fail")
	}
}
