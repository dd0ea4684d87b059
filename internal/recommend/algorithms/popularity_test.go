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

	"github.com/tomtom215/cinerank/internal/dataset"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func toyRatings() []dataset.Rating {
	return []dataset.Rating{
		{UserID: 1, MovieID: 1, Value: 5},
		{UserID: 1, MovieID: 2, Value: 3},
		{UserID: 2, MovieID: 1, Value: 4},
		{UserID: 2, MovieID: 3, Value: 2},
		{UserID: 3, MovieID: 1, Value: 3},
		{UserID: 3, MovieID: 2, Value: 4},
	}
}

func TestWeightedRating(t *testing.T) {
	p := PopularityParams{MinVotes: 10, GlobalMean: 3.5}

	tests := []struct {
		name string
		v, r float64
		want float64
	}{
		{"many votes stays near own mean", 100, 4.5, 485.0 / 110.0},
		{"few votes shrinks toward C", 5, 5.0, 4.0},
		{"below C", 50, 3.0, 185.0 / 60.0},
		{"no votes is C", 0, 0, 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedRating(tt.v, tt.r, p); !approx(got, tt.want) {
				t.Errorf("WeightedRating(%v, %v) = %v, want %v", tt.v, tt.r, got, tt.want)
			}
		})
	}

	if got := WeightedRating(0, 0, PopularityParams{GlobalMean: 2}); got != 2 {
		t.Errorf("zero denominator = %v, want C", got)
	}
}

func TestPopularityShrinkageOrder(t *testing.T) {
	// Counts 5, 10, 10, 50, 100 put the 0.25 quantile at m = 10.
	p := NewPopularity(PopularityConfig{VoteQuantile: 0.25})
	stats := []MovieStats{
		{MovieID: 3, Count: 50, Mean: 3.0},
		{MovieID: 1, Count: 100, Mean: 4.5},
		{MovieID: 2, Count: 5, Mean: 5.0},
		{MovieID: 4, Count: 10, Mean: 1.0},
		{MovieID: 5, Count: 10, Mean: 1.5},
	}
	if err := p.Restore(stats, PopularityParams{GlobalMean: 3.5}); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if m := p.Params().MinVotes; !approx(m, 10) {
		t.Fatalf("m = %v, want 10", m)
	}

	top, err := p.TopN(3, nil)
	if err != nil {
		t.Fatalf("TopN() error = %v", err)
	}
	want := []int{1, 2, 3}
	for i, s := range top {
		if s.MovieID != want[i] {
			t.Errorf("rank %d = movie %d, want %d", i, s.MovieID, want[i])
		}
	}
	if !approx(top[1].WeightedRating, 4.0) {
		t.Errorf("WR(movie 2) = %v, want 4.0", top[1].WeightedRating)
	}
}

func TestPopularityTrain(t *testing.T) {
	p := NewPopularity(PopularityConfig{VoteQuantile: 0.9})
	if p.IsTrained() {
		t.Fatal("IsTrained() = true before Train")
	}
	if _, err := p.TopN(1, nil); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("TopN() before Train error = %v, want ErrNotTrained", err)
	}

	if err := p.Train(context.Background(), toyRatings()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if !p.IsTrained() || p.Version() != 1 {
		t.Errorf("IsTrained/Version = %v/%d, want true/1", p.IsTrained(), p.Version())
	}

	params := p.Params()
	if !approx(params.MinVotes, 2.8) {
		t.Errorf("m = %v, want 2.8", params.MinVotes)
	}
	if !approx(params.GlobalMean, 3.5) {
		t.Errorf("C = %v, want 3.5", params.GlobalMean)
	}

	s, ok := p.Lookup(1)
	if !ok {
		t.Fatal("Lookup(1) not found")
	}
	if s.Count != 3 || !approx(s.Mean, 4) || !approx(s.WeightedRating, 21.8/5.8) {
		t.Errorf("Lookup(1) = %+v", s)
	}
	if _, ok := p.Lookup(99); ok {
		t.Error("Lookup(99) found an unrated movie")
	}

	top, err := p.TopN(10, nil)
	if err != nil {
		t.Fatalf("TopN() error = %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("TopN(10) len = %d, want 3", len(top))
	}
	for i, id := range []int{1, 2, 3} {
		if top[i].MovieID != id {
			t.Errorf("rank %d = %d, want %d", i, top[i].MovieID, id)
		}
	}
	for i := 1; i < len(top); i++ {
		if top[i].WeightedRating > top[i-1].WeightedRating {
			t.Errorf("not descending at %d", i)
		}
	}
}

func TestPopularityTopNFilterAndBounds(t *testing.T) {
	p := NewPopularity(PopularityConfig{})
	if err := p.Train(context.Background(), toyRatings()); err != nil {
		t.Fatal(err)
	}

	onlyOdd := func(id int) bool { return id%2 == 1 }
	top, err := p.TopN(5, onlyOdd)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].MovieID != 1 || top[1].MovieID != 3 {
		t.Errorf("filtered TopN = %+v", top)
	}

	zero, err := p.TopN(0, nil)
	if err != nil || len(zero) != 0 {
		t.Errorf("TopN(0) = %v, %v; want empty", zero, err)
	}

	none, err := p.TopN(3, func(int) bool { return false })
	if err != nil || len(none) != 0 {
		t.Errorf("TopN(reject all) = %v, %v; want empty", none, err)
	}
}

func TestPopularityTiesKeepMovieIDOrder(t *testing.T) {
	p := NewPopularity(PopularityConfig{})
	stats := []MovieStats{
		{MovieID: 30, Count: 4, Mean: 4},
		{MovieID: 10, Count: 4, Mean: 4},
		{MovieID: 20, Count: 4, Mean: 4},
	}
	if err := p.Restore(stats, PopularityParams{MinVotes: 1, GlobalMean: 3}); err != nil {
		t.Fatal(err)
	}

	top, _ := p.TopN(3, nil)
	for i, id := range []int{10, 20, 30} {
		if top[i].MovieID != id {
			t.Errorf("tie rank %d = %d, want %d", i, top[i].MovieID, id)
		}
	}
}

func TestPopularityErrors(t *testing.T) {
	p := NewPopularity(PopularityConfig{})

	if err := p.Train(context.Background(), nil); !errors.Is(err, ErrNoRatings) {
		t.Errorf("Train(nil) error = %v, want ErrNoRatings", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Train(ctx, toyRatings()); !errors.Is(err, context.Canceled) {
		t.Errorf("Train(canceled) error = %v, want context.Canceled", err)
	}

	if err := p.Restore([]MovieStats{{MovieID: 1, Count: 1, Mean: 3}}, PopularityParams{GlobalMean: math.NaN()}); err == nil {
		t.Error("Restore() with NaN C should fail")
	}
	if err := p.Restore([]MovieStats{{MovieID: 1, Count: 0, Mean: 3}}, PopularityParams{GlobalMean: 3}); err == nil {
		t.Error("Restore() with a zero vote count should fail")
	}
	if err := p.Restore(nil, PopularityParams{GlobalMean: 3}); !errors.Is(err, ErrNoRatings) {
		t.Errorf("Restore(nil) error = %v, want ErrNoRatings", err)
	}
}

func TestPopularityRestoreRecomputesMinVotes(t *testing.T) {
	trained := NewPopularity(PopularityConfig{VoteQuantile: 0.9})
	if err := trained.Train(context.Background(), toyRatings()); err != nil {
		t.Fatal(err)
	}

	// Counts are 1, 2, 3: q=0.5 gives m=2 whatever m the saved params carry.
	restored := NewPopularity(PopularityConfig{VoteQuantile: 0.5})
	if err := restored.Restore(trained.Stats(), trained.Params()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	params := restored.Params()
	if !approx(params.MinVotes, 2) {
		t.Errorf("m = %v, want 2", params.MinVotes)
	}
	if !approx(params.GlobalMean, trained.Params().GlobalMean) {
		t.Errorf("C = %v, want %v", params.GlobalMean, trained.Params().GlobalMean)
	}

	s, _ := restored.Lookup(1)
	if want := WeightedRating(3, 4, params); !approx(s.WeightedRating, want) {
		t.Errorf("WR(movie 1) = %v, want %v", s.WeightedRating, want)
	}
}

func TestQuantileLinear(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"empty", nil, 0.9, 0},
		{"single", []float64{7}, 0.9, 7},
		{"interpolates", []float64{1, 2, 3, 4}, 0.9, 3.7},
		{"ten values", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
		{"max", []float64{1, 5, 9}, 1, 9},
		{"median", []float64{1, 5, 9}, 0.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantileLinear(tt.sorted, tt.q); !approx(got, tt.want) {
				t.Errorf("quantileLinear() = %v, want %v", got, tt.want)
			}
		})
	}
}
