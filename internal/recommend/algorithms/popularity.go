// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/cinerank/internal/dataset"
)

// DefaultVoteQuantile is the vote-count quantile used for the minimum
// vote threshold m.
const DefaultVoteQuantile = 0.9

// MovieStats holds the per-movie aggregates behind the weighted rating.
type MovieStats struct {
	MovieID        int     `json:"movie_id"`
	Count          int     `json:"v"`
	Mean           float64 `json:"R"`
	WeightedRating float64 `json:"weighted_rating"`
}

// PopularityParams are the two global constants of the weighted rating.
type PopularityParams struct {
	// MinVotes is m, the vote count at which a movie's own mean and the
	// global mean are weighted equally.
	MinVotes float64 `json:"m"`

	// GlobalMean is C, the mean of every rating value.
	GlobalMean float64 `json:"C"`
}

// WeightedRating shrinks a movie's mean rating R, backed by v votes,
// toward the global mean:
//
//	WR = v/(v+m)*R + m/(v+m)*C
func WeightedRating(v, r float64, p PopularityParams) float64 {
	denom := v + p.MinVotes
	if denom == 0 {
		return p.GlobalMean
	}
	return (v/denom)*r + (p.MinVotes/denom)*p.GlobalMean
}

// PopularityConfig contains configuration for the popularity scorer.
type PopularityConfig struct {
	// VoteQuantile selects m from the distribution of per-movie vote
	// counts. Must lie in (0, 1].
	VoteQuantile float64
}

// Popularity ranks movies by Bayesian-shrunk weighted rating.
// Stats are kept ascending by movie ID so ties rank deterministically.
type Popularity struct {
	BaseAlgorithm
	config PopularityConfig

	stats  []MovieStats
	index  map[int]int
	params PopularityParams
}

// NewPopularity creates a new popularity scorer.
func NewPopularity(cfg PopularityConfig) *Popularity {
	if cfg.VoteQuantile <= 0 || cfg.VoteQuantile > 1 {
		cfg.VoteQuantile = DefaultVoteQuantile
	}

	return &Popularity{
		BaseAlgorithm: NewBaseAlgorithm("popularity"),
		config:        cfg,
		index:         make(map[int]int),
	}
}

// Train aggregates the ratings table into per-movie stats and derives
// m and C from it.
func (p *Popularity) Train(ctx context.Context, ratings []dataset.Rating) error {
	if len(ratings) == 0 {
		return ErrNoRatings
	}
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	type agg struct {
		count int
		sum   float64
	}
	byMovie := make(map[int]*agg)
	values := make([]float64, len(ratings))
	for i, r := range ratings {
		values[i] = r.Value
		a, ok := byMovie[r.MovieID]
		if !ok {
			a = &agg{}
			byMovie[r.MovieID] = a
		}
		a.count++
		a.sum += r.Value
	}

	stats := make([]MovieStats, 0, len(byMovie))
	counts := make([]float64, 0, len(byMovie))
	for id, a := range byMovie {
		stats = append(stats, MovieStats{
			MovieID: id,
			Count:   a.count,
			Mean:    a.sum / float64(a.count),
		})
		counts = append(counts, float64(a.count))
	}

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	sort.Float64s(counts)
	params := PopularityParams{
		MinVotes:   quantileLinear(counts, p.config.VoteQuantile),
		GlobalMean: stat.Mean(values, nil),
	}

	p.acquireTrainLock()
	defer p.releaseTrainLock()
	p.apply(stats, params)
	return nil
}

// Restore installs previously computed stats and the global mean C
// from params. m is recomputed from the restored vote counts with the
// configured quantile, and every weighted rating from Count, Mean, m
// and C.
func (p *Popularity) Restore(stats []MovieStats, params PopularityParams) error {
	if len(stats) == 0 {
		return ErrNoRatings
	}
	if math.IsNaN(params.GlobalMean) || math.IsInf(params.GlobalMean, 0) {
		return fmt.Errorf("invalid popularity params: C=%v", params.GlobalMean)
	}

	cp := make([]MovieStats, len(stats))
	copy(cp, stats)

	counts := make([]float64, len(cp))
	for i, s := range cp {
		if s.Count <= 0 {
			return fmt.Errorf("invalid popularity stats: movie %d has %d votes", s.MovieID, s.Count)
		}
		counts[i] = float64(s.Count)
	}
	sort.Float64s(counts)
	params.MinVotes = quantileLinear(counts, p.config.VoteQuantile)

	p.acquireTrainLock()
	defer p.releaseTrainLock()
	p.apply(cp, params)
	return nil
}

// apply must be called with the training lock held. It takes ownership
// of stats.
func (p *Popularity) apply(stats []MovieStats, params PopularityParams) {
	sort.Slice(stats, func(i, j int) bool { return stats[i].MovieID < stats[j].MovieID })

	index := make(map[int]int, len(stats))
	for i := range stats {
		stats[i].WeightedRating = WeightedRating(float64(stats[i].Count), stats[i].Mean, params)
		index[stats[i].MovieID] = i
	}

	p.stats = stats
	p.index = index
	p.params = params
	p.markTrained()
}

// Params returns m and C.
func (p *Popularity) Params() PopularityParams {
	p.acquirePredictLock()
	defer p.releasePredictLock()
	return p.params
}

// Stats returns a copy of every movie's stats, ascending by movie ID.
func (p *Popularity) Stats() []MovieStats {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	out := make([]MovieStats, len(p.stats))
	copy(out, p.stats)
	return out
}

// Lookup returns the stats of one movie. Movies without ratings are
// not found.
func (p *Popularity) Lookup(movieID int) (MovieStats, bool) {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	i, ok := p.index[movieID]
	if !ok {
		return MovieStats{}, false
	}
	return p.stats[i], true
}

// TopN returns up to n rated movies accepted by keep, ordered by
// weighted rating descending. A nil keep accepts every movie. Ties keep
// ascending movie ID order.
func (p *Popularity) TopN(n int, keep func(movieID int) bool) ([]MovieStats, error) {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	if !p.trained {
		return nil, ErrNotTrained
	}
	if n <= 0 {
		return []MovieStats{}, nil
	}

	candidates := make([]MovieStats, 0, len(p.stats))
	for _, s := range p.stats {
		if keep == nil || keep(s.MovieID) {
			candidates = append(candidates, s)
		}
	}

	sortStableDesc(candidates, func(s MovieStats) float64 { return s.WeightedRating })
	return head(candidates, n), nil
}

// quantileLinear returns the q-quantile of sorted using linear
// interpolation between closest ranks: h = (n-1)q, then
// x[floor(h)] + (h-floor(h)) * (x[floor(h)+1] - x[floor(h)]).
func quantileLinear(sorted []float64, q float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n == 1:
		return sorted[0]
	}

	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
