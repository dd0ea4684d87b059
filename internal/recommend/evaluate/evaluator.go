// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package evaluate measures precision@k and recall@k of the personalized
// recommender against a held-out slice of each user's history.
package evaluate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/metrics"
	"github.com/tomtom215/cinerank/internal/recommend/algorithms"
)

// Defaults.
const (
	DefaultMinHistory = 20
	DefaultTestRatio  = 0.2
	DefaultSeed       = 42
)

// Recommender returns the top n movie IDs for a user.
type Recommender interface {
	RecommendIDs(ctx context.Context, userID, n int, removeWatched bool) ([]int, error)
}

// RecommenderFunc adapts a function to Recommender.
type RecommenderFunc func(ctx context.Context, userID, n int, removeWatched bool) ([]int, error)

// RecommendIDs implements Recommender.
func (f RecommenderFunc) RecommendIDs(ctx context.Context, userID, n int, removeWatched bool) ([]int, error) {
	return f(ctx, userID, n, removeWatched)
}

// History lists the movies a user rated.
type History interface {
	RatedMovies(userID int) []int
}

// Config controls evaluation.
type Config struct {
	// MinHistory is the minimum number of rated movies a user needs to
	// be evaluated.
	MinHistory int

	// Seed seeds the shared shuffle source and the per-user sources of
	// EvaluateUsers.
	Seed uint64

	// Workers bounds EvaluateUsers concurrency. Zero means GOMAXPROCS.
	Workers int
}

// Result is the outcome for one user. When Sufficient is false the
// user had too little history and the metrics are undefined.
type Result struct {
	UserID     int     `json:"user_id"`
	Sufficient bool    `json:"sufficient"`
	Precision  float64 `json:"precision"`
	Recall     float64 `json:"recall"`
	K          int     `json:"k"`
	Hits       int     `json:"hits"`
	TestSize   int     `json:"test_size"`
	History    int     `json:"history"`
}

// Summary aggregates EvaluateUsers.
type Summary struct {
	Users         int      `json:"users"`
	Evaluated     int      `json:"evaluated"`
	MeanPrecision float64  `json:"mean_precision"`
	MeanRecall    float64  `json:"mean_recall"`
	Results       []Result `json:"results"`
}

// Evaluator runs hold-out evaluations. It is safe for concurrent use.
type Evaluator struct {
	rec     Recommender
	history History
	cfg     Config

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an Evaluator.
func New(rec Recommender, history History, cfg Config) *Evaluator {
	if cfg.MinHistory <= 0 {
		cfg.MinHistory = DefaultMinHistory
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{
		rec:     rec,
		history: history,
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(cfg.Seed, 0)),
	}
}

// PrecisionRecallAtK holds out testRatio of the user's rated movies,
// asks for k recommendations with watched movies kept, and scores the
// overlap. The shuffle draws from the evaluator's shared source, so
// repeated calls see different splits.
func (e *Evaluator) PrecisionRecallAtK(ctx context.Context, userID, k int, testRatio float64) (Result, error) {
	return e.evaluate(ctx, userID, k, testRatio, func(items []int) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	})
}

// EvaluateUsers evaluates userIDs concurrently. Each user shuffles with
// its own source seeded from (Seed, userID), so the outcome does not
// depend on scheduling. Means cover sufficient users only.
func (e *Evaluator) EvaluateUsers(ctx context.Context, userIDs []int, k int, testRatio float64) (Summary, error) {
	if err := validate(k, testRatio); err != nil {
		return Summary{}, err
	}

	results := make([]Result, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, userID := range userIDs {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(e.cfg.Seed, uint64(userID)))
			res, err := e.evaluate(gctx, userID, k, testRatio, func(items []int) {
				rng.Shuffle(len(items), func(a, b int) { items[a], items[b] = items[b], items[a] })
			})
			if err != nil {
				return fmt.Errorf("evaluate user %d: %w", userID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := Summary{Users: len(userIDs), Results: results}
	for _, r := range results {
		if !r.Sufficient {
			continue
		}
		s.Evaluated++
		s.MeanPrecision += r.Precision
		s.MeanRecall += r.Recall
	}
	if s.Evaluated > 0 {
		s.MeanPrecision /= float64(s.Evaluated)
		s.MeanRecall /= float64(s.Evaluated)
	}

	logging.Ctx(ctx).Info().
		Int("users", s.Users).
		Int("evaluated", s.Evaluated).
		Float64("precision", s.MeanPrecision).
		Float64("recall", s.MeanRecall).
		Msg("Batch evaluation completed")

	return s, nil
}

func (e *Evaluator) evaluate(ctx context.Context, userID, k int, testRatio float64, shuffle func([]int)) (Result, error) {
	if err := validate(k, testRatio); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	items := e.history.RatedMovies(userID)
	res := Result{UserID: userID, K: k, History: len(items)}
	if len(items) < e.cfg.MinHistory {
		metrics.RecordEvaluation(false, 0, 0)
		return res, nil
	}

	shuffle(items)
	split := int(float64(len(items)) * (1 - testRatio))
	test := make(map[int]struct{}, len(items)-split)
	for _, id := range items[split:] {
		test[id] = struct{}{}
	}
	if len(test) == 0 {
		return Result{}, fmt.Errorf("%w: test_ratio %v leaves no held-out movies for %d ratings",
			algorithms.ErrInvalidArgument, testRatio, len(items))
	}

	recommended, err := e.rec.RecommendIDs(ctx, userID, k, false)
	if err != nil {
		return Result{}, err
	}

	for _, id := range recommended {
		if _, ok := test[id]; ok {
			res.Hits++
		}
	}
	res.Sufficient = true
	res.TestSize = len(test)
	res.Precision = float64(res.Hits) / float64(k)
	res.Recall = float64(res.Hits) / float64(len(test))

	metrics.RecordEvaluation(true, res.Precision, res.Recall)
	return res, nil
}

func validate(k int, testRatio float64) error {
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", algorithms.ErrInvalidArgument, k)
	}
	if !(testRatio > 0 && testRatio < 1) {
		return fmt.Errorf("%w: test_ratio must be in (0, 1), got %v", algorithms.ErrInvalidArgument, testRatio)
	}
	return nil
}
