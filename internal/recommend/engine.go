// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/dataset"
	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/metrics"
	"github.com/tomtom215/cinerank/internal/recommend/algorithms"
	"github.com/tomtom215/cinerank/internal/recommend/evaluate"
	"github.com/tomtom215/cinerank/internal/recommend/explain"
	"github.com/tomtom215/cinerank/internal/recommend/feedback"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

// Engine answers every recommendation query over one catalog.
//
// Everything except feedback is derived once in NewEngine and read-only
// afterwards. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog   *dataset.Catalog
	feedback  feedback.Store
	snapshots *storage.Store

	popularity *algorithms.Popularity
	similarity *algorithms.Similarity
	usercf     *algorithms.UserBasedCF
	genres     *algorithms.GenreFilter
	explainer  *explain.Explainer
	narrator   *explain.Narrator
	evaluator  *evaluate.Evaluator

	info BuildInfo
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithSnapshotStore persists derived state to store and reuses it on the
// next start when the catalog is unchanged.
func WithSnapshotStore(store *storage.Store) Option {
	return func(e *Engine) {
		e.snapshots = store
	}
}

// NewEngine derives every model from catalog. A nil cfg uses
// DefaultConfig and a nil store keeps feedback in memory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(ctx context.Context, cfg *Config, catalog *dataset.Catalog, store feedback.Store, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil {
		return nil, errors.New("nil catalog")
	}
	if store == nil {
		store = feedback.NewMemoryStore()
	}

	e := &Engine{
		config:     cfg.Clone(),
		logger:     logger.With().Str("component", "recommend").Logger(),
		catalog:    catalog,
		feedback:   store,
		popularity: algorithms.NewPopularity(algorithms.PopularityConfig{VoteQuantile: cfg.VoteQuantile}),
		similarity: algorithms.NewSimilarity(),
		genres:     algorithms.NewGenreFilter(catalog.Movies()),
		narrator:   explain.NewNarrator(catalog, cfg.ProfileGenres),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.build(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) build(ctx context.Context) error {
	start := time.Now()
	fingerprint := e.catalog.Fingerprint()
	ratings := e.catalog.Ratings()
	users := e.catalog.Users()

	e.info = BuildInfo{
		Fingerprint: fingerprint,
		Movies:      len(e.catalog.Movies()),
		Ratings:     len(ratings),
		Users:       len(users),
	}

	e.logger.Info().
		Str("fingerprint", shortFingerprint(fingerprint)).
		Int("movies", e.info.Movies).
		Int("ratings", e.info.Ratings).
		Int("users", e.info.Users).
		Msg("Building recommendation models")

	if err := e.buildPopularity(ctx, fingerprint, ratings); err != nil {
		return err
	}
	if err := e.buildSimilarity(ctx, fingerprint, ratings); err != nil {
		return err
	}

	usercf, err := algorithms.NewUserBasedCF(e.similarity, algorithms.UserCFConfig{
		Neighbors: e.config.Neighbors,
		CacheSize: e.config.NeighborCacheSize,
	})
	if err != nil {
		return err
	}
	e.usercf = usercf

	stageStart := time.Now()
	e.explainer, err = explain.New(e.popularity.Stats(), e.config.Explainer)
	if err != nil {
		return fmt.Errorf("build explainer: %w", err)
	}
	if fitErr := e.explainer.Err(); fitErr != nil {
		e.info.ExplainerError = fitErr.Error()
		e.logger.Warn().Err(fitErr).Msg("Explainer unavailable")
	}
	metrics.RecordBuildStage("explainer", time.Since(stageStart))

	e.evaluator = evaluate.New(evaluate.RecommenderFunc(e.recommendIDs), e.catalog, evaluate.Config{
		MinHistory: e.config.Evaluation.MinHistory,
		Seed:       e.config.Evaluation.Seed,
		Workers:    e.config.Evaluation.Workers,
	})

	params := e.popularity.Params()
	e.info.MinVotes = params.MinVotes
	e.info.GlobalMean = params.GlobalMean
	e.info.BuiltAt = time.Now()
	e.info.BuildDuration = time.Since(start).String()
	metrics.SetCatalogSize(e.info.Movies, e.info.Ratings, e.info.Users)

	e.logger.Info().
		Float64("m", params.MinVotes).
		Float64("C", params.GlobalMean).
		Strs("from_snapshot", e.info.FromSnapshot).
		Dur("duration", time.Since(start)).
		Msg("Recommendation models ready")
	return nil
}

func (e *Engine) buildPopularity(ctx context.Context, fingerprint string, ratings []dataset.Rating) error {
	start := time.Now()
	defer func() { metrics.RecordBuildStage("popularity", time.Since(start)) }()

	var state storage.PopularityState
	if e.loadSnapshot(ctx, storage.PopularitySnapshot, fingerprint, &state) {
		err := e.popularity.Restore(state.Stats, state.Params)
		if err == nil {
			e.info.FromSnapshot = append(e.info.FromSnapshot, storage.PopularitySnapshot)
			return nil
		}
		e.logger.Warn().Err(err).Msg("Discarding popularity snapshot")
	}

	if err := e.popularity.Train(ctx, ratings); err != nil {
		return fmt.Errorf("build popularity: %w", err)
	}
	e.saveSnapshot(ctx, storage.PopularitySnapshot, fingerprint, time.Since(start), storage.PopularityState{
		Stats:  e.popularity.Stats(),
		Params: e.popularity.Params(),
	})
	return nil
}

func (e *Engine) buildSimilarity(ctx context.Context, fingerprint string, ratings []dataset.Rating) error {
	start := time.Now()
	defer func() { metrics.RecordBuildStage("similarity", time.Since(start)) }()

	var state storage.SimilarityState
	if e.loadSnapshot(ctx, storage.SimilaritySnapshot, fingerprint, &state) {
		err := e.similarity.Restore(ratings, state.UserIDs, state.MovieIDs, state.Similarity)
		if err == nil {
			e.info.FromSnapshot = append(e.info.FromSnapshot, storage.SimilaritySnapshot)
			return nil
		}
		e.logger.Warn().Err(err).Msg("Discarding similarity snapshot")
	}

	if err := e.similarity.Train(ctx, ratings); err != nil {
		return fmt.Errorf("build similarity: %w", err)
	}
	e.saveSnapshot(ctx, storage.SimilaritySnapshot, fingerprint, time.Since(start), storage.SimilarityState{
		UserIDs:    e.similarity.Users(),
		MovieIDs:   e.similarity.Movies(),
		Similarity: e.similarity.Data(),
	})
	return nil
}

// loadSnapshot reports whether target was filled from a snapshot built
// from the current catalog.
func (e *Engine) loadSnapshot(ctx context.Context, name, fingerprint string, target any) bool {
	if e.snapshots == nil {
		return false
	}
	meta, err := e.snapshots.LoadMatching(ctx, name, fingerprint, target)
	if errors.Is(err, storage.ErrNoSnapshot) {
		e.logger.Debug().Str("snapshot", name).Msg("No reusable snapshot")
		return false
	}
	metrics.RecordSnapshot("load", err)
	if err != nil {
		e.logger.Warn().Err(err).Str("snapshot", name).Msg("Failed to load snapshot")
		return false
	}
	e.logger.Info().
		Str("snapshot", name).
		Int("version", meta.Version).
		Time("built_at", meta.BuiltAt).
		Msg("Restored model from snapshot")
	return true
}

func (e *Engine) saveSnapshot(ctx context.Context, name, fingerprint string, took time.Duration, state any) {
	if e.snapshots == nil {
		return
	}
	meta, err := e.snapshots.Save(ctx, state, storage.SnapshotMetadata{
		Name:            name,
		Fingerprint:     fingerprint,
		BuiltAt:         time.Now(),
		RatingCount:     e.info.Ratings,
		MovieCount:      e.info.Movies,
		UserCount:       e.info.Users,
		BuildDurationMS: took.Milliseconds(),
	})
	metrics.RecordSnapshot("save", err)
	if err != nil {
		e.logger.Warn().Err(err).Str("snapshot", name).Msg("Failed to save snapshot")
		return
	}
	if err := e.snapshots.Prune(ctx, name, e.config.Snapshot.Keep); err != nil {
		e.logger.Warn().Err(err).Str("snapshot", name).Msg("Failed to prune snapshots")
	}
	e.logger.Debug().
		Str("snapshot", name).
		Int("version", meta.Version).
		Int64("size_bytes", meta.SizeBytes).
		Msg("Saved snapshot")
}

// GlobalTopN returns the n movies with the highest weighted rating.
func (e *Engine) GlobalTopN(n int) (movies []ScoredMovie, err error) {
	defer e.observe("global_top_n", time.Now(), &err)
	return e.rankByPopularity(n, nil)
}

// GenreTopN returns the n highest weighted-rating movies whose genre
// string contains genre, case-insensitively.
func (e *Engine) GenreTopN(genre string, n int) (movies []ScoredMovie, err error) {
	defer e.observe("genre_top_n", time.Now(), &err)
	return e.rankByPopularity(n, e.genres.Predicate(genre))
}

// ColdStart returns the n highest weighted-rating movies matching any
// of genres. An empty list matches every movie.
func (e *Engine) ColdStart(genres []string, n int) (movies []ScoredMovie, err error) {
	defer e.observe("cold_start", time.Now(), &err)
	return e.rankByPopularity(n, e.genres.AnyPredicate(genres))
}

func (e *Engine) rankByPopularity(n int, keep func(int) bool) ([]ScoredMovie, error) {
	if err := checkCount("n", n); err != nil {
		return nil, err
	}
	stats, err := e.popularity.TopN(n, keep)
	if err != nil {
		return nil, err
	}

	out := make([]ScoredMovie, 0, len(stats))
	for _, s := range stats {
		out = append(out, e.scoredMovie(s.MovieID, nil))
	}
	return out, nil
}

// PersonalizedTopN ranks movies for userID by the similarity-weighted
// ratings of the user's nearest neighbors plus the user's stored
// feedback. With removeWatched, movies the user rated are excluded.
func (e *Engine) PersonalizedTopN(ctx context.Context, userID, n int, removeWatched bool) (movies []ScoredMovie, err error) {
	defer e.observe("personalized_top_n", time.Now(), &err)

	scored, err := e.personalized(ctx, userID, n, removeWatched)
	if err != nil {
		return nil, err
	}

	out := make([]ScoredMovie, 0, len(scored))
	for _, s := range scored {
		score := s.Score
		out = append(out, e.scoredMovie(s.MovieID, &score))
	}
	return out, nil
}

func (e *Engine) personalized(ctx context.Context, userID, n int, removeWatched bool) ([]algorithms.Scored, error) {
	if err := checkCount("n", n); err != nil {
		return nil, err
	}

	fb, err := e.feedback.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}
	bias := make(map[int]float64, len(fb))
	for movieID, v := range fb {
		bias[movieID] = float64(v)
	}

	scored, err := e.usercf.Recommend(userID, n, removeWatched, bias)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Int("user_id", userID).
		Int("n", n).
		Bool("remove_watched", removeWatched).
		Int("feedback", len(fb)).
		Int("returned", len(scored)).
		Msg("Personalized recommendations computed")
	return scored, nil
}

// recommendIDs adapts personalized scoring to the evaluator.
func (e *Engine) recommendIDs(ctx context.Context, userID, n int, removeWatched bool) ([]int, error) {
	scored, err := e.personalized(ctx, userID, n, removeWatched)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(scored))
	for i, s := range scored {
		ids[i] = s.MovieID
	}
	return ids, nil
}

// UserGenreTopN returns the n highest weighted-rating movies of genre
// that userID has not rated. Catalog movies nobody rated rank last with
// a nil WeightedRating. An unknown user has an empty history.
func (e *Engine) UserGenreTopN(userID int, genre string, n int) (movies []ScoredMovie, err error) {
	defer e.observe("user_genre_top_n", time.Now(), &err)

	if err := checkCount("n", n); err != nil {
		return nil, err
	}

	rated := make(map[int]struct{})
	for _, id := range e.catalog.RatedMovies(userID) {
		rated[id] = struct{}{}
	}

	match := e.genres.Predicate(genre)
	candidates := make([]ScoredMovie, 0)
	for _, m := range e.catalog.Movies() {
		if _, seen := rated[m.ID]; seen || !match(m.ID) {
			continue
		}
		candidates = append(candidates, e.scoredMovie(m.ID, nil))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].WeightedRating, candidates[j].WeightedRating
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// StoreFeedback records a like (+1) or dislike (-1) of movieID by
// userID. The last write for a pair wins.
func (e *Engine) StoreFeedback(ctx context.Context, userID, movieID int, value feedback.Value) (err error) {
	defer e.observe("store_feedback", time.Now(), &err)

	if err := e.feedback.Put(ctx, userID, movieID, value); err != nil {
		return err
	}
	metrics.RecordFeedback(int(value))

	logging.Ctx(ctx).Info().
		Int("user_id", userID).
		Int("movie_id", movieID).
		Str("value", value.String()).
		Msg("Feedback stored")
	return nil
}

// ExplainMovie attributes the surrogate weighted rating of movieID to
// its vote count and mean rating.
func (e *Engine) ExplainMovie(movieID int) (attr *explain.Attribution, err error) {
	defer e.observe("explain_movie", time.Now(), &err)

	attr, err = e.explainer.Explain(movieID)
	if err != nil {
		return nil, err
	}
	if m, ok := e.catalog.Movie(movieID); ok {
		attr.Title = m.Title
	}
	return attr, nil
}

// TextualExplanation returns a one-sentence reason for recommending
// movie. A nil userID means a cold-start visitor.
func (e *Engine) TextualExplanation(userID *int, movie dataset.Movie) string {
	return e.narrator.Describe(userID, movie)
}

// ExplainMovieText resolves movieID and returns TextualExplanation.
func (e *Engine) ExplainMovieText(userID *int, movieID int) (string, error) {
	m, ok := e.catalog.Movie(movieID)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownMovie, movieID)
	}
	return e.narrator.Describe(userID, m), nil
}

// PrecisionRecallAtK evaluates personalized recommendations for userID
// against a random held-out share testRatio of the user's history.
func (e *Engine) PrecisionRecallAtK(ctx context.Context, userID, k int, testRatio float64) (res evaluate.Result, err error) {
	defer e.observe("precision_recall_at_k", time.Now(), &err)
	return e.evaluator.PrecisionRecallAtK(ctx, userID, k, testRatio)
}

// EvaluateUsers evaluates many users concurrently. A nil userIDs
// evaluates every user of the catalog.
func (e *Engine) EvaluateUsers(ctx context.Context, userIDs []int, k int, testRatio float64) (summary evaluate.Summary, err error) {
	defer e.observe("evaluate_users", time.Now(), &err)

	if userIDs == nil {
		userIDs = e.catalog.Users()
	}
	return e.evaluator.EvaluateUsers(ctx, userIDs, k, testRatio)
}

// Genres returns the distinct genre tags of the catalog, sorted.
func (e *Engine) Genres() []string {
	return e.catalog.Genres()
}

// Catalog returns the catalog the engine was built from.
func (e *Engine) Catalog() *dataset.Catalog {
	return e.catalog
}

// Info describes how the derived state was obtained.
func (e *Engine) Info() BuildInfo {
	info := e.info
	info.FromSnapshot = append([]string(nil), e.info.FromSnapshot...)
	return info
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

func (e *Engine) scoredMovie(movieID int, score *float64) ScoredMovie {
	sm := ScoredMovie{MovieID: movieID, Score: score}
	if m, ok := e.catalog.Movie(movieID); ok {
		sm.Title = m.Title
		sm.Genres = m.Genres
	}
	if s, ok := e.popularity.Lookup(movieID); ok {
		wr := s.WeightedRating
		sm.WeightedRating = &wr
		sm.Votes = s.Count
	}
	return sm
}

func (e *Engine) observe(operation string, start time.Time, err *error) {
	metrics.RecordRecommendation(operation, time.Since(start), *err)
}

func checkCount(name string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %d", ErrInvalidArgument, name, n)
	}
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
