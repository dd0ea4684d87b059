// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinerank/internal/dataset"
	"github.com/tomtom215/cinerank/internal/recommend/explain"
	"github.com/tomtom215/cinerank/internal/recommend/feedback"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

const unratedMovie = 31

// testCatalog has 30 rated movies with genres by id%3, one unrated
// Comedy, and five users. User 1 has 25 ratings, enough for evaluation.
func testCatalog(t *testing.T) *dataset.Catalog {
	t.Helper()

	genres := [][]string{{"Comedy"}, {"Drama", "Romance"}, {"Action", "Thriller"}}
	var movies []dataset.Movie
	for id := 1; id <= 30; id++ {
		movies = append(movies, dataset.Movie{
			ID:     id,
			Title:  fmt.Sprintf("Movie %d (1999)", id),
			Genres: genres[id%3],
		})
	}
	movies = append(movies, dataset.Movie{ID: unratedMovie, Title: "Unseen (2000)", Genres: []string{"Comedy"}})

	var ratings []dataset.Rating
	ts := int64(0)
	add := func(user, movie int, v float64) {
		ts++
		ratings = append(ratings, dataset.Rating{UserID: user, MovieID: movie, Value: v, Timestamp: ts})
	}
	for id := 1; id <= 25; id++ {
		add(1, id, float64(1+id%5))
	}
	for id := 1; id <= 10; id++ {
		add(2, id, 4)
	}
	add(2, 26, 4)
	add(2, 27, 4)
	for id := 5; id <= 15; id++ {
		add(3, id, 3)
	}
	add(3, 28, 5)
	for id := 20; id <= 30; id++ {
		add(4, id, 5)
	}
	add(5, 2, 2)

	c, err := dataset.NewCatalog(movies, ratings)
	require.NoError(t, err)
	return c
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), nil, testCatalog(t), nil, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return e
}

func scoreOf(t *testing.T, movies []ScoredMovie, movieID int) float64 {
	t.Helper()
	for _, m := range movies {
		if m.MovieID == movieID {
			require.NotNil(t, m.Score)
			return *m.Score
		}
	}
	t.Fatalf("movie %d not in results", movieID)
	return 0
}

func TestGlobalTopN(t *testing.T) {
	e := newTestEngine(t)

	for _, n := range []int{0, 1, 5, 30, 100} {
		got, err := e.GlobalTopN(n)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), n)
		for i, m := range got {
			_, ok := e.Catalog().Movie(m.MovieID)
			assert.True(t, ok, "movie %d not in catalog", m.MovieID)
			require.NotNil(t, m.WeightedRating)
			assert.Nil(t, m.Score)
			if i > 0 {
				assert.GreaterOrEqual(t, *got[i-1].WeightedRating, *m.WeightedRating)
			}
		}
	}

	all, err := e.GlobalTopN(100)
	require.NoError(t, err)
	assert.Len(t, all, 30, "unrated movies have no weighted rating")

	_, err = e.GlobalTopN(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenreTopN(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.GenreTopN("comedy", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 10)
	for _, m := range got {
		movie, _ := e.Catalog().Movie(m.MovieID)
		assert.Contains(t, strings.ToLower(movie.GenreString()), "comedy")
	}

	none, err := e.GenreTopN("Western", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestColdStart(t *testing.T) {
	e := newTestEngine(t)

	global, err := e.GlobalTopN(5)
	require.NoError(t, err)
	cold, err := e.ColdStart(nil, 5)
	require.NoError(t, err)
	assert.Equal(t, global, cold, "empty genre list matches every movie")

	mixed, err := e.ColdStart([]string{"action", "ROMANCE"}, 50)
	require.NoError(t, err)
	assert.Len(t, mixed, 20)
	for _, m := range mixed {
		movie, _ := e.Catalog().Movie(m.MovieID)
		g := strings.ToLower(movie.GenreString())
		assert.True(t, strings.Contains(g, "action") || strings.Contains(g, "romance"), g)
	}
}

func TestPersonalizedTopN(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	got, err := e.PersonalizedTopN(ctx, 1, 100, true)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for i, m := range got {
		assert.False(t, e.Catalog().HasRated(1, m.MovieID), "watched movie %d returned", m.MovieID)
		require.NotNil(t, m.Score)
		assert.NotEmpty(t, m.Title)
		if i > 0 {
			assert.GreaterOrEqual(t, *got[i-1].Score, *m.Score)
		}
	}

	withWatched, err := e.PersonalizedTopN(ctx, 1, 100, false)
	require.NoError(t, err)
	assert.Len(t, withWatched, 30, "every rated movie is a matrix column")

	limited, err := e.PersonalizedTopN(ctx, 1, 3, false)
	require.NoError(t, err)
	assert.Equal(t, withWatched[:3], limited)

	_, err = e.PersonalizedTopN(ctx, 999, 10, true)
	assert.ErrorIs(t, err, ErrUnknownUser, "a user without ratings has no similarity row")

	_, err = e.PersonalizedTopN(ctx, 1, -1, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFeedbackShiftsScore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		value feedback.Value
		delta float64
	}{
		{"like raises score", feedback.Like, 1},
		{"dislike lowers score", feedback.Dislike, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)

			before, err := e.PersonalizedTopN(ctx, 2, 100, false)
			require.NoError(t, err)
			base := scoreOf(t, before, 28)

			require.NoError(t, e.StoreFeedback(ctx, 2, 28, tt.value))
			after, err := e.PersonalizedTopN(ctx, 2, 100, false)
			require.NoError(t, err)
			assert.InDelta(t, base+tt.delta, scoreOf(t, after, 28), 1e-9)

			require.NoError(t, e.StoreFeedback(ctx, 2, 28, tt.value))
			again, err := e.PersonalizedTopN(ctx, 2, 100, false)
			require.NoError(t, err)
			assert.Equal(t, after, again, "repeated feedback is idempotent")
		})
	}
}

func TestFeedbackEdgeCases(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	err := e.StoreFeedback(ctx, 1, 1, feedback.Value(2))
	assert.ErrorIs(t, err, feedback.ErrInvalidValue)

	before, err := e.PersonalizedTopN(ctx, 1, 100, false)
	require.NoError(t, err)

	// Unknown movies and users are stored but never scored.
	require.NoError(t, e.StoreFeedback(ctx, 1, 404, feedback.Like))
	require.NoError(t, e.StoreFeedback(ctx, 999, 1, feedback.Like))
	require.NoError(t, e.StoreFeedback(ctx, 1, unratedMovie, feedback.Like))

	after, err := e.PersonalizedTopN(ctx, 1, 100, false)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUserGenreTopN(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.UserGenreTopN(2, "Comedy", 100)
	require.NoError(t, err)
	// Comedy movies are 3, 6, ..., 30 plus the unrated 31; user 2 rated 3, 6, 9 and 27.
	assert.Len(t, got, 7)
	for _, m := range got {
		assert.False(t, e.Catalog().HasRated(2, m.MovieID))
	}
	last := got[len(got)-1]
	assert.Equal(t, unratedMovie, last.MovieID)
	assert.Nil(t, last.WeightedRating, "unrated movies rank last without a weighted rating")
	for i := 1; i < len(got)-1; i++ {
		assert.GreaterOrEqual(t, *got[i-1].WeightedRating, *got[i].WeightedRating)
	}

	stranger, err := e.UserGenreTopN(999, "Comedy", 100)
	require.NoError(t, err, "an unknown user has an empty history")
	assert.Len(t, stranger, 11)

	short, err := e.UserGenreTopN(2, "Comedy", 2)
	require.NoError(t, err)
	assert.Equal(t, got[:2], short)

	_, err = e.UserGenreTopN(2, "Comedy", -5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestExplainMovie(t *testing.T) {
	e := newTestEngine(t)

	attr, err := e.ExplainMovie(1)
	require.NoError(t, err)
	assert.Equal(t, "Movie 1 (1999)", attr.Title)
	assert.Equal(t, []string{explain.FeatureVotes, explain.FeatureMean}, attr.Features)
	assert.InDelta(t, attr.Prediction, attr.BaseValue+attr.Values[0]+attr.Values[1], 1e-9)

	_, err = e.ExplainMovie(unratedMovie)
	assert.ErrorIs(t, err, ErrUnknownMovie)
	_, err = e.ExplainMovie(404)
	assert.ErrorIs(t, err, ErrUnknownMovie)
}

func TestTextualExplanation(t *testing.T) {
	e := newTestEngine(t)
	movie, ok := e.Catalog().Movie(3)
	require.True(t, ok)

	assert.Equal(t, explain.ColdStartText, e.TextualExplanation(nil, movie))

	user := 4
	text, err := e.ExplainMovieText(&user, 30)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Recommended because you often watch and rate "), text)

	stranger := 999
	assert.Equal(t, explain.FallbackText, e.TextualExplanation(&stranger, movie))

	_, err = e.ExplainMovieText(&user, 404)
	assert.ErrorIs(t, err, ErrUnknownMovie)
}

func TestPrecisionRecallAtK(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	res, err := e.PrecisionRecallAtK(ctx, 1, 10, 0.2)
	require.NoError(t, err)
	assert.True(t, res.Sufficient)
	assert.Equal(t, 5, res.TestSize)
	assert.GreaterOrEqual(t, res.Precision, 0.0)
	assert.LessOrEqual(t, res.Precision, 1.0)
	assert.GreaterOrEqual(t, res.Recall, 0.0)
	assert.LessOrEqual(t, res.Recall, 1.0)

	short, err := e.PrecisionRecallAtK(ctx, 2, 10, 0.2)
	require.NoError(t, err)
	assert.False(t, short.Sufficient, "fewer than 20 ratings")

	_, err = e.PrecisionRecallAtK(ctx, 1, 0, 0.2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	summary, err := e.EvaluateUsers(ctx, nil, 10, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 1, summary.Evaluated)
}

func TestEngineSnapshots(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := newTestEngine(t, WithSnapshotStore(store))
	assert.Empty(t, first.Info().FromSnapshot)

	second := newTestEngine(t, WithSnapshotStore(store))
	assert.ElementsMatch(t, []string{storage.PopularitySnapshot, storage.SimilaritySnapshot}, second.Info().FromSnapshot)
	assert.Equal(t, first.Info().Fingerprint, second.Info().Fingerprint)

	a, err := first.GlobalTopN(10)
	require.NoError(t, err)
	b, err := second.GlobalTopN(10)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	pa, err := first.PersonalizedTopN(ctx, 3, 10, true)
	require.NoError(t, err)
	pb, err := second.PersonalizedTopN(ctx, 3, 10, true)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)

	// A different catalog must not reuse the snapshots.
	movies := []dataset.Movie{{ID: 1, Title: "Only", Genres: []string{"Drama"}}}
	ratings := []dataset.Rating{{UserID: 1, MovieID: 1, Value: 4}, {UserID: 2, MovieID: 1, Value: 2}}
	other, err := dataset.NewCatalog(movies, ratings)
	require.NoError(t, err)
	third, err := NewEngine(ctx, nil, other, nil, zerolog.Nop(), WithSnapshotStore(store))
	require.NoError(t, err)
	assert.Empty(t, third.Info().FromSnapshot)
}

func TestEngineSnapshotFollowsVoteQuantile(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	build := func(q float64, opts ...Option) *Engine {
		t.Helper()
		cfg := DefaultConfig()
		cfg.VoteQuantile = q
		e, err := NewEngine(ctx, cfg, testCatalog(t), nil, zerolog.Nop(), opts...)
		require.NoError(t, err)
		return e
	}

	saved := build(0.9, WithSnapshotStore(store))
	require.Empty(t, saved.Info().FromSnapshot)

	fresh := build(0.5)
	restored := build(0.5, WithSnapshotStore(store))
	require.Contains(t, restored.Info().FromSnapshot, storage.PopularitySnapshot)

	assert.NotEqual(t, saved.Info().MinVotes, fresh.Info().MinVotes)
	assert.Equal(t, fresh.Info().MinVotes, restored.Info().MinVotes)
	assert.Equal(t, fresh.Info().GlobalMean, restored.Info().GlobalMean)

	a, err := fresh.GlobalTopN(30)
	require.NoError(t, err)
	b, err := restored.GlobalTopN(30)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewEngineErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewEngine(ctx, nil, nil, nil, zerolog.Nop())
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Neighbors = 0
	_, err = NewEngine(ctx, cfg, testCatalog(t), nil, zerolog.Nop())
	assert.Error(t, err)

	empty, err := dataset.NewCatalog([]dataset.Movie{{ID: 1, Title: "x"}}, nil)
	require.NoError(t, err)
	_, err = NewEngine(ctx, nil, empty, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestEngineAccessors(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, []string{"Action", "Comedy", "Drama", "Romance", "Thriller"}, e.Genres())
	info := e.Info()
	assert.Equal(t, 31, info.Movies)
	assert.Equal(t, 5, info.Users)
	assert.Greater(t, info.MinVotes, 0.0)
	assert.Empty(t, info.ExplainerError)

	cfg := e.Config()
	cfg.Neighbors = 99
	assert.Equal(t, 5, e.Config().Neighbors, "Config returns a copy")
}
