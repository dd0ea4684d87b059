// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/feedback"
	"github.com/tomtom215/cinerank/internal/validation"
)

// Handler serves the recommendation endpoints.
type Handler struct {
	engine *recommend.Engine
	limits recommend.LimitsConfig

	defaultTestRatio float64
}

// NewHandler creates a handler over engine, taking request limits from
// the engine configuration.
func NewHandler(engine *recommend.Engine) *Handler {
	cfg := engine.Config()
	return &Handler{
		engine:           engine,
		limits:           cfg.Limits,
		defaultTestRatio: cfg.Evaluation.TestRatio,
	}
}

// healthResponse is the payload of GET /health.
type healthResponse struct {
	Status string              `json:"status"`
	Build  recommend.BuildInfo `json:"build"`
}

// feedbackResponse echoes a stored feedback signal.
type feedbackResponse struct {
	UserID  int    `json:"user_id"`
	MovieID int    `json:"movie_id"`
	Value   int    `json:"value"`
	Label   string `json:"label"`
}

// textResponse carries a textual explanation.
type textResponse struct {
	MovieID int    `json:"movie_id"`
	UserID  *int   `json:"user_id"`
	Text    string `json:"text"`
}

// evaluationResponse renders precision and recall as null when the user
// has too little history to evaluate.
type evaluationResponse struct {
	UserID     int      `json:"user_id"`
	K          int      `json:"k"`
	TestRatio  float64  `json:"test_ratio"`
	Sufficient bool     `json:"sufficient"`
	Precision  *float64 `json:"precision"`
	Recall     *float64 `json:"recall"`
	Hits       int      `json:"hits"`
	TestSize   int      `json:"test_size"`
	History    int      `json:"history"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(healthResponse{
		Status: "ok",
		Build:  h.engine.Info(),
	})
}

// Genres handles GET /api/v1/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres := h.engine.Genres()
	NewResponseWriter(w, r).List(genres, len(genres))
}

// TopMovies handles GET /api/v1/movies/top?n=&genre=
// Without genre it returns the global top n by weighted rating.
func (h *Handler) TopMovies(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	n, err := h.parseCount(r, "n")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	genre := r.URL.Query().Get("genre")
	if err := checkGenre(genre); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var movies []recommend.ScoredMovie
	if genre == "" {
		movies, err = h.engine.GlobalTopN(n)
	} else {
		movies, err = h.engine.GenreTopN(genre, n)
	}
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	rw.List(movies, len(movies))
}

// ColdStart handles GET /api/v1/recommendations/cold-start?genres=a,b&n=
func (h *Handler) ColdStart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	n, err := h.parseCount(r, "n")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	genres := queryList(r, "genres")
	for _, g := range genres {
		if err := checkGenre(g); err != nil {
			rw.BadRequest(err.Error())
			return
		}
	}

	movies, err := h.engine.ColdStart(genres, n)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	rw.List(movies, len(movies))
}

// UserRecommendations handles GET /api/v1/users/{userID}/recommendations?n=&remove_watched=
// remove_watched defaults to true.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := pathInt(r, "userID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	n, err := h.parseCount(r, "n")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	removeWatched, err := queryBool(r, "remove_watched", true)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	movies, err := h.engine.PersonalizedTopN(r.Context(), userID, n, removeWatched)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	rw.List(movies, len(movies))
}

// UserGenreRecommendations handles GET /api/v1/users/{userID}/recommendations/genre/{genre}?n=
func (h *Handler) UserGenreRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := pathInt(r, "userID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	genre := urlParam(r, "genre")
	if err := checkGenre(genre); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	n, err := h.parseCount(r, "n")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	movies, err := h.engine.UserGenreTopN(userID, genre, n)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	rw.List(movies, len(movies))
}

// StoreFeedback handles POST /api/v1/users/{userID}/feedback
// with body {"movie_id": 1, "value": 1}.
func (h *Handler) StoreFeedback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := pathInt(r, "userID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req feedbackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	value, err := feedback.ParseValue(*req.Value)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	movieID := *req.MovieID
	if err := h.engine.StoreFeedback(r.Context(), userID, movieID, value); err != nil {
		writeEngineError(w, r, err)
		return
	}
	rw.Created(feedbackResponse{
		UserID:  userID,
		MovieID: movieID,
		Value:   int(value),
		Label:   value.String(),
	})
}

// ExplainMovie handles GET /api/v1/movies/{movieID}/explanation
func (h *Handler) ExplainMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := pathInt(r, "movieID")
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}

	attr, err := h.engine.ExplainMovie(movieID)
	if err != nil {
		if errors.Is(err, recommend.ErrExplainerUnavailable) {
			logging.Ctx(r.Context()).Warn().Err(err).Int("movie_id", movieID).Msg("Explanation requested while explainer unavailable")
		}
		writeEngineError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(attr)
}

// ExplainMovieText handles GET /api/v1/movies/{movieID}/explanation/text?user_id=
// Without user_id the cold-start text is returned.
func (h *Handler) ExplainMovieText(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	movieID, err := pathInt(r, "movieID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var userID *int
	if r.URL.Query().Get("user_id") != "" {
		id, err := queryInt(r, "user_id", 0)
		if err != nil {
			rw.BadRequest(err.Error())
			return
		}
		userID = &id
	}

	text, err := h.engine.ExplainMovieText(userID, movieID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	rw.Success(textResponse{MovieID: movieID, UserID: userID, Text: text})
}

// Evaluate handles GET /api/v1/users/{userID}/evaluation?k=&test_ratio=
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := pathInt(r, "userID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var q evaluationQuery
	if q.K, err = queryInt(r, "k", h.limits.DefaultN); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if q.TestRatio, err = queryFloat(r, "test_ratio", h.defaultTestRatio); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if q.K > h.limits.MaxN {
		rw.BadRequest("k exceeds the maximum result count")
		return
	}

	res, err := h.engine.PrecisionRecallAtK(r.Context(), userID, q.K, q.TestRatio)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	out := evaluationResponse{
		UserID:     userID,
		K:          q.K,
		TestRatio:  q.TestRatio,
		Sufficient: res.Sufficient,
		Hits:       res.Hits,
		TestSize:   res.TestSize,
		History:    res.History,
	}
	if res.Sufficient {
		out.Precision = &res.Precision
		out.Recall = &res.Recall
	}
	rw.Success(out)
}
