// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package explain attributes a movie's weighted rating to its vote count
// and mean rating, and renders short textual explanations for
// recommendations.
//
// A linear surrogate WR ~ b0 + b1*v + b2*R is fitted once over the movie
// stats table. The same table is the reference distribution for the
// attribution baseline, so every explanation satisfies
//
//	Prediction = BaseValue + sum(Values)
package explain

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cinerank/internal/recommend/algorithms"
)

// Sentinel errors.
var (
	// ErrUnknownMovie is returned for a movie without stats.
	ErrUnknownMovie = errors.New("unknown movie")

	// ErrExplainerUnavailable is returned when the surrogate could not
	// be fitted.
	ErrExplainerUnavailable = errors.New("explainer unavailable")
)

// Method selects the attribution algorithm.
type Method string

// Attribution methods.
const (
	MethodLinear Method = "linear"
	MethodExact  Method = "exact"
)

// Feature names, in model column order.
const (
	FeatureVotes = "v"
	FeatureMean  = "R"
)

// Attribution is the explanation of one movie's surrogate prediction.
type Attribution struct {
	MovieID        int       `json:"movie_id"`
	Title          string    `json:"title,omitempty"`
	Features       []string  `json:"features"`
	Data           []float64 `json:"data"`
	Values         []float64 `json:"values"`
	BaseValue      float64   `json:"base_value"`
	Prediction     float64   `json:"prediction"`
	WeightedRating float64   `json:"weighted_rating"`
}

// Explainer explains weighted ratings through a fitted surrogate.
// It is immutable after New and safe for concurrent use.
type Explainer struct {
	stats      map[int]algorithms.MovieStats
	model      *LinearModel
	attributor Attributor
	fitErr     error
}

// New fits the surrogate over stats and builds the attributor chosen by
// method. A fit failure is not returned here: the Explainer is still
// created and Explain reports ErrExplainerUnavailable.
func New(stats []algorithms.MovieStats, method Method) (*Explainer, error) {
	if method == "" {
		method = MethodLinear
	}
	if method != MethodLinear && method != MethodExact {
		return nil, fmt.Errorf("unknown attribution method %q", method)
	}

	e := &Explainer{stats: make(map[int]algorithms.MovieStats, len(stats))}
	x := make([][]float64, len(stats))
	y := make([]float64, len(stats))
	for i, s := range stats {
		e.stats[s.MovieID] = s
		x[i] = features(s)
		y[i] = s.WeightedRating
	}

	model, err := FitLinear(x, y)
	if err != nil {
		e.fitErr = err
		return e, nil
	}
	e.model = model

	switch method {
	case MethodExact:
		e.attributor, err = NewExactAttributor(model, x)
	default:
		e.attributor, err = NewLinearAttributor(model, x)
	}
	if err != nil {
		e.fitErr = fmt.Errorf("%w: %v", ErrExplainerUnavailable, err)
		e.model = nil
	}
	return e, nil
}

// Err returns the fit error, or nil when the explainer is available.
func (e *Explainer) Err() error {
	return e.fitErr
}

// Model returns the fitted surrogate, or nil when unavailable.
func (e *Explainer) Model() *LinearModel {
	return e.model
}

// Explain attributes the surrogate prediction for one movie.
func (e *Explainer) Explain(movieID int) (*Attribution, error) {
	if e.fitErr != nil {
		return nil, e.fitErr
	}
	s, ok := e.stats[movieID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMovie, movieID)
	}

	x := features(s)
	values, err := e.attributor.Attribute(x)
	if err != nil {
		return nil, fmt.Errorf("attribute movie %d: %w", movieID, err)
	}

	return &Attribution{
		MovieID:        movieID,
		Features:       []string{FeatureVotes, FeatureMean},
		Data:           x,
		Values:         values,
		BaseValue:      e.attributor.BaseValue(),
		Prediction:     e.model.Predict(x),
		WeightedRating: s.WeightedRating,
	}, nil
}

func features(s algorithms.MovieStats) []float64 {
	return []float64{float64(s.Count), s.Mean}
}
