// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package explain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// maxExactFeatures bounds subset enumeration at 2^16 coalitions.
const maxExactFeatures = 16

// ErrFeatureMismatch is returned when an input has the wrong length.
var ErrFeatureMismatch = errors.New("feature vector length mismatch")

// Attributor splits a model prediction into additive per-feature
// contributions relative to a baseline:
//
//	Predict(x) = BaseValue() + sum_j Attribute(x)[j]
type Attributor interface {
	Attribute(x []float64) ([]float64, error)
	BaseValue() float64
}

// LinearAttributor computes contributions of a linear model in closed
// form: phi_j = beta_j * (x_j - mean_j).
type LinearAttributor struct {
	model *LinearModel
	means []float64
	base  float64
}

// NewLinearAttributor builds an attributor whose baseline is the mean of
// background.
func NewLinearAttributor(model *LinearModel, background [][]float64) (*LinearAttributor, error) {
	means, err := columnMeans(background, model.NumFeatures())
	if err != nil {
		return nil, err
	}
	return &LinearAttributor{
		model: model,
		means: means,
		base:  model.Predict(means),
	}, nil
}

// Attribute implements Attributor.
func (a *LinearAttributor) Attribute(x []float64) ([]float64, error) {
	if len(x) != len(a.means) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(x), len(a.means))
	}
	phi := make([]float64, len(x))
	for j := range x {
		phi[j] = a.model.Coef[j] * (x[j] - a.means[j])
	}
	return phi, nil
}

// BaseValue implements Attributor.
func (a *LinearAttributor) BaseValue() float64 {
	return a.base
}

// ExactAttributor computes interventional Shapley values for any Model
// by enumerating every feature coalition. The value of a coalition S is
// the mean prediction over background rows with the features in S
// replaced by the input.
type ExactAttributor struct {
	model      Model
	background [][]float64
	weights    []float64
	base       float64
}

// NewExactAttributor builds an attributor over background.
func NewExactAttributor(model Model, background [][]float64) (*ExactAttributor, error) {
	m := model.NumFeatures()
	if m > maxExactFeatures {
		return nil, fmt.Errorf("exact attribution supports at most %d features, got %d", maxExactFeatures, m)
	}
	if len(background) == 0 {
		return nil, fmt.Errorf("exact attribution: empty background")
	}
	for i, row := range background {
		if len(row) != m {
			return nil, fmt.Errorf("%w: background row %d", ErrFeatureMismatch, i)
		}
	}

	// weights[s] = s!(m-s-1)!/m! for a coalition of size s.
	weights := make([]float64, m)
	for s := range weights {
		weights[s] = 1 / (float64(m) * binomial(m-1, s))
	}

	a := &ExactAttributor{model: model, background: background, weights: weights}
	preds := make([]float64, len(background))
	for i, row := range background {
		preds[i] = model.Predict(row)
	}
	a.base = stat.Mean(preds, nil)
	return a, nil
}

// Attribute implements Attributor.
func (a *ExactAttributor) Attribute(x []float64) ([]float64, error) {
	m := a.model.NumFeatures()
	if len(x) != m {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(x), m)
	}

	coalitions := 1 << m
	value := make([]float64, coalitions)
	z := make([]float64, m)
	for mask := 0; mask < coalitions; mask++ {
		var sum float64
		for _, row := range a.background {
			for j := 0; j < m; j++ {
				if mask&(1<<j) != 0 {
					z[j] = x[j]
				} else {
					z[j] = row[j]
				}
			}
			sum += a.model.Predict(z)
		}
		value[mask] = sum / float64(len(a.background))
	}

	phi := make([]float64, m)
	for j := 0; j < m; j++ {
		bit := 1 << j
		for mask := 0; mask < coalitions; mask++ {
			if mask&bit != 0 {
				continue
			}
			phi[j] += a.weights[popcount(mask)] * (value[mask|bit] - value[mask])
		}
	}
	return phi, nil
}

// BaseValue implements Attributor.
func (a *ExactAttributor) BaseValue() float64 {
	return a.base
}

func columnMeans(rows [][]float64, p int) ([]float64, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("attribution: empty background")
	}
	col := make([]float64, len(rows))
	means := make([]float64, p)
	for j := 0; j < p; j++ {
		for i, row := range rows {
			if len(row) != p {
				return nil, fmt.Errorf("%w: background row %d", ErrFeatureMismatch, i)
			}
			col[i] = row[j]
		}
		means[j] = stat.Mean(col, nil)
	}
	return means, nil
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}

func popcount(x int) int {
	n := 0
	for ; x != 0; x &= x - 1 {
		n++
	}
	return n
}
