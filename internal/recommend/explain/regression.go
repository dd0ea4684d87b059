// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package explain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model is a fitted predictor over a fixed-length feature vector.
type Model interface {
	Predict(x []float64) float64
	NumFeatures() int
}

// LinearModel is y = Intercept + sum_j Coef[j] * x[j].
type LinearModel struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

// Predict implements Model.
func (m *LinearModel) Predict(x []float64) float64 {
	y := m.Intercept
	for j, c := range m.Coef {
		y += c * x[j]
	}
	return y
}

// NumFeatures implements Model.
func (m *LinearModel) NumFeatures() int {
	return len(m.Coef)
}

// FitLinear fits an ordinary least squares model with intercept. Each
// row of x is one observation. The fit uses a QR decomposition of the
// design matrix [1 | x]. A rank-deficient design returns
// ErrExplainerUnavailable.
func FitLinear(x [][]float64, y []float64) (*LinearModel, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrExplainerUnavailable, n, len(y))
	}
	p := len(x[0])
	if n < p+1 {
		return nil, fmt.Errorf("%w: %d rows cannot fit %d coefficients", ErrExplainerUnavailable, n, p+1)
	}

	design := mat.NewDense(n, p+1, nil)
	for i, row := range x {
		if len(row) != p {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
		}
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var beta mat.VecDense
	if err := beta.SolveVec(design, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExplainerUnavailable, err)
	}

	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	m := &LinearModel{Intercept: beta.AtVec(0), Coef: coef}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return nil, fmt.Errorf("%w: non-finite intercept", ErrExplainerUnavailable)
	}
	return m, nil
}
