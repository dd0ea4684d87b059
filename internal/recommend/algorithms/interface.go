// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package algorithms

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Sentinel errors shared by the scorers.
var (
	// ErrNotTrained is returned when a scorer is queried before Train.
	ErrNotTrained = errors.New("model not trained")

	// ErrNoRatings is returned when Train receives an empty ratings table.
	ErrNoRatings = errors.New("no ratings to train on")

	// ErrUnknownUser is returned for a user that has no row in the matrix.
	ErrUnknownUser = errors.New("unknown user")

	// ErrInvalidArgument is returned for out-of-range request parameters.
	ErrInvalidArgument = errors.New("invalid argument")
)

// BaseAlgorithm provides common functionality for all scorers.
type BaseAlgorithm struct {
	name    string
	trained bool
	version int
	mu      sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been trained or restored.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// markTrained updates the trained state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTrained() {
	b.trained = true
	b.version++
}

func (b *BaseAlgorithm) acquireTrainLock() {
	b.mu.Lock()
}

func (b *BaseAlgorithm) releaseTrainLock() {
	b.mu.Unlock()
}

func (b *BaseAlgorithm) acquirePredictLock() {
	b.mu.RLock()
}

func (b *BaseAlgorithm) releasePredictLock() {
	b.mu.RUnlock()
}

// sortStableDesc orders items by key descending. Items with equal keys
// keep their input order.
func sortStableDesc[T any](items []T, key func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) > key(items[j])
	})
}

// head returns the first n items, or all of them when n exceeds the length.
func head[T any](items []T, n int) []T {
	if n < len(items) {
		return items[:n]
	}
	return items
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
