// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package recommend

import (
	"fmt"

	"github.com/tomtom215/cinerank/internal/recommend/algorithms"
	"github.com/tomtom215/cinerank/internal/recommend/evaluate"
	"github.com/tomtom215/cinerank/internal/recommend/explain"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Neighbors is k, the number of most similar users whose ratings are
	// summed for personalized scores.
	// Default: 5.
	Neighbors int `json:"neighbors"`

	// VoteQuantile selects the minimum vote threshold m of the weighted
	// rating from the distribution of per-movie vote counts.
	// Default: 0.9.
	VoteQuantile float64 `json:"vote_quantile"`

	// ProfileGenres is the size of a user's genre preference profile used
	// in textual explanations.
	// Default: 3.
	ProfileGenres int `json:"profile_genres"`

	// NeighborCacheSize bounds the per-user neighbor list cache.
	// Default: 4096.
	NeighborCacheSize int `json:"neighbor_cache_size"`

	// Explainer selects the attribution method: "linear" or "exact".
	// Default: "linear".
	Explainer explain.Method `json:"explainer"`

	// Evaluation contains hold-out evaluation parameters.
	Evaluation EvaluationConfig `json:"evaluation"`

	// Snapshot contains derived-state persistence parameters.
	Snapshot SnapshotConfig `json:"snapshot"`

	// Limits contains request limits.
	Limits LimitsConfig `json:"limits"`
}

// EvaluationConfig contains hold-out evaluation parameters.
type EvaluationConfig struct {
	// MinHistory is the minimum number of rated movies for a user to be
	// evaluated.
	// Default: 20.
	MinHistory int `json:"min_history"`

	// TestRatio is the default share of history held out.
	// Default: 0.2.
	TestRatio float64 `json:"test_ratio"`

	// Seed seeds the evaluation shuffle.
	// Default: 42.
	Seed uint64 `json:"seed"`

	// Workers bounds batch evaluation concurrency. Zero means GOMAXPROCS.
	Workers int `json:"workers"`
}

// SnapshotConfig contains derived-state persistence parameters.
type SnapshotConfig struct {
	// Dir is the snapshot directory. Empty disables snapshots.
	Dir string `json:"dir"`

	// Keep is the number of versions retained per snapshot.
	// Default: 2.
	Keep int `json:"keep"`
}

// LimitsConfig contains request limits.
type LimitsConfig struct {
	// DefaultN is the result count used when a caller does not pass one.
	// Default: 10.
	DefaultN int `json:"default_n"`

	// MaxN caps the result count of a single request.
	// Default: 1000.
	MaxN int `json:"max_n"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Neighbors:         algorithms.DefaultNeighbors,
		VoteQuantile:      algorithms.DefaultVoteQuantile,
		ProfileGenres:     explain.DefaultProfileGenres,
		NeighborCacheSize: algorithms.DefaultNeighborCacheSize,
		Explainer:         explain.MethodLinear,
		Evaluation: EvaluationConfig{
			MinHistory: evaluate.DefaultMinHistory,
			TestRatio:  evaluate.DefaultTestRatio,
			Seed:       evaluate.DefaultSeed,
		},
		Snapshot: SnapshotConfig{
			Keep: 2,
		},
		Limits: LimitsConfig{
			DefaultN: 10,
			MaxN:     1000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Neighbors < 1 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.VoteQuantile <= 0 || c.VoteQuantile > 1 {
		return fmt.Errorf("vote_quantile must be in (0, 1], got %f", c.VoteQuantile)
	}
	if c.ProfileGenres < 1 {
		return fmt.Errorf("profile_genres must be positive, got %d", c.ProfileGenres)
	}
	if c.NeighborCacheSize < 1 {
		return fmt.Errorf("neighbor_cache_size must be positive, got %d", c.NeighborCacheSize)
	}
	if c.Explainer != explain.MethodLinear && c.Explainer != explain.MethodExact {
		return fmt.Errorf("explainer must be %q or %q, got %q", explain.MethodLinear, explain.MethodExact, c.Explainer)
	}

	if c.Evaluation.MinHistory < 1 {
		return fmt.Errorf("evaluation.min_history must be positive, got %d", c.Evaluation.MinHistory)
	}
	if c.Evaluation.TestRatio <= 0 || c.Evaluation.TestRatio >= 1 {
		return fmt.Errorf("evaluation.test_ratio must be in (0, 1), got %f", c.Evaluation.TestRatio)
	}
	if c.Evaluation.Workers < 0 {
		return fmt.Errorf("evaluation.workers must be non-negative, got %d", c.Evaluation.Workers)
	}

	if c.Snapshot.Keep < 1 {
		return fmt.Errorf("snapshot.keep must be positive, got %d", c.Snapshot.Keep)
	}

	if c.Limits.DefaultN < 0 {
		return fmt.Errorf("limits.default_n must be non-negative, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n must be >= limits.default_n, got %d < %d", c.Limits.MaxN, c.Limits.DefaultN)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	cp := *c
	return &cp
}
