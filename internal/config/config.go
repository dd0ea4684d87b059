// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Configuration is loaded in layers (later overrides earlier):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH)
//  3. Environment variables
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Feedback  FeedbackConfig  `koanf:"feedback"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig locates the movies and ratings tables.
//
// Environment Variables:
//   - MOVIES_PATH: movies table (movies.dat or movies.csv)
//   - RATINGS_PATH: ratings table (ratings.dat or ratings.csv)
//   - DATA_FORMAT: auto, dat, csv (default: auto, chosen by extension)
//   - DATA_ENCODING: latin-1, utf-8 (default: latin-1 for dat, utf-8 for csv)
type DataConfig struct {
	MoviesPath  string `koanf:"movies_path"`
	RatingsPath string `koanf:"ratings_path"`
	Format      string `koanf:"format"`
	Encoding    string `koanf:"encoding"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// Neighbors is the number of similar users aggregated per query.
	Neighbors int `koanf:"neighbors"`

	// VoteQuantile picks the weighted-rating vote threshold m.
	VoteQuantile float64 `koanf:"vote_quantile"`

	// ProfileGenres is the size of the genre profile in textual explanations.
	ProfileGenres int `koanf:"profile_genres"`

	NeighborCacheSize int `koanf:"neighbor_cache_size"`

	// Explainer is "linear" or "exact".
	Explainer string `koanf:"explainer"`

	Evaluation EvaluationConfig `koanf:"evaluation"`
	Snapshot   SnapshotConfig   `koanf:"snapshot"`

	// DefaultN and MaxN bound the result count of API requests.
	DefaultN int `koanf:"default_n"`
	MaxN     int `koanf:"max_n"`
}

// EvaluationConfig holds hold-out evaluation settings.
type EvaluationConfig struct {
	MinHistory int     `koanf:"min_history"`
	TestRatio  float64 `koanf:"test_ratio"`
	Seed       uint64  `koanf:"seed"`
	Workers    int     `koanf:"workers"`
}

// SnapshotConfig holds derived-state persistence settings.
// An empty Dir disables snapshots.
type SnapshotConfig struct {
	Dir  string `koanf:"dir"`
	Keep int    `koanf:"keep"`
}

// FeedbackConfig selects the feedback store.
//
// Environment Variables:
//   - FEEDBACK_STORE: memory or badger (default: memory)
//   - FEEDBACK_PATH: BadgerDB directory (empty runs badger in memory)
type FeedbackConfig struct {
	Store string `koanf:"store"`
	Path  string `koanf:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds request limiting and CORS settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration with the following precedence (highest first):
//  1. Environment variables
//  2. Config file
//  3. Built-in defaults
//
// See LoadWithKoanf for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
