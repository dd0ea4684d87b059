// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/config"
	"github.com/tomtom215/cinerank/internal/dataset"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/explain"
	"github.com/tomtom215/cinerank/internal/recommend/feedback"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

// EngineComponents holds the engine and the resources it owns.
type EngineComponents struct {
	Catalog  *dataset.Catalog
	Feedback feedback.Store
	Engine   *recommend.Engine
}

// Close releases the feedback store.
func (c *EngineComponents) Close() error {
	if c == nil || c.Feedback == nil {
		return nil
	}
	return c.Feedback.Close()
}

// buildEngineConfig creates the engine configuration from app config.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	rc := cfg.Recommend
	return &recommend.Config{
		Neighbors:         rc.Neighbors,
		VoteQuantile:      rc.VoteQuantile,
		ProfileGenres:     rc.ProfileGenres,
		NeighborCacheSize: rc.NeighborCacheSize,
		Explainer:         explain.Method(rc.Explainer),
		Evaluation: recommend.EvaluationConfig{
			MinHistory: rc.Evaluation.MinHistory,
			TestRatio:  rc.Evaluation.TestRatio,
			Seed:       rc.Evaluation.Seed,
			Workers:    rc.Evaluation.Workers,
		},
		Snapshot: recommend.SnapshotConfig{
			Dir:  rc.Snapshot.Dir,
			Keep: rc.Snapshot.Keep,
		},
		Limits: recommend.LimitsConfig{
			DefaultN: rc.DefaultN,
			MaxN:     rc.MaxN,
		},
	}
}

// datasetOptions translates the data section into parser options.
func datasetOptions(cfg *config.Config) dataset.Options {
	return dataset.Options{
		Format:   dataset.Format(cfg.Data.Format),
		Encoding: dataset.Encoding(cfg.Data.Encoding),
	}
}

// initEngine loads the catalog, opens the feedback store and builds the
// engine. On error every opened resource is released.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*EngineComponents, error) {
	catalog, err := dataset.Load(ctx, dataset.Paths{
		Movies:  cfg.Data.MoviesPath,
		Ratings: cfg.Data.RatingsPath,
	}, datasetOptions(cfg))
	if err != nil {
		return nil, err
	}

	store, err := feedback.Open(feedback.StoreType(cfg.Feedback.Store), cfg.Feedback.Path)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("store", cfg.Feedback.Store).
		Str("path", cfg.Feedback.Path).
		Msg("Feedback store opened")

	engineCfg := buildEngineConfig(cfg)
	var opts []recommend.Option
	if engineCfg.Snapshot.Dir != "" {
		snapshots, err := storage.NewStore(engineCfg.Snapshot.Dir)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		opts = append(opts, recommend.WithSnapshotStore(snapshots))
	}

	engine, err := recommend.NewEngine(ctx, engineCfg, catalog, store, logger, opts...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	return &EngineComponents{
		Catalog:  catalog,
		Feedback: store,
		Engine:   engine,
	}, nil
}
