// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/cinerank/internal/logging"
)

// FormatFromPath resolves FormatAuto from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dat":
		return FormatDat, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format of %s", ErrUnsupportedFormat, path)
	}
}

// Load reads both tables from disk and builds a Catalog.
func Load(ctx context.Context, paths Paths, opts Options) (*Catalog, error) {
	start := time.Now()
	logger := logging.Ctx(ctx).With().Str("component", "dataset").Logger()

	movies, err := loadTable(ctx, paths.Movies, opts, ParseMovies)
	if err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}
	ratings, err := loadTable(ctx, paths.Ratings, opts, ParseRatings)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	catalog, err := NewCatalog(movies, ratings)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	if catalog.DroppedRatings() > 0 {
		logger.Warn().
			Int("dropped", catalog.DroppedRatings()).
			Msg("Ratings reference movies missing from the movies table")
	}
	logger.Info().
		Int("movies", len(catalog.Movies())).
		Int("ratings", len(catalog.Ratings())).
		Int("users", len(catalog.userRatings)).
		Dur("duration", time.Since(start)).
		Msg("Dataset loaded")

	return catalog, nil
}

func loadTable[T any](ctx context.Context, path string, opts Options, parse func(io.Reader, Options) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Format == "" || opts.Format == FormatAuto {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		opts.Format = f
	}

	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	rows, err := parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}
