// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package dataset loads MovieLens-style movie and rating tables into an
// immutable in-memory Catalog.
//
// # Formats
//
// Two on-disk layouts are supported:
//
//   - dat: MovieLens 1M. Fields separated by "::", no header row,
//     latin-1 encoded (movies.dat, ratings.dat).
//   - csv: MovieLens latest. Comma separated with a header row,
//     RFC 4180 quoting, UTF-8 (movies.csv, ratings.csv).
//
// FormatAuto picks the layout from the file extension.
//
// # Join Semantics
//
// The catalog keeps ratings in file order after an inner join with the
// movies table: ratings that reference an unknown movie are dropped and
// counted (see Catalog.DroppedRatings). A (user, movie) pair appears at
// most once; when the source repeats a pair the rating with the latest
// timestamp wins and keeps the position of the first occurrence.
//
// A rating value of 0 is reserved to mean "unrated" in the dense
// user-movie matrix, so non-positive ratings are rejected at parse time.
//
// # Usage
//
//	catalog, err := dataset.Load(ctx, dataset.Paths{
//	    Movies:  "ml-1m/movies.dat",
//	    Ratings: "ml-1m/ratings.dat",
//	}, dataset.Options{Format: dataset.FormatAuto})
package dataset
