// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package dataset

import (
	"errors"
	"strings"
)

// GenreSeparator joins genre tags in the serialized genre string.
const GenreSeparator = "|"

// Sentinel errors returned by the loader.
var (
	// ErrMalformedRecord indicates a line that could not be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidRating indicates a rating value outside the accepted range.
	ErrInvalidRating = errors.New("invalid rating value")

	// ErrDuplicateMovie indicates two movie rows sharing an ID.
	ErrDuplicateMovie = errors.New("duplicate movie id")

	// ErrUnsupportedFormat indicates an unknown file format or encoding.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Movie is one row of the movies table.
type Movie struct {
	ID     int      `json:"movie_id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// GenreString returns the genres in their pipe-delimited source form.
// Genre matching runs against this string.
func (m Movie) GenreString() string {
	return strings.Join(m.Genres, GenreSeparator)
}

// Rating is a single user rating event.
type Rating struct {
	UserID    int     `json:"user_id"`
	MovieID   int     `json:"movie_id"`
	Value     float64 `json:"rating"`
	Timestamp int64   `json:"timestamp"`
}

// Format identifies the on-disk table layout.
type Format string

// Supported formats.
const (
	FormatAuto Format = "auto"
	FormatDat  Format = "dat"
	FormatCSV  Format = "csv"
)

// Encoding identifies the character encoding of text fields.
type Encoding string

// Supported encodings. EncodingDefault resolves to latin-1 for dat files
// and UTF-8 for csv files.
const (
	EncodingDefault Encoding = ""
	EncodingLatin1  Encoding = "latin-1"
	EncodingUTF8    Encoding = "utf-8"
)

// Options controls parsing.
type Options struct {
	Format   Format
	Encoding Encoding
}

// Paths locates the two input tables.
type Paths struct {
	Movies  string
	Ratings string
}

func splitGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, GenreSeparator)
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}
