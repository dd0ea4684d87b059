// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// datSeparator is the MovieLens 1M field separator.
const datSeparator = "::"

// maxLineBytes bounds a single dat line.
const maxLineBytes = 1 << 20

// ParseMovies reads a movies table. opts.Format must be FormatDat or FormatCSV.
func ParseMovies(r io.Reader, opts Options) ([]Movie, error) {
	r, err := decodeReader(r, opts)
	if err != nil {
		return nil, err
	}

	switch opts.Format {
	case FormatDat:
		return parseMoviesDat(r)
	case FormatCSV:
		return parseMoviesCSV(r)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedFormat, opts.Format)
	}
}

// ParseRatings reads a ratings table. opts.Format must be FormatDat or FormatCSV.
func ParseRatings(r io.Reader, opts Options) ([]Rating, error) {
	r, err := decodeReader(r, opts)
	if err != nil {
		return nil, err
	}

	switch opts.Format {
	case FormatDat:
		return parseRatingsDat(r)
	case FormatCSV:
		return parseRatingsCSV(r)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedFormat, opts.Format)
	}
}

// decodeReader wraps r with a latin-1 decoder when the options ask for it.
func decodeReader(r io.Reader, opts Options) (io.Reader, error) {
	enc := opts.Encoding
	if enc == EncodingDefault {
		if opts.Format == FormatDat {
			enc = EncodingLatin1
		} else {
			enc = EncodingUTF8
		}
	}

	switch enc {
	case EncodingLatin1:
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case EncodingUTF8:
		return r, nil
	default:
		return nil, fmt.Errorf("%w: encoding %q", ErrUnsupportedFormat, enc)
	}
}

// scanDat calls fn for every non-blank line split on "::".
func scanDat(r io.Reader, fields int, fn func(line int, parts []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts := strings.SplitN(text, datSeparator, fields)
		if len(parts) != fields {
			return fmt.Errorf("line %d: %w: expected %d fields, got %d", line, ErrMalformedRecord, fields, len(parts))
		}
		if err := fn(line, parts); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", line+1, err)
	}
	return nil
}

func parseMoviesDat(r io.Reader) ([]Movie, error) {
	var movies []Movie
	err := scanDat(r, 3, func(line int, parts []string) error {
		m, err := buildMovie(parts[0], parts[1], parts[2])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		movies = append(movies, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func parseRatingsDat(r io.Reader) ([]Rating, error) {
	var ratings []Rating
	err := scanDat(r, 4, func(line int, parts []string) error {
		rt, err := buildRating(parts[0], parts[1], parts[2], parts[3])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		ratings = append(ratings, rt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// csvTable reads a headered CSV file and yields rows keyed by column name.
func csvTable(r io.Reader, required []string, fn func(line int, get func(string) string) error) error {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: missing header row", ErrMalformedRecord)
		}
		return fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("%w: missing column %q", ErrMalformedRecord, name)
		}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		line, _ := cr.FieldPos(0)
		get := func(name string) string {
			return record[columns[name]]
		}
		if err := fn(line, get); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func parseMoviesCSV(r io.Reader) ([]Movie, error) {
	var movies []Movie
	err := csvTable(r, []string{"movieId", "title", "genres"}, func(_ int, get func(string) string) error {
		m, err := buildMovie(get("movieId"), get("title"), get("genres"))
		if err != nil {
			return err
		}
		movies = append(movies, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func parseRatingsCSV(r io.Reader) ([]Rating, error) {
	var ratings []Rating
	err := csvTable(r, []string{"userId", "movieId", "rating", "timestamp"}, func(_ int, get func(string) string) error {
		rt, err := buildRating(get("userId"), get("movieId"), get("rating"), get("timestamp"))
		if err != nil {
			return err
		}
		ratings = append(ratings, rt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func buildMovie(id, title, genres string) (Movie, error) {
	movieID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return Movie{}, fmt.Errorf("%w: movie id %q", ErrMalformedRecord, id)
	}
	return Movie{
		ID:     movieID,
		Title:  strings.TrimSpace(title),
		Genres: splitGenres(genres),
	}, nil
}

func buildRating(user, movie, value, ts string) (Rating, error) {
	userID, err := strconv.Atoi(strings.TrimSpace(user))
	if err != nil {
		return Rating{}, fmt.Errorf("%w: user id %q", ErrMalformedRecord, user)
	}
	movieID, err := strconv.Atoi(strings.TrimSpace(movie))
	if err != nil {
		return Rating{}, fmt.Errorf("%w: movie id %q", ErrMalformedRecord, movie)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return Rating{}, fmt.Errorf("%w: rating %q", ErrMalformedRecord, value)
	}
	if !(v > 0) {
		return Rating{}, fmt.Errorf("%w: %v", ErrInvalidRating, v)
	}
	timestamp, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return Rating{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRecord, ts)
	}
	return Rating{
		UserID:    userID,
		MovieID:   movieID,
		Value:     v,
		Timestamp: timestamp,
	}, nil
}
