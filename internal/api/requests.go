// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies. Feedback bodies are tiny.
const maxBodyBytes = 1 << 12

// maxGenreLength bounds genre filters taken from the URL.
const maxGenreLength = 64

// feedbackRequest is the body of POST /users/{userID}/feedback.
// Pointers tell a missing field from movie_id 0.
type feedbackRequest struct {
	MovieID *int `json:"movie_id" validate:"required"`
	Value   *int `json:"value" validate:"required,feedback"`
}

// evaluationQuery holds the query of GET /users/{userID}/evaluation.
type evaluationQuery struct {
	K         int     `json:"k" validate:"min=1"`
	TestRatio float64 `json:"test_ratio" validate:"gt=0,lt=1"`
}

// pathInt parses a chi URL parameter as an integer ID.
func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// urlParam returns a path-unescaped chi URL parameter.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, raw)
	}
	return v, nil
}

// queryList splits a comma-separated query parameter, dropping empty items.
func queryList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseCount reads n, applying the default and the [0, maxN] bounds.
func (h *Handler) parseCount(r *http.Request, name string) (int, error) {
	n, err := queryInt(r, name, h.limits.DefaultN)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > h.limits.MaxN {
		return 0, fmt.Errorf("%s must be between 0 and %d, got %d", name, h.limits.MaxN, n)
	}
	return n, nil
}

func checkGenre(genre string) error {
	if len(genre) > maxGenreLength {
		return fmt.Errorf("genre must be at most %d characters", maxGenreLength)
	}
	return nil
}
