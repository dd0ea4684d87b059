// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/feedback"
)

// errorStatus maps an engine error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrUnknownUser):
		return http.StatusNotFound, ErrCodeUnknownUser
	case errors.Is(err, recommend.ErrUnknownMovie):
		return http.StatusNotFound, ErrCodeUnknownMovie
	case errors.Is(err, recommend.ErrInvalidArgument), errors.Is(err, feedback.ErrInvalidValue):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, recommend.ErrExplainerUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// writeEngineError renders err with the status errorStatus assigns.
// Only unexpected failures are logged; their message is not exposed.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Engine request failed")
		message = "internal error"
	}
	NewResponseWriter(w, r).Error(status, code, message)
}
