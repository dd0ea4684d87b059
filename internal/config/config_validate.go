// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateFeedback(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

var validDataFormats = map[string]bool{
	"":     true,
	"auto": true,
	"dat":  true,
	"csv":  true,
}

var validDataEncodings = map[string]bool{
	"":        true,
	"latin-1": true,
	"utf-8":   true,
}

// validateData validates the input table settings
func (c *Config) validateData() error {
	if c.Data.MoviesPath == "" {
		return fmt.Errorf("MOVIES_PATH is required")
	}
	if c.Data.RatingsPath == "" {
		return fmt.Errorf("RATINGS_PATH is required")
	}
	if !validDataFormats[c.Data.Format] {
		return fmt.Errorf("DATA_FORMAT must be one of: auto, dat, csv")
	}
	if !validDataEncodings[c.Data.Encoding] {
		return fmt.Errorf("DATA_ENCODING must be one of: latin-1, utf-8")
	}
	return nil
}

// validateRecommend checks the settings the engine cannot default.
// Numeric engine parameters are validated again by recommend.Config.
func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.Explainer != "linear" && r.Explainer != "exact" {
		return fmt.Errorf("RECOMMEND_EXPLAINER must be one of: linear, exact")
	}
	if r.Neighbors < 1 {
		return fmt.Errorf("RECOMMEND_NEIGHBORS must be positive")
	}
	if r.DefaultN < 0 || r.MaxN < r.DefaultN {
		return fmt.Errorf("RECOMMEND_MAX_N must be >= RECOMMEND_DEFAULT_N >= 0")
	}
	if r.Snapshot.Dir != "" && r.Snapshot.Keep < 1 {
		return fmt.Errorf("SNAPSHOT_KEEP must be positive when SNAPSHOT_DIR is set")
	}
	return nil
}

// validateFeedback validates the feedback store selection
func (c *Config) validateFeedback() error {
	switch c.Feedback.Store {
	case "memory", "badger":
		return nil
	default:
		return fmt.Errorf("FEEDBACK_STORE must be one of: memory, badger")
	}
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	return c.validateRateLimits()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
