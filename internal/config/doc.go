// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package config provides centralized configuration management for Cinerank.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier
ones:

 1. Built-in defaults (defaultConfig)
 2. YAML config file: CONFIG_PATH, or config.yaml / config.yml in the
    working directory, or /etc/cinerank/config.yaml
 3. Environment variables, mapped explicitly by envTransformFunc

Comma-separated environment values are split for slice fields such as
security.cors_origins.

# Configuration Structure

  - DataConfig: movies and ratings file locations and format
  - RecommendConfig: engine parameters, evaluation and snapshots
  - FeedbackConfig: feedback store backend
  - ServerConfig: HTTP listener and timeouts
  - SecurityConfig: rate limiting and CORS
  - LoggingConfig: zerolog level, format and caller

# Environment Variables

Data:
  - MOVIES_PATH, RATINGS_PATH: input tables (required)
  - DATA_FORMAT: auto, dat, csv (default: auto)
  - DATA_ENCODING: latin-1, utf-8 (default: by format)

Recommendation:
  - RECOMMEND_NEIGHBORS (default: 5)
  - RECOMMEND_VOTE_QUANTILE (default: 0.9)
  - RECOMMEND_PROFILE_GENRES (default: 3)
  - RECOMMEND_EXPLAINER: linear, exact (default: linear)
  - EVAL_MIN_HISTORY, EVAL_TEST_RATIO, EVAL_SEED, EVAL_WORKERS
  - SNAPSHOT_DIR, SNAPSHOT_KEEP

Feedback:
  - FEEDBACK_STORE: memory, badger (default: memory)
  - FEEDBACK_PATH: BadgerDB directory

Server and security:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Thread Safety

Config is immutable after Load and safe for concurrent reads.
*/
package config
