// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package main is the entry point for the Cinerank server and CLI.

Cinerank loads a MovieLens-style catalog (movies and ratings tables in the
"::"-separated .dat layout or CSV) and serves popularity, genre and
collaborative recommendations together with explanations and hold-out
evaluation.

# Commands

	cinerank serve                      run the HTTP API under supervision
	cinerank top [-n 10] [--genre G]    global or genre top movies
	cinerank recommend --user U         personalized recommendations
	cinerank explain --movie M          attribution for a movie's weighted rating
	cinerank evaluate --user U          precision and recall at k

Every command loads the catalog; --movies and --ratings override the
configured paths. Query commands print JSON to stdout.

# Application Architecture

	RootSupervisor ("cinerank")
	├── DataSupervisor ("data-layer")
	│   └── feedback-gc (FEEDBACK_STORE=badger with a path)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Initialization order for serve:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON or console output
 3. Catalog: movies and ratings tables
 4. Feedback store: memory or BadgerDB
 5. Engine: popularity, similarity and explainer (optionally from snapshots)
 6. Supervisor tree and HTTP server

# Configuration

	MOVIES_PATH=/data/movies.dat        required
	RATINGS_PATH=/data/ratings.dat      required
	FEEDBACK_STORE=badger               memory (default) or badger
	FEEDBACK_PATH=/var/lib/cinerank/fb  badger directory; empty means in-memory
	SNAPSHOT_DIR=/var/lib/cinerank/snap reuse derived state across restarts
	HTTP_PORT=8080
	LOG_LEVEL=info LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests within HTTP_SHUTDOWN_TIMEOUT, then the feedback store
is closed.
*/
package main
