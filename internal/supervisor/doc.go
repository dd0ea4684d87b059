// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package supervisor provides process supervision for the Cinerank server
using suture v4.

# Overview

Long-running services are grouped into two layers:

	RootSupervisor ("cinerank")
	├── DataSupervisor ("data-layer")
	│   └── MaintenanceService "feedback-gc" (badger feedback store only)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. A failing maintenance job
never takes the HTTP server down with it.

# Usage

	tree, err := supervisor.NewSupervisorTree(slog.Default(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

Supervisor events (start, failure, backoff) are logged through the
sutureslog adapter, which bridges into the zerolog pipeline via
logging.NewSlogLogger.
*/
package supervisor
