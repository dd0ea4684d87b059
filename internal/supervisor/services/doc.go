// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package services provides suture.Service wrappers for Cinerank components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve(ctx) error and names itself through fmt.Stringer.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server, turning ListenAndServe into Serve
  - Shuts down gracefully within a configurable timeout

Maintenance (MaintenanceService):
  - Runs a MaintenanceFunc on a fixed interval, optionally once at startup
  - Bounds every run with a timeout; failures are logged and retried
  - Used for BadgerDB value log garbage collection of the feedback store

# Example

	store := fb.(*feedback.BadgerStore)
	tree.AddDataService(services.NewMaintenanceService(store.CollectGarbage,
	    services.MaintenanceConfig{Name: "feedback-gc", Interval: time.Hour},
	    logging.WithComponent("feedback-gc")))
*/
package services
