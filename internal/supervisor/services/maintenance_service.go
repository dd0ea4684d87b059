// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaintenanceFunc is one run of a periodic maintenance job.
type MaintenanceFunc func(ctx context.Context) error

// MaintenanceConfig holds configuration for a MaintenanceService.
type MaintenanceConfig struct {
	// Name identifies the service in supervisor logs.
	Name string

	// RunOnStartup runs the job once before the first tick.
	RunOnStartup bool

	// Interval between runs. Default: 1h
	Interval time.Duration

	// Timeout bounds a single run. Default: 10m
	Timeout time.Duration
}

// MaintenanceService runs a job on a fixed interval under supervision.
// Job failures are logged and retried on the next tick; they do not
// fail the service.
type MaintenanceService struct {
	run    MaintenanceFunc
	config MaintenanceConfig
	logger zerolog.Logger
}

// NewMaintenanceService creates a maintenance service for run.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(run MaintenanceFunc, cfg MaintenanceConfig, logger zerolog.Logger) *MaintenanceService {
	if cfg.Name == "" {
		cfg.Name = "maintenance"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &MaintenanceService{
		run:    run,
		config: cfg,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Maintenance service starting")

	if s.config.RunOnStartup {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Maintenance service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *MaintenanceService) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.run(runCtx); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("Maintenance run failed")
		}
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("Maintenance run complete")
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.config.Name
}
