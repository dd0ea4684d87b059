// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/api"
	"github.com/tomtom215/cinerank/internal/config"
	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/recommend/feedback"
	"github.com/tomtom215/cinerank/internal/supervisor"
	"github.com/tomtom215/cinerank/internal/supervisor/services"
)

// feedbackGCInterval spaces BadgerDB value log collections.
const feedbackGCInterval = time.Hour

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// serve builds the engine and runs the supervisor tree until ctx ends.
func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.WithComponent("server")
	logger.Info().
		Str("movies", cfg.Data.MoviesPath).
		Str("ratings", cfg.Data.RatingsPath).
		Str("feedback_store", cfg.Feedback.Store).
		Msg("Starting Cinerank")

	components, err := initEngine(ctx, cfg, logging.Logger())
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing feedback store")
		}
	}()

	info := components.Engine.Info()
	logger.Info().
		Int("movies", info.Movies).
		Int("users", info.Users).
		Strs("from_snapshot", info.FromSnapshot).
		Str("build_duration", info.BuildDuration).
		Msg("Engine ready")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if badgerStore, ok := components.Feedback.(*feedback.BadgerStore); ok && cfg.Feedback.Path != "" {
		tree.AddDataService(services.NewMaintenanceService(
			badgerStore.CollectGarbage,
			services.MaintenanceConfig{Name: "feedback-gc", Interval: feedbackGCInterval},
			logging.WithComponent("feedback-gc"),
		))
	}

	server := newHTTPServer(cfg, components)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logger.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}

// newHTTPServer wires the API router for components.
func newHTTPServer(cfg *config.Config, components *EngineComponents) *http.Server {
	sec := cfg.Security
	mw := api.NewChiMiddlewareFromSecurity(sec.CORSOrigins, sec.RateLimitReqs, sec.RateLimitWindow, sec.RateLimitDisabled)
	router := api.NewRouter(api.NewHandler(components.Engine), mw, cfg.Server.Timeout)

	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
