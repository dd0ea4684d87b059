// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/config"
	"github.com/tomtom215/cinerank/internal/logging"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	moviesPath  string
	ratingsPath string
	logLevel    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Commands are rebuilt per call so
// tests get fresh flag state.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "cinerank",
		Short:         "Cinerank - movie recommendation engine",
		Long:          `Cinerank serves popularity, genre and collaborative movie recommendations with explanations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (overrides "+config.ConfigPathEnvVar+")")
	pf.StringVar(&flags.moviesPath, "movies", "", "movies table (overrides MOVIES_PATH)")
	pf.StringVar(&flags.ratingsPath, "ratings", "", "ratings table (overrides RATINGS_PATH)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(flags),
		newTopCmd(flags),
		newRecommendCmd(flags),
		newExplainCmd(flags),
		newEvaluateCmd(flags),
	)
	return root
}

// loadConfig layers the command line flags over the environment, loads
// the configuration and initializes logging from it.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	overrides := map[string]string{
		config.ConfigPathEnvVar: flags.configPath,
		"MOVIES_PATH":           flags.moviesPath,
		"RATINGS_PATH":          flags.ratingsPath,
		"LOG_LEVEL":             flags.logLevel,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	return cfg, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
