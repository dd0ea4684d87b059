// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/recommend"
)

// withEngine loads configuration, builds the engine, runs fn and closes
// the feedback store afterwards.
func withEngine(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, e *recommend.Engine) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	components, err := initEngine(ctx, cfg, logging.Logger())
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing feedback store")
		}
	}()

	return fn(ctx, components.Engine)
}

func newTopCmd(flags *globalFlags) *cobra.Command {
	var (
		n      int
		genre  string
		genres []string
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the top movies by weighted rating",
		Long: `Print the top movies by weighted rating.

Examples:
  cinerank top -n 20
  cinerank top --genre comedy
  cinerank top --cold-start Action,Romance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if genre != "" && len(genres) > 0 {
				return errors.New("--genre and --cold-start are mutually exclusive")
			}
			return withEngine(cmd, flags, func(_ context.Context, e *recommend.Engine) error {
				var (
					movies []recommend.ScoredMovie
					err    error
				)
				switch {
				case genre != "":
					movies, err = e.GenreTopN(genre, n)
				case cmd.Flags().Changed("cold-start"):
					movies, err = e.ColdStart(genres, n)
				default:
					movies, err = e.GlobalTopN(n)
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), movies)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of movies")
	cmd.Flags().StringVar(&genre, "genre", "", "restrict to movies whose genres contain this text")
	cmd.Flags().StringSliceVar(&genres, "cold-start", nil, "preferred genres of a new user")
	return cmd
}

func newRecommendCmd(flags *globalFlags) *cobra.Command {
	var (
		userID      int
		n           int
		genre       string
		keepWatched bool
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print personalized recommendations for a user",
		Long: `Print personalized recommendations for a user.

Examples:
  cinerank recommend --user 1 -n 5
  cinerank recommend --user 1 --genre Drama`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, flags, func(ctx context.Context, e *recommend.Engine) error {
				var (
					movies []recommend.ScoredMovie
					err    error
				)
				if genre != "" {
					movies, err = e.UserGenreTopN(userID, genre, n)
				} else {
					movies, err = e.PersonalizedTopN(ctx, userID, n, !keepWatched)
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), movies)
			})
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "user ID")
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of movies")
	cmd.Flags().StringVar(&genre, "genre", "", "recommend unseen movies of this genre first")
	cmd.Flags().BoolVar(&keepWatched, "include-watched", false, "keep movies the user already rated")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newExplainCmd(flags *globalFlags) *cobra.Command {
	var (
		movieID int
		userID  int
		text    bool
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain a movie's weighted rating",
		Long: `Explain a movie's weighted rating by feature attribution, or print
the textual explanation shown next to a recommendation.

Examples:
  cinerank explain --movie 1
  cinerank explain --movie 1 --text --user 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, flags, func(_ context.Context, e *recommend.Engine) error {
				if !text {
					attr, err := e.ExplainMovie(movieID)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), attr)
				}

				var user *int
				if cmd.Flags().Changed("user") {
					user = &userID
				}
				out, err := e.ExplainMovieText(user, movieID)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&movieID, "movie", 0, "movie ID")
	cmd.Flags().IntVar(&userID, "user", 0, "user ID for the textual explanation")
	cmd.Flags().BoolVar(&text, "text", false, "print the textual explanation")
	_ = cmd.MarkFlagRequired("movie")
	return cmd
}

func newEvaluateCmd(flags *globalFlags) *cobra.Command {
	var (
		userIDs   []int
		all       bool
		k         int
		testRatio float64
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure precision and recall at k on held-out ratings",
		Long: `Measure precision and recall at k on held-out ratings.

A single --user prints one result; several users or --all print a summary
averaged over users with enough history.

Examples:
  cinerank evaluate --user 1 -k 10
  cinerank evaluate --all --test-ratio 0.3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && len(userIDs) == 0 {
				return errors.New("pass --user or --all")
			}
			return withEngine(cmd, flags, func(ctx context.Context, e *recommend.Engine) error {
				if !cmd.Flags().Changed("test-ratio") {
					testRatio = e.Config().Evaluation.TestRatio
				}

				if !all && len(userIDs) == 1 {
					res, err := e.PrecisionRecallAtK(ctx, userIDs[0], k, testRatio)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), res)
				}

				ids := userIDs
				if all {
					ids = e.Catalog().Users()
				}
				summary, err := e.EvaluateUsers(ctx, ids, k, testRatio)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	cmd.Flags().IntSliceVar(&userIDs, "user", nil, "user IDs to evaluate")
	cmd.Flags().BoolVar(&all, "all", false, "evaluate every user")
	cmd.Flags().IntVarP(&k, "top-k", "k", 10, "recommendation list size")
	cmd.Flags().Float64Var(&testRatio, "test-ratio", 0, "share of history held out (default from config)")
	return cmd
}
