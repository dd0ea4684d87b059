// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerank/internal/config"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/evaluate"
	"github.com/tomtom215/cinerank/internal/recommend/explain"
	"github.com/tomtom215/cinerank/internal/recommend/feedback"
)

// writeDataset writes a small .dat catalog and returns the two paths.
// User 1 rates 25 movies, enough for evaluation.
func writeDataset(t *testing.T) (moviesPath, ratingsPath string) {
	t.Helper()
	dir := t.TempDir()

	genres := []string{"Comedy", "Drama|Romance", "Action|Thriller"}
	var movies strings.Builder
	for id := 1; id <= 30; id++ {
		fmt.Fprintf(&movies, "%d::Movie %d (1999)::%s\n", id, id, genres[id%3])
	}

	var ratings strings.Builder
	ts := 978300000
	add := func(user, movie, value int) {
		ts++
		fmt.Fprintf(&ratings, "%d::%d::%d::%d\n", user, movie, value, ts)
	}
	for id := 1; id <= 25; id++ {
		add(1, id, 1+id%5)
	}
	for id := 1; id <= 10; id++ {
		add(2, id, 4)
	}
	for id := 20; id <= 30; id++ {
		add(3, id, 5)
	}

	moviesPath = filepath.Join(dir, "movies.dat")
	ratingsPath = filepath.Join(dir, "ratings.dat")
	if err := os.WriteFile(moviesPath, []byte(movies.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ratingsPath, []byte(ratings.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return moviesPath, ratingsPath
}

// isolateEnv unsets every variable these tests or loadConfig may set.
// t.Setenv registers the restore; Unsetenv keeps empty values away from
// the env provider.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.ConfigPathEnvVar, "MOVIES_PATH", "RATINGS_PATH", "LOG_LEVEL",
		"SNAPSHOT_DIR", "FEEDBACK_STORE", "FEEDBACK_PATH", "HTTP_PORT", "HTTP_HOST"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("LOG_LEVEL", "error")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTopCommand(t *testing.T) {
	isolateEnv(t)
	movies, ratings := writeDataset(t)

	out, err := runCLI(t, "--movies", movies, "--ratings", ratings, "top", "-n", "3")
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	var got []recommend.ScoredMovie
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(got))
	}

	out, err = runCLI(t, "--movies", movies, "--ratings", ratings, "top", "--genre", "comedy", "-n", "100")
	if err != nil {
		t.Fatalf("top --genre: %v", err)
	}
	got = nil
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	for _, m := range got {
		if m.MovieID%3 != 0 {
			t.Errorf("movie %d is not a comedy", m.MovieID)
		}
	}

	if _, err := runCLI(t, "--movies", movies, "--ratings", ratings, "top", "--genre", "x", "--cold-start", "Drama"); err == nil {
		t.Error("expected error for --genre with --cold-start")
	}
}

func TestRecommendCommand(t *testing.T) {
	isolateEnv(t)
	movies, ratings := writeDataset(t)

	out, err := runCLI(t, "--movies", movies, "--ratings", ratings, "recommend", "--user", "2", "-n", "100")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var got []recommend.ScoredMovie
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	for _, m := range got {
		if m.MovieID <= 10 {
			t.Errorf("watched movie %d recommended", m.MovieID)
		}
	}

	_, err = runCLI(t, "--movies", movies, "--ratings", ratings, "recommend", "--user", "999")
	if err == nil || !strings.Contains(err.Error(), recommend.ErrUnknownUser.Error()) {
		t.Errorf("expected unknown user error, got %v", err)
	}

	if _, err := runCLI(t, "--movies", movies, "--ratings", ratings, "recommend"); err == nil {
		t.Error("expected error when --user is missing")
	}
}

func TestExplainCommand(t *testing.T) {
	isolateEnv(t)
	movies, ratings := writeDataset(t)

	out, err := runCLI(t, "--movies", movies, "--ratings", ratings, "explain", "--movie", "5")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	var attr explain.Attribution
	if err := json.Unmarshal([]byte(out), &attr); err != nil {
		t.Fatal(err)
	}
	if attr.MovieID != 5 || len(attr.Values) != 2 {
		t.Errorf("unexpected attribution %+v", attr)
	}

	out, err = runCLI(t, "--movies", movies, "--ratings", ratings, "explain", "--movie", "5", "--text")
	if err != nil {
		t.Fatalf("explain --text: %v", err)
	}
	if strings.TrimSpace(out) != explain.ColdStartText {
		t.Errorf("expected cold-start text, got %q", out)
	}
}

func TestEvaluateCommand(t *testing.T) {
	isolateEnv(t)
	movies, ratings := writeDataset(t)

	out, err := runCLI(t, "--movies", movies, "--ratings", ratings, "evaluate", "--user", "1", "-k", "5")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	var res evaluate.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Sufficient || res.K != 5 || res.TestSize != 5 {
		t.Errorf("unexpected result %+v", res)
	}

	out, err = runCLI(t, "--movies", movies, "--ratings", ratings, "evaluate", "--all")
	if err != nil {
		t.Fatalf("evaluate --all: %v", err)
	}
	var summary evaluate.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Users != 3 || summary.Evaluated != 1 {
		t.Errorf("expected 3 users with 1 evaluated, got %+v", summary)
	}

	if _, err := runCLI(t, "--movies", movies, "--ratings", ratings, "evaluate"); err == nil {
		t.Error("expected error without --user or --all")
	}
}

func TestMissingDataPaths(t *testing.T) {
	isolateEnv(t)
	if _, err := runCLI(t, "top"); err == nil {
		t.Error("expected configuration error without data paths")
	}
}

func TestBuildEngineConfig(t *testing.T) {
	cfg := &config.Config{
		Recommend: config.RecommendConfig{
			Neighbors:         7,
			VoteQuantile:      0.8,
			ProfileGenres:     2,
			NeighborCacheSize: 16,
			Explainer:         "exact",
			Evaluation:        config.EvaluationConfig{MinHistory: 10, TestRatio: 0.3, Seed: 9, Workers: 2},
			Snapshot:          config.SnapshotConfig{Dir: "/tmp/snap", Keep: 3},
			DefaultN:          5,
			MaxN:              50,
		},
	}

	got := buildEngineConfig(cfg)
	want := &recommend.Config{
		Neighbors:         7,
		VoteQuantile:      0.8,
		ProfileGenres:     2,
		NeighborCacheSize: 16,
		Explainer:         explain.MethodExact,
		Evaluation:        recommend.EvaluationConfig{MinHistory: 10, TestRatio: 0.3, Seed: 9, Workers: 2},
		Snapshot:          recommend.SnapshotConfig{Dir: "/tmp/snap", Keep: 3},
		Limits:            recommend.LimitsConfig{DefaultN: 5, MaxN: 50},
	}
	if *got != *want {
		t.Errorf("buildEngineConfig() = %+v, want %+v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("mapped config is invalid: %v", err)
	}
}

func TestInitEngineWithBadgerAndSnapshots(t *testing.T) {
	isolateEnv(t)
	movies, ratings := writeDataset(t)
	snapDir := t.TempDir()
	t.Setenv("MOVIES_PATH", movies)
	t.Setenv("RATINGS_PATH", ratings)
	t.Setenv("FEEDBACK_STORE", "badger")
	t.Setenv("FEEDBACK_PATH", t.TempDir())
	t.Setenv("SNAPSHOT_DIR", snapDir)

	cfg, err := loadConfig(&globalFlags{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	first, err := initEngine(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, ok := first.Feedback.(*feedback.BadgerStore); !ok {
		t.Errorf("expected badger store, got %T", first.Feedback)
	}
	if err := first.Engine.StoreFeedback(ctx, 1, 30, feedback.Like); err != nil {
		t.Fatalf("store feedback: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := initEngine(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	defer func() { _ = second.Close() }()

	if len(second.Engine.Info().FromSnapshot) == 0 {
		t.Error("expected derived state to be restored from snapshots")
	}
	stored, err := second.Feedback.ForUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stored[30] != feedback.Like {
		t.Errorf("feedback not persisted: %v", stored)
	}
}

func TestNewHTTPServer(t *testing.T) {
	isolateEnv(t)
	movies, ratings := writeDataset(t)
	t.Setenv("MOVIES_PATH", movies)
	t.Setenv("RATINGS_PATH", ratings)
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("HTTP_HOST", "127.0.0.1")

	cfg, err := loadConfig(&globalFlags{})
	if err != nil {
		t.Fatal(err)
	}
	components, err := initEngine(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = components.Close() }()

	server := newHTTPServer(cfg, components)
	if server.Addr != "127.0.0.1:9191" {
		t.Errorf("Addr = %q", server.Addr)
	}
	if server.ReadTimeout != cfg.Server.Timeout || server.WriteTimeout != cfg.Server.Timeout+5*time.Second {
		t.Errorf("unexpected timeouts %v/%v", server.ReadTimeout, server.WriteTimeout)
	}
	if server.Handler == nil {
		t.Error("handler not wired")
	}
}
