// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package algorithms

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tomtom215/cinerank/internal/metrics"
)

// Default user-based CF settings.
const (
	DefaultNeighbors         = 5
	DefaultNeighborCacheSize = 4096
)

// UserCFConfig contains configuration for user-based collaborative
// filtering.
type UserCFConfig struct {
	// Neighbors is the number of most similar users whose ratings are
	// summed.
	Neighbors int

	// CacheSize bounds the per-user neighbor list cache.
	CacheSize int
}

// Scored is a movie and its personalized score.
type Scored struct {
	MovieID int     `json:"movie_id"`
	Score   float64 `json:"score"`
}

// UserBasedCF implements user-based collaborative filtering over a
// trained Similarity.
//
// For a target user u and movie column j:
//
//	score(u, j) = sum_{v in N(u)} sim(u, v) * X[v, j] + bias(j)
//
// where N(u) holds the k most similar users and X is the zero-filled
// rating matrix.
type UserBasedCF struct {
	sim    *Similarity
	config UserCFConfig

	mu           sync.Mutex
	cache        *lru.Cache[int, []Neighbor]
	cacheVersion int
}

// NewUserBasedCF creates a user-based CF scorer backed by sim.
func NewUserBasedCF(sim *Similarity, cfg UserCFConfig) (*UserBasedCF, error) {
	if sim == nil {
		return nil, fmt.Errorf("user cf: nil similarity")
	}
	if cfg.Neighbors <= 0 {
		cfg.Neighbors = DefaultNeighbors
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultNeighborCacheSize
	}

	cache, err := lru.New[int, []Neighbor](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create neighbor cache: %w", err)
	}

	return &UserBasedCF{
		sim:          sim,
		config:       cfg,
		cache:        cache,
		cacheVersion: sim.Version(),
	}, nil
}

// Name returns the algorithm identifier.
func (u *UserBasedCF) Name() string {
	return "usercf"
}

// Neighbors returns the configured number of nearest users, served from
// the cache when possible. The cache is purged whenever the underlying
// similarity is retrained.
func (u *UserBasedCF) Neighbors(userID int) ([]Neighbor, error) {
	u.mu.Lock()
	if v := u.sim.Version(); v != u.cacheVersion {
		u.cache.Purge()
		u.cacheVersion = v
	}
	u.mu.Unlock()

	if cached, ok := u.cache.Get(userID); ok {
		metrics.RecordNeighborCache(true)
		return cached, nil
	}
	metrics.RecordNeighborCache(false)

	neighbors, err := u.sim.Neighbors(userID, u.config.Neighbors)
	if err != nil {
		return nil, err
	}
	u.cache.Add(userID, neighbors)
	return neighbors, nil
}

// Recommend scores every movie column for userID and returns the top n.
//
// bias is added to the score of each movie that is a matrix column;
// entries for other movies are ignored. When removeWatched is set,
// movies the user rated are dropped. Ties keep ascending movie ID order.
func (u *UserBasedCF) Recommend(userID, n int, removeWatched bool, bias map[int]float64) ([]Scored, error) {
	neighbors, err := u.Neighbors(userID)
	if err != nil {
		return nil, err
	}

	s := u.sim
	s.acquirePredictLock()
	defer s.releasePredictLock()

	idx, ok := s.userIndex[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}
	if n <= 0 {
		return []Scored{}, nil
	}

	scores := s.scoreColumns(neighbors)
	for movieID, b := range bias {
		if j, ok := s.movieIndex[movieID]; ok {
			scores[j] += b
		}
	}

	row := s.ratings.RawRowView(idx)
	candidates := make([]Scored, 0, len(s.movies))
	for j, movieID := range s.movies {
		if removeWatched && row[j] > 0 {
			continue
		}
		candidates = append(candidates, Scored{MovieID: movieID, Score: scores[j]})
	}

	sortStableDesc(candidates, func(c Scored) float64 { return c.Score })
	return head(candidates, n), nil
}
