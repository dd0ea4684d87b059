// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package feedback

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps feedback in memory for the process lifetime.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int]map[int]Value
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int]map[int]Value)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, userID, movieID int, value Value) error {
	if !value.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidValue, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	movies, ok := s.users[userID]
	if !ok {
		movies = make(map[int]Value)
		s.users[userID] = movies
	}
	movies[movieID] = value
	return nil
}

// ForUser implements Store.
func (s *MemoryStore) ForUser(_ context.Context, userID int) (map[int]Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]Value, len(s.users[userID]))
	for movieID, v := range s.users[userID] {
		out[movieID] = v
	}
	return out, nil
}

// Len returns the number of stored (user, movie) pairs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, movies := range s.users {
		n += len(movies)
	}
	return n
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
