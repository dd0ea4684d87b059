// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package feedback stores explicit like/dislike signals per (user, movie).
//
// Feedback is the only mutable state of the recommendation engine. Every
// Store serializes writes, and the last write for a (user, movie) pair
// wins. No validation is applied to the IDs: feedback for a user or movie
// the catalog does not know is stored as-is and simply has no effect on
// scoring.
//
// Two implementations are provided:
//
//   - MemoryStore: process-lifetime map guarded by a single RWMutex.
//   - BadgerStore: durable BadgerDB store that survives restarts.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// ErrInvalidValue is returned for feedback values other than Like or Dislike.
var ErrInvalidValue = errors.New("feedback value must be +1 or -1")

// Value is a feedback signal added to a movie's personalized score.
type Value int8

// Feedback values.
const (
	Dislike Value = -1
	Like    Value = 1
)

// Valid reports whether v is Like or Dislike.
func (v Value) Valid() bool {
	return v == Like || v == Dislike
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return "invalid(" + strconv.Itoa(int(v)) + ")"
	}
}

// ParseValue converts an integer into a Value.
func ParseValue(n int) (Value, error) {
	v := Value(n)
	if n < -1 || n > 1 || !v.Valid() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidValue, n)
	}
	return v, nil
}

// Store persists feedback. Implementations must be safe for concurrent use.
type Store interface {
	// Put records value for (userID, movieID), overwriting any prior value.
	Put(ctx context.Context, userID, movieID int, value Value) error

	// ForUser returns a copy of every movie -> value entry for userID.
	// Unknown users yield an empty map.
	ForUser(ctx context.Context, userID int) (map[int]Value, error)

	// Close releases resources held by the store.
	Close() error
}

// StoreType selects a Store implementation.
type StoreType string

// Store types.
const (
	StoreMemory StoreType = "memory"
	StoreBadger StoreType = "badger"
)

// Open returns a Store of the given type. For StoreBadger an empty path
// opens an in-memory BadgerDB.
func Open(storeType StoreType, path string) (Store, error) {
	switch storeType {
	case StoreMemory, "":
		return NewMemoryStore(), nil
	case StoreBadger:
		opts := badger.DefaultOptions(path)
		if path == "" {
			opts = opts.WithInMemory(true)
		}
		opts.Logger = nil

		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger db for feedback: %w", err)
		}
		return NewBadgerStore(db), nil
	default:
		return nil, fmt.Errorf("unknown feedback store %q", storeType)
	}
}
