// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package feedback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// feedbackKeyPrefix namespaces feedback keys: feedback:{user}:{movie}.
const feedbackKeyPrefix = "feedback:"

// record is the JSON value stored per key.
type record struct {
	Value     Value     `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BadgerStore implements Store on top of BadgerDB.
// Badger transactions serialize conflicting writes.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps an open BadgerDB. The store takes ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func userPrefix(userID int) []byte {
	return []byte(feedbackKeyPrefix + strconv.Itoa(userID) + ":")
}

func feedbackKey(userID, movieID int) []byte {
	return append(userPrefix(userID), strconv.Itoa(movieID)...)
}

// Put implements Store.
func (s *BadgerStore) Put(ctx context.Context, userID, movieID int, value Value) error {
	if !value.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidValue, value)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record{Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(feedbackKey(userID, movieID), data); err != nil {
			return fmt.Errorf("set feedback: %w", err)
		}
		return nil
	})
}

// ForUser implements Store.
func (s *BadgerStore) ForUser(ctx context.Context, userID int) (map[int]Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[int]Value)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			movieID, err := strconv.Atoi(strings.TrimPrefix(string(item.Key()), string(prefix)))
			if err != nil {
				return fmt.Errorf("decode feedback key %q: %w", item.Key(), err)
			}
			err = item.Value(func(val []byte) error {
				var rec record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				out[movieID] = rec.Value
				return nil
			})
			if err != nil {
				return fmt.Errorf("decode feedback value: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user feedback: %w", err)
	}
	return out, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// gcDiscardRatio is the fraction of a value log file that must be stale
// before Badger rewrites it.
const gcDiscardRatio = 0.5

// CollectGarbage rewrites value log files until Badger reports nothing
// left to reclaim. In-memory databases have no value log and return nil.
func (s *BadgerStore) CollectGarbage(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("feedback value log gc: %w", err)
		}
	}
}
