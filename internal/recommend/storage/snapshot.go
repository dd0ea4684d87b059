// Cinerank - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

// Package storage persists derived engine state between restarts.
//
// Building the user similarity matrix is the most expensive step of
// engine start-up. Each derived model is saved as a versioned snapshot
// keyed by the fingerprint of the catalog it was built from, and is
// reloaded on the next start when the fingerprint still matches.
//
// # Storage Format
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (SnapshotMetadata)
//	  - CompressedData (gzip-compressed gob-encoded state)
//
// The SHA-256 checksum of the uncompressed state is verified on load.
// Files are written to a temporary name and renamed into place.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const snapshotExt = ".gob.gz"

// ErrNoSnapshot is returned when no snapshot matches a request.
var ErrNoSnapshot = errors.New("no matching snapshot")

// SnapshotMetadata describes one stored snapshot.
type SnapshotMetadata struct {
	// Name identifies the model, e.g. "popularity" or "similarity".
	Name string `json:"name"`

	// Version increases monotonically per name.
	Version int `json:"version"`

	// Fingerprint identifies the catalog the state was derived from.
	Fingerprint string `json:"fingerprint"`

	BuiltAt time.Time `json:"built_at"`
	SavedAt time.Time `json:"saved_at"`

	RatingCount int `json:"rating_count"`
	MovieCount  int `json:"movie_count"`
	UserCount   int `json:"user_count"`

	// Checksum is the SHA-256 of the uncompressed state.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed state size.
	SizeBytes int64 `json:"size_bytes"`

	BuildDurationMS int64 `json:"build_duration_ms"`
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata       SnapshotMetadata
	CompressedData []byte
}

// Store manages snapshot files in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per name
	versions map[string]int
}

// NewStore opens a snapshot store at baseDir, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for snapshot storage
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	all, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	for name, versions := range all {
		s.versions[name] = versions[0]
	}

	return s, nil
}

// scan returns every stored version per name, newest first.
func (s *Store) scan() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseSnapshotFilename(entry.Name())
		if !ok {
			continue
		}
		out[name] = append(out[name], version)
	}
	for _, versions := range out {
		sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	}
	return out, nil
}

// parseSnapshotFilename splits "similarity_v3.gob.gz" into
// ("similarity", 3).
func parseSnapshotFilename(filename string) (name string, version int, ok bool) {
	base, found := strings.CutSuffix(filename, snapshotExt)
	if !found {
		return "", 0, false
	}
	i := strings.LastIndex(base, "_v")
	if i <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[i+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return base[:i], version, true
}

// NextVersion returns the version a new snapshot of name should use.
func (s *Store) NextVersion(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[name] + 1
}

// LatestVersion returns the newest stored version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// Save stores state as version meta.Version of meta.Name. A zero
// version is replaced by NextVersion.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, state any, meta SnapshotMetadata) (SnapshotMetadata, error) {
	if err := ctx.Err(); err != nil {
		return SnapshotMetadata{}, err
	}
	if meta.Name == "" || strings.ContainsAny(meta.Name, `/\`) {
		return SnapshotMetadata{}, fmt.Errorf("invalid snapshot name %q", meta.Name)
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(state); err != nil {
		return SnapshotMetadata{}, fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return SnapshotMetadata{}, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return SnapshotMetadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.Version <= 0 {
		meta.Version = s.versions[meta.Name] + 1
	}
	meta.Checksum = hex.EncodeToString(sum[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()

	if err := s.writeFile(s.snapshotPath(meta.Name, meta.Version), storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}); err != nil {
		return SnapshotMetadata{}, err
	}

	if meta.Version > s.versions[meta.Name] {
		s.versions[meta.Name] = meta.Version
	}
	return meta, nil
}

func (s *Store) writeFile(path string, sf storedFile) error {
	tmp, err := os.CreateTemp(s.baseDir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error already reported
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install snapshot file: %w", err)
	}
	return nil
}

// Load decodes version of name into target. Version 0 loads the latest.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*SnapshotMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		if version, ok = s.versions[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, name)
		}
	}

	sf, err := s.readFile(s.snapshotPath(name, version))
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	sum := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(sum[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &sf.Metadata, nil
}

// LoadMatching loads the latest snapshot of name when it was built from
// the catalog identified by fingerprint. Otherwise it returns
// ErrNoSnapshot and leaves target untouched.
func (s *Store) LoadMatching(ctx context.Context, name, fingerprint string, target any) (*SnapshotMetadata, error) {
	version, ok := s.LatestVersion(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, name)
	}

	s.mu.RLock()
	sf, err := s.readFile(s.snapshotPath(name, version))
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if sf.Metadata.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: %s v%d was built from catalog %s", ErrNoSnapshot, name, version, sf.Metadata.Fingerprint)
	}

	return s.Load(ctx, name, version, target)
}

func (s *Store) readFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the store directory and a validated name
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return &sf, nil
}

// List returns the metadata of the latest snapshot per name, sorted by
// name.
func (s *Store) List(ctx context.Context) ([]SnapshotMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]SnapshotMetadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := s.readFile(s.snapshotPath(name, s.versions[name]))
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	return out, nil
}

// Delete removes one version of name.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.snapshotPath(name, version)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return s.refreshLocked(name)
}

// Prune keeps the newest keep versions of name and removes the rest.
func (s *Store) Prune(ctx context.Context, name string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}

	all, err := s.scan()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	versions := all[name]
	for i := keep; i < len(versions); i++ {
		_ = os.Remove(s.snapshotPath(name, versions[i])) //nolint:errcheck // best-effort cleanup of old versions
	}
	return s.refreshLocked(name)
}

// refreshLocked recomputes the latest version of name from disk.
func (s *Store) refreshLocked(name string) error {
	all, err := s.scan()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	if versions := all[name]; len(versions) > 0 {
		s.versions[name] = versions[0]
	} else {
		delete(s.versions, name)
	}
	return nil
}

func (s *Store) snapshotPath(name string, version int) string {
	return filepath.Join(s.baseDir, name+"_v"+strconv.Itoa(version)+snapshotExt)
}
