// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package storage persists fitted recommendation models across restarts.
//
// Models are gob-encoded, gzip-compressed and written as versioned files
// with a SHA-256 checksum in the metadata, so a truncated or corrupted
// file is detected on load instead of poisoning the engine. Old versions
// stay on disk until pruned, which allows rollback by deleting the newest
// file.
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

	"github.com/chari00001/redit-feed/internal/recommend"
)

// ErrNoModel is returned by Load when no model file exists yet.
var ErrNoModel = errors.New("storage: no saved model")

const (
	modelName = "feed"
	fileExt   = ".gob.gz"
)

// Metadata describes one stored model file.
type Metadata struct {
	Version   int       `json:"version"`
	FittedAt  time.Time `json:"fitted_at"`
	SavedAt   time.Time `json:"saved_at"`
	PostCount int       `json:"post_count"`
	Checksum  string    `json:"checksum"`
	SizeBytes int64     `json:"size_bytes"`
}

// storedFile is the on-disk layout: metadata plus the compressed payload,
// wrapped in a single gob stream.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store is a file-backed recommend.ModelStore. Writes are serialized;
// concurrent loads are fine.
type Store struct {
	baseDir string

	mu     sync.RWMutex
	latest int
}

// NewStore creates the storage directory if needed and indexes any
// existing model files.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}

	s := &Store{baseDir: baseDir}
	versions, err := s.scanVersions()
	if err != nil {
		return nil, fmt.Errorf("scan model directory: %w", err)
	}
	if len(versions) > 0 {
		s.latest = versions[len(versions)-1]
	}
	return s, nil
}

// Save writes the model state as a new versioned file. The file is
// written to a temp name and renamed, so a crash mid-write never leaves a
// half-written current model.
func (s *Store) Save(ctx context.Context, state *recommend.ModelState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(state); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	raw := payload.Bytes()
	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedFile{
		Metadata: Metadata{
			Version:   state.Version,
			FittedAt:  state.FittedAt,
			SavedAt:   time.Now().UTC(),
			PostCount: len(state.Posts),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	final := s.modelPath(state.Version)
	tmp := final + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish model file: %w", err)
	}

	if state.Version > s.latest {
		s.latest = state.Version
	}
	return nil
}

// Load reads the latest model file, verifies its checksum and decodes the
// state. Returns ErrNoModel when nothing has been saved.
func (s *Store) Load(ctx context.Context) (*recommend.ModelState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == 0 {
		return nil, ErrNoModel
	}

	f, err := os.Open(s.modelPath(s.latest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed model: %w", err)
	}

	hash := sha256.Sum256(raw)
	if got := hex.EncodeToString(hash[:]); got != sf.Metadata.Checksum {
		return nil, fmt.Errorf("model checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, got)
	}

	var state recommend.ModelState
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &state, nil
}

// LatestVersion returns the newest stored version, or 0 when empty.
func (s *Store) LatestVersion() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Metadata returns the metadata of every stored model, oldest first.
func (s *Store) Metadata(ctx context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, err := s.scanVersions()
	if err != nil {
		return nil, err
	}

	out := make([]Metadata, 0, len(versions))
	for _, v := range versions {
		f, err := os.Open(s.modelPath(v))
		if err != nil {
			continue
		}
		var sf storedFile
		err = gob.NewDecoder(f).Decode(&sf)
		_ = f.Close()
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	return out, nil
}

// Prune removes all but the newest keep versions.
func (s *Store) Prune(ctx context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}

	versions, err := s.scanVersions()
	if err != nil {
		return err
	}
	if len(versions) <= keep {
		return nil
	}

	for _, v := range versions[:len(versions)-keep] {
		if err := os.Remove(s.modelPath(v)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("prune model v%d: %w", v, err)
		}
	}
	return nil
}

// scanVersions lists stored versions in ascending order.
func (s *Store) scanVersions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	prefix := modelName + "_v"
	var versions []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		v, err := strconv.Atoi(name[len(prefix) : len(name)-len(fileExt)])
		if err != nil || v < 1 {
			continue
		}
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions, nil
}

func (s *Store) modelPath(version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", modelName, version, fileExt))
}
