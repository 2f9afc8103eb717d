// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package wal is the durable write-ahead log for interaction events.
// Interactions are persisted to BadgerDB before they are acknowledged,
// so recorded events survive a crash that happens before the periodic
// flush drains them into the database.
package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/config"
	"github.com/chari00001/redit-feed/internal/metrics"
	"github.com/chari00001/redit-feed/internal/models"
)

// ErrClosed is returned for operations on a closed log.
var ErrClosed = errors.New("wal: closed")

// Key prefixes. Pending entries wait for the flusher; drained entries
// are kept with a TTL for post-incident inspection and then garbage
// collected by Badger.
const (
	prefixPending = "p:"
	prefixDrained = "d:"
)

// Log is the Badger-backed interaction write-ahead log. Entries are
// keyed by timestamp plus an in-process sequence number so iteration
// order matches append order.
type Log struct {
	db        *badger.DB
	retention time.Duration
	log       zerolog.Logger
	seq       atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the log at cfg.Dir.
func Open(cfg *config.WALConfig, log zerolog.Logger) (*Log, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	opts.SyncWrites = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open wal: %w", err)
	}

	l := &Log{
		db:        db,
		retention: cfg.RetentionPeriod,
		log:       log.With().Str("component", "wal").Logger(),
	}

	pending, err := l.PendingCount()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	metrics.WALPending.Set(float64(pending))

	l.log.Info().
		Str("dir", cfg.Dir).
		Int("pending", pending).
		Msg("WAL opened")
	return l, nil
}

// Append persists one interaction. The write is synced before Append
// returns.
func (l *Log) Append(ctx context.Context, in models.Interaction) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}

	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}

	key := l.pendingKey(in.Timestamp)
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, payload)
	})
	if err != nil {
		return fmt.Errorf("append to wal: %w", err)
	}

	metrics.WALAppends.Inc()
	metrics.WALPending.Inc()
	return nil
}

// pendingKey builds a sortable key: timestamp nanos then an in-process
// sequence number to break same-nanosecond ties.
func (l *Log) pendingKey(ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s%016x:%08x", prefixPending, uint64(ts.UnixNano()), l.seq.Add(1)))
}

// Replay calls fn for every pending interaction in append order. Used
// on startup so events recorded before a crash still reach the profile
// store. Iteration stops at the first fn error.
func (l *Log) Replay(ctx context.Context, fn func(models.Interaction) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}

	return l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var in models.Interaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &in)
			})
			if err != nil {
				return fmt.Errorf("decode wal entry: %w", err)
			}
			if err := fn(in); err != nil {
				return err
			}
		}
		return nil
	})
}

// Drain hands up to batchSize pending interactions to fn in append
// order. When fn succeeds the entries are moved to the drained keyspace
// with the retention TTL; when it fails the entries stay pending for
// the next cycle. Returns how many entries were drained.
func (l *Log) Drain(ctx context.Context, batchSize int, fn func([]models.Interaction) error) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, ErrClosed
	}

	type pendingEntry struct {
		key     []byte
		payload []byte
	}
	var entries []pendingEntry

	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(entries) < batchSize; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read wal entry: %w", err)
			}
			entries = append(entries, pendingEntry{key: item.KeyCopy(nil), payload: payload})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	batch := make([]models.Interaction, 0, len(entries))
	for _, e := range entries {
		var in models.Interaction
		if err := json.Unmarshal(e.payload, &in); err != nil {
			return 0, fmt.Errorf("decode wal entry: %w", err)
		}
		batch = append(batch, in)
	}

	if err := fn(batch); err != nil {
		metrics.WALFlushErrors.Inc()
		return 0, err
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			drained := append([]byte(prefixDrained), e.key[len(prefixPending):]...)
			entry := badger.NewEntry(drained, e.payload)
			if l.retention > 0 {
				entry = entry.WithTTL(l.retention)
			}
			if err := txn.SetEntry(entry); err != nil {
				return err
			}
			if err := txn.Delete(e.key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.WALFlushErrors.Inc()
		return 0, fmt.Errorf("mark entries drained: %w", err)
	}

	metrics.WALFlushed.Add(float64(len(entries)))
	metrics.WALPending.Sub(float64(len(entries)))
	return len(entries), nil
}

// PendingCount returns the number of entries waiting to be drained.
func (l *Log) PendingCount() (int, error) {
	count := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

// Truncate drops all entries, pending and drained. Used by tests and
// operational reset tooling.
func (l *Log) Truncate() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}

	for _, prefix := range []string{prefixPending, prefixDrained} {
		if err := l.db.DropPrefix([]byte(prefix)); err != nil {
			return fmt.Errorf("truncate %q: %w", prefix, err)
		}
	}
	metrics.WALPending.Set(0)
	return nil
}

// RunGC runs one Badger value log garbage collection cycle. Callers
// invoke it periodically; badger.ErrNoRewrite means nothing needed
// collecting and is not an error.
func (l *Log) RunGC() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}

	err := l.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return fmt.Errorf("wal gc: %w", err)
	}
	return nil
}

// Close shuts the log down. Further operations return ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
