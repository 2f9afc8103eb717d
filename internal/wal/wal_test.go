// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package wal

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/chari00001/redit-feed/internal/config"
	"github.com/chari00001/redit-feed/internal/logging"
	"github.com/chari00001/redit-feed/internal/models"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(&config.WALConfig{
		Dir:             t.TempDir(),
		FlushInterval:   time.Second,
		FlushBatchSize:  100,
		RetentionPeriod: time.Hour,
	}, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func appendN(t *testing.T, l *Log, n int) {
	t.Helper()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		in := models.Interaction{
			UserID:    1,
			PostID:    int64(i + 1),
			Type:      models.InteractionLike,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := l.Append(context.Background(), in); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestAppendAndReplayOrder(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 5)

	var got []int64
	err := l.Replay(context.Background(), func(in models.Interaction) error {
		got = append(got, in.PostID)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("replayed %d entries, want 5", len(got))
	}
	for i, id := range got {
		if id != int64(i+1) {
			t.Fatalf("replay order %v, want append order", got)
		}
	}
}

func TestDrainMovesEntriesOut(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 7)

	var drained []models.Interaction
	n, err := l.Drain(context.Background(), 100, func(batch []models.Interaction) error {
		drained = append(drained, batch...)
		return nil
	})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if n != 7 || len(drained) != 7 {
		t.Fatalf("drained %d entries (callback saw %d), want 7", n, len(drained))
	}

	pending, err := l.PendingCount()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != 0 {
		t.Fatalf("pending = %d after drain, want 0", pending)
	}
}

func TestDrainHonorsBatchSize(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 10)

	n, err := l.Drain(context.Background(), 4, func(batch []models.Interaction) error {
		if len(batch) != 4 {
			t.Fatalf("batch size = %d, want 4", len(batch))
		}
		if batch[0].PostID != 1 {
			t.Fatalf("first drained post = %d, want oldest", batch[0].PostID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if n != 4 {
		t.Fatalf("drained %d, want 4", n)
	}

	pending, err := l.PendingCount()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != 6 {
		t.Fatalf("pending = %d, want 6 left", pending)
	}
}

func TestDrainKeepsEntriesOnError(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 3)

	sinkErr := errors.New("store unavailable")
	_, err := l.Drain(context.Background(), 100, func([]models.Interaction) error {
		return sinkErr
	})
	if !errors.Is(err, sinkErr) {
		t.Fatalf("drain error = %v, want sink error", err)
	}

	pending, err := l.PendingCount()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != 3 {
		t.Fatalf("pending = %d after failed drain, want 3", pending)
	}
}

func TestDrainEmptyLog(t *testing.T) {
	l := newTestLog(t)

	n, err := l.Drain(context.Background(), 100, func([]models.Interaction) error {
		t.Fatal("callback must not run for an empty log")
		return nil
	})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if n != 0 {
		t.Fatalf("drained %d from empty log, want 0", n)
	}
}

func TestPendingSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.WALConfig{
		Dir:             dir,
		FlushInterval:   time.Second,
		FlushBatchSize:  100,
		RetentionPeriod: time.Hour,
	}

	l, err := Open(cfg, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	appendN(t, l, 4)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(cfg, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	pending, err := reopened.PendingCount()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != 4 {
		t.Fatalf("pending = %d after reopen, want 4", pending)
	}
}

func TestTruncate(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 5)

	if err := l.Truncate(); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	pending, err := l.PendingCount()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != 0 {
		t.Fatalf("pending = %d after truncate, want 0", pending)
	}
}

func TestClosedLogRejectsOperations(t *testing.T) {
	l := newTestLog(t)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := l.Append(context.Background(), models.Interaction{UserID: 1, PostID: 1, Type: models.InteractionView}); !errors.Is(err, ErrClosed) {
		t.Errorf("Append after close = %v, want ErrClosed", err)
	}
	if _, err := l.Drain(context.Background(), 1, func([]models.Interaction) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Drain after close = %v, want ErrClosed", err)
	}
	if err := l.Truncate(); !errors.Is(err, ErrClosed) {
		t.Errorf("Truncate after close = %v, want ErrClosed", err)
	}
	// Double close is harmless.
	if err := l.Close(); err != nil {
		t.Errorf("second close = %v, want nil", err)
	}
}
