// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package supervisor

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chari00001/redit-feed/internal/logging"
)

// blockingService runs until canceled and counts its starts.
type blockingService struct {
	starts atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return "blocking" }

// crashingService fails until it has crashed the given number of times.
type crashingService struct {
	crashesLeft atomic.Int32
	healthy     atomic.Bool
}

func (s *crashingService) Serve(ctx context.Context) error {
	if s.crashesLeft.Add(-1) >= 0 {
		return errors.New("boom")
	}
	s.healthy.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func (s *crashingService) String() string { return "crashing" }

func testTree(t *testing.T) *Tree {
	t.Helper()
	slogger := logging.NewSlogLogger(logging.NewTestLogger(io.Discard))
	return NewTree(slogger, TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
}

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree := testTree(t)
	svc := &blockingService{}
	tree.AddAPIService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tree.Serve(ctx) }()

	deadline := time.After(time.Second)
	for svc.starts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("service never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeRestartsCrashedService(t *testing.T) {
	tree := testTree(t)
	svc := &crashingService{}
	svc.crashesLeft.Store(2)
	tree.AddEngineService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for !svc.healthy.Load() {
		select {
		case <-deadline:
			t.Fatal("service was not restarted to a healthy state")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
