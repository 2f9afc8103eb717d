// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/models"
)

// InteractionLog is the slice of the write-ahead log the flusher needs.
type InteractionLog interface {
	Drain(ctx context.Context, batchSize int, fn func([]models.Interaction) error) (int, error)
	RunGC() error
}

// InteractionSink receives drained batches. Implemented by the database.
type InteractionSink interface {
	AppendInteractions(ctx context.Context, batch []models.Interaction) error
}

// walGCInterval is how often Badger value log GC runs.
const walGCInterval = time.Hour

// FlushService drains the write-ahead log into the database on an
// interval, and performs a final drain on shutdown.
type FlushService struct {
	wal       InteractionLog
	sink      InteractionSink
	interval  time.Duration
	batchSize int
	log       zerolog.Logger
}

// NewFlushService builds the flusher.
func NewFlushService(wal InteractionLog, sink InteractionSink, interval time.Duration, batchSize int, log zerolog.Logger) *FlushService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &FlushService{
		wal:       wal,
		sink:      sink,
		interval:  interval,
		batchSize: batchSize,
		log:       log.With().Str("component", "wal-flusher").Logger(),
	}
}

// Serve implements suture.Service.
func (s *FlushService) Serve(ctx context.Context) error {
	flush := time.NewTicker(s.interval)
	defer flush.Stop()
	gc := time.NewTicker(walGCInterval)
	defer gc.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final drain so buffered interactions reach the store before
			// the process exits.
			drainCtx, cancel := context.WithTimeout(context.Background(), s.interval)
			s.drain(drainCtx)
			cancel()
			return ctx.Err()
		case <-flush.C:
			s.drain(ctx)
		case <-gc.C:
			if err := s.wal.RunGC(); err != nil {
				s.log.Warn().Err(err).Msg("WAL GC failed")
			}
		}
	}
}

// drain empties the log in batches until nothing is pending.
func (s *FlushService) drain(ctx context.Context) {
	total := 0
	for {
		n, err := s.wal.Drain(ctx, s.batchSize, func(batch []models.Interaction) error {
			return s.sink.AppendInteractions(ctx, batch)
		})
		if err != nil {
			s.log.Error().Err(err).Msg("WAL flush failed")
			return
		}
		total += n
		if n < s.batchSize {
			break
		}
	}
	if total > 0 {
		s.log.Debug().Int("flushed", total).Msg("WAL drained")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *FlushService) String() string { return "wal-flusher" }
