// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import "testing"

func TestDiversifyCapsTopics(t *testing.T) {
	// Nine candidates from one topic followed by three from another,
	// already in score order.
	ranked := make([]scoredPost, 0, 12)
	for i := 0; i < 9; i++ {
		ranked = append(ranked, scoredPost{id: int64(i + 1), score: float64(100 - i), topic: 0})
	}
	for i := 0; i < 3; i++ {
		ranked = append(ranked, scoredPost{id: int64(i + 10), score: float64(50 - i), topic: 1})
	}

	got := diversify(ranked, 9, 3)
	if len(got) != 9 {
		t.Fatalf("expected 9 results, got %d", len(got))
	}

	// First pass: max(2, 9/3) = 3 per topic, then backfill by rank.
	counts := map[int]int{}
	for _, c := range got[:6] {
		counts[c.topic]++
	}
	if counts[0] != 3 || counts[1] != 3 {
		t.Errorf("first pass topic counts = %v, want 3 apiece", counts)
	}
}

func TestDiversifyFloorOfTwo(t *testing.T) {
	ranked := []scoredPost{
		{id: 1, score: 5, topic: 0},
		{id: 2, score: 4, topic: 0},
		{id: 3, score: 3, topic: 0},
		{id: 4, score: 2, topic: 1},
	}

	// topN/divisor would be 1, but the cap floors at 2.
	got := diversify(ranked, 3, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].id != 1 || got[1].id != 2 || got[2].id != 4 {
		t.Errorf("unexpected pick order: %+v", got)
	}
}

func TestDiversifyUnclusteredUncapped(t *testing.T) {
	ranked := make([]scoredPost, 0, 8)
	for i := 0; i < 8; i++ {
		ranked = append(ranked, scoredPost{id: int64(i + 1), score: float64(10 - i), topic: -1})
	}

	got := diversify(ranked, 6, 3)
	if len(got) != 6 {
		t.Fatalf("expected 6 results, got %d", len(got))
	}
	for i, c := range got {
		if c.id != int64(i+1) {
			t.Errorf("position %d: id %d, want %d", i, c.id, i+1)
		}
	}
}

func TestDiversifyBackfillPreservesSize(t *testing.T) {
	// One dominant topic; the cap alone can't fill the request.
	ranked := make([]scoredPost, 0, 10)
	for i := 0; i < 10; i++ {
		ranked = append(ranked, scoredPost{id: int64(i + 1), score: float64(20 - i), topic: 0})
	}

	got := diversify(ranked, 7, 3)
	if len(got) != 7 {
		t.Fatalf("backfill should restore the requested size, got %d", len(got))
	}

	seen := map[int64]struct{}{}
	for _, c := range got {
		if _, dup := seen[c.id]; dup {
			t.Fatalf("duplicate id %d in result", c.id)
		}
		seen[c.id] = struct{}{}
	}

	// Cap admits 2, so positions past the cap are marked as backfills.
	for i, c := range got {
		if want := i >= 2; c.backfill != want {
			t.Errorf("position %d: backfill = %v, want %v", i, c.backfill, want)
		}
	}
}

func TestDiversifyShortInput(t *testing.T) {
	ranked := []scoredPost{{id: 1, score: 1, topic: 0}}
	got := diversify(ranked, 10, 3)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
}
