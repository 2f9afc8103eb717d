// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

// scoredPost is an internal ranking candidate. backfill marks entries
// admitted past the per-topic cap to restore the requested size.
type scoredPost struct {
	id       int64
	score    float64
	topic    int
	backfill bool
}

// diversify applies the per-topic cap to a score-descending candidate
// list. At most max(2, topN/divisor) posts per topic make the first pass;
// unclustered posts (topic -1) are never capped. If the cap leaves the
// result short, it backfills with the skipped candidates in rank order,
// so the cap shapes the feed but never shrinks it.
func diversify(ranked []scoredPost, topN, divisor int) []scoredPost {
	maxPerTopic := topN / divisor
	if maxPerTopic < 2 {
		maxPerTopic = 2
	}

	out := make([]scoredPost, 0, topN)
	taken := make(map[int64]struct{}, topN)
	topicCounts := make(map[int]int)

	for _, c := range ranked {
		if len(out) >= topN {
			break
		}
		if c.topic >= 0 {
			if topicCounts[c.topic] >= maxPerTopic {
				continue
			}
			topicCounts[c.topic]++
		}
		out = append(out, c)
		taken[c.id] = struct{}{}
	}

	if len(out) < topN {
		for _, c := range ranked {
			if len(out) >= topN {
				break
			}
			if _, ok := taken[c.id]; ok {
				continue
			}
			c.backfill = true
			out = append(out, c)
			taken[c.id] = struct{}{}
		}
	}

	return out
}
