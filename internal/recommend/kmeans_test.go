// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestKMeansSeparatesObviousClusters(t *testing.T) {
	// Two tight groups far apart.
	matrix := [][]float64{
		{0.0, 0.1}, {0.1, 0.0}, {0.05, 0.05},
		{10.0, 10.1}, {10.1, 10.0}, {10.05, 10.05},
	}

	res := kmeans(matrix, 2, 5, 100, rand.New(rand.NewSource(42)))

	if len(res.Labels) != 6 {
		t.Fatalf("expected 6 labels, got %d", len(res.Labels))
	}
	if res.Labels[0] != res.Labels[1] || res.Labels[1] != res.Labels[2] {
		t.Errorf("first group split across clusters: %v", res.Labels)
	}
	if res.Labels[3] != res.Labels[4] || res.Labels[4] != res.Labels[5] {
		t.Errorf("second group split across clusters: %v", res.Labels)
	}
	if res.Labels[0] == res.Labels[3] {
		t.Errorf("groups should land in different clusters: %v", res.Labels)
	}
}

func TestKMeansDeterministicUnderSeed(t *testing.T) {
	matrix := make([][]float64, 20)
	gen := rand.New(rand.NewSource(7))
	for i := range matrix {
		matrix[i] = []float64{gen.Float64(), gen.Float64(), gen.Float64()}
	}

	a := kmeans(matrix, 4, 10, 100, rand.New(rand.NewSource(42)))
	b := kmeans(matrix, 4, 10, 100, rand.New(rand.NewSource(42)))

	if !reflect.DeepEqual(a.Labels, b.Labels) {
		t.Errorf("same seed produced different labels:\n%v\n%v", a.Labels, b.Labels)
	}
	if a.Inertia != b.Inertia {
		t.Errorf("same seed produced different inertia: %v vs %v", a.Inertia, b.Inertia)
	}
}

func TestKMeansDegenerateInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("empty matrix", func(t *testing.T) {
		res := kmeans(nil, 3, 2, 10, rng)
		if len(res.Labels) != 0 {
			t.Errorf("expected no labels, got %v", res.Labels)
		}
	})

	t.Run("more clusters than points", func(t *testing.T) {
		res := kmeans([][]float64{{1, 0}, {0, 1}}, 5, 2, 10, rng)
		if len(res.Labels) != 2 {
			t.Fatalf("expected 2 labels, got %d", len(res.Labels))
		}
		if len(res.Centroids) > 2 {
			t.Errorf("expected at most 2 centroids, got %d", len(res.Centroids))
		}
	})

	t.Run("zero-dimension rows collapse to one cluster", func(t *testing.T) {
		res := kmeans([][]float64{{}, {}, {}}, 3, 2, 10, rng)
		for i, label := range res.Labels {
			if label != 0 {
				t.Errorf("row %d label = %d, want 0", i, label)
			}
		}
	})

	t.Run("identical points", func(t *testing.T) {
		res := kmeans([][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}, 2, 3, 10, rng)
		if len(res.Labels) != 4 {
			t.Fatalf("expected 4 labels, got %d", len(res.Labels))
		}
		if res.Inertia != 0 {
			t.Errorf("identical points should give zero inertia, got %v", res.Inertia)
		}
	})
}
