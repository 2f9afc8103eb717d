// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"math"
	"math/rand"
)

// kmeansResult holds one clustering outcome.
type kmeansResult struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
}

// kmeans partitions the rows of matrix into k clusters with Lloyd's
// algorithm and k-means++ seeding. It runs restarts independent
// initializations and keeps the one with the lowest inertia, so results
// are stable under the given random source.
//
// Degenerate inputs never panic: fewer rows than clusters shrinks k to
// the row count, and a zero-dimension matrix collapses to one cluster.
func kmeans(matrix [][]float64, k, restarts, maxIter int, rng *rand.Rand) kmeansResult {
	n := len(matrix)
	if n == 0 {
		return kmeansResult{Labels: []int{}, Centroids: [][]float64{}}
	}
	dim := len(matrix[0])
	if k > n {
		k = n
	}
	if k < 1 || dim == 0 {
		// Nothing to separate on. Everyone lands in cluster 0.
		labels := make([]int, n)
		return kmeansResult{Labels: labels, Centroids: [][]float64{make([]float64, dim)}}
	}

	best := kmeansResult{Inertia: math.Inf(1)}
	for r := 0; r < restarts; r++ {
		res := kmeansOnce(matrix, k, maxIter, rng)
		if res.Inertia < best.Inertia {
			best = res
		}
	}
	return best
}

func kmeansOnce(matrix [][]float64, k, maxIter int, rng *rand.Rand) kmeansResult {
	n := len(matrix)
	dim := len(matrix[0])

	centroids := seedCentroids(matrix, k, rng)
	labels := make([]int, n)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, row := range matrix {
			bestC, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := squaredDistance(row, centroid); d < bestDist {
					bestC, bestDist = c, d
				}
			}
			if labels[i] != bestC {
				labels[i] = bestC
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; reseed any emptied cluster with the point
		// farthest from its current centroid.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, row := range matrix {
			c := labels[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				centroids[c] = matrix[farthestPoint(matrix, centroids, labels)]
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	var inertia float64
	for i, row := range matrix {
		inertia += squaredDistance(row, centroids[labels[i]])
	}
	return kmeansResult{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// seedCentroids picks k initial centroids with k-means++: the first
// uniformly at random, each subsequent one with probability proportional
// to its squared distance from the nearest chosen centroid.
func seedCentroids(matrix [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(matrix)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneVector(matrix[rng.Intn(n)]))

	dists := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, row := range matrix {
			d := math.Inf(1)
			for _, c := range centroids {
				if dd := squaredDistance(row, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}

		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids = append(centroids, cloneVector(matrix[rng.Intn(n)]))
			continue
		}

		target := rng.Float64() * total
		idx := 0
		for i, d := range dists {
			target -= d
			if target <= 0 {
				idx = i
				break
			}
		}
		centroids = append(centroids, cloneVector(matrix[idx]))
	}
	return centroids
}

// farthestPoint returns the index of the point with the largest distance
// to its assigned centroid, used to reseed emptied clusters.
func farthestPoint(matrix [][]float64, centroids [][]float64, labels []int) int {
	best, bestDist := 0, -1.0
	for i, row := range matrix {
		if d := squaredDistance(row, centroids[labels[i]]); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cloneVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
