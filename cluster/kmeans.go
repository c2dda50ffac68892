// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/spatialvision/geocluster/spatial"
)

// InitStrategy selects how initial k-means centroids are chosen.
type InitStrategy string

const (
	// InitRandom draws k centroids uniformly within the coordinate
	// bounding box of the input.
	InitRandom InitStrategy = "random"
	// InitPoints samples k distinct input positions without replacement.
	InitPoints InitStrategy = "points"
)

// ParseInitStrategy maps a user-supplied name to an InitStrategy.
func ParseInitStrategy(s string) (InitStrategy, error) {
	switch InitStrategy(s) {
	case InitRandom, InitPoints:
		return InitStrategy(s), nil
	}

	return "", &InvalidInputError{Param: "minit", Value: s, Reason: "must be one of random, points"}
}

const defaultKMeansIterations = 100

// KMeansOptions parameterize KMeans. A zero Seed picks a time-based seed;
// pass an explicit seed for reproducible runs. MaxIterations of 0 selects
// the default cap of 100.
type KMeansOptions struct {
	K             int
	Init          InitStrategy
	Seed          int64
	MaxIterations int
}

// KMeansResult holds the outcome of a k-means run. Labels are 0..k-1 and
// index into Centroids.
type KMeansResult struct {
	Labels    []int
	Centroids []spatial.Point
	Clusters  int
}

// KMeans partitions points into k clusters with Lloyd's algorithm:
// repeatedly assign every point to its nearest centroid by euclidean
// distance (ties to the lowest centroid index) and recompute centroids as
// assignment means, until assignments stabilize or the iteration cap is
// reached. A centroid that ends an iteration empty is re-seeded from the
// point farthest from its nearest surviving centroid, so no empty cluster
// survives.
func KMeans(points []spatial.Point, opt KMeansOptions) (*KMeansResult, error) {
	if _, err := ParseInitStrategy(string(opt.Init)); err != nil {
		return nil, err
	}

	if len(points) < 2 {
		return nil, &InvalidInputError{Param: "points", Value: len(points), Reason: "at least 2 points are required"}
	}

	for i, p := range points {
		if !p.Finite() {
			return nil, &InvalidInputError{
				Param:  "points",
				Value:  p.String(),
				Reason: fmt.Sprintf("point %d has a non-finite coordinate", i),
			}
		}
	}

	if opt.K < 2 || opt.K > len(points) {
		return nil, &InvalidInputError{
			Param:  "k",
			Value:  opt.K,
			Reason: fmt.Sprintf("cluster count must be between 2 and the point count (%d)", len(points)),
		}
	}

	distinct := distinctPoints(points)
	if len(distinct) < opt.K {
		return nil, &NumericalDegeneracyError{
			Reason: fmt.Sprintf("%d clusters requested over %d distinct positions", opt.K, len(distinct)),
		}
	}

	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))

	iterations := opt.MaxIterations
	if iterations <= 0 {
		iterations = defaultKMeansIterations
	}

	var centroids []spatial.Point
	if opt.Init == InitPoints {
		centroids = initFromPoints(distinct, opt.K, rng)
	} else {
		centroids = initFromBounds(points, opt.K, rng)
	}

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	reseeded := false

	for iter := 0; iter < iterations; iter++ {
		changed := assign(points, centroids, labels)

		reseeded = recompute(points, centroids, labels, rng)

		if !changed && !reseeded {
			break
		}
	}

	// A centroid re-seeded on the final iteration has no assignments yet.
	// Settle with extra passes until a recompute leaves every cluster
	// populated, so no empty cluster reaches the output.
	for extra := 0; reseeded && extra < len(centroids); extra++ {
		assign(points, centroids, labels)

		reseeded = recompute(points, centroids, labels, rng)
	}

	return &KMeansResult{
		Labels:    labels,
		Centroids: centroids,
		Clusters:  opt.K,
	}, nil
}

func distinctPoints(points []spatial.Point) []spatial.Point {
	seen := make(map[spatial.Point]struct{}, len(points))
	distinct := make([]spatial.Point, 0, len(points))

	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}

		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}

	return distinct
}

// initFromPoints samples k distinct positions without replacement.
func initFromPoints(distinct []spatial.Point, k int, rng *rand.Rand) []spatial.Point {
	centroids := make([]spatial.Point, k)

	for i, idx := range rng.Perm(len(distinct))[:k] {
		centroids[i] = distinct[idx]
	}

	return centroids
}

// initFromBounds draws k centroids uniformly within the bounding box.
func initFromBounds(points []spatial.Point, k int, rng *rand.Rand) []spatial.Point {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y

	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	centroids := make([]spatial.Point, k)
	for i := range centroids {
		centroids[i] = spatial.Point{
			X: minX + rng.Float64()*(maxX-minX),
			Y: minY + rng.Float64()*(maxY-minY),
		}
	}

	return centroids
}

// assign moves every point to its nearest centroid and reports whether any
// assignment changed.
func assign(points, centroids []spatial.Point, labels []int) bool {
	changed := false

	for i, p := range points {
		nearest := 0
		best := p.EuclideanDistance(centroids[0])

		for c := 1; c < len(centroids); c++ {
			if d := p.EuclideanDistance(centroids[c]); d < best {
				best = d
				nearest = c
			}
		}

		if labels[i] != nearest {
			labels[i] = nearest
			changed = true
		}
	}

	return changed
}

// recompute replaces every centroid with the mean of its assigned points.
// Emptied centroids are re-seeded from the point farthest from its nearest
// surviving centroid; reports whether any re-seed happened.
func recompute(points, centroids []spatial.Point, labels []int, rng *rand.Rand) bool {
	k := len(centroids)
	sums := make([]spatial.Point, k)
	counts := make([]int, k)

	for i, p := range points {
		sums[labels[i]].X += p.X
		sums[labels[i]].Y += p.Y
		counts[labels[i]]++
	}

	var survivors []spatial.Point

	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			centroids[c] = spatial.Point{
				X: sums[c].X / float64(counts[c]),
				Y: sums[c].Y / float64(counts[c]),
			}
			survivors = append(survivors, centroids[c])
		}
	}

	reseeded := false

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			centroids[c] = farthestPoint(points, survivors, rng)
			survivors = append(survivors, centroids[c])
			reseeded = true
		}
	}

	return reseeded
}

func farthestPoint(points, survivors []spatial.Point, rng *rand.Rand) spatial.Point {
	if len(survivors) == 0 {
		return points[rng.Intn(len(points))]
	}

	farthest := points[0]
	best := -1.0

	for _, p := range points {
		nearest := math.Inf(1)

		for _, s := range survivors {
			nearest = math.Min(nearest, p.EuclideanDistance(s))
		}

		if nearest > best {
			best = nearest
			farthest = p
		}
	}

	return farthest
}
