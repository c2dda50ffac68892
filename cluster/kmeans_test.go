// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spatialvision/geocluster/spatial"
)

func TestKMeansTwoPairs(t *testing.T) {
	points := pairPoints()

	// Lloyd's algorithm converges to a local optimum, so an unlucky draw of
	// initial points can settle on the horizontal split. Some seed among
	// the first fifty must recover the true pairing; every run still has to
	// satisfy the k-cluster invariants.
	found := false

	for seed := int64(1); seed <= 50 && !found; seed++ {
		res, err := KMeans(points, KMeansOptions{K: 2, Init: InitPoints, Seed: seed})
		if err != nil {
			t.Fatalf("KMeans() error = %v", err)
		}

		if res.Clusters != 2 || len(res.Centroids) != 2 {
			t.Fatalf("seed %d: clusters = %d, centroids = %d, want 2", seed, res.Clusters, len(res.Centroids))
		}

		if res.Labels[0] == res.Labels[1] && res.Labels[2] == res.Labels[3] && res.Labels[0] != res.Labels[2] {
			left := res.Centroids[res.Labels[0]]
			right := res.Centroids[res.Labels[2]]

			if left.EuclideanDistance(spatial.Point{X: 0, Y: 0.5}) > 1e-9 {
				t.Errorf("seed %d: left centroid = %v, want (0, 0.5)", seed, left)
			}

			if right.EuclideanDistance(spatial.Point{X: 10, Y: 0.5}) > 1e-9 {
				t.Errorf("seed %d: right centroid = %v, want (10, 0.5)", seed, right)
			}

			found = true
		}
	}

	if !found {
		t.Error("no seed recovered the two tight pairs")
	}
}

func TestKMeansDeterministicForSeed(t *testing.T) {
	points := []spatial.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
		{X: 10, Y: 10}, {X: 11, Y: 10}, {X: 10, Y: 11},
		{X: -10, Y: 5}, {X: -11, Y: 5},
	}

	for _, init := range []InitStrategy{InitRandom, InitPoints} {
		a, err := KMeans(points, KMeansOptions{K: 3, Init: init, Seed: 42})
		if err != nil {
			t.Fatalf("KMeans(%s) error = %v", init, err)
		}

		b, err := KMeans(points, KMeansOptions{K: 3, Init: init, Seed: 42})
		if err != nil {
			t.Fatalf("KMeans(%s) error = %v", init, err)
		}

		if diff := cmp.Diff(a.Labels, b.Labels); diff != "" {
			t.Errorf("%s: labels differ across runs (-first +second):\n%s", init, diff)
		}

		if diff := cmp.Diff(a.Centroids, b.Centroids); diff != "" {
			t.Errorf("%s: centroids differ across runs (-first +second):\n%s", init, diff)
		}
	}
}

func TestKMeansNoEmptyClusters(t *testing.T) {
	points := []spatial.Point{
		{X: 0, Y: 0}, {X: 0.1, Y: 0}, {X: 0, Y: 0.1},
		{X: 100, Y: 100}, {X: 100.1, Y: 100},
		{X: -50, Y: 30},
	}

	for seed := int64(1); seed <= 20; seed++ {
		res, err := KMeans(points, KMeansOptions{K: 4, Init: InitRandom, Seed: seed})
		if err != nil {
			t.Fatalf("seed %d: KMeans() error = %v", seed, err)
		}

		counts := make([]int, res.Clusters)
		for _, label := range res.Labels {
			counts[label]++
		}

		for c, count := range counts {
			if count == 0 {
				t.Errorf("seed %d: cluster %d is empty", seed, c)
			}
		}
	}
}

func TestKMeansNoEmptyClustersAtIterationCap(t *testing.T) {
	// A cap of one iteration expires right after re-seeding, which is the
	// worst case for leaving a re-seeded centroid without members.
	points := pairPoints()

	for seed := int64(1); seed <= 10; seed++ {
		res, err := KMeans(points, KMeansOptions{K: 3, Init: InitRandom, Seed: seed, MaxIterations: 1})
		if err != nil {
			t.Fatalf("seed %d: KMeans() error = %v", seed, err)
		}

		counts := make([]int, res.Clusters)
		for _, label := range res.Labels {
			counts[label]++
		}

		for c, count := range counts {
			if count == 0 {
				t.Errorf("seed %d: cluster %d empty in output (labels %v)", seed, c, res.Labels)
			}
		}
	}
}

func TestRecomputeReseedsAndSettles(t *testing.T) {
	points := pairPoints()
	centroids := []spatial.Point{{X: 0, Y: 0.5}, {X: 10, Y: 0.5}, {X: 50, Y: 50}}
	labels := []int{0, 0, 1, 1}
	rng := rand.New(rand.NewSource(1))

	if !recompute(points, centroids, labels, rng) {
		t.Fatal("recompute() did not report the re-seed of the empty centroid")
	}

	assign(points, centroids, labels)

	counts := make([]int, len(centroids))
	for _, label := range labels {
		counts[label]++
	}

	for c, count := range counts {
		if count == 0 {
			t.Errorf("cluster %d still empty after re-seed and assignment (labels %v)", c, labels)
		}
	}

	if recompute(points, centroids, labels, rng) {
		t.Error("recompute() re-seeded again on a fully populated labeling")
	}
}

func TestKMeansKOutOfRange(t *testing.T) {
	points := []spatial.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}

	// Scenario: five clusters requested over three points.
	if _, err := KMeans(points, KMeansOptions{K: 5, Init: InitPoints, Seed: 1}); !IsInvalidInput(err) {
		t.Errorf("KMeans(k=5) error = %v, want InvalidInputError", err)
	}

	if _, err := KMeans(points, KMeansOptions{K: 1, Init: InitPoints, Seed: 1}); !IsInvalidInput(err) {
		t.Errorf("KMeans(k=1) error = %v, want InvalidInputError", err)
	}

	if _, err := KMeans(points[:1], KMeansOptions{K: 2, Init: InitPoints, Seed: 1}); !IsInvalidInput(err) {
		t.Errorf("KMeans(n=1) error = %v, want InvalidInputError", err)
	}
}

func TestKMeansDegenerateInput(t *testing.T) {
	// Only two distinct positions for three requested clusters.
	points := []spatial.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 1}}

	_, err := KMeans(points, KMeansOptions{K: 3, Init: InitPoints, Seed: 1})
	if !IsNumericalDegeneracy(err) {
		t.Errorf("KMeans() error = %v, want NumericalDegeneracyError", err)
	}
}

func TestKMeansDuplicatedPositionsConverge(t *testing.T) {
	// Exactly two distinct positions, duplicated; points init must place a
	// centroid on each and converge immediately regardless of seed.
	points := []spatial.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 0}, {X: 0, Y: 1}}

	res, err := KMeans(points, KMeansOptions{K: 2, Init: InitPoints, Seed: 7})
	if err != nil {
		t.Fatalf("KMeans() error = %v", err)
	}

	if res.Labels[0] != res.Labels[2] || res.Labels[1] != res.Labels[3] {
		t.Errorf("duplicate positions split: labels %v", res.Labels)
	}

	if res.Labels[0] == res.Labels[1] {
		t.Errorf("distinct positions merged: labels %v", res.Labels)
	}
}

func TestKMeansRejectsNonFinitePoint(t *testing.T) {
	points := []spatial.Point{{X: 0, Y: 0}, {X: math.Inf(1), Y: 0}, {X: 1, Y: 1}}

	if _, err := KMeans(points, KMeansOptions{K: 2, Init: InitPoints, Seed: 1}); !IsInvalidInput(err) {
		t.Errorf("KMeans() error = %v, want InvalidInputError", err)
	}
}

func TestParseInitStrategy(t *testing.T) {
	if _, err := ParseInitStrategy("points"); err != nil {
		t.Errorf("ParseInitStrategy(points) error = %v", err)
	}

	if _, err := ParseInitStrategy("kmeans++"); !IsInvalidInput(err) {
		t.Errorf("ParseInitStrategy(kmeans++) error = %v, want InvalidInputError", err)
	}
}
