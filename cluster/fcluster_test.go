// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spatialvision/geocluster/spatial"
)

func cutOver(t *testing.T, dend *Dendrogram, opt CutOptions) ([]int, int) {
	t.Helper()

	labels, clusters, err := Cut(dend, opt)
	if err != nil {
		t.Fatalf("Cut() error = %v", err)
	}

	return labels, clusters
}

func TestCutDistance(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	labels, clusters := cutOver(t, dend, CutOptions{Criterion: CriterionDistance, Threshold: 2})

	if clusters != 2 {
		t.Fatalf("clusters = %d, want 2", clusters)
	}

	if diff := cmp.Diff([]int{1, 1, 2, 2}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestCutDistanceBelowAllMerges(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	labels, clusters := cutOver(t, dend, CutOptions{Criterion: CriterionDistance, Threshold: 0.5})

	if clusters != 4 {
		t.Fatalf("clusters = %d, want 4", clusters)
	}

	if diff := cmp.Diff([]int{1, 2, 3, 4}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestCutDistanceRejectsNonPositiveThreshold(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	for _, threshold := range []float64{0, -1} {
		_, _, err := Cut(dend, CutOptions{Criterion: CriterionDistance, Threshold: threshold})
		if !IsInvalidInput(err) {
			t.Errorf("Cut(threshold=%f) error = %v, want InvalidInputError", threshold, err)
		}
	}
}

func TestCutMaxclust(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	tests := []struct {
		target   int
		clusters int
	}{
		{1, 1},
		{2, 2},
		// The two height-1 merges tie, so requesting 3 still gives 2.
		{3, 2},
		{4, 4},
	}

	for _, tc := range tests {
		_, clusters := cutOver(t, dend, CutOptions{Criterion: CriterionMaxclust, Threshold: float64(tc.target)})

		if clusters > tc.target {
			t.Errorf("maxclust(%d) formed %d clusters, exceeding the target", tc.target, clusters)
		}

		if clusters != tc.clusters {
			t.Errorf("maxclust(%d) = %d clusters, want %d", tc.target, clusters, tc.clusters)
		}
	}
}

func TestCutMaxclustRejectsOutOfRangeTarget(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	for _, target := range []float64{0, 5, 2.5} {
		_, _, err := Cut(dend, CutOptions{Criterion: CriterionMaxclust, Threshold: target})
		if !IsInvalidInput(err) {
			t.Errorf("Cut(maxclust=%f) error = %v, want InvalidInputError", target, err)
		}
	}
}

func TestCutInconsistent(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	// The root's depth-2 window holds heights {10,1,1}: mean 4, sample
	// sd sqrt(27), coefficient 6/sqrt(27) ~ 1.155. Leaf-level merges have a
	// single-entry window and coefficient 0.
	labels, clusters := cutOver(t, dend, CutOptions{Criterion: CriterionInconsistent, Threshold: 1})

	if clusters != 2 {
		t.Fatalf("clusters = %d, want 2", clusters)
	}

	if diff := cmp.Diff([]int{1, 1, 2, 2}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	// 1.3 is just above the root coefficient and must already collapse it.
	_, clusters = cutOver(t, dend, CutOptions{Criterion: CriterionInconsistent, Threshold: 1.3})
	if clusters != 1 {
		t.Errorf("clusters = %d, want 1 above the root coefficient", clusters)
	}

	_, clusters = cutOver(t, dend, CutOptions{Criterion: CriterionInconsistent, Threshold: 1.5})
	if clusters != 1 {
		t.Errorf("clusters = %d, want 1 well above the root coefficient", clusters)
	}
}

func TestCutMonocrit(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	monocrit := []float64{0, 0, 5}

	labels, clusters := cutOver(t, dend, CutOptions{
		Criterion: CriterionMonocrit,
		Threshold: 1,
		Monocrit:  monocrit,
	})

	if clusters != 2 {
		t.Fatalf("clusters = %d, want 2", clusters)
	}

	if diff := cmp.Diff([]int{1, 1, 2, 2}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	_, clusters = cutOver(t, dend, CutOptions{
		Criterion: CriterionMaxclustMonocrit,
		Threshold: 1,
		Monocrit:  monocrit,
	})
	if clusters != 1 {
		t.Errorf("maxclust_monocrit(1) = %d clusters, want 1", clusters)
	}
}

func TestCutMonocritRequiresAlignedArray(t *testing.T) {
	dend := linkageOver(t, pairPoints(), Euclidean, Single)

	_, _, err := Cut(dend, CutOptions{Criterion: CriterionMonocrit, Threshold: 1, Monocrit: []float64{0}})
	if !IsInvalidInput(err) {
		t.Errorf("Cut() error = %v, want InvalidInputError", err)
	}
}

func TestCutLabelsFollowPointOrder(t *testing.T) {
	// Far singleton first: it takes label 1 even though the pair merges
	// earlier in the dendrogram.
	points := []spatial.Point{{X: 100, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}}

	dend := linkageOver(t, points, Euclidean, Single)

	labels, clusters := cutOver(t, dend, CutOptions{Criterion: CriterionDistance, Threshold: 2})

	if clusters != 2 {
		t.Fatalf("clusters = %d, want 2", clusters)
	}

	if diff := cmp.Diff([]int{1, 2, 2}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestCutKeepsForcedMergesApart(t *testing.T) {
	// A dendrogram whose top merge sits at +Inf never collapses under a
	// finite threshold.
	inf := math.Inf(1)

	m, err := NewCondensedMatrix(3, []float64{1, inf, inf})
	if err != nil {
		t.Fatalf("NewCondensedMatrix() error = %v", err)
	}

	dend, err := Linkage(m, Single)
	if err != nil {
		t.Fatalf("Linkage() error = %v", err)
	}

	_, clusters := cutOver(t, dend, CutOptions{Criterion: CriterionDistance, Threshold: 1e100})
	if clusters != 2 {
		t.Errorf("clusters = %d, want 2", clusters)
	}
}
