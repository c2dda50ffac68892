// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"math"
)

// Method selects the rule for computing the distance between two clusters
// during agglomeration.
type Method string

const (
	Single   Method = "single"
	Complete Method = "complete"
	Average  Method = "average"
	Weighted Method = "weighted"
	Centroid Method = "centroid"
	Median   Method = "median"
	Ward     Method = "ward"
)

// ParseMethod maps a user-supplied name to a linkage Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case Single, Complete, Average, Weighted, Centroid, Median, Ward:
		return Method(s), nil
	}

	return "", &InvalidInputError{
		Param:  "method",
		Value:  s,
		Reason: "must be one of single, complete, average, weighted, centroid, median, ward",
	}
}

// RequiresEuclidean reports whether the method updates distances in
// coordinate space and therefore only makes sense under the euclidean
// metric.
func (m Method) RequiresEuclidean() bool {
	switch m {
	case Centroid, Median, Ward:
		return true
	}

	return false
}

// squared reports whether the Lance-Williams recurrence for the method is
// exact on squared euclidean distances rather than raw ones.
func (m Method) squared() bool {
	return m.RequiresEuclidean()
}

// Merge records one agglomeration step. A and B are the merged node ids:
// leaves are point indices 0..n-1, internal nodes are numbered n..2n-2 in
// creation order, and A < B always holds.
type Merge struct {
	A        int
	B        int
	Distance float64
	Size     int
}

// Dendrogram is the binary merge tree built by Linkage: exactly n-1 merges
// over n points, in creation order. Merge distances are non-decreasing for
// the well-behaved methods; centroid and median may produce inversions.
type Dendrogram struct {
	n      int
	merges []Merge
}

// Points returns the number of original points.
func (d *Dendrogram) Points() int {
	return d.n
}

// Merges returns the recorded merges in creation order.
func (d *Dendrogram) Merges() []Merge {
	return d.merges
}

// Linkage runs agglomerative clustering over a condensed distance matrix
// and returns the resulting dendrogram.
//
// The implementation is the plain Lance-Williams scheme: keep every live
// cluster's distance to every other live cluster, repeatedly merge the
// closest pair, and rewrite the survivor's distances with the method's
// recurrence. O(n²) memory and O(n³) time; fine for the point counts this
// tool accepts, and free of the bookkeeping a nearest-neighbor-chain
// variant needs.
//
// Exact distance ties are broken by scanning clusters in ascending slot
// order, so the pair containing the lowest-numbered point wins
// deterministically. Metric compatibility is the caller's concern: pair
// centroid, median or ward with a non-euclidean matrix at your own risk
// (the Engine rejects that combination up front).
func Linkage(m *CondensedMatrix, method Method) (*Dendrogram, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	n := m.Len()

	// Working square matrix, squared for the coordinate-space methods.
	d := m.Squareform()
	if method.squared() {
		for i := range d {
			for j := range d[i] {
				d[i][j] *= d[i][j]
			}
		}
	}

	active := make([]bool, n)
	ids := make([]int, n)
	sizes := make([]int, n)

	for i := 0; i < n; i++ {
		active[i] = true
		ids[i] = i
		sizes[i] = 1
	}

	dend := &Dendrogram{n: n, merges: make([]Merge, 0, n-1)}

	for step := 0; step < n-1; step++ {
		lo, hi := -1, -1
		best := math.Inf(1)

		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}

			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}

				if lo < 0 || d[i][j] < best {
					lo, hi = i, j
					best = d[i][j]
				}
			}
		}

		dist := best
		if method.squared() {
			// Rounding in the recurrence can drive a squared distance a hair
			// below zero; clamp rather than record NaN.
			dist = math.Sqrt(math.Max(0, dist))
		}

		a, b := ids[lo], ids[hi]
		if a > b {
			a, b = b, a
		}

		dend.merges = append(dend.merges, Merge{
			A:        a,
			B:        b,
			Distance: dist,
			Size:     sizes[lo] + sizes[hi],
		})

		// The merged cluster takes over the lower slot.
		active[hi] = false

		for k := 0; k < n; k++ {
			if !active[k] || k == lo {
				continue
			}

			updated := lanceWilliams(method, d[k][lo], d[k][hi], best, sizes[lo], sizes[hi], sizes[k])
			d[k][lo] = updated
			d[lo][k] = updated
		}

		ids[lo] = n + step
		sizes[lo] += sizes[hi]
	}

	return dend, nil
}

// lanceWilliams computes the distance from cluster k to the merge of i and
// j, given the prior distances dki, dkj and dij and the cluster sizes. For
// the squared methods all three inputs and the result are squared
// distances.
func lanceWilliams(method Method, dki, dkj, dij float64, ni, nj, nk int) float64 {
	switch method {
	case Single:
		return math.Min(dki, dkj)
	case Complete:
		return math.Max(dki, dkj)
	case Average:
		fi, fj := float64(ni), float64(nj)

		return (fi*dki + fj*dkj) / (fi + fj)
	case Weighted:
		return (dki + dkj) / 2
	}

	// Coordinate-space recurrences subtract a multiple of dij, which is
	// meaningless once the constraint sentinel is involved. Any infinite
	// operand means cluster k and the merged cluster span different groups,
	// so their distance stays unreachable.
	if math.IsInf(dki, 1) || math.IsInf(dkj, 1) || math.IsInf(dij, 1) {
		return math.Inf(1)
	}

	fi, fj, fk := float64(ni), float64(nj), float64(nk)

	switch method {
	case Centroid:
		t := fi + fj

		return (fi*dki+fj*dkj)/t - fi*fj*dij/(t*t)
	case Median:
		return dki/2 + dkj/2 - dij/4
	case Ward:
		t := fi + fj + fk

		return ((fi+fk)*dki + (fj+fk)*dkj - fk*dij) / t
	}

	return math.NaN()
}
