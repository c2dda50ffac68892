// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"fmt"
	"math"

	"github.com/spatialvision/geocluster/spatial"
)

// Metric selects the pairwise distance function.
type Metric string

const (
	// Euclidean is the straight-line distance sqrt(dx²+dy²).
	Euclidean Metric = "euclidean"
	// Cityblock is the Manhattan distance |dx|+|dy|.
	Cityblock Metric = "cityblock"
)

// ParseMetric maps a user-supplied name to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case Euclidean, Cityblock:
		return Metric(s), nil
	}

	return "", &InvalidInputError{Param: "metric", Value: s, Reason: "must be one of euclidean, cityblock"}
}

func (m Metric) distance(a, b spatial.Point) float64 {
	if m == Cityblock {
		return a.CityblockDistance(b)
	}

	return a.EuclideanDistance(b)
}

// CondensedMatrix stores the strict upper triangle of a symmetric n×n
// distance matrix in row-major order.
// Entry (i,j) with i<j lives at n*i - i*(i+1)/2 + (j-i-1).
type CondensedMatrix struct {
	n int
	d []float64
}

// NewCondensedMatrix wraps an existing condensed vector over n points. The
// vector must hold exactly C(n,2) entries, each either a finite non-negative
// value or the +Inf constraint sentinel.
func NewCondensedMatrix(n int, d []float64) (*CondensedMatrix, error) {
	if n < 2 {
		return nil, &InvalidInputError{Param: "points", Value: n, Reason: "at least 2 points are required"}
	}

	if want := n * (n - 1) / 2; len(d) != want {
		return nil, &InvalidInputError{
			Param:  "distances",
			Value:  len(d),
			Reason: fmt.Sprintf("condensed matrix over %d points needs %d entries", n, want),
		}
	}

	for i, v := range d {
		if math.IsNaN(v) || v < 0 {
			return nil, &InvalidInputError{
				Param:  "distances",
				Value:  v,
				Reason: fmt.Sprintf("entry %d is not a non-negative distance", i),
			}
		}
	}

	return &CondensedMatrix{n: n, d: d}, nil
}

// PDist computes the condensed distance matrix over all unordered point
// pairs under the chosen metric.
func PDist(points []spatial.Point, metric Metric) (*CondensedMatrix, error) {
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

	n := len(points)
	m := &CondensedMatrix{n: n, d: make([]float64, n*(n-1)/2)}

	k := 0

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			m.d[k] = metric.distance(points[i], points[j])
			k++
		}
	}

	return m, nil
}

// Len returns the number of points the matrix covers.
func (m *CondensedMatrix) Len() int {
	return m.n
}

// Entries returns the condensed vector. The slice is the matrix's backing
// store, not a copy.
func (m *CondensedMatrix) Entries() []float64 {
	return m.d
}

// At returns the distance between points i and j. The diagonal is zero.
func (m *CondensedMatrix) At(i, j int) float64 {
	if i == j {
		return 0
	}

	if i > j {
		i, j = j, i
	}

	return m.d[m.n*i-i*(i+1)/2+(j-i-1)]
}

// Squareform decompresses the matrix into full symmetric square form.
func (m *CondensedMatrix) Squareform() [][]float64 {
	square := make([][]float64, m.n)
	for i := range square {
		square[i] = make([]float64, m.n)
	}

	k := 0

	for i := 0; i < m.n-1; i++ {
		for j := i + 1; j < m.n; j++ {
			square[i][j] = m.d[k]
			square[j][i] = m.d[k]
			k++
		}
	}

	return square
}

// Squareform compresses a full symmetric square matrix back into condensed
// form. It is the exact inverse of CondensedMatrix.Squareform for finite
// entries, and validates shape, zero diagonal and symmetry.
func Squareform(square [][]float64) (*CondensedMatrix, error) {
	n := len(square)
	if n < 2 {
		return nil, &InvalidInputError{Param: "matrix", Value: n, Reason: "at least 2 rows are required"}
	}

	for i, row := range square {
		if len(row) != n {
			return nil, &InvalidInputError{
				Param:  "matrix",
				Value:  len(row),
				Reason: fmt.Sprintf("row %d is not of length %d", i, n),
			}
		}

		if square[i][i] != 0 {
			return nil, &InvalidInputError{
				Param:  "matrix",
				Value:  square[i][i],
				Reason: fmt.Sprintf("diagonal entry %d is not zero", i),
			}
		}
	}

	m := &CondensedMatrix{n: n, d: make([]float64, n*(n-1)/2)}

	k := 0

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if square[i][j] != square[j][i] {
				return nil, &InvalidInputError{
					Param:  "matrix",
					Value:  square[i][j],
					Reason: fmt.Sprintf("entries (%d,%d) and (%d,%d) differ", i, j, j, i),
				}
			}

			if math.IsNaN(square[i][j]) || square[i][j] < 0 {
				return nil, &InvalidInputError{
					Param:  "matrix",
					Value:  square[i][j],
					Reason: fmt.Sprintf("entry (%d,%d) is not a non-negative distance", i, j),
				}
			}

			m.d[k] = square[i][j]
			k++
		}
	}

	return m, nil
}
