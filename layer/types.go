// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

// Package layer reads point records from input layers (CSV files or DuckDB
// tables), derives group identifiers, and writes labeled results back out.
// The clustering engine itself never touches I/O; this package is the glue
// between it and the caller's data.
package layer

import (
	"github.com/spatialvision/geocluster/spatial"
)

// Record is one feature read from an input layer. ID is the caller's own
// feature identifier, used to re-associate output labels; Identifier is the
// optional group token for constrained clustering.
type Record struct {
	ID         int64
	Point      spatial.Point
	Identifier string
}

// Points extracts the coordinate sequence in record order.
func Points(records []Record) []spatial.Point {
	points := make([]spatial.Point, len(records))
	for i, r := range records {
		points[i] = r.Point
	}

	return points
}

// Identifiers extracts the group identifier sequence in record order.
func Identifiers(records []Record) []string {
	identifiers := make([]string, len(records))
	for i, r := range records {
		identifiers[i] = r.Identifier
	}

	return identifiers
}
