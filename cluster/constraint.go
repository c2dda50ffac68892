// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"fmt"
	"math"
)

// MaskCrossIdentifier returns a copy of the square distance matrix where
// every entry whose endpoints carry different group identifiers is forced to
// +Inf. Agglomeration always merges the closest pair first, so masked pairs
// can only merge once a group has been exhausted, and such merges sit at
// unreachable distance for any threshold-based cut. The input is not
// modified.
func MaskCrossIdentifier(square [][]float64, identifiers []string) ([][]float64, error) {
	if len(identifiers) != len(square) {
		return nil, &InvalidInputError{
			Param:  "identifiers",
			Value:  len(identifiers),
			Reason: fmt.Sprintf("one identifier per point is required, have %d points", len(square)),
		}
	}

	masked := make([][]float64, len(square))

	for i, row := range square {
		masked[i] = make([]float64, len(row))
		copy(masked[i], row)

		for j := range row {
			if identifiers[i] != identifiers[j] {
				masked[i][j] = math.Inf(1)
			}
		}
	}

	return masked, nil
}
