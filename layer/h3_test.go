// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"testing"

	"github.com/spatialvision/geocluster/spatial"
)

func TestH3IdentifiersGroupNearbyPoints(t *testing.T) {
	// Two points meters apart in Montevideo and one across the river; at a
	// coarse resolution the close pair shares a cell.
	records := []Record{
		{ID: 0, Point: spatial.Point{X: -56.1645, Y: -34.9011}},
		{ID: 1, Point: spatial.Point{X: -56.1646, Y: -34.9012}},
		{ID: 2, Point: spatial.Point{X: -58.3816, Y: -34.6037}},
	}

	identifiers, err := H3Identifiers(records, 5)
	if err != nil {
		t.Fatalf("H3Identifiers() error = %v", err)
	}

	if identifiers[0] != identifiers[1] {
		t.Errorf("nearby points in different cells: %s vs %s", identifiers[0], identifiers[1])
	}

	if identifiers[0] == identifiers[2] {
		t.Errorf("distant points share cell %s", identifiers[0])
	}
}

func TestH3IdentifiersResolutionOutOfRange(t *testing.T) {
	records := []Record{{ID: 0, Point: spatial.Point{X: 0, Y: 0}}}

	if _, err := H3Identifiers(records, 16); err == nil {
		t.Error("H3Identifiers(16) did not fail")
	}

	if _, err := H3Identifiers(records, -1); err == nil {
		t.Error("H3Identifiers(-1) did not fail")
	}
}
