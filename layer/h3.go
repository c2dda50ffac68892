// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// H3Identifiers derives one group identifier per record from the H3 cell
// containing it at the given resolution, so constrained clustering can keep
// hex cells apart without a pre-existing attribute. Coordinates must be
// geographic: X is longitude, Y is latitude.
func H3Identifiers(records []Record, res int) ([]string, error) {
	if res < 0 || res > h3.MaxResolution {
		return nil, fmt.Errorf("h3 resolution %d out of range 0..%d", res, h3.MaxResolution)
	}

	identifiers := make([]string, len(records))

	for i, rec := range records {
		latLng := h3.NewLatLng(rec.Point.Y, rec.Point.X)

		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return nil, fmt.Errorf("converting record %d to h3 cell at res %d: %w", rec.ID, res, err)
		}

		identifiers[i] = cell.String()
	}

	return identifiers, nil
}
