// Copyright 2025 The GeoCluster Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Point represents a planar point in the coordinate system of the input
// layer. Clustering distances are computed on these raw coordinates; no
// reprojection happens here.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.X, p.Y)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		p.X, p.Y = 0, 0

		return nil
	}

	switch v := value.(type) {
	case []byte:
		// The format from DuckDB is "POINT (x y)"
		_, err := fmt.Sscanf(string(v), "POINT (%f %f)", &p.X, &p.Y)

		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT (%f %f)", &p.X, &p.Y)

		return err
	case map[string]interface{}:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: invalid map for point: expected 'x' and 'y' float64 fields, got %+v", v)
		}

		p.X = x
		p.Y = y

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

// Finite reports whether both coordinates are finite real numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// EuclideanDistance calculates the straight-line distance between two points.
func (p Point) EuclideanDistance(other Point) float64 {
	return floats.Distance([]float64{p.X, p.Y}, []float64{other.X, other.Y}, 2)
}

// CityblockDistance calculates the Manhattan distance between two points.
func (p Point) CityblockDistance(other Point) float64 {
	return floats.Distance([]float64{p.X, p.Y}, []float64{other.X, other.Y}, 1)
}
