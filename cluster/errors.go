// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"errors"
	"fmt"
)

// InvalidInputError reports a malformed or out-of-range parameter. It names
// the offending parameter and value so the caller can correct the call.
type InvalidInputError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Param, e.Value, e.Reason)
}

// UnsupportedMetricError reports a linkage method paired with a metric it
// cannot run on. Centroid, median and ward updates assume Euclidean geometry.
type UnsupportedMetricError struct {
	Method Method
	Metric Metric
}

func (e *UnsupportedMetricError) Error() string {
	return fmt.Sprintf("method %q requires the euclidean metric, got %q", e.Method, e.Metric)
}

// NumericalDegeneracyError reports input on which no finite partition can be
// formed, such as k-means over fewer distinct positions than clusters.
type NumericalDegeneracyError struct {
	Reason string
}

func (e *NumericalDegeneracyError) Error() string {
	return "degenerate input: " + e.Reason
}

// IsInvalidInput verifies whether the error reports a malformed parameter.
func IsInvalidInput(err error) bool {
	var inputErr *InvalidInputError

	return errors.As(err, &inputErr)
}

// IsUnsupportedMetric verifies whether the error reports a method/metric
// mismatch.
func IsUnsupportedMetric(err error) bool {
	var metricErr *UnsupportedMetricError

	return errors.As(err, &metricErr)
}

// IsNumericalDegeneracy verifies whether the error reports degenerate input.
func IsNumericalDegeneracy(err error) bool {
	var degErr *NumericalDegeneracyError

	return errors.As(err, &degErr)
}
