// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

// Progress receives coarse-grained completion and status updates from a
// running operation. Implementations must tolerate being called from the
// goroutine running the operation; the engine never calls concurrently.
type Progress interface {
	// SetPercentage reports completion in the range 0..100.
	SetPercentage(pct int)
	// Info reports a human-readable status message.
	Info(msg string)
	// Error reports a human-readable failure message. The operation's
	// error return carries the same condition; this is for display only.
	Error(msg string)
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) SetPercentage(int) {}
func (NopProgress) Info(string)       {}
func (NopProgress) Error(string)      {}
