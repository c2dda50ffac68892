// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spatialvision/geocluster/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
