// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spatialvision/geocluster/cluster"
	"github.com/spatialvision/geocluster/layer"
)

var serveOptions = struct {
	addr  string
	limit int
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the clustering JSON API (local only)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		engine := cluster.NewEngine(cluster.WithMaxPoints(serveOptions.limit))
		server := layer.NewServer(engine)

		fmt.Printf("📍 Clustering API listening on http://%s\n", serveOptions.addr)
		fmt.Println("🔒 Local only - not exposed to internet")

		return server.Run(serveOptions.addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().StringVar(&serveOptions.addr, "addr", "localhost:8080", "Address to listen on")
	serveCmd.PersistentFlags().IntVar(&serveOptions.limit, "limit", 0,
		"Refuse requests with more than this many points (0: no limit)")
}
