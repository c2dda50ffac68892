// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatialvision/geocluster/cluster"
	"github.com/spatialvision/geocluster/layer"
)

var kmeansOptions = struct {
	layerOptions

	k          int
	minit      string
	seed       int64
	iterations int
}{}

var kmeansCmd = &cobra.Command{
	Use:   "kmeans",
	Short: "Partition a point layer into k clusters",
	Long: `
Runs k-means over the input points and labels each point with the cluster it
was assigned to. Pass --seed for reproducible runs; with --centroid-output
(or --centroid-table) the cluster centroids are written as a layer of their
own.
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		o := &kmeansOptions

		pl, err := o.open()
		if err != nil {
			return err
		}
		defer pl.Close()

		engine := cluster.NewEngine(
			cluster.WithProgress(newCmdProgress("Clustering")),
			cluster.WithMaxPoints(o.limit),
		)

		res, err := engine.KMeans(layer.Points(pl.records), cluster.KMeansOptions{
			K:             o.k,
			Init:          cluster.InitStrategy(o.minit),
			Seed:          o.seed,
			MaxIterations: o.iterations,
		})
		if err != nil {
			return err
		}

		if err := o.saveClustered(pl, res.Labels, res.Clusters); err != nil {
			return err
		}

		return o.saveCentroids(pl, res.Centroids)
	},
}

func init() {
	rootCmd.AddCommand(kmeansCmd)
	kmeansOptions.register(kmeansCmd)

	flags := kmeansCmd.PersistentFlags()
	flags.IntVar(&kmeansOptions.k, "k", 0, "Number of clusters")
	flags.StringVar(&kmeansOptions.minit, "minit", string(cluster.InitPoints),
		"Centroid initialization: points (sample input positions) or random (uniform in the bounding box)")
	flags.Int64Var(&kmeansOptions.seed, "seed", 0, "Random seed (0: time-based)")
	flags.IntVar(&kmeansOptions.iterations, "iterations", 0, "Iteration cap (0: default)")

	_ = kmeansCmd.MarkPersistentFlagRequired("k")
}
