// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatialvision/geocluster/cluster"
	"github.com/spatialvision/geocluster/layer"
)

var hierarchicalOptions = struct {
	layerOptions

	tolerance float64
	method    string
	metric    string
	criterion string
	depth     int
}{}

var hierarchicalCmd = &cobra.Command{
	Use:   "hierarchical",
	Short: "Cluster a point layer hierarchically with a distance tolerance",
	Long: `
Builds an agglomerative cluster hierarchy over the input points and cuts it
into flat clusters. With the default distance criterion, points closer than
the tolerance end up in the same cluster; with maxclust, the tolerance is the
target number of clusters instead.

When the records carry a group identifier (an identifier column or H3-derived
cells), points with different identifiers are kept in separate clusters.
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		o := &hierarchicalOptions

		pl, err := o.open()
		if err != nil {
			return err
		}
		defer pl.Close()

		engine := cluster.NewEngine(
			cluster.WithProgress(newCmdProgress("Clustering")),
			cluster.WithMaxPoints(o.limit),
		)

		opt := cluster.HierarchicalOptions{
			Tolerance: o.tolerance,
			Method:    cluster.Method(o.method),
			Metric:    cluster.Metric(o.metric),
			Criterion: cluster.Criterion(o.criterion),
			Depth:     o.depth,
		}

		var res *cluster.Result

		if pl.hasIdentifiers() {
			res, err = engine.HierarchicalByIdentifier(layer.Points(pl.records), layer.Identifiers(pl.records), opt)
		} else {
			res, err = engine.Hierarchical(layer.Points(pl.records), opt)
		}

		if err != nil {
			return err
		}

		return o.saveClustered(pl, res.Labels, res.Clusters)
	},
}

func init() {
	rootCmd.AddCommand(hierarchicalCmd)
	hierarchicalOptions.register(hierarchicalCmd)

	flags := hierarchicalCmd.PersistentFlags()
	flags.Float64Var(&hierarchicalOptions.tolerance, "tolerance", 0,
		"Cut threshold; the target cluster count under the maxclust criteria")
	flags.StringVar(&hierarchicalOptions.method, "method", string(cluster.Single),
		"Linkage method: single, complete, average, weighted, centroid, median or ward")
	flags.StringVar(&hierarchicalOptions.metric, "metric", string(cluster.Euclidean),
		"Distance metric: euclidean or cityblock")
	flags.StringVar(&hierarchicalOptions.criterion, "criterion", string(cluster.CriterionDistance),
		"Flat cluster criterion: distance, maxclust or inconsistent")
	flags.IntVar(&hierarchicalOptions.depth, "depth", 0,
		"Window depth for the inconsistent criterion (0: default)")

	_ = hierarchicalCmd.MarkPersistentFlagRequired("tolerance")
}
