// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/spatialvision/geocluster/layer"
	"github.com/spatialvision/geocluster/spatial"
)

// layerOptions bind the input/output layer flags shared by the clustering
// commands. The input is a CSV file unless --db is given, in which case
// records come from a DuckDB table and results land in one.
type layerOptions struct {
	// CSV mode
	input            string
	xCol             int
	yCol             int
	idCol            int
	identifierCol    int
	skipHeader       bool
	output           string
	centroidOutput   string

	// DuckDB mode
	dbPath           string
	table            string
	xColumn          string
	yColumn          string
	idColumn         string
	identifierColumn string
	outputTable      string
	centroidTable    string

	// Identifier derivation
	h3Resolution    int
	foldIdentifiers bool

	labelField string
	limit      int
}

func (o *layerOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&o.input, "input", "", "Input CSV file with one point per row")
	flags.IntVar(&o.xCol, "x-col", 0, "Zero-based CSV column holding the x coordinate")
	flags.IntVar(&o.yCol, "y-col", 1, "Zero-based CSV column holding the y coordinate")
	flags.IntVar(&o.idCol, "id-col", -1, "Zero-based CSV column holding the feature id (-1: row ordinals)")
	flags.IntVar(&o.identifierCol, "identifier-col", -1, "Zero-based CSV column holding the group identifier (-1: none)")
	flags.BoolVar(&o.skipHeader, "header", false, "Skip the first CSV row")
	flags.StringVar(&o.output, "output", "clustered.csv", "Output CSV file for the labeled layer")
	flags.StringVar(&o.centroidOutput, "centroid-output", "", "Output CSV file for centroids (k-means only)")

	flags.StringVar(&o.dbPath, "db", "", "Read from this DuckDB database instead of a CSV file")
	flags.StringVar(&o.table, "table", "points", "Input table when reading from DuckDB")
	flags.StringVar(&o.xColumn, "x-column", "x", "Column holding the x coordinate when reading from DuckDB")
	flags.StringVar(&o.yColumn, "y-column", "y", "Column holding the y coordinate when reading from DuckDB")
	flags.StringVar(&o.idColumn, "id-column", "", "Column holding the feature id when reading from DuckDB")
	flags.StringVar(&o.identifierColumn, "identifier-column", "", "Column holding the group identifier when reading from DuckDB")
	flags.StringVar(&o.outputTable, "output-table", "clustered", "Output table when reading from DuckDB")
	flags.StringVar(&o.centroidTable, "centroid-table", "", "Output table for centroids (k-means only)")

	flags.IntVar(&o.h3Resolution, "h3-resolution", -1,
		"Derive group identifiers from the H3 cell at this resolution; coordinates must be lng/lat (-1: off)")
	flags.BoolVar(&o.foldIdentifiers, "fold-identifiers", false,
		"Lowercase and strip accents from group identifiers before comparing them")

	flags.StringVar(&o.labelField, "label-field", "label", "Name of the cluster label column in the output")
	flags.IntVar(&o.limit, "limit", 0, "Refuse inputs with more than this many points (0: no limit)")
}

func (o *layerOptions) useDB() bool {
	return o.dbPath != ""
}

// pointLayer is an opened input layer plus the handle needed to write
// results back to the same place.
type pointLayer struct {
	records []layer.Record
	repo    layer.Repository
	db      *sql.DB
}

func (l *pointLayer) Close() error {
	if l.db != nil {
		return l.db.Close()
	}

	return nil
}

func (o *layerOptions) open() (*pointLayer, error) {
	pl := &pointLayer{}

	if o.useDB() {
		db, err := sql.Open("duckdb", o.dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}

		pl.db = db
		pl.repo = layer.NewRepository(db)

		pl.records, err = pl.repo.LoadRecords(o.table, o.xColumn, o.yColumn, o.idColumn, o.identifierColumn)
		if err != nil {
			_ = db.Close()

			return nil, err
		}
	} else {
		if o.input == "" {
			return nil, fmt.Errorf("either --input or --db is required")
		}

		var err error

		pl.records, err = layer.ReadCSV(o.input, layer.CSVOptions{
			XColumn:          o.xCol,
			YColumn:          o.yCol,
			IDColumn:         o.idCol,
			IdentifierColumn: o.identifierCol,
			SkipHeader:       o.skipHeader,
		})
		if err != nil {
			return nil, err
		}
	}

	if o.h3Resolution >= 0 {
		identifiers, err := layer.H3Identifiers(pl.records, o.h3Resolution)
		if err != nil {
			_ = pl.Close()

			return nil, err
		}

		for i := range pl.records {
			pl.records[i].Identifier = identifiers[i]
		}
	}

	if o.foldIdentifiers {
		pl.records = layer.FoldIdentifiers(pl.records)
	}

	return pl, nil
}

// hasIdentifiers reports whether any record carries a group identifier, which
// selects the constrained clustering path.
func (l *pointLayer) hasIdentifiers() bool {
	for _, rec := range l.records {
		if rec.Identifier != "" {
			return true
		}
	}

	return false
}

func (o *layerOptions) saveClustered(pl *pointLayer, labels []int, clusters int) error {
	if o.useDB() {
		if err := pl.repo.SaveClustered(o.outputTable, o.labelField, pl.records, labels); err != nil {
			return err
		}

		log.Printf("Wrote %d labeled points (%d clusters) to table %s", len(labels), clusters, o.outputTable)

		return nil
	}

	if err := layer.WriteClusteredCSV(o.output, o.labelField, pl.records, labels); err != nil {
		return err
	}

	log.Printf("Wrote %d labeled points (%d clusters) to %s", len(labels), clusters, o.output)

	return nil
}

func (o *layerOptions) saveCentroids(pl *pointLayer, centroids []spatial.Point) error {
	if o.useDB() {
		if o.centroidTable == "" {
			return nil
		}

		return pl.repo.SaveCentroids(o.centroidTable, o.labelField, centroids)
	}

	if o.centroidOutput == "" {
		return nil
	}

	return layer.WriteCentroidsCSV(o.centroidOutput, o.labelField, centroids)
}
