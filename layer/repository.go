// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"database/sql"
	"fmt"
	"regexp"

	"github.com/spatialvision/geocluster/spatial"
)

// Repository reads point records from DuckDB tables and writes labeled
// results and centroids back.
type Repository interface {
	// LoadRecords reads records from table. xCol and yCol name DOUBLE
	// coordinate columns; idCol and identifierCol are optional ("" means
	// row ordinals / empty identifiers).
	LoadRecords(table, xCol, yCol, idCol, identifierCol string) ([]Record, error)

	// SaveClustered writes records with their labels to a fresh table,
	// replacing any previous run's output. The label column takes the
	// caller's field name.
	SaveClustered(table, labelField string, records []Record, labels []int) error

	// SaveCentroids writes k-means centroids as standalone points; row i
	// carries cluster label i.
	SaveCentroids(table, labelField string, centroids []spatial.Point) error

	// LoadCentroids reads a centroid table back in label order.
	LoadCentroids(table, labelField string) ([]spatial.Point, error)
}

type sqlLayerRepository struct {
	db *sql.DB
}

// NewRepository wraps an open DuckDB connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlLayerRepository{db: db}
}

// Table and column names reach SQL text directly, so they are restricted to
// plain identifiers.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdent(kind, name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}

	return nil
}

func (r *sqlLayerRepository) LoadRecords(table, xCol, yCol, idCol, identifierCol string) ([]Record, error) {
	for kind, name := range map[string]string{"table": table, "x column": xCol, "y column": yCol} {
		if err := checkIdent(kind, name); err != nil {
			return nil, err
		}
	}

	idExpr := "row_number() OVER () - 1"
	if idCol != "" {
		if err := checkIdent("id column", idCol); err != nil {
			return nil, err
		}

		idExpr = idCol
	}

	identifierExpr := "''"
	if identifierCol != "" {
		if err := checkIdent("identifier column", identifierCol); err != nil {
			return nil, err
		}

		identifierExpr = fmt.Sprintf("CAST(%s AS VARCHAR)", identifierCol)
	}

	query := fmt.Sprintf(
		"SELECT %s, %s, %s, %s FROM %s",
		idExpr, xCol, yCol, identifierExpr, table,
	)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("loading records from %s: %w", table, err)
	}
	defer rows.Close()

	var records []Record

	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Point.X, &rec.Point.Y, &rec.Identifier); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading records from %s: %w", table, err)
	}

	return records, nil
}

func (r *sqlLayerRepository) SaveClustered(table, labelField string, records []Record, labels []int) error {
	if len(labels) != len(records) {
		return fmt.Errorf("have %d labels for %d records", len(labels), len(records))
	}

	if err := checkIdent("table", table); err != nil {
		return err
	}

	if err := checkIdent("label field", labelField); err != nil {
		return err
	}

	_, err := r.db.Exec(fmt.Sprintf(`
		DROP TABLE IF EXISTS %[1]s;

		CREATE TABLE %[1]s (
			id BIGINT NOT NULL,
			x DOUBLE NOT NULL,
			y DOUBLE NOT NULL,
			identifier VARCHAR,
			%[2]s INTEGER NOT NULL
		);
	`, table, labelField))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (id, x, y, identifier, %s) VALUES (?, ?, ?, ?, ?)",
		table, labelField,
	))
	if err != nil {
		_ = tx.Rollback()

		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(rec.ID, rec.Point.X, rec.Point.Y, rec.Identifier, labels[i]); err != nil {
			_ = tx.Rollback()

			return fmt.Errorf("inserting record %d: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (r *sqlLayerRepository) SaveCentroids(table, labelField string, centroids []spatial.Point) error {
	if err := checkIdent("table", table); err != nil {
		return err
	}

	if err := checkIdent("label field", labelField); err != nil {
		return err
	}

	_, err := r.db.Exec(fmt.Sprintf(`
		DROP TABLE IF EXISTS %[1]s;

		CREATE TABLE %[1]s (
			%[2]s INTEGER NOT NULL,
			x DOUBLE NOT NULL,
			y DOUBLE NOT NULL
		);
	`, table, labelField))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s, x, y) VALUES (?, ?, ?)",
		table, labelField,
	))
	if err != nil {
		_ = tx.Rollback()

		return err
	}
	defer stmt.Close()

	for i, c := range centroids {
		if _, err := stmt.Exec(i, c.X, c.Y); err != nil {
			_ = tx.Rollback()

			return fmt.Errorf("inserting centroid %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *sqlLayerRepository) LoadCentroids(table, labelField string) ([]spatial.Point, error) {
	if err := checkIdent("table", table); err != nil {
		return nil, err
	}

	if err := checkIdent("label field", labelField); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(fmt.Sprintf("SELECT x, y FROM %s ORDER BY %s", table, labelField))
	if err != nil {
		return nil, fmt.Errorf("loading centroids from %s: %w", table, err)
	}
	defer rows.Close()

	var centroids []spatial.Point

	for rows.Next() {
		var p spatial.Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scanning centroid: %w", err)
		}

		centroids = append(centroids, p)
	}

	return centroids, rows.Err()
}
