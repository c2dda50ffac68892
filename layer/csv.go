// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spatialvision/geocluster/spatial"
)

// CSVOptions locate the point data inside a CSV file. Column indices are
// zero-based; IDColumn and IdentifierColumn of -1 mean absent (record
// ordinals become ids, identifiers stay empty).
type CSVOptions struct {
	XColumn          int
	YColumn          int
	IDColumn         int
	IdentifierColumn int
	SkipHeader       bool
}

// DefaultCSVOptions reads x from the first column and y from the second,
// with no id or identifier columns.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{XColumn: 0, YColumn: 1, IDColumn: -1, IdentifierColumn: -1}
}

// ReadCSV loads point records from a CSV file.
func ReadCSV(path string, opts CSVOptions) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input layer: %w", err)
	}
	defer f.Close()

	return readCSV(bufio.NewReader(f), opts)
}

func readCSV(src io.Reader, opts CSVOptions) ([]Record, error) {
	r := csv.NewReader(src)

	var records []Record

	row := 0

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading input layer: %w", err)
		}

		row++

		if opts.SkipHeader && row == 1 {
			continue
		}

		rec, err := parseRecord(fields, opts, int64(len(records)))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(fields []string, opts CSVOptions, ordinal int64) (Record, error) {
	var rec Record

	x, err := fieldFloat(fields, opts.XColumn, "x")
	if err != nil {
		return rec, err
	}

	y, err := fieldFloat(fields, opts.YColumn, "y")
	if err != nil {
		return rec, err
	}

	rec.Point.X = x
	rec.Point.Y = y
	rec.ID = ordinal

	if opts.IDColumn >= 0 {
		if opts.IDColumn >= len(fields) {
			return rec, fmt.Errorf("id column %d out of range", opts.IDColumn)
		}

		id, err := strconv.ParseInt(fields[opts.IDColumn], 10, 64)
		if err != nil {
			return rec, fmt.Errorf("parsing id %q: %w", fields[opts.IDColumn], err)
		}

		rec.ID = id
	}

	if opts.IdentifierColumn >= 0 {
		if opts.IdentifierColumn >= len(fields) {
			return rec, fmt.Errorf("identifier column %d out of range", opts.IdentifierColumn)
		}

		rec.Identifier = fields[opts.IdentifierColumn]
	}

	return rec, nil
}

func fieldFloat(fields []string, col int, name string) (float64, error) {
	if col < 0 || col >= len(fields) {
		return 0, fmt.Errorf("%s column %d out of range", name, col)
	}

	v, err := strconv.ParseFloat(fields[col], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", name, fields[col], err)
	}

	return v, nil
}

// WriteClusteredCSV writes the records with their cluster labels appended,
// one row per record with a header.
func WriteClusteredCSV(path, labelField string, records []Record, labels []int) error {
	if len(labels) != len(records) {
		return fmt.Errorf("have %d labels for %d records", len(labels), len(records))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output layer: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"id", "x", "y", "identifier", labelField}); err != nil {
		return err
	}

	for i, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			strconv.FormatFloat(rec.Point.X, 'g', -1, 64),
			strconv.FormatFloat(rec.Point.Y, 'g', -1, 64),
			rec.Identifier,
			strconv.Itoa(labels[i]),
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// WriteCentroidsCSV writes k-means centroids as standalone points, one row
// per cluster label.
func WriteCentroidsCSV(path, labelField string, centroids []spatial.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating centroid layer: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{labelField, "x", "y"}); err != nil {
		return err
	}

	for i, c := range centroids {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(c.X, 'g', -1, 64),
			strconv.FormatFloat(c.Y, 'g', -1, 64),
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
