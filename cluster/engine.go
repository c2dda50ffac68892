// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

// Package cluster implements planar point clustering: pairwise distance
// matrices, Lance-Williams agglomerative linkage with flat cluster
// extraction, an identifier-based hard grouping constraint, and k-means
// partitioning.
package cluster

import (
	"fmt"

	"github.com/spatialvision/geocluster/spatial"
)

// Engine wires the clustering components into the three user-facing
// operations. It holds no per-call state; every operation owns its working
// matrices and trees for the duration of the call and returns caller-owned
// results.
type Engine struct {
	progress  Progress
	maxPoints int
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress installs a progress sink. The default discards updates.
func WithProgress(p Progress) Option {
	return func(e *Engine) {
		e.progress = p
	}
}

// WithMaxPoints imposes a maximum point count per operation. Zero means no
// limit.
func WithMaxPoints(n int) Option {
	return func(e *Engine) {
		e.maxPoints = n
	}
}

// NewEngine builds an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{progress: NopProgress{}}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// HierarchicalOptions parameterize the hierarchical operations. Tolerance
// is the cut threshold (or target cluster count for the maxclust criteria).
// Depth and Monocrit feed the inconsistent and monocrit criteria; see
// CutOptions.
type HierarchicalOptions struct {
	Tolerance float64
	Method    Method
	Metric    Metric
	Criterion Criterion
	Depth     int
	Monocrit  []float64
}

// Result holds a flat clustering: one label per input point, contiguous
// from 1, and the number of clusters formed.
type Result struct {
	Labels   []int
	Clusters int
}

// Hierarchical runs agglomerative clustering over the points and cuts the
// dendrogram per the options.
func (e *Engine) Hierarchical(points []spatial.Point, opt HierarchicalOptions) (*Result, error) {
	if err := e.validate(points, &opt); err != nil {
		return nil, err
	}

	e.progress.SetPercentage(0)
	e.progress.Info("Computing pairwise distances")

	dm, err := PDist(points, opt.Metric)
	if err != nil {
		return nil, e.fail(err)
	}

	e.progress.SetPercentage(30)
	e.progress.Info("Building hierarchical clusters")

	dend, err := Linkage(dm, opt.Method)
	if err != nil {
		return nil, e.fail(err)
	}

	labels, clusters, err := e.cut(dend, opt)
	if err != nil {
		return nil, err
	}

	return &Result{Labels: labels, Clusters: clusters}, nil
}

// HierarchicalByIdentifier runs agglomerative clustering under the hard
// constraint that points with different identifiers never merge before all
// same-identifier points have: cross-identifier distances are masked to
// +Inf before linkage, and the matrix is recompressed for the same
// algorithm the unconstrained path uses.
func (e *Engine) HierarchicalByIdentifier(points []spatial.Point, identifiers []string, opt HierarchicalOptions) (*Result, error) {
	if err := e.validate(points, &opt); err != nil {
		return nil, err
	}

	if len(identifiers) != len(points) {
		return nil, e.fail(&InvalidInputError{
			Param:  "identifiers",
			Value:  len(identifiers),
			Reason: fmt.Sprintf("one identifier per point is required, have %d points", len(points)),
		})
	}

	e.progress.SetPercentage(0)
	e.progress.Info("Computing pairwise distances")

	dm, err := PDist(points, opt.Metric)
	if err != nil {
		return nil, e.fail(err)
	}

	e.progress.SetPercentage(20)

	masked, err := MaskCrossIdentifier(dm.Squareform(), identifiers)
	if err != nil {
		return nil, e.fail(err)
	}

	constrained, err := Squareform(masked)
	if err != nil {
		return nil, e.fail(err)
	}

	e.progress.SetPercentage(40)
	e.progress.Info("Building hierarchical clusters")

	dend, err := Linkage(constrained, opt.Method)
	if err != nil {
		return nil, e.fail(err)
	}

	labels, clusters, err := e.cut(dend, opt)
	if err != nil {
		return nil, err
	}

	return &Result{Labels: labels, Clusters: clusters}, nil
}

// KMeans partitions the points into opt.K clusters.
func (e *Engine) KMeans(points []spatial.Point, opt KMeansOptions) (*KMeansResult, error) {
	if err := e.checkLimit(len(points)); err != nil {
		return nil, err
	}

	e.progress.SetPercentage(0)
	e.progress.Info("Building k-means clusters")

	res, err := KMeans(points, opt)
	if err != nil {
		return nil, e.fail(err)
	}

	e.progress.SetPercentage(50)
	e.progress.Info(fmt.Sprintf("%d clusters formed.", res.Clusters))
	e.progress.SetPercentage(100)

	return res, nil
}

// validate performs the eager parameter checks shared by both hierarchical
// paths, before any algorithmic work.
func (e *Engine) validate(points []spatial.Point, opt *HierarchicalOptions) error {
	if err := e.checkLimit(len(points)); err != nil {
		return err
	}

	if len(points) < 2 {
		return e.fail(&InvalidInputError{
			Param:  "points",
			Value:  len(points),
			Reason: "at least 2 points are required",
		})
	}

	if _, err := ParseMethod(string(opt.Method)); err != nil {
		return e.fail(err)
	}

	if _, err := ParseMetric(string(opt.Metric)); err != nil {
		return e.fail(err)
	}

	if _, err := ParseCriterion(string(opt.Criterion)); err != nil {
		return e.fail(err)
	}

	if opt.Method.RequiresEuclidean() && opt.Metric != Euclidean {
		return e.fail(&UnsupportedMetricError{Method: opt.Method, Metric: opt.Metric})
	}

	switch opt.Criterion {
	case CriterionDistance, CriterionInconsistent:
		if opt.Tolerance <= 0 {
			return e.fail(&InvalidInputError{
				Param:  "tolerance",
				Value:  opt.Tolerance,
				Reason: "threshold must be greater than zero",
			})
		}
	}

	return nil
}

func (e *Engine) checkLimit(n int) error {
	if e.maxPoints > 0 && n > e.maxPoints {
		return e.fail(&InvalidInputError{
			Param:  "points",
			Value:  n,
			Reason: fmt.Sprintf("point count exceeds the configured limit of %d", e.maxPoints),
		})
	}

	return nil
}

func (e *Engine) cut(dend *Dendrogram, opt HierarchicalOptions) ([]int, int, error) {
	labels, clusters, err := Cut(dend, CutOptions{
		Criterion: opt.Criterion,
		Threshold: opt.Tolerance,
		Depth:     opt.Depth,
		Monocrit:  opt.Monocrit,
	})
	if err != nil {
		return nil, 0, e.fail(err)
	}

	e.progress.SetPercentage(60)
	e.progress.Info(fmt.Sprintf("%d clusters formed.", clusters))
	e.progress.SetPercentage(100)

	return labels, clusters, nil
}

func (e *Engine) fail(err error) error {
	e.progress.Error(err.Error())

	return err
}
