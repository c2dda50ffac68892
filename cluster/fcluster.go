// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"fmt"
	"math"
	"sort"
)

// Criterion selects how a dendrogram is cut into flat clusters.
type Criterion string

const (
	CriterionDistance         Criterion = "distance"
	CriterionInconsistent     Criterion = "inconsistent"
	CriterionMaxclust         Criterion = "maxclust"
	CriterionMonocrit         Criterion = "monocrit"
	CriterionMaxclustMonocrit Criterion = "maxclust_monocrit"
)

// ParseCriterion maps a user-supplied name to a Criterion.
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(s) {
	case CriterionDistance, CriterionInconsistent, CriterionMaxclust,
		CriterionMonocrit, CriterionMaxclustMonocrit:
		return Criterion(s), nil
	}

	return "", &InvalidInputError{
		Param:  "criterion",
		Value:  s,
		Reason: "must be one of distance, inconsistent, maxclust, monocrit, maxclust_monocrit",
	}
}

// CutOptions parameterize Cut. Threshold is the cut height for the
// threshold criteria and the target cluster count for the maxclust ones.
// Depth bounds the inconsistency window (0 means the default of 2), and
// Monocrit supplies the per-merge criterion for the monocrit criteria,
// aligned with Dendrogram.Merges.
type CutOptions struct {
	Criterion Criterion
	Threshold float64
	Depth     int
	Monocrit  []float64
}

// Cut flattens a dendrogram into cluster labels. Labels are contiguous
// integers starting at 1, assigned in order of first appearance when
// scanning points 0..n-1, so labeling is independent of internal node
// numbering. Returns the labels and the number of clusters formed.
func Cut(d *Dendrogram, opt CutOptions) ([]int, int, error) {
	if _, err := ParseCriterion(string(opt.Criterion)); err != nil {
		return nil, 0, err
	}

	n := d.Points()

	crit, err := criterionValues(d, opt)
	if err != nil {
		return nil, 0, err
	}

	// Monotonize: a merge only separates cleanly if nothing below it sits
	// above the cut, so each merge is judged by its subtree maximum.
	maxima := subtreeMaxima(d, crit)

	var cutoff float64

	switch opt.Criterion {
	case CriterionDistance, CriterionInconsistent:
		if opt.Threshold <= 0 {
			return nil, 0, &InvalidInputError{
				Param:  "tolerance",
				Value:  opt.Threshold,
				Reason: "threshold must be greater than zero",
			}
		}

		cutoff = opt.Threshold
	case CriterionMonocrit:
		cutoff = opt.Threshold
	case CriterionMaxclust, CriterionMaxclustMonocrit:
		target := int(opt.Threshold)
		if float64(target) != opt.Threshold || target < 1 || target > n {
			return nil, 0, &InvalidInputError{
				Param:  "maxclust",
				Value:  opt.Threshold,
				Reason: fmt.Sprintf("target cluster count must be a whole number between 1 and %d", n),
			}
		}

		cutoff = maxclustCutoff(maxima, n, target)
	}

	labels, clusters := labelComponents(d, maxima, cutoff)

	return labels, clusters, nil
}

func criterionValues(d *Dendrogram, opt CutOptions) ([]float64, error) {
	switch opt.Criterion {
	case CriterionMonocrit, CriterionMaxclustMonocrit:
		if len(opt.Monocrit) != len(d.Merges()) {
			return nil, &InvalidInputError{
				Param:  "monocrit",
				Value:  len(opt.Monocrit),
				Reason: fmt.Sprintf("one criterion value per merge is required, have %d merges", len(d.Merges())),
			}
		}

		return opt.Monocrit, nil
	case CriterionInconsistent:
		depth := opt.Depth
		if depth == 0 {
			depth = 2
		}

		if depth < 1 {
			return nil, &InvalidInputError{Param: "depth", Value: depth, Reason: "depth must be at least 1"}
		}

		return inconsistency(d, depth), nil
	}

	merges := d.Merges()
	heights := make([]float64, len(merges))

	for i, m := range merges {
		heights[i] = m.Distance
	}

	return heights, nil
}

// subtreeMaxima returns, per merge, the maximum criterion value over the
// merge and all merges below it.
func subtreeMaxima(d *Dendrogram, crit []float64) []float64 {
	n := d.Points()
	maxima := make([]float64, len(crit))

	// Children always precede their parent, so one forward pass suffices.
	for i, m := range d.Merges() {
		maxima[i] = crit[i]

		if m.A >= n && maxima[m.A-n] > maxima[i] {
			maxima[i] = maxima[m.A-n]
		}

		if m.B >= n && maxima[m.B-n] > maxima[i] {
			maxima[i] = maxima[m.B-n]
		}
	}

	return maxima
}

// inconsistency computes the inconsistency coefficient per merge: the
// merge's height minus the mean height of merges within the depth window
// below it, in units of their sample standard deviation. Zero when the
// window has no spread.
func inconsistency(d *Dendrogram, depth int) []float64 {
	n := d.Points()
	merges := d.Merges()
	coefs := make([]float64, len(merges))

	var window func(node, remaining int, heights *[]float64)
	window = func(node, remaining int, heights *[]float64) {
		m := merges[node]
		*heights = append(*heights, m.Distance)

		if remaining == 1 {
			return
		}

		if m.A >= n {
			window(m.A-n, remaining-1, heights)
		}

		if m.B >= n {
			window(m.B-n, remaining-1, heights)
		}
	}

	for i, m := range merges {
		heights := make([]float64, 0, 1<<uint(depth))
		window(i, depth, &heights)

		var sum float64
		for _, h := range heights {
			sum += h
		}

		mean := sum / float64(len(heights))

		var variance float64
		for _, h := range heights {
			variance += (h - mean) * (h - mean)
		}

		if len(heights) > 1 {
			variance /= float64(len(heights) - 1)
		}

		if sd := math.Sqrt(variance); sd > 0 {
			coefs[i] = (m.Distance - mean) / sd
		}
	}

	return coefs
}

// maxclustCutoff finds the smallest cutoff over the subtree maxima that
// yields at most target clusters. Cluster count as a function of the cutoff
// is monotone non-increasing: every qualifying merge joins two previously
// separate components.
func maxclustCutoff(maxima []float64, n, target int) float64 {
	needed := n - target
	if needed <= 0 {
		// Every point its own cluster; sit below any criterion value.
		return math.Inf(-1)
	}

	sorted := make([]float64, len(maxima))
	copy(sorted, maxima)
	sort.Float64s(sorted)

	return sorted[needed-1]
}

// labelComponents merges every subtree whose criterion maximum is within
// the cutoff and labels the resulting components.
func labelComponents(d *Dendrogram, maxima []float64, cutoff float64) ([]int, int) {
	n := d.Points()

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}

		return x
	}

	// Any point inside a node's subtree identifies its component; track one
	// representative per internal node as merges are replayed.
	rep := make([]int, len(d.Merges()))

	for i, m := range d.Merges() {
		a := m.A
		if a >= n {
			a = rep[a-n]
		}

		b := m.B
		if b >= n {
			b = rep[b-n]
		}

		rep[i] = a

		if maxima[i] <= cutoff {
			parent[find(b)] = find(a)
		}
	}

	labels := make([]int, n)
	next := 0
	seen := make(map[int]int, n)

	for i := 0; i < n; i++ {
		root := find(i)

		label, ok := seen[root]
		if !ok {
			next++
			label = next
			seen[root] = label
		}

		labels[i] = label
	}

	return labels, next
}
