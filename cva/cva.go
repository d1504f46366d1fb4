// SPDX-License-Identifier: MIT

package cva

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/matrix"
	"github.com/katalvlaran/morphometrics/result"
)

// ErrBadOption indicates a non-positive condition limit.
var ErrBadOption = errors.New("cva: invalid option")

// varianceFloor is the relative variance below which a column counts as constant.
const varianceFloor = 1e-20

// Options configures Analyze.
type Options struct {
	// ConditionLimit bounds the condition estimate of the within-group
	// covariance; above it the matrix is treated as singular.
	ConditionLimit float64
}

// Option represents a functional option for Analyze.
type Option func(*Options)

// WithConditionLimit sets the singularity threshold (must be > 1).
func WithConditionLimit(limit float64) Option {
	return func(o *Options) { o.ConditionLimit = limit }
}

// DefaultOptions returns ConditionLimit = matrix.DefaultConditionLimit.
func DefaultOptions() Options {
	return Options{ConditionLimit: matrix.DefaultConditionLimit}
}

// Analyze runs CVA over data with one group label per row.
// Implementation:
//   - Stage 1: validate shapes, summarize groups in label order.
//   - Stage 2: exclude constant variables (retained indices).
//   - Stage 3: within/between covariance on the retained columns.
//   - Stage 4: SVD of W⁻¹·B, scatter rotation back to full width.
//   - Stage 5: raw scores, group centroids, nearest-centroid classification.
//
// The p×p rotation keeps excluded variables as zero rows at their own indices;
// its columns hold the q canonical axes first, followed by p−q zero columns.
//
// Complexity:
//   - Time O(n·q² + q³) with q retained variables, Space O(n·p + p²).
func Analyze(data [][]float64, groups []string, opts ...Option) (*result.Analysis, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if !(o.ConditionLimit > 1) {
		return nil, ErrBadOption
	}
	if len(data) != len(groups) {
		return nil, fmt.Errorf("cva: %d rows, %d labels: %w", len(data), len(groups), morphometrics.ErrDegenerateInput)
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("cva: %d observations: %w", len(data), morphometrics.ErrInsufficientData)
	}
	X, err := matrix.FromRows(data)
	if err != nil {
		return nil, fmt.Errorf("cva: %w: %w", morphometrics.ErrDegenerateInput, err)
	}
	stats := result.SummarizeGroups(data, groups)
	if len(stats) < 2 {
		return nil, fmt.Errorf("cva: %d distinct group(s): %w", len(stats), morphometrics.ErrInsufficientGroups)
	}

	n, p, g := X.Rows(), X.Cols(), len(stats)
	vars, means, err := matrix.ColumnVariances(X, matrix.Sample)
	if err != nil {
		return nil, fmt.Errorf("cva: variances: %w", err)
	}
	retained := make([]int, 0, p)
	for j, v := range vars {
		if v > varianceFloor*math.Max(1, means[j]*means[j]) {
			retained = append(retained, j)
		}
	}
	q := len(retained)
	if q == 0 {
		return nil, fmt.Errorf("cva: every variable is constant: %w", morphometrics.ErrDegenerateInput)
	}
	if n-g <= 0 {
		return nil, fmt.Errorf("cva: %d observations in %d groups: %w", n, g, morphometrics.ErrSingularMatrix)
	}

	W, B, err := scatter(data, stats, means, retained)
	if err != nil {
		return nil, err
	}
	Winv, err := matrix.InverseWithLimit(W, o.ConditionLimit)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) {
			return nil, fmt.Errorf("cva: within-group covariance: %w: %w", morphometrics.ErrSingularMatrix, err)
		}
		return nil, fmt.Errorf("cva: within-group covariance: %w", err)
	}
	M, err := matrix.Mul(Winv, B)
	if err != nil {
		return nil, fmt.Errorf("cva: %w", err)
	}
	U, s, _, err := matrix.SVD(M)
	if err != nil {
		return nil, fmt.Errorf("cva: svd: %w", err)
	}
	var total float64
	for _, v := range s {
		total += v
	}
	if !(total > 0) {
		return nil, fmt.Errorf("cva: group means coincide: %w", morphometrics.ErrDegenerateInput)
	}

	// Scatter back: axis k of the retained space becomes column k, and
	// retained variable a becomes row retained[a]. Remaining entries stay 0.
	rot, _ := matrix.NewDense(p, p)
	eig := make([]float64, p)
	pct := make([]float64, p)
	cum := make([]float64, p)
	var acc float64
	for k := 0; k < p; k++ {
		if k < q {
			eig[k] = s[k]
			pct[k] = s[k] / total
			acc += pct[k]
			for a, row := range retained {
				u, _ := U.At(a, k)
				_ = rot.Set(row, k, u)
			}
		}
		cum[k] = acc
	}

	scores, err := matrix.Mul(X, rot)
	if err != nil {
		return nil, fmt.Errorf("cva: scores: %w", err)
	}
	scoreRows := scores.ToRows()

	axes := g - 1
	if q < axes {
		axes = q
	}
	centroids := make([]result.GroupCentroid, g)
	for i, st := range stats {
		c := make([]float64, p)
		for _, m := range st.Members {
			for k, v := range scoreRows[m] {
				c[k] += v
			}
		}
		for k := range c {
			c[k] /= float64(st.Size)
		}
		centroids[i] = result.GroupCentroid{Label: st.Label, Size: st.Size, Centroid: c}
	}
	class, accuracy := classify(scoreRows, groups, centroids, axes)

	return &result.Analysis{
		Kind:                  result.KindCVA,
		Eigenvalues:           eig,
		EigenvaluePercentages: pct,
		CumulativePercentages: cum,
		RotationMatrix:        rot.ToRows(),
		Scores:                scoreRows,
		Means:                 means,
		RetainedVariables:     retained,
		NonTrivialAxes:        axes,
		Groups:                result.Labels(stats),
		GroupCentroids:        centroids,
		Classification:        class,
		Accuracy:              &accuracy,
	}, nil
}

// scatter returns the within-group covariance Σ (x−m_g)(x−m_g)ᵀ/(n−g) and the
// between-group covariance Σ n_g (m_g−m)(m_g−m)ᵀ/g over the retained columns.
func scatter(data [][]float64, stats []result.GroupStatistics, means []float64, retained []int) (*matrix.Dense, *matrix.Dense, error) {
	n, g, q := len(data), len(stats), len(retained)

	dev := make([][]float64, 0, n)
	between := make([][]float64, g)
	for gi, st := range stats {
		w := math.Sqrt(float64(st.Size))
		between[gi] = make([]float64, q)
		for a, j := range retained {
			between[gi][a] = w * (st.Mean[j] - means[j])
		}
		for _, i := range st.Members {
			row := make([]float64, q)
			for a, j := range retained {
				row[a] = data[i][j] - st.Mean[j]
			}
			dev = append(dev, row)
		}
	}

	W, err := gram(dev, float64(n-g))
	if err != nil {
		return nil, nil, fmt.Errorf("cva: within-group covariance: %w", err)
	}
	B, err := gram(between, float64(g))
	if err != nil {
		return nil, nil, fmt.Errorf("cva: between-group covariance: %w", err)
	}

	return W, B, nil
}

// gram returns DᵀD / den.
func gram(rows [][]float64, den float64) (*matrix.Dense, error) {
	D, err := matrix.FromRows(rows)
	if err != nil {
		return nil, err
	}
	Dt, err := matrix.Transpose(D)
	if err != nil {
		return nil, err
	}
	G, err := matrix.Mul(Dt, D)
	if err != nil {
		return nil, err
	}

	return matrix.Scale(G, 1/den)
}

// classify assigns each row to the nearest centroid over the first axes
// columns; ties go to the earlier label. It returns the labels and the
// percentage of rows whose label matches.
func classify(scores [][]float64, labels []string, centroids []result.GroupCentroid, axes int) ([]string, float64) {
	out := make([]string, len(scores))
	var hits int
	for i, row := range scores {
		best, bestD := 0, math.Inf(1)
		for ci, c := range centroids {
			var d float64
			for k := 0; k < axes; k++ {
				diff := row[k] - c.Centroid[k]
				d += diff * diff
			}
			if d < bestD {
				best, bestD = ci, d
			}
		}
		out[i] = centroids[best].Label
		if out[i] == labels[i] {
			hits++
		}
	}

	return out, 100 * float64(hits) / float64(len(scores))
}
