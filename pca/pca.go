// SPDX-License-Identifier: MIT

package pca

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/matrix"
	"github.com/katalvlaran/morphometrics/result"
)

// ErrBadOption indicates an invalid cutoff.
var ErrBadOption = errors.New("pca: invalid option")

// Default cutoffs.
const (
	DefaultSignificance = 0.95
	DefaultNegligible   = 1e-5
)

// Options configures Analyze.
type Options struct {
	Significance float64
	Negligible   float64
}

// Option represents a functional option for Analyze.
type Option func(*Options)

// WithSignificance sets the cumulative-percentage cutoff, in (0, 1].
func WithSignificance(v float64) Option {
	return func(o *Options) { o.Significance = v }
}

// WithNegligible sets the per-component percentage cutoff, in [0, 1).
func WithNegligible(v float64) Option {
	return func(o *Options) { o.Negligible = v }
}

// DefaultOptions returns Significance 0.95 and Negligible 1e-5.
func DefaultOptions() Options {
	return Options{Significance: DefaultSignificance, Negligible: DefaultNegligible}
}

// Analyze runs PCA over data.
// Implementation:
//   - Stage 1: load rows into a Dense; center a copy.
//   - Stage 2: population covariance, SVD.
//   - Stage 3: percentages, cutoffs, scores.
//
// Complexity:
//   - Time O(n·p² + p³), Space O(n·p + p²).
func Analyze(data [][]float64, opts ...Option) (*result.Analysis, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if !(o.Significance > 0 && o.Significance <= 1) || !(o.Negligible >= 0 && o.Negligible < 1) {
		return nil, ErrBadOption
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("pca: %d observations: %w", len(data), morphometrics.ErrDegenerateInput)
	}
	X, err := matrix.FromRows(data)
	if err != nil {
		return nil, fmt.Errorf("pca: %w: %w", morphometrics.ErrDegenerateInput, err)
	}

	Xc, means, err := matrix.CenterColumns(X)
	if err != nil {
		return nil, fmt.Errorf("pca: center: %w", err)
	}
	cov, _, err := matrix.Covariance(X, matrix.Population)
	if err != nil {
		return nil, fmt.Errorf("pca: covariance: %w", err)
	}
	U, s, _, err := matrix.SVD(cov)
	if err != nil {
		return nil, fmt.Errorf("pca: svd: %w", err)
	}

	var total float64
	for _, v := range s {
		total += v
	}
	if total <= 0 {
		return nil, fmt.Errorf("pca: zero total variance: %w", morphometrics.ErrDegenerateInput)
	}

	p := len(s)
	pct := make([]float64, p)
	cum := make([]float64, p)
	significant, effective := -1, -1
	var acc float64
	for i, v := range s {
		pct[i] = v / total
		acc += v
		cum[i] = acc / total
		if cum[i] > o.Significance && significant < 0 {
			significant = i + 1
		}
		if pct[i] < o.Negligible && effective < 0 {
			effective = i
		}
	}
	if significant < 0 {
		significant = p
	}
	if effective < 0 {
		effective = p
	}

	scores, err := matrix.Mul(Xc, U)
	if err != nil {
		return nil, fmt.Errorf("pca: scores: %w", err)
	}

	return &result.Analysis{
		Kind:                  result.KindPCA,
		Eigenvalues:           s,
		EigenvaluePercentages: pct,
		CumulativePercentages: cum,
		RotationMatrix:        U.ToRows(),
		Scores:                scores.ToRows(),
		Means:                 means,
		SignificantComponents: significant,
		EffectiveComponents:   effective,
	}, nil
}

// Reconstruct returns scores · rotationᵗ + means, the original data matrix.
func Reconstruct(a *result.Analysis) ([][]float64, error) {
	S, err := matrix.FromRows(a.Scores)
	if err != nil {
		return nil, fmt.Errorf("pca: reconstruct: %w", err)
	}
	R, err := matrix.FromRows(a.RotationMatrix)
	if err != nil {
		return nil, fmt.Errorf("pca: reconstruct: %w", err)
	}
	Rt, err := matrix.Transpose(R)
	if err != nil {
		return nil, fmt.Errorf("pca: reconstruct: %w", err)
	}
	Y, err := matrix.Mul(S, Rt)
	if err != nil {
		return nil, fmt.Errorf("pca: reconstruct: %w", err)
	}
	rows := Y.ToRows()
	if len(a.Means) == len(a.RotationMatrix) {
		for _, row := range rows {
			for j := range row {
				row[j] += a.Means[j]
			}
		}
	}

	return rows, nil
}
