// SPDX-License-Identifier: MIT

package tps

import (
	"errors"
	"math"

	"github.com/katalvlaran/morphometrics/matrix"
)

// ErrBadOption indicates an invalid solver option.
var ErrBadOption = errors.New("tps: invalid option")

// DefaultBoundaryFactor is the anchor radius relative to the farthest landmark.
const DefaultBoundaryFactor = 1.2

// rankTolerance is the relative singular-value cutoff of the affine rank check.
const rankTolerance = 1e-10

// Options configures Solve.
//
// Epsilon        – offset inside the kernel logarithm (default machine epsilon).
// ConditionLimit – largest accepted LU condition number of the system.
// Boundary       – number of anchor points appended on both sides (0 = none).
// BoundaryFactor – anchor radius relative to the farthest landmark.
type Options struct {
	Epsilon        float64
	ConditionLimit float64
	Boundary       int
	BoundaryFactor float64
}

// Option represents a functional option for Solve.
type Option func(*Options)

// WithEpsilon sets the kernel offset ε in U(r) = r²·ln(r + ε).
func WithEpsilon(eps float64) Option {
	return func(o *Options) { o.Epsilon = eps }
}

// WithConditionLimit sets the largest accepted condition number.
func WithConditionLimit(limit float64) Option {
	return func(o *Options) { o.ConditionLimit = limit }
}

// WithBoundary appends count anchors at factor × the maximum landmark radius.
func WithBoundary(count int, factor float64) Option {
	return func(o *Options) {
		o.Boundary = count
		o.BoundaryFactor = factor
	}
}

// DefaultOptions returns machine-epsilon kernel offset, the matrix package's
// default condition limit and no boundary anchors.
func DefaultOptions() Options {
	return Options{
		Epsilon:        math.Nextafter(1, 2) - 1,
		ConditionLimit: matrix.DefaultConditionLimit,
		BoundaryFactor: DefaultBoundaryFactor,
	}
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Epsilon <= 0 || math.IsNaN(o.Epsilon) || o.ConditionLimit <= 1 ||
		o.Boundary < 0 || (o.Boundary > 0 && !(o.BoundaryFactor > 0)) {
		return o, ErrBadOption
	}

	return o, nil
}

// kernel is U(r) = r²·ln(r + eps); U(0) = 0.
func kernel(r, eps float64) float64 {
	if r == 0 {
		return 0
	}

	return r * r * math.Log(r+eps)
}
