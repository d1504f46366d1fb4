// SPDX-License-Identifier: MIT

package procrustes

import (
	"errors"
	"math"

	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/shape"
)

// ErrBadOption indicates an invalid aligner option.
var ErrBadOption = errors.New("procrustes: invalid option")

// Default option values.
const (
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-10
)

// Options configures Align, FitOrdinary and Distance.
//
// MaxIterations   – iteration cap of the GPA loop (> 0).
// Tolerance       – convergence threshold on the squared consensus change (≥ 0).
// AllowReflection – permit improper rotations (determinant −1).
// Scaling         – normalize specimens to unit centroid size / fit isotropic scale.
// Logger          – receives the iteration-cap warning.
type Options struct {
	MaxIterations   int
	Tolerance       float64
	AllowReflection bool
	Scaling         bool
	Logger          logger.Logger
}

// Option represents a functional option for the aligner.
type Option func(*Options)

// WithMaxIterations sets the GPA iteration cap.
func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

// WithTolerance sets the convergence threshold on the squared consensus change.
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithReflection permits (true) or forbids (false) reflections.
func WithReflection(allow bool) Option {
	return func(o *Options) { o.AllowReflection = allow }
}

// WithScaling toggles size normalization.
func WithScaling(on bool) Option {
	return func(o *Options) { o.Scaling = on }
}

// WithLogger sets the logger; nil restores the no-op logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = logger.Nop()
		}
		o.Logger = l
	}
}

// DefaultOptions returns the defaults: 100 iterations, tolerance 1e-10, no
// reflection, scaling on, no-op logger.
func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		Scaling:       true,
		Logger:        logger.Nop(),
	}
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.MaxIterations <= 0 || o.Tolerance < 0 || math.IsNaN(o.Tolerance) {
		return o, ErrBadOption
	}

	return o, nil
}

// Transform is the similarity applied to one specimen, in row-vector form:
//
//	aligned = Scale · (p + Translation) · Rotation + Offset
//
// Offset is zero for specimens that entered the consensus.
type Transform struct {
	Translation []float64
	Scale       float64
	Rotation    [][]float64
	Offset      []float64
	Valid       bool
}

// Apply maps p through t. Missing points stay missing; an invalid transform
// maps everything to missing.
func (t Transform) Apply(p shape.Point) shape.Point {
	if p.IsMissing() || !t.Valid {
		return nil
	}
	d := len(p)
	tmp := make([]float64, d)
	for k := 0; k < d; k++ {
		tmp[k] = t.Scale * (p[k] + t.Translation[k])
	}
	out := make(shape.Point, d)
	for j := 0; j < d; j++ {
		var s float64
		for k := 0; k < d; k++ {
			s += tmp[k] * t.Rotation[k][j]
		}
		if t.Offset != nil {
			s += t.Offset[j]
		}
		out[j] = s
	}

	return out
}

// Result is the immutable output of Align.
type Result struct {
	// Aligned holds one landmark list per input record; nil for flagged records.
	Aligned [][]shape.Point
	// Consensus is the mean aligned shape (centered, unit size when scaling).
	Consensus []shape.Point
	// Transforms holds one entry per input record; Valid=false for flagged ones.
	Transforms []Transform
	// CentroidSizes is each record's centroid size over its present landmarks.
	CentroidSizes []float64
	// Flagged lists records that could not be aligned.
	Flagged    []int
	Iterations int
	Converged  bool
	Dimension  int
}

// DataMatrix flattens aligned records without missing landmarks into rows,
// returning the rows and their record indices.
func (r *Result) DataMatrix() ([][]float64, []int) {
	var (
		rows [][]float64
		idx  []int
	)
	for i, pts := range r.Aligned {
		if pts == nil {
			continue
		}
		rec := shape.Record{Landmarks: pts}
		row, err := rec.Flatten()
		if err != nil {
			continue
		}
		rows = append(rows, row)
		idx = append(idx, i)
	}

	return rows, idx
}
