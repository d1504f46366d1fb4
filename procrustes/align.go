// SPDX-License-Identifier: MIT

package procrustes

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/shape"
)

// Align runs generalized Procrustes analysis over c.
// Implementation:
//   - Stage 1: Validate c and normalize every complete specimen (center, unit size).
//   - Stage 2: Iterate rotate-to-consensus / recompute-consensus until the squared
//     consensus change < Tolerance or MaxIterations is reached.
//   - Stage 3: Final rotation onto the returned consensus.
//   - Stage 4: Partial similarity fit for specimens with missing landmarks.
//
// Behavior highlights:
//   - c is never mutated.
//   - The iteration cap is a soft cutoff (Converged=false, warning logged).
//
// Returns:
//   - *Result with one Aligned/Transforms entry per record.
//
// Errors:
//   - morphometrics.ErrInsufficientData, ErrBadOption.
func Align(c *shape.Collection, opts ...Option) (*Result, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("procrustes: nil collection: %w", morphometrics.ErrInsufficientData)
	}
	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("procrustes: %w: %w", morphometrics.ErrInsufficientData, err)
	}
	n := len(c.Records)
	if n < 2 {
		return nil, fmt.Errorf("procrustes: %d specimens: %w", n, morphometrics.ErrInsufficientData)
	}

	res := &Result{
		Aligned:       make([][]shape.Point, n),
		Transforms:    make([]Transform, n),
		CentroidSizes: make([]float64, n),
		Dimension:     c.Dimension,
	}

	// Stage 1: normalize complete specimens.
	norm := make([][]shape.Point, n)
	var complete, partial []int
	for i, r := range c.Records {
		res.CentroidSizes[i] = r.ComputeCentroidSize(nil)
		if r.HasMissing() {
			partial = append(partial, i)
			continue
		}
		pts, t, nerr := normalize(r.Landmarks, o.Scaling)
		if nerr != nil {
			res.Flagged = append(res.Flagged, i)
			continue
		}
		norm[i], res.Transforms[i] = pts, t
		complete = append(complete, i)
	}
	if len(complete) < 2 {
		return nil, fmt.Errorf("procrustes: %d usable complete specimens: %w",
			len(complete), morphometrics.ErrInsufficientData)
	}

	// Stage 2: GPA loop.
	consensus := shape.ClonePoints(norm[complete[0]])
	rotations := make([][][]float64, n)
	for iter := 1; iter <= o.MaxIterations; iter++ {
		if err = rotateAll(norm, complete, consensus, rotations, o.AllowReflection); err != nil {
			return nil, err
		}
		next := meanShape(norm, complete, rotations, c.LandmarkCount, c.Dimension)
		if o.Scaling {
			rescale(next)
		}
		delta := squaredChange(consensus, next)
		consensus = next
		res.Iterations = iter
		if delta < o.Tolerance {
			res.Converged = true
			break
		}
	}
	if !res.Converged {
		o.Logger.Warn(context.Background(), "procrustes iteration cap reached",
			logger.Int("iterations", res.Iterations), logger.Int("specimens", len(complete)))
	}

	// Stage 3: final pass so Aligned matches Consensus exactly.
	if err = rotateAll(norm, complete, consensus, rotations, o.AllowReflection); err != nil {
		return nil, err
	}
	for _, i := range complete {
		res.Transforms[i].Rotation = rotations[i]
		res.Aligned[i] = rotatePoints(norm[i], rotations[i])
	}
	res.Consensus = consensus

	// Stage 4: partial specimens.
	for _, i := range partial {
		t, ferr := fitOrdinary(c.Records[i].Landmarks, consensus, o)
		if ferr != nil {
			res.Flagged = append(res.Flagged, i)
			continue
		}
		res.Transforms[i] = t
		aligned := make([]shape.Point, c.LandmarkCount)
		for k, p := range c.Records[i].Landmarks {
			aligned[k] = t.Apply(p)
		}
		res.Aligned[i] = aligned
	}
	sort.Ints(res.Flagged)

	return res, nil
}

func rotateAll(norm [][]shape.Point, idx []int, consensus []shape.Point, out [][][]float64, allowReflection bool) error {
	Y := toRows(consensus)
	for _, i := range idx {
		R, _, err := rotationFit(toRows(norm[i]), Y, allowReflection)
		if err != nil {
			return fmt.Errorf("procrustes: rotate specimen %d: %w", i, err)
		}
		out[i] = R
	}

	return nil
}

func toRows(ps []shape.Point) [][]float64 {
	rows := make([][]float64, len(ps))
	for i, p := range ps {
		rows[i] = p
	}

	return rows
}

func rotatePoints(ps []shape.Point, R [][]float64) []shape.Point {
	out := make([]shape.Point, len(ps))
	for i, p := range ps {
		q := make(shape.Point, len(p))
		for j := range q {
			var s float64
			for k := range p {
				s += p[k] * R[k][j]
			}
			q[j] = s
		}
		out[i] = q
	}

	return out
}

func meanShape(norm [][]shape.Point, idx []int, rotations [][][]float64, k, d int) []shape.Point {
	mean := make([]shape.Point, k)
	for l := range mean {
		mean[l] = make(shape.Point, d)
	}
	for _, i := range idx {
		rot := rotatePoints(norm[i], rotations[i])
		for l, p := range rot {
			for j := range p {
				mean[l][j] += p[j]
			}
		}
	}
	inv := 1 / float64(len(idx))
	for l := range mean {
		for j := range mean[l] {
			mean[l][j] *= inv
		}
	}

	return mean
}

// rescale scales a centered configuration to unit centroid size in place.
func rescale(ps []shape.Point) {
	var ss float64
	for _, p := range ps {
		for _, v := range p {
			ss += v * v
		}
	}
	if ss == 0 {
		return
	}
	f := 1 / math.Sqrt(ss)
	for _, p := range ps {
		for j := range p {
			p[j] *= f
		}
	}
}

func squaredChange(a, b []shape.Point) float64 {
	var ss float64
	for i := range a {
		for j := range a[i] {
			d := a[i][j] - b[i][j]
			ss += d * d
		}
	}

	return ss
}
