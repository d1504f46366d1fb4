// SPDX-License-Identifier: MIT

package tps

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/matrix"
	"github.com/katalvlaran/morphometrics/shape"
)

// Transform is a solved thin-plate spline. It is immutable once returned.
type Transform struct {
	// Control and Target include boundary anchors after the first Landmarks entries.
	Control   []shape.Point
	Target    []shape.Point
	Landmarks int
	Dimension int
	// Weights is n×d, Affine is (d+1)×d.
	Weights [][]float64
	Affine  [][]float64

	eps float64
}

// Solve computes the spline mapping ctrl onto target.
// Implementation:
//   - Stage 1: validate, optionally append boundary anchors.
//   - Stage 2: affine rank check on P (collinear control points).
//   - Stage 3: assemble L = [[K, P], [Pᵗ, 0]] and solve L·[W; A] = [target; 0].
//
// Errors: morphometrics.ErrInsufficientData, morphometrics.ErrSingularMatrix,
// ErrBadOption.
func Solve(ctrl, target []shape.Point, opts ...Option) (*Transform, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	d, err := checkPoints(ctrl, target)
	if err != nil {
		return nil, err
	}

	src, dst := shape.ClonePoints(ctrl), shape.ClonePoints(target)
	if o.Boundary > 0 {
		anchors, berr := BoundaryPoints(ctrl, o.Boundary, o.BoundaryFactor)
		if berr != nil {
			return nil, berr
		}
		src = append(src, anchors...)
		dst = append(dst, shape.ClonePoints(anchors)...)
	}
	n := len(src)

	// Stage 2: P must have full column rank d+1.
	P := newMat(n, d+1)
	for i, p := range src {
		P[i][0] = 1
		copy(P[i][1:], p)
	}
	pm, _ := matrix.FromRows(P)
	sv, err := matrix.SingularValues(pm)
	if err != nil {
		return nil, fmt.Errorf("tps: affine rank: %w", err)
	}
	if sv[len(sv)-1] <= rankTolerance*sv[0] {
		return nil, fmt.Errorf("tps: control points span fewer than %d dimensions: %w",
			d, morphometrics.ErrSingularMatrix)
	}

	// Stage 3: assemble and solve.
	size := n + d + 1
	L := newMat(size, size)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			u := kernel(shape.Dist(src[i], src[j]), o.Epsilon)
			L[i][j], L[j][i] = u, u
		}
		for k := 0; k <= d; k++ {
			L[i][n+k] = P[i][k]
			L[n+k][i] = P[i][k]
		}
	}
	Y := newMat(size, d)
	for i, p := range dst {
		copy(Y[i], p)
	}
	lm, _ := matrix.FromRows(L)
	ym, _ := matrix.FromRows(Y)
	sol, err := matrix.SolveWithLimit(lm, ym, o.ConditionLimit)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) {
			return nil, fmt.Errorf("tps: %w: %w", morphometrics.ErrSingularMatrix, err)
		}
		return nil, fmt.Errorf("tps: solve: %w", err)
	}
	rows := sol.ToRows()

	return &Transform{
		Control:   src,
		Target:    dst,
		Landmarks: len(ctrl),
		Dimension: d,
		Weights:   rows[:n],
		Affine:    rows[n:],
		eps:       o.Epsilon,
	}, nil
}

func checkPoints(ctrl, target []shape.Point) (int, error) {
	if len(ctrl) != len(target) || len(ctrl) == 0 {
		return 0, fmt.Errorf("tps: %d control vs %d target points: %w",
			len(ctrl), len(target), morphometrics.ErrInsufficientData)
	}
	d := len(ctrl[0])
	if d != 2 && d != 3 {
		return 0, fmt.Errorf("tps: dimension %d: %w", d, morphometrics.ErrInsufficientData)
	}
	if len(ctrl) < d+1 {
		return 0, fmt.Errorf("tps: %d points, need %d: %w", len(ctrl), d+1, morphometrics.ErrInsufficientData)
	}
	for i := range ctrl {
		if len(ctrl[i]) != d || len(target[i]) != d || !ctrl[i].Finite() || !target[i].Finite() {
			return 0, fmt.Errorf("tps: point %d missing or not %d-D: %w", i, d, morphometrics.ErrInsufficientData)
		}
	}

	return d, nil
}

func newMat(r, c int) [][]float64 {
	buf := make([]float64, r*c)
	out := make([][]float64, r)
	for i := range out {
		out[i] = buf[i*c : (i+1)*c : (i+1)*c]
	}

	return out
}

// Apply maps p through the spline. Missing or wrong-dimension points map to nil.
func (t *Transform) Apply(p shape.Point) shape.Point {
	if p.IsMissing() || len(p) != t.Dimension {
		return nil
	}
	out := make(shape.Point, t.Dimension)
	for j := 0; j < t.Dimension; j++ {
		out[j] = t.Affine[0][j]
		for k := 0; k < t.Dimension; k++ {
			out[j] += t.Affine[k+1][j] * p[k]
		}
	}
	for i, c := range t.Control {
		u := kernel(shape.Dist(p, c), t.eps)
		if u == 0 {
			continue
		}
		for j := 0; j < t.Dimension; j++ {
			out[j] += t.Weights[i][j] * u
		}
	}

	return out
}

// ApplyAll maps every point of ps.
func (t *Transform) ApplyAll(ps []shape.Point) []shape.Point {
	out := make([]shape.Point, len(ps))
	for i, p := range ps {
		out[i] = t.Apply(p)
	}

	return out
}

// BendingEnergy returns trace(Wᵗ·K·W), zero for a purely affine mapping.
func (t *Transform) BendingEnergy() float64 {
	n := len(t.Control)
	var e float64
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			u := kernel(shape.Dist(t.Control[i], t.Control[k]), t.eps)
			for j := 0; j < t.Dimension; j++ {
				e += 2 * t.Weights[i][j] * u * t.Weights[k][j]
			}
		}
	}

	return e
}
