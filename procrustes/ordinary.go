// SPDX-License-Identifier: MIT

package procrustes

import (
	"fmt"
	"math"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/matrix"
	"github.com/katalvlaran/morphometrics/shape"
)

// rotationFit returns the d×d orthogonal R minimizing ‖X·R − Y‖ and the trace
// term Σ σᵢ·dᵢ used for the optimal scale. X and Y are centered k×d rows.
// Implementation:
//   - Stage 1: M = Xᵀ·Y.
//   - Stage 2: M = U·S·Vᵀ; R = U·D·Vᵀ with D = I, or D = diag(1,…,1,−1) when
//     reflections are forbidden and det(U·Vᵀ) < 0.
func rotationFit(X, Y [][]float64, allowReflection bool) ([][]float64, float64, error) {
	xm, err := matrix.FromRows(X)
	if err != nil {
		return nil, 0, err
	}
	ym, err := matrix.FromRows(Y)
	if err != nil {
		return nil, 0, err
	}
	xt, err := matrix.Transpose(xm)
	if err != nil {
		return nil, 0, err
	}
	m, err := matrix.Mul(xt, ym)
	if err != nil {
		return nil, 0, err
	}
	U, s, V, err := matrix.SVD(m)
	if err != nil {
		return nil, 0, err
	}

	d := m.Rows()
	sign := make([]float64, d)
	for i := range sign {
		sign[i] = 1
	}
	if !allowReflection {
		du, err := matrix.Det(U)
		if err != nil {
			return nil, 0, err
		}
		dv, err := matrix.Det(V)
		if err != nil {
			return nil, 0, err
		}
		if du*dv < 0 {
			sign[d-1] = -1
		}
	}

	u, v := U.ToRows(), V.ToRows()
	R := make([][]float64, d)
	var trace float64
	for i := 0; i < d; i++ {
		R[i] = make([]float64, d)
		for j := 0; j < d; j++ {
			var acc float64
			for k := 0; k < d; k++ {
				acc += u[i][k] * sign[k] * v[j][k]
			}
			R[i][j] = acc
		}
		trace += s[i] * sign[i]
	}

	return R, trace, nil
}

// centered returns the selected points minus their centroid, plus the centroid.
func centered(ps []shape.Point, idx []int) ([][]float64, shape.Point) {
	c := shape.Centroid(ps, idx)
	out := make([][]float64, len(idx))
	for r, i := range idx {
		row := make([]float64, len(c))
		for k := range c {
			row[k] = ps[i][k] - c[k]
		}
		out[r] = row
	}

	return out, c
}

func sumSquares(rows [][]float64) float64 {
	var ss float64
	for _, row := range rows {
		for _, v := range row {
			ss += v * v
		}
	}

	return ss
}

func negate(p shape.Point) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = -v
	}

	return out
}

func identity(d int) [][]float64 {
	R := make([][]float64, d)
	for i := range R {
		R[i] = make([]float64, d)
		R[i][i] = 1
	}

	return R
}

// commonIndices returns the indices present in both a and b.
func commonIndices(a, b []shape.Point) []int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !a[i].IsMissing() && !b[i].IsMissing() {
			idx = append(idx, i)
		}
	}

	return idx
}

// FitOrdinary returns the similarity transform mapping src onto ref in the
// least-squares sense, using only landmarks present in both.
//
// Errors: morphometrics.ErrInsufficientLandmarks (< 2 shared landmarks),
// morphometrics.ErrDegenerateInput (shared src points coincide),
// shape.ErrMismatchedRecord (points of differing dimension), ErrBadOption.
func FitOrdinary(src, ref []shape.Point, opts ...Option) (Transform, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return Transform{}, err
	}

	return fitOrdinary(src, ref, o)
}

func fitOrdinary(src, ref []shape.Point, o Options) (Transform, error) {
	if err := sameDimension(src, ref); err != nil {
		return Transform{}, fmt.Errorf("procrustes: fit: %w", err)
	}
	idx := commonIndices(src, ref)
	if len(idx) < 2 {
		return Transform{}, fmt.Errorf("procrustes: fit on %d shared landmarks: %w",
			len(idx), morphometrics.ErrInsufficientLandmarks)
	}
	X, cs := centered(src, idx)
	Y, cr := centered(ref, idx)
	normX := sumSquares(X)
	if normX == 0 {
		return Transform{}, fmt.Errorf("procrustes: fit: coincident points: %w", morphometrics.ErrDegenerateInput)
	}

	R, trace, err := rotationFit(X, Y, o.AllowReflection)
	if err != nil {
		return Transform{}, fmt.Errorf("procrustes: fit: %w", err)
	}
	scale := 1.0
	if o.Scaling {
		scale = trace / normX
	}

	return Transform{
		Translation: negate(cs),
		Scale:       scale,
		Rotation:    R,
		Offset:      append([]float64(nil), cr...),
		Valid:       true,
	}, nil
}

// sameDimension checks that the present points of both configurations share
// one length.
func sameDimension(a, b []shape.Point) error {
	da, okA := shape.CommonDimension(a)
	db, okB := shape.CommonDimension(b)
	if !okA || !okB || (da != 0 && db != 0 && da != db) {
		return fmt.Errorf("mixed point dimensions: %w", shape.ErrMismatchedRecord)
	}

	return nil
}

// normalize centers ps and, when scaling, divides by its centroid size.
func normalize(ps []shape.Point, scaling bool) ([]shape.Point, Transform, error) {
	idx := shape.ValidIndices(ps)
	X, c := centered(ps, idx)
	cs := math.Sqrt(sumSquares(X))
	if cs == 0 {
		return nil, Transform{}, morphometrics.ErrDegenerateInput
	}
	scale := 1.0
	if scaling {
		scale = 1 / cs
	}
	out := make([]shape.Point, len(ps))
	for r, i := range idx {
		p := make(shape.Point, len(c))
		for k := range c {
			p[k] = X[r][k] * scale
		}
		out[i] = p
	}

	return out, Transform{
		Translation: negate(c),
		Scale:       scale,
		Rotation:    identity(len(c)),
		Valid:       true,
	}, nil
}

// Distance returns the full Procrustes distance between two configurations:
// both are centered and scaled to unit size, b is fitted onto a with rotation
// and scale, and the residual root sum of squares is returned.
func Distance(a, b []shape.Point, opts ...Option) (float64, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return 0, err
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("procrustes: distance between %d and %d landmarks: %w",
			len(a), len(b), morphometrics.ErrInsufficientData)
	}
	if err = sameDimension(a, b); err != nil {
		return 0, fmt.Errorf("procrustes: distance: %w", err)
	}
	idx := commonIndices(a, b)
	sa := make([]shape.Point, len(a))
	sb := make([]shape.Point, len(b))
	for _, i := range idx {
		sa[i], sb[i] = a[i], b[i]
	}
	na, _, err := normalize(sa, true)
	if err != nil {
		return 0, fmt.Errorf("procrustes: distance: %w", err)
	}
	nb, _, err := normalize(sb, true)
	if err != nil {
		return 0, fmt.Errorf("procrustes: distance: %w", err)
	}
	o.Scaling = true
	t, err := fitOrdinary(nb, na, o)
	if err != nil {
		return 0, err
	}
	var ss float64
	for _, i := range idx {
		q := t.Apply(nb[i])
		for k := range q {
			diff := q[k] - na[i][k]
			ss += diff * diff
		}
	}

	return math.Sqrt(ss), nil
}
