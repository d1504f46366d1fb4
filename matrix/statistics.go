// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Column statistics used by the multivariate engines: centering, variances
//     and covariance with an explicit divisor policy.
//
// Determinism & Performance:
//   - Fixed i→j traversal; inputs are never mutated (centering returns a copy).

package matrix

// CenterColumns subtracts the per-column mean from every element.
// Implementation:
//   - Stage 1: Validate X (non-nil).
//   - Stage 2: Accumulate column sums in a deterministic pass; divide by r.
//   - Stage 3: Broadcast-subtract into a fresh copy.
//
// Returns:
//   - *Dense: centered copy (r×c).
//   - []float64: column means (len=c).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func CenterColumns(X Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCenter, err)
	}
	d, err := asDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCenter, err)
	}
	r, c := d.r, d.c
	means := make([]float64, c)
	if r == 0 || c == 0 {
		return d.clone(), means, nil
	}

	var i, j int
	for i = 0; i < r; i++ {
		base := i * c
		for j = 0; j < c; j++ {
			means[j] += d.data[base+j]
		}
	}
	invR := 1.0 / float64(r)
	for j = 0; j < c; j++ {
		means[j] *= invR
	}

	out := newDense(r, c)
	for i = 0; i < r; i++ {
		base := i * c
		for j = 0; j < c; j++ {
			out.data[base+j] = d.data[base+j] - means[j]
		}
	}

	return out, means, nil
}

// ColumnVariances returns per-column variances under the given divisor
// together with the column means. Sample requires r>=2.
func ColumnVariances(X Matrix, div Divisor) ([]float64, []float64, error) {
	Xc, means, err := CenterColumns(X)
	if err != nil {
		return nil, nil, matrixErrorf(opVariances, err)
	}
	den, err := denominator(Xc.r, div)
	if err != nil {
		return nil, nil, matrixErrorf(opVariances, err)
	}
	vars := make([]float64, Xc.c)
	var i, j int
	for i = 0; i < Xc.r; i++ {
		base := i * Xc.c
		for j = 0; j < Xc.c; j++ {
			v := Xc.data[base+j]
			vars[j] += v * v
		}
	}
	for j = range vars {
		vars[j] /= den
	}

	return vars, means, nil
}

// Covariance computes the column covariance (Xcᵀ Xc)/den, where den is r for
// Population and r-1 for Sample.
// Implementation:
//   - Stage 1: Validate X, require enough rows for the divisor.
//   - Stage 2: Center columns once; Cov = Transpose(Xc)·Xc scaled by 1/den.
//
// Behavior highlights:
//   - Symmetric output; diagonal equals per-column variances.
//
// Returns:
//   - *Dense: covariance (c×c).
//   - []float64: column means used for centering.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (too few rows), wrapped kernel errors.
//
// Complexity:
//   - Time O(r*c²), Space O(c²).
func Covariance(X Matrix, div Divisor) (*Dense, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	den, err := denominator(X.Rows(), div)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	Xc, means, err := CenterColumns(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	Xct, err := Transpose(Xc)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	G, err := Mul(Xct, Xc)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	cov, err := Scale(G, 1.0/den)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}

	return cov, means, nil
}

func denominator(r int, div Divisor) (float64, error) {
	switch div {
	case Sample:
		if r < 2 {
			return 0, ErrDimensionMismatch
		}
		return float64(r - 1), nil
	default:
		if r < 1 {
			return 0, ErrDimensionMismatch
		}
		return float64(r), nil
	}
}
