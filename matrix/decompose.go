// SPDX-License-Identifier: MIT
// Package matrix: factorizations backed by gonum.
//
// Purpose:
//   - SVD for PCA/CVA/Procrustes, partial-pivot LU Solve/Inverse for TPS and CVA,
//     Cholesky for MANOVA whitening, determinant and condition number helpers.
//   - Translate gonum's panics/Condition errors into this package's sentinels.

package matrix

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// toGonum copies d into a gonum Dense. Zero-sized inputs are rejected upstream.
func toGonum(d *Dense) *mat.Dense {
	buf := make([]float64, len(d.data))
	copy(buf, d.data)

	return mat.NewDense(d.r, d.c, buf)
}

// fromGonum copies any gonum matrix into a *Dense.
func fromGonum(g mat.Matrix) *Dense {
	r, c := g.Dims()
	out := newDense(r, c)
	var i, j int
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			out.data[i*c+j] = g.At(i, j)
		}
	}

	return out
}

func nonEmptyDense(m Matrix, tag string) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	if m.Rows() == 0 || m.Cols() == 0 {
		return nil, matrixErrorf(tag, ErrBadShape)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}

	return d, nil
}

// SVD computes the full singular value decomposition m = U·diag(s)·Vᵀ.
// Implementation:
//   - Stage 1: validate and copy into gonum storage.
//   - Stage 2: mat.SVD with SVDFull; singular values come back descending.
//
// Returns:
//   - *Dense U (r×r), []float64 s (len=min(r,c)), *Dense V (c×c).
//
// Errors:
//   - ErrNilMatrix, ErrBadShape, ErrSVDFailed.
//
// Complexity:
//   - Time O(r*c*min(r,c)), Space O(r² + c²).
func SVD(m Matrix) (*Dense, []float64, *Dense, error) {
	d, err := nonEmptyDense(m, opSVD)
	if err != nil {
		return nil, nil, nil, err
	}
	var svd mat.SVD
	if ok := svd.Factorize(toGonum(d), mat.SVDFull); !ok {
		return nil, nil, nil, matrixErrorf(opSVD, ErrSVDFailed)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	return fromGonum(&u), svd.Values(nil), fromGonum(&v), nil
}

// SingularValues returns the singular values of m in descending order.
func SingularValues(m Matrix) ([]float64, error) {
	d, err := nonEmptyDense(m, opSVD)
	if err != nil {
		return nil, err
	}
	var svd mat.SVD
	if ok := svd.Factorize(toGonum(d), mat.SVDNone); !ok {
		return nil, matrixErrorf(opSVD, ErrSVDFailed)
	}

	return svd.Values(nil), nil
}

// Cond returns the 2-norm condition number s_max/s_min (+Inf when s_min == 0).
func Cond(m Matrix) (float64, error) {
	s, err := SingularValues(m)
	if err != nil {
		return 0, matrixErrorf(opCond, err)
	}
	smin := s[len(s)-1]
	if smin == 0 {
		return math.Inf(1), nil
	}

	return s[0] / smin, nil
}

// Solve returns x with a·x = b using partial-pivot LU and DefaultConditionLimit.
func Solve(a, b Matrix) (*Dense, error) {
	return SolveWithLimit(a, b, DefaultConditionLimit)
}

// SolveWithLimit solves a·x = b, reporting ErrSingular when the LU condition
// estimate exceeds limit (or is infinite).
// Implementation:
//   - Stage 1: validate square a and a.Rows() == b.Rows().
//   - Stage 2: gonum LU factorization; reject ill-conditioned systems.
//   - Stage 3: triangular solves; map gonum Condition errors to ErrSingular.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch, ErrSingular.
//
// Complexity:
//   - Time O(n³ + n²·k), Space O(n² + n·k).
func SolveWithLimit(a, b Matrix, limit float64) (*Dense, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	ad, err := nonEmptyDense(a, opSolve)
	if err != nil {
		return nil, err
	}
	bd, err := nonEmptyDense(b, opSolve)
	if err != nil {
		return nil, err
	}
	if ad.r != bd.r {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}

	var lu mat.LU
	lu.Factorize(toGonum(ad))
	cond := lu.Cond()
	if math.IsInf(cond, 0) || math.IsNaN(cond) || cond > limit {
		return nil, matrixErrorf(opSolve, ErrSingular)
	}
	var x mat.Dense
	if err = lu.SolveTo(&x, false, toGonum(bd)); err != nil {
		var ce mat.Condition
		if errors.As(err, &ce) {
			return nil, matrixErrorf(opSolve, ErrSingular)
		}
		return nil, matrixErrorf(opSolve, err)
	}

	return fromGonum(&x), nil
}

// Inverse returns m⁻¹ (via Solve against the identity).
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular.
func Inverse(m Matrix) (*Dense, error) {
	return InverseWithLimit(m, DefaultConditionLimit)
}

// InverseWithLimit is Inverse with a caller-chosen condition limit.
func InverseWithLimit(m Matrix, limit float64) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	id, err := NewIdentity(m.Rows())
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	inv, err := SolveWithLimit(m, id, limit)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return inv, nil
}

// Cholesky returns the lower-triangular L with m = L·Lᵀ.
// The input is symmetrized first to scrub round-off asymmetry.
// Errors: ErrNilMatrix, ErrNonSquare, ErrNotPositiveDefinite.
func Cholesky(m Matrix) (*Dense, error) {
	s, err := Symmetrize(m)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	if s.r == 0 {
		return nil, matrixErrorf(opCholesky, ErrBadShape)
	}
	sym := mat.NewSymDense(s.r, append([]float64(nil), s.data...))
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, matrixErrorf(opCholesky, ErrNotPositiveDefinite)
	}
	var L mat.TriDense
	chol.LTo(&L)

	return fromGonum(&L), nil
}

// Det returns the determinant of a square matrix.
func Det(m Matrix) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opDet, err)
	}
	d, err := nonEmptyDense(m, opDet)
	if err != nil {
		return 0, err
	}

	return mat.Det(toGonum(d)), nil
}

// SolveLowerTriangular solves L·X = B by forward substitution.
// L must be lower triangular with a non-zero diagonal (ErrSingular otherwise).
func SolveLowerTriangular(L, B Matrix) (*Dense, error) {
	if err := ValidateSquare(L); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	ld, err := nonEmptyDense(L, opSolve)
	if err != nil {
		return nil, err
	}
	bd, err := nonEmptyDense(B, opSolve)
	if err != nil {
		return nil, err
	}
	if ld.r != bd.r {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}
	n, k := ld.r, bd.c
	X := newDense(n, k)
	var i, j, col int
	var sum float64
	for col = 0; col < k; col++ {
		for i = 0; i < n; i++ {
			sum = bd.data[i*k+col]
			for j = 0; j < i; j++ {
				sum -= ld.data[i*n+j] * X.data[j*k+col]
			}
			piv := ld.data[i*n+i]
			if piv == 0 {
				return nil, matrixErrorf(opSolve, ErrSingular)
			}
			X.data[i*k+col] = sum / piv
		}
	}

	return X, nil
}
