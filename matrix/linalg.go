// SPDX-License-Identifier: MIT
// Package matrix: canonical linear-algebra kernels.
//
// Purpose:
//   - Element-wise Add/Sub, Mul, Transpose, Scale and MatVec over any Matrix.
//   - All kernels perform fail-fast validation and return a fresh *Dense.
//
// Determinism:
//   - Fixed i→k→j loop orders; no randomness, no map iteration.

package matrix

// addSub computes out = a + sign*b for sign ∈ {+1, -1}.
// Implementation:
//   - Stage 1: validate non-nil operands and identical shapes.
//   - Stage 2: single flat loop over both row-major buffers.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func addSub(a, b Matrix, sign float64, tag string) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	ad, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}
	bd, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}

	out := newDense(ad.r, ad.c)
	for k := range out.data {
		out.data[k] = ad.data[k] + sign*bd.data[k]
	}

	return out, nil
}

// Add returns a + b.
func Add(a, b Matrix) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub returns a - b.
func Sub(a, b Matrix) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Mul returns the matrix product a×b.
// Implementation:
//   - Stage 1: validate non-nil operands and a.Cols() == b.Rows().
//   - Stage 2: i→k→j accumulation over flat buffers (streams b row-wise).
//
// Behavior highlights:
//   - Skips zero a(i,k) terms; results are bitwise stable for identical inputs.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	ad, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	bd, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	r, n, c := ad.r, ad.c, bd.c
	out := newDense(r, c)
	var (
		i, k, j int
		aik     float64
	)
	for i = 0; i < r; i++ {
		rowOut := out.data[i*c : (i+1)*c]
		for k = 0; k < n; k++ {
			aik = ad.data[i*n+k]
			if aik == 0 {
				continue
			}
			rowB := bd.data[k*c : (k+1)*c]
			for j = 0; j < c; j++ {
				rowOut[j] += aik * rowB[j]
			}
		}
	}

	return out, nil
}

// Transpose returns mᵀ.
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	out := newDense(d.c, d.r)
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			out.data[j*d.r+i] = d.data[i*d.c+j]
		}
	}

	return out, nil
}

// Scale returns alpha·m.
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	out := newDense(d.r, d.c)
	for k, v := range d.data {
		out.data[k] = alpha * v
	}

	return out, nil
}

// MatVec returns y = m·x.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, d.r)
	var (
		i, j int
		acc  float64
	)
	for i = 0; i < d.r; i++ {
		acc = 0
		base := i * d.c
		for j = 0; j < d.c; j++ {
			acc += d.data[base+j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// Symmetrize returns (m + mᵀ)/2; used to scrub round-off before Cholesky/Eigen.
func Symmetrize(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, err
	}
	d, err := asDense(m)
	if err != nil {
		return nil, err
	}
	n := d.r
	out := newDense(n, n)
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			out.data[i*n+j] = 0.5 * (d.data[i*n+j] + d.data[j*n+i])
		}
	}

	return out, nil
}

// Trace returns Σ m[i,i] of a square matrix.
func Trace(m Matrix) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, err
	}
	d, err := asDense(m)
	if err != nil {
		return 0, err
	}
	var s float64
	for i := 0; i < d.r; i++ {
		s += d.data[i*d.c+i]
	}

	return s, nil
}
