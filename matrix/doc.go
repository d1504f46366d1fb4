// Package matrix provides the dense linear-algebra layer used by the
// morphometric engines.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with safe At/Set accessors, and the
//     Matrix interface every kernel accepts.
//   - Canonical kernels (Add, Sub, Mul, Transpose, Scale, MatVec) with strict
//     fail-fast validation and op-tagged errors.
//   - Statistics (CenterColumns, ColumnVariances, Covariance) with an explicit
//     divisor policy: population (n) for PCA, sample (n-1) for CVA.
//   - A deterministic Jacobi Eigen for symmetric matrices.
//   - Factorizations backed by gonum: SVD, partial-pivot LU Solve/Inverse with
//     a condition guard, Cholesky and Det.
//
// Inputs are never mutated; every kernel returns a freshly allocated *Dense.
// Singular systems surface as ErrSingular, never as a panic.
package matrix
