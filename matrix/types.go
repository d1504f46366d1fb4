// SPDX-License-Identifier: MIT

package matrix

// Matrix represents a two-dimensional mutable array of float64 values.
// Kernels accept any implementation and take a fast path on *Dense.
//
// Complexity notes: all methods are expected O(1) except Clone (O(r*c)).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if the indices are invalid.
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange for invalid indices and ErrNaNInf for non-finite v.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	Clone() Matrix
}

// Divisor selects the denominator used by Covariance and ColumnVariances.
type Divisor int

const (
	// Population divides by the observation count n.
	Population Divisor = iota

	// Sample divides by n-1 (unbiased estimator).
	Sample
)

// DefaultConditionLimit is the largest LU condition number Solve and Inverse
// accept before reporting ErrSingular.
const DefaultConditionLimit = 1e13

// DefaultEigenTol and DefaultEigenMaxIter are Jacobi defaults suitable for
// the small symmetric systems produced by MANOVA (p ≤ a few dozen).
const (
	DefaultEigenTol     = 1e-12
	DefaultEigenMaxIter = 10000
)
