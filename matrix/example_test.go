// SPDX-License-Identifier: MIT

package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/morphometrics/matrix"
)

// ExampleCovariance shows population versus sample covariance of two columns.
func ExampleCovariance() {
	X, _ := matrix.FromRows([][]float64{
		{1, 2},
		{2, 4},
		{3, 6},
	})
	pop, _, _ := matrix.Covariance(X, matrix.Population)
	smp, _, _ := matrix.Covariance(X, matrix.Sample)

	v, _ := pop.At(0, 1)
	w, _ := smp.At(0, 1)
	fmt.Printf("population=%.4f sample=%.4f\n", v, w)

	// Output:
	// population=1.3333 sample=2.0000
}

// ExampleEigen decomposes a small symmetric matrix.
func ExampleEigen() {
	A, _ := matrix.FromRows([][]float64{
		{2, 1},
		{1, 2},
	})
	vals, _, _ := matrix.Eigen(A, matrix.DefaultEigenTol, matrix.DefaultEigenMaxIter)
	fmt.Printf("%.1f %.1f\n", vals[0], vals[1])

	// Output:
	// 3.0 1.0
}

// ExampleSolve solves a 2×2 system that requires row pivoting.
func ExampleSolve() {
	A, _ := matrix.FromRows([][]float64{{0, 2}, {1, 0}})
	b, _ := matrix.FromRows([][]float64{{4}, {3}})
	x, _ := matrix.Solve(A, b)
	fmt.Println(x.ToRows())

	// Output:
	// [[3] [2]]
}
