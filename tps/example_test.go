// SPDX-License-Identifier: MIT

package tps_test

import (
	"fmt"

	"github.com/katalvlaran/morphometrics/shape"
	"github.com/katalvlaran/morphometrics/tps"
)

// ExampleSolve stretches the top of a square and warps its center.
func ExampleSolve() {
	src := []shape.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	dst := []shape.Point{{0, 0}, {1, 0}, {1, 2}, {0, 2}}

	tr, err := tps.Solve(src, dst)
	if err != nil {
		fmt.Println(err)
		return
	}
	p := tr.Apply(shape.Point{0.5, 0.5})
	fmt.Printf("(%.2f, %.2f)\n", p[0], p[1])

	// Output:
	// (0.50, 1.00)
}
