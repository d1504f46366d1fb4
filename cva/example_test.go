// SPDX-License-Identifier: MIT

package cva_test

import (
	"fmt"

	"github.com/katalvlaran/morphometrics/cva"
)

// ExampleAnalyze separates two groups along a single variable.
func ExampleAnalyze() {
	data := [][]float64{{1}, {2}, {3}, {7}, {8}, {9}}
	groups := []string{"small", "small", "small", "large", "large", "large"}

	res, err := cva.Analyze(data, groups)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("groups:", res.Groups)
	fmt.Printf("eigenvalue: %.1f\n", res.Eigenvalues[0])
	fmt.Printf("accuracy: %.0f%%\n", *res.Accuracy)

	// Output:
	// groups: [large small]
	// eigenvalue: 27.0
	// accuracy: 100%
}
