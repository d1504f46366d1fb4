// SPDX-License-Identifier: MIT

package procrustes_test

import (
	"fmt"

	"github.com/katalvlaran/morphometrics/procrustes"
	"github.com/katalvlaran/morphometrics/shape"
)

// ExampleAlign superimposes a square and a rotated, enlarged, shifted copy.
func ExampleAlign() {
	c, _ := shape.NewCollection(2, 4)
	_ = c.Add(&shape.Record{ID: "small", Landmarks: []shape.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}})
	_ = c.Add(&shape.Record{ID: "big", Landmarks: []shape.Point{{10, 10}, {10, 12}, {8, 12}, {8, 10}}})

	res, err := procrustes.Align(c)
	if err != nil {
		fmt.Println(err)
		return
	}
	d, _ := procrustes.Distance(res.Aligned[0], res.Aligned[1])
	fmt.Printf("converged=%v distance=%.6f\n", res.Converged, d)

	// Output:
	// converged=true distance=0.000000
}
