// SPDX-License-Identifier: MIT

package tps_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/katalvlaran/morphometrics/shape"
	"github.com/katalvlaran/morphometrics/tps"
)

var sinkPoint shape.Point

func BenchmarkSolveAndApply(b *testing.B) {
	b.ReportAllocs()
	for _, n := range []int{16, 64, 256} {
		b.Run(fmt.Sprintf("landmarks=%d", n), func(b *testing.B) {
			src := make([]shape.Point, n)
			dst := make([]shape.Point, n)
			for i := range src {
				a := 2 * math.Pi * float64(i) / float64(n)
				r := 1 + 0.2*math.Sin(3*a)
				src[i] = shape.Point{r * math.Cos(a), r * math.Sin(a)}
				dst[i] = shape.Point{1.1 * src[i][0], 0.9 * src[i][1]}
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tr, err := tps.Solve(src, dst)
				if err != nil {
					b.Fatal(err)
				}
				sinkPoint = tr.Apply(shape.Point{0.1, 0.2})
			}
		})
	}
}
