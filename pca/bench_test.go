// SPDX-License-Identifier: MIT

package pca_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/morphometrics/pca"
	"github.com/katalvlaran/morphometrics/result"
)

var sinkAnalysis *result.Analysis

func BenchmarkAnalyze(b *testing.B) {
	b.ReportAllocs()
	for _, n := range []int{32, 128, 512} {
		b.Run(fmt.Sprintf("specimens=%d", n), func(b *testing.B) {
			data := randomData(rand.New(rand.NewSource(int64(n))), n, 40)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				res, err := pca.Analyze(data)
				if err != nil {
					b.Fatal(err)
				}
				sinkAnalysis = res
			}
		})
	}
}
