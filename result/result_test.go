// SPDX-License-Identifier: MIT

package result_test

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/katalvlaran/morphometrics/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *result.Analysis {
	return &result.Analysis{
		Kind:                  result.KindCVA,
		Eigenvalues:           []float64{3, 1, 0},
		EigenvaluePercentages: []float64{0.75, 0.25, 0},
		CumulativePercentages: []float64{0.75, 1, 1},
		RotationMatrix:        [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Scores:                [][]float64{{1, 2, 3}, {4, 5, 6}},
		GroupCentroids:        []result.GroupCentroid{{Label: "a", Size: 2, Centroid: []float64{2.5, 3.5, 4.5}}},
	}
}

func TestTruncate(t *testing.T) {
	a := sample()
	tr := a.Truncate(1)
	assert.Equal(t, 1, tr.Axes())
	assert.Equal(t, []float64{3}, tr.Eigenvalues)
	assert.Equal(t, [][]float64{{1}, {4}}, tr.Scores)
	assert.Equal(t, []float64{2.5}, tr.GroupCentroids[0].Centroid)

	tr.Scores[0][0] = 99
	assert.Equal(t, 1.0, a.Scores[0][0], "truncation must copy")
	assert.Equal(t, 3, a.Truncate(10).Axes())
}

func TestPadScores(t *testing.T) {
	a := sample().Truncate(1)
	padded := a.PadScores(3)
	assert.Equal(t, [][]float64{{1, 0, 0}, {4, 0, 0}}, padded)
	assert.Equal(t, [][]float64{{}, {}}, a.PadScores(0))
}

func TestStatisticTable_JSON(t *testing.T) {
	var tbl result.StatisticTable
	tbl.Add(result.Statistic{Name: result.WilksLambda, Value: 0.5, NumDF: 2, DenDF: 7, F: 3.5, P: 0.08})
	tbl.Add(result.Statistic{Name: result.RoysGreatestRoot, Value: 1, NumDF: 2, DenDF: 0, F: math.Inf(1), P: math.NaN()})
	tbl.NGroups = 3

	assert.Equal(t, []string{result.WilksLambda, result.RoysGreatestRoot}, tbl.Order)
	assert.Len(t, tbl.Ordered(), 2)

	b, err := json.Marshal(&tbl)
	require.NoError(t, err, "non-finite values must not break encoding")
	assert.Contains(t, string(b), `"f":null`)
	assert.Contains(t, string(b), `"n_groups":3`)

	var back result.StatisticTable
	require.NoError(t, json.Unmarshal(b, &back))
	w, ok := back.Get(result.WilksLambda)
	require.True(t, ok)
	assert.Equal(t, 3.5, w.F)
	r, _ := back.Get(result.RoysGreatestRoot)
	assert.True(t, math.IsNaN(r.P))
}

func TestSummarizeGroups_SortedAndAveraged(t *testing.T) {
	data := [][]float64{{1, 10}, {3, 30}, {2, 20}, {5, 50}}
	labels := []string{"b", "a", "b", "a"}

	groups := result.SummarizeGroups(data, labels)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"a", "b"}, result.Labels(groups))

	assert.Equal(t, 2, groups[0].Size)
	assert.Equal(t, []int{1, 3}, groups[0].Members)
	assert.InDeltaSlice(t, []float64{4, 40}, groups[0].Mean, 1e-12)
	assert.InDeltaSlice(t, []float64{1.5, 15}, groups[1].Mean, 1e-12)
}
