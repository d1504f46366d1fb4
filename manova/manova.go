// SPDX-License-Identifier: MIT

package manova

import (
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/matrix"
	"github.com/katalvlaran/morphometrics/result"
	"gonum.org/v1/gonum/stat/distuv"
)

// ColumnNames returns prefix1 … prefixN, e.g. PC1, PC2, PC3.
func ColumnNames(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i+1)
	}

	return out
}

// Analyze runs a one-way MANOVA of the score columns against groups.
// columns names the score columns; nil selects y1 … yp.
// Implementation:
//   - Stage 1: validate shapes, summarize groups in label order.
//   - Stage 2: residual E and hypothesis H cross-product matrices.
//   - Stage 3: eigenvalues of (E+H)⁻¹·H via Cholesky whitening.
//   - Stage 4: the four test statistics with F approximations.
//
// Complexity:
//   - Time O(n·p² + p³), Space O(n·p + p²).
func Analyze(scores [][]float64, groups []string, columns []string) (*result.StatisticTable, error) {
	if len(scores) != len(groups) {
		return nil, fmt.Errorf("manova: %d rows, %d labels: %w", len(scores), len(groups), morphometrics.ErrDegenerateInput)
	}
	if len(scores) < 2 {
		return nil, fmt.Errorf("manova: %d observations: %w", len(scores), morphometrics.ErrInsufficientData)
	}
	X, err := matrix.FromRows(scores)
	if err != nil {
		return nil, fmt.Errorf("manova: %w: %w", morphometrics.ErrDegenerateInput, err)
	}
	n, p := X.Rows(), X.Cols()
	if columns == nil {
		columns = ColumnNames("y", p)
	}
	if len(columns) != p {
		return nil, fmt.Errorf("manova: %d names for %d columns: %w", len(columns), p, morphometrics.ErrDegenerateInput)
	}
	stats := result.SummarizeGroups(scores, groups)
	g := len(stats)
	if g < 2 {
		return nil, fmt.Errorf("manova: %d distinct group(s): %w", g, morphometrics.ErrInsufficientGroups)
	}
	for _, st := range stats {
		if st.Size < p {
			return nil, fmt.Errorf("manova: group %q has %d observations for %d columns: %w",
				st.Label, st.Size, p, morphometrics.ErrDegenerateInput)
		}
	}

	E, H, err := crossProducts(scores, stats)
	if err != nil {
		return nil, err
	}
	lambda, err := eigenvalues(E, H)
	if err != nil {
		return nil, err
	}

	table := &result.StatisticTable{
		Columns:       append([]string(nil), columns...),
		GroupLabels:   result.Labels(stats),
		GroupMeans:    make([][]float64, g),
		GroupSizes:    make([]int, g),
		NGroups:       g,
		NObservations: n,
		NVariables:    p,
	}
	for i, st := range stats {
		table.GroupMeans[i] = st.Mean
		table.GroupSizes[i] = st.Size
	}
	for _, s := range tests(lambda, float64(p), float64(g-1), float64(n-g)) {
		table.Add(s)
	}

	return table, nil
}

// crossProducts returns E = Σ (x−m_g)(x−m_g)ᵀ and H = Σ n_g (m_g−m)(m_g−m)ᵀ.
func crossProducts(scores [][]float64, stats []result.GroupStatistics) (*matrix.Dense, *matrix.Dense, error) {
	p := len(scores[0])
	grand := make([]float64, p)
	for _, row := range scores {
		for j, v := range row {
			grand[j] += v
		}
	}
	for j := range grand {
		grand[j] /= float64(len(scores))
	}

	resid := make([][]float64, 0, len(scores))
	effect := make([][]float64, len(stats))
	for gi, st := range stats {
		w := math.Sqrt(float64(st.Size))
		effect[gi] = make([]float64, p)
		for j := range grand {
			effect[gi][j] = w * (st.Mean[j] - grand[j])
		}
		for _, i := range st.Members {
			row := make([]float64, p)
			for j := range row {
				row[j] = scores[i][j] - st.Mean[j]
			}
			resid = append(resid, row)
		}
	}

	E, err := crossProduct(resid)
	if err != nil {
		return nil, nil, fmt.Errorf("manova: residual SSCP: %w", err)
	}
	H, err := crossProduct(effect)
	if err != nil {
		return nil, nil, fmt.Errorf("manova: hypothesis SSCP: %w", err)
	}

	return E, H, nil
}

// crossProduct returns DᵀD.
func crossProduct(rows [][]float64) (*matrix.Dense, error) {
	D, err := matrix.FromRows(rows)
	if err != nil {
		return nil, err
	}
	Dt, err := matrix.Transpose(D)
	if err != nil {
		return nil, err
	}

	return matrix.Mul(Dt, D)
}

// eigenvalues returns the eigenvalues of (E+H)⁻¹·H, descending and clamped to
// [0, 1]. With T = E+H = L·Lᵀ they equal those of L⁻¹·H·L⁻ᵀ, which is symmetric.
func eigenvalues(E, H *matrix.Dense) ([]float64, error) {
	if _, err := matrix.Cholesky(E); err != nil {
		return nil, fmt.Errorf("manova: residual SSCP: %w: %w", morphometrics.ErrDegenerateInput, err)
	}
	T, err := matrix.Add(E, H)
	if err != nil {
		return nil, fmt.Errorf("manova: %w", err)
	}
	L, err := matrix.Cholesky(T)
	if err != nil {
		return nil, fmt.Errorf("manova: total SSCP: %w: %w", morphometrics.ErrDegenerateInput, err)
	}
	id, _ := matrix.NewIdentity(L.Rows())
	Linv, err := matrix.SolveLowerTriangular(L, id)
	if err != nil {
		return nil, fmt.Errorf("manova: %w: %w", morphometrics.ErrDegenerateInput, err)
	}
	LinvT, err := matrix.Transpose(Linv)
	if err != nil {
		return nil, fmt.Errorf("manova: %w", err)
	}
	tmp, err := matrix.Mul(Linv, H)
	if err != nil {
		return nil, fmt.Errorf("manova: %w", err)
	}
	A, err := matrix.Mul(tmp, LinvT)
	if err != nil {
		return nil, fmt.Errorf("manova: %w", err)
	}
	A, err = matrix.Symmetrize(A)
	if err != nil {
		return nil, fmt.Errorf("manova: %w", err)
	}
	vals, _, err := matrix.Eigen(A, matrix.DefaultEigenTol, matrix.DefaultEigenMaxIter)
	if err != nil {
		return nil, fmt.Errorf("manova: eigenvalues: %w", err)
	}
	for i, v := range vals {
		vals[i] = math.Min(1, math.Max(0, v))
	}

	return vals, nil
}

// tests computes the four statistics for p response columns, q hypothesis
// degrees of freedom and v residual degrees of freedom.
func tests(lambda []float64, p, q, v float64) []result.Statistic {
	s := math.Min(p, q)
	m := (math.Abs(p-q) - 1) / 2
	n := (v - p - 1) / 2

	wilks, pillai, hl, roy := 1.0, 0.0, 0.0, 0.0
	for _, l := range lambda {
		wilks *= 1 - l
		pillai += l
		r := l / (1 - l)
		hl += r
		roy = math.Max(roy, r)
	}

	out := make([]result.Statistic, 0, 4)

	// Wilks' lambda, Rao's F.
	t := 1.0
	if d := p*p + q*q - 5; d > 0 {
		t = math.Sqrt((p*p*q*q - 4) / d)
	}
	r := v - (p-q+1)/2
	u := (p*q - 2) / 4
	df1, df2 := p*q, r*t-2*u
	root := math.Pow(wilks, 1/t)
	out = append(out, stat(result.WilksLambda, wilks, df1, df2, (1-root)/root*df2/df1))

	// Pillai's trace.
	df1, df2 = s*(2*m+s+1), s*(2*n+s+1)
	out = append(out, stat(result.PillaiTrace, pillai, df1, df2, df2/df1*pillai/(s-pillai)))

	// Hotelling-Lawley trace.
	if n > 0 {
		b := (p + 2*n) * (q + 2*n) / 2 / (2*n + 1) / (n - 1)
		df1 = p * q
		df2 = 4 + (p*q+2)/(b-1)
		c := (df2 - 2) / 2 / n
		out = append(out, stat(result.HotellingLawleyTrace, hl, df1, df2, df2/df1*hl/c))
	} else {
		df1 = s * (2*m + s + 1)
		df2 = s * (s*n + 1)
		out = append(out, stat(result.HotellingLawleyTrace, hl, df1, df2, df2/df1/s*hl))
	}

	// Roy's greatest root, upper bound on F.
	df1 = math.Max(p, q)
	df2 = v - df1 + q
	out = append(out, stat(result.RoysGreatestRoot, roy, df1, df2, df2/df1*roy))

	return out
}

// stat fills the p-value from the F distribution's upper tail; undefined
// degrees of freedom or F give NaN.
func stat(name string, value, df1, df2, f float64) result.Statistic {
	pv := math.NaN()
	if df1 > 0 && df2 > 0 && f >= 0 && !math.IsInf(f, 0) {
		pv = distuv.F{D1: df1, D2: df2}.Survival(f)
	}

	return result.Statistic{Name: name, Value: value, NumDF: df1, DenDF: df2, F: f, P: pv}
}
