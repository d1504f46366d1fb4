// SPDX-License-Identifier: MIT

package result

// Analysis kinds.
const (
	KindPCA = "pca"
	KindCVA = "cva"
)

// GroupCentroid is the mean score vector of one group.
type GroupCentroid struct {
	Label    string    `json:"label"`
	Size     int       `json:"size"`
	Centroid []float64 `json:"centroid"`
}

// Analysis is the common PCA/CVA payload. Rotation columns are the axes;
// Scores has one row per observation and one column per axis.
type Analysis struct {
	Kind                  string      `json:"kind"`
	Eigenvalues           []float64   `json:"eigenvalues"`
	EigenvaluePercentages []float64   `json:"eigenvalue_percentages"`
	CumulativePercentages []float64   `json:"cumulative_percentages"`
	RotationMatrix        [][]float64 `json:"rotation_matrix"`
	Scores                [][]float64 `json:"scores"`
	Means                 []float64   `json:"means,omitempty"`

	// PCA cutoffs.
	SignificantComponents int `json:"significant_components,omitempty"`
	EffectiveComponents   int `json:"effective_components,omitempty"`

	// CVA extras.
	RetainedVariables []int           `json:"retained_variables,omitempty"`
	NonTrivialAxes    int             `json:"non_trivial_axes,omitempty"`
	Groups            []string        `json:"groups,omitempty"`
	GroupCentroids    []GroupCentroid `json:"group_centroids,omitempty"`
	Classification    []string        `json:"classification,omitempty"`
	Accuracy          *float64        `json:"accuracy,omitempty"`
}

// Axes returns the number of axes (rotation columns).
func (a *Analysis) Axes() int {
	if len(a.RotationMatrix) == 0 {
		return 0
	}

	return len(a.RotationMatrix[0])
}

// Truncate returns a copy keeping the first k axes of eigenvalues, rotation,
// scores and group centroids. k outside [0, Axes()] keeps everything.
func (a *Analysis) Truncate(k int) *Analysis {
	out := *a
	if k < 0 || k >= a.Axes() {
		k = a.Axes()
	}
	out.Eigenvalues = head(a.Eigenvalues, k)
	out.EigenvaluePercentages = head(a.EigenvaluePercentages, k)
	out.CumulativePercentages = head(a.CumulativePercentages, k)
	out.RotationMatrix = columns(a.RotationMatrix, k)
	out.Scores = columns(a.Scores, k)
	if a.GroupCentroids != nil {
		out.GroupCentroids = make([]GroupCentroid, len(a.GroupCentroids))
		for i, g := range a.GroupCentroids {
			out.GroupCentroids[i] = GroupCentroid{Label: g.Label, Size: g.Size, Centroid: head(g.Centroid, k)}
		}
	}

	return &out
}

// PadScores returns the score matrix with exactly k columns: truncated, or
// padded with zeros when fewer axes exist.
func (a *Analysis) PadScores(k int) [][]float64 {
	if k < 0 {
		k = 0
	}
	out := make([][]float64, len(a.Scores))
	for i, row := range a.Scores {
		r := make([]float64, k)
		copy(r, row)
		out[i] = r
	}

	return out
}

func head(xs []float64, k int) []float64 {
	if xs == nil {
		return nil
	}
	if k > len(xs) {
		k = len(xs)
	}

	return append([]float64(nil), xs[:k]...)
}

func columns(rows [][]float64, k int) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = head(row, k)
	}

	return out
}
