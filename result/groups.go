// SPDX-License-Identifier: MIT

package result

import "sort"

// GroupStatistics summarizes the observations sharing one label.
type GroupStatistics struct {
	Label   string    `json:"label"`
	Size    int       `json:"size"`
	Mean    []float64 `json:"mean"`
	Members []int     `json:"-"`
}

// SummarizeGroups partitions the rows of data by labels and returns one entry
// per distinct label, sorted lexicographically by label. Mean is the column
// mean of the group's rows; Members lists the row indices in input order.
// labels must be parallel to data; rows beyond len(labels) are ignored.
func SummarizeGroups(data [][]float64, labels []string) []GroupStatistics {
	n := len(data)
	if len(labels) < n {
		n = len(labels)
	}
	byLabel := make(map[string]*GroupStatistics)
	for i := 0; i < n; i++ {
		g, ok := byLabel[labels[i]]
		if !ok {
			g = &GroupStatistics{Label: labels[i], Mean: make([]float64, len(data[i]))}
			byLabel[labels[i]] = g
		}
		g.Size++
		g.Members = append(g.Members, i)
		for j, v := range data[i] {
			if j < len(g.Mean) {
				g.Mean[j] += v
			}
		}
	}

	keys := make([]string, 0, len(byLabel))
	for k := range byLabel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]GroupStatistics, len(keys))
	for i, k := range keys {
		g := byLabel[k]
		for j := range g.Mean {
			g.Mean[j] /= float64(g.Size)
		}
		out[i] = *g
	}

	return out
}

// Labels returns the labels of groups in order.
func Labels(groups []GroupStatistics) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label
	}

	return out
}
