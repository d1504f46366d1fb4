// SPDX-License-Identifier: MIT

package shape

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Point is one landmark. A nil (or empty) Point is a missing landmark.
type Point []float64

// Missing returns the missing-landmark sentinel.
func Missing() Point { return nil }

// IsMissing reports whether p is the missing sentinel.
func (p Point) IsMissing() bool { return len(p) == 0 }

// Clone returns a copy of p; missing stays missing.
func (p Point) Clone() Point {
	if p.IsMissing() {
		return nil
	}

	return append(Point(nil), p...)
}

// Finite reports whether every coordinate is a finite number.
func (p Point) Finite() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// Dist returns the Euclidean distance between two present points, or NaN when
// their lengths differ.
func Dist(a, b Point) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}

	return floats.Distance(a, b, 2)
}

// CommonDimension returns the length shared by every present point of ps and
// true, or false when two present points differ. It returns (0, true) when
// every point is missing.
func CommonDimension(ps []Point) (int, bool) {
	d := 0
	for _, p := range ps {
		if p.IsMissing() {
			continue
		}
		if d == 0 {
			d = len(p)
		} else if len(p) != d {
			return d, false
		}
	}

	return d, true
}

// ClonePoints deep-copies a landmark list.
func ClonePoints(ps []Point) []Point {
	if ps == nil {
		return nil
	}
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}

	return out
}

// ValidIndices returns the indices of present points, ascending.
func ValidIndices(ps []Point) []int {
	idx := make([]int, 0, len(ps))
	for i, p := range ps {
		if !p.IsMissing() {
			idx = append(idx, i)
		}
	}

	return idx
}

// Centroid returns the mean of ps at the given indices (all present points
// when indices is nil). It returns nil when no index selects a present point
// or the selected points differ in length.
func Centroid(ps []Point, indices []int) Point {
	if indices == nil {
		indices = ValidIndices(ps)
	}
	var c Point
	n := 0
	for _, i := range indices {
		if i < 0 || i >= len(ps) || ps[i].IsMissing() {
			continue
		}
		if c == nil {
			c = make(Point, len(ps[i]))
		} else if len(ps[i]) != len(c) {
			return nil
		}
		floats.Add(c, ps[i])
		n++
	}
	if n == 0 {
		return nil
	}
	floats.Scale(1/float64(n), c)

	return c
}

// CentroidSize returns sqrt(Σ‖p−c‖²) over the selected present points, where c
// is their centroid. It is 0 when Centroid is nil.
func CentroidSize(ps []Point, indices []int) float64 {
	if indices == nil {
		indices = ValidIndices(ps)
	}
	c := Centroid(ps, indices)
	if c == nil {
		return 0
	}
	var ss float64
	for _, i := range indices {
		if i < 0 || i >= len(ps) || ps[i].IsMissing() {
			continue
		}
		d := floats.Distance(ps[i], c, 2)
		ss += d * d
	}

	return math.Sqrt(ss)
}
