// SPDX-License-Identifier: MIT

package tps

import (
	"fmt"
	"math"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/shape"
)

// BoundaryPoints returns count anchors around config's centroid at radius
// factor × the largest landmark distance from it: evenly spaced on a circle in
// 2-D, on a Fibonacci lattice of the sphere in 3-D.
func BoundaryPoints(config []shape.Point, count int, factor float64) ([]shape.Point, error) {
	if count <= 0 || !(factor > 0) {
		return nil, ErrBadOption
	}
	c := shape.Centroid(config, nil)
	if c == nil {
		return nil, fmt.Errorf("tps: boundary of empty configuration: %w", morphometrics.ErrInsufficientData)
	}
	var rmax float64
	for _, p := range config {
		if !p.IsMissing() {
			rmax = math.Max(rmax, shape.Dist(p, c))
		}
	}
	if rmax == 0 {
		rmax = 1
	}
	r := factor * rmax

	out := make([]shape.Point, count)
	switch len(c) {
	case 2:
		for i := range out {
			a := 2 * math.Pi * float64(i) / float64(count)
			out[i] = shape.Point{c[0] + r*math.Cos(a), c[1] + r*math.Sin(a)}
		}
	case 3:
		golden := math.Pi * (3 - math.Sqrt(5))
		for i := range out {
			z := 1 - 2*(float64(i)+0.5)/float64(count)
			ring := math.Sqrt(1 - z*z)
			a := golden * float64(i)
			out[i] = shape.Point{c[0] + r*ring*math.Cos(a), c[1] + r*ring*math.Sin(a), c[2] + r*z}
		}
	default:
		return nil, fmt.Errorf("tps: boundary dimension %d: %w", len(c), morphometrics.ErrInsufficientData)
	}

	return out, nil
}

// Grid returns the lines of a 2-D rectangular grid spanning [lo, hi]: nx
// vertical lines of ny points followed by ny horizontal lines of nx points.
func Grid(lo, hi shape.Point, nx, ny int) ([][]shape.Point, error) {
	if len(lo) != 2 || len(hi) != 2 || nx < 2 || ny < 2 {
		return nil, ErrBadOption
	}
	xs := linspace(lo[0], hi[0], nx)
	ys := linspace(lo[1], hi[1], ny)

	lines := make([][]shape.Point, 0, nx+ny)
	for _, x := range xs {
		line := make([]shape.Point, ny)
		for j, y := range ys {
			line[j] = shape.Point{x, y}
		}
		lines = append(lines, line)
	}
	for _, y := range ys {
		line := make([]shape.Point, nx)
		for i, x := range xs {
			line[i] = shape.Point{x, y}
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// Bounds returns the per-axis min and max of the present points, padded by pad.
func Bounds(ps []shape.Point, pad float64) (shape.Point, shape.Point) {
	var lo, hi shape.Point
	for _, p := range ps {
		if p.IsMissing() {
			continue
		}
		if lo == nil {
			lo, hi = p.Clone(), p.Clone()
			continue
		}
		for k, v := range p {
			lo[k] = math.Min(lo[k], v)
			hi[k] = math.Max(hi[k], v)
		}
	}
	for k := range lo {
		lo[k] -= pad
		hi[k] += pad
	}

	return lo, hi
}

// WarpGrid maps every grid line through t.
func WarpGrid(t *Transform, lines [][]shape.Point) [][]shape.Point {
	out := make([][]shape.Point, len(lines))
	for i, line := range lines {
		out[i] = t.ApplyAll(line)
	}

	return out
}

// Interpolate returns (1−f)·src + f·dst landmark-wise; a landmark missing on
// either side stays missing.
func Interpolate(src, dst []shape.Point, f float64) ([]shape.Point, error) {
	if len(src) != len(dst) {
		return nil, fmt.Errorf("tps: interpolate %d vs %d points: %w", len(src), len(dst), morphometrics.ErrInsufficientData)
	}
	out := make([]shape.Point, len(src))
	for i := range src {
		if src[i].IsMissing() || dst[i].IsMissing() || len(src[i]) != len(dst[i]) {
			continue
		}
		p := make(shape.Point, len(src[i]))
		for k := range p {
			p[k] = (1-f)*src[i][k] + f*dst[i][k]
		}
		out[i] = p
	}

	return out, nil
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + step*float64(i)
	}
	out[n-1] = b

	return out
}
