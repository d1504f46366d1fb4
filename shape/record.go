// SPDX-License-Identifier: MIT

package shape

import "fmt"

// Record is one specimen: ordered landmarks, group labels and optional centroid size.
type Record struct {
	ID           string
	Landmarks    []Point
	Groups       []string
	CentroidSize *float64
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		ID:        r.ID,
		Landmarks: ClonePoints(r.Landmarks),
	}
	if r.Groups != nil {
		out.Groups = append([]string(nil), r.Groups...)
	}
	if r.CentroidSize != nil {
		cs := *r.CentroidSize
		out.CentroidSize = &cs
	}

	return out
}

// Dimension returns the length of the first present landmark, or 0 if none.
func (r *Record) Dimension() int {
	for _, p := range r.Landmarks {
		if !p.IsMissing() {
			return len(p)
		}
	}

	return 0
}

// ValidIndices returns the indices of present landmarks.
func (r *Record) ValidIndices() []int { return ValidIndices(r.Landmarks) }

// HasMissing reports whether any landmark is missing.
func (r *Record) HasMissing() bool {
	for _, p := range r.Landmarks {
		if p.IsMissing() {
			return true
		}
	}

	return false
}

// Centroid returns the centroid over indices (nil means all present landmarks).
func (r *Record) Centroid(indices []int) Point { return Centroid(r.Landmarks, indices) }

// ComputeCentroidSize returns the centroid size over indices (nil means all present landmarks).
func (r *Record) ComputeCentroidSize(indices []int) float64 {
	return CentroidSize(r.Landmarks, indices)
}

// Flatten returns the interleaved coordinate row of r.
// Fails with ErrMissingLandmark if any landmark is missing.
func (r *Record) Flatten() ([]float64, error) {
	dim := r.Dimension()
	row := make([]float64, 0, len(r.Landmarks)*dim)
	for i, p := range r.Landmarks {
		if p.IsMissing() {
			return nil, fmt.Errorf("shape: flatten %q landmark %d: %w", r.ID, i, ErrMissingLandmark)
		}
		row = append(row, p...)
	}

	return row, nil
}

// Unflatten splits an interleaved row into dim-length points.
func Unflatten(row []float64, dim int) ([]Point, error) {
	if dim != 2 && dim != 3 {
		return nil, ErrBadDimension
	}
	if len(row)%dim != 0 {
		return nil, fmt.Errorf("shape: unflatten %d values by %d: %w", len(row), dim, ErrMismatchedRecord)
	}
	out := make([]Point, len(row)/dim)
	for i := range out {
		out[i] = append(Point(nil), row[i*dim:(i+1)*dim]...)
	}

	return out, nil
}

// Group returns the label at index, or UnknownGroup when out of range.
func (r *Record) Group(index int) string {
	if index < 0 || index >= len(r.Groups) || r.Groups[index] == "" {
		return UnknownGroup
	}

	return r.Groups[index]
}
