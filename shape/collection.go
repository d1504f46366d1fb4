// SPDX-License-Identifier: MIT

package shape

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// UnknownGroup labels records with no value for the requested group column.
const UnknownGroup = "Unknown"

// Collection is an ordered set of records sharing landmark count and dimension.
// Records and Edges are exported for loaders; code that edits Records directly
// must call Touch so version-keyed caches notice.
type Collection struct {
	ID            uuid.UUID
	Dimension     int
	LandmarkCount int
	Records       []*Record
	Edges         [][2]int
	GroupNames    []string

	version uint64
}

// NewCollection returns an empty collection with a fresh ID.
func NewCollection(dimension, landmarkCount int) (*Collection, error) {
	if dimension != 2 && dimension != 3 {
		return nil, fmt.Errorf("shape: new collection dimension %d: %w", dimension, ErrBadDimension)
	}
	if landmarkCount <= 0 {
		return nil, fmt.Errorf("shape: new collection landmark count %d: %w", landmarkCount, ErrMismatchedRecord)
	}

	return &Collection{ID: uuid.New(), Dimension: dimension, LandmarkCount: landmarkCount}, nil
}

// Version returns the mutation counter.
func (c *Collection) Version() uint64 { return c.version }

// Touch bumps the version after direct edits to Records.
func (c *Collection) Touch() { c.version++ }

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.Records) }

// check verifies r against the collection's landmark count and dimension.
func (c *Collection) check(r *Record) error {
	if r == nil {
		return ErrNilRecord
	}
	if len(r.Landmarks) != c.LandmarkCount {
		return fmt.Errorf("shape: record %q has %d landmarks, want %d: %w",
			r.ID, len(r.Landmarks), c.LandmarkCount, ErrMismatchedRecord)
	}
	for i, p := range r.Landmarks {
		if p.IsMissing() {
			continue
		}
		if len(p) != c.Dimension {
			return fmt.Errorf("shape: record %q landmark %d has %d coordinates, want %d: %w",
				r.ID, i, len(p), c.Dimension, ErrMismatchedRecord)
		}
		if !p.Finite() {
			return fmt.Errorf("shape: record %q landmark %d is not finite: %w", r.ID, i, ErrMismatchedRecord)
		}
	}

	return nil
}

// Add appends a deep copy of r after checking it.
func (c *Collection) Add(r *Record) error {
	if err := c.check(r); err != nil {
		return err
	}
	c.Records = append(c.Records, r.Clone())
	c.version++

	return nil
}

// Remove deletes the first record with the given ID and reports whether one was found.
func (c *Collection) Remove(id string) bool {
	for i, r := range c.Records {
		if r != nil && r.ID == id {
			c.Records = append(c.Records[:i], c.Records[i+1:]...)
			c.version++
			return true
		}
	}

	return false
}

// Replace swaps the record at index i for a deep copy of r.
func (c *Collection) Replace(i int, r *Record) error {
	if i < 0 || i >= len(c.Records) {
		return fmt.Errorf("shape: replace record %d: %w", i, ErrOutOfRange)
	}
	if err := c.check(r); err != nil {
		return err
	}
	c.Records[i] = r.Clone()
	c.version++

	return nil
}

// SetLandmark overwrites one landmark; p may be Missing().
func (c *Collection) SetLandmark(record, landmark int, p Point) error {
	if record < 0 || record >= len(c.Records) || landmark < 0 || landmark >= c.LandmarkCount {
		return fmt.Errorf("shape: set landmark (%d,%d): %w", record, landmark, ErrOutOfRange)
	}
	if !p.IsMissing() && (len(p) != c.Dimension || !p.Finite()) {
		return fmt.Errorf("shape: set landmark (%d,%d): %w", record, landmark, ErrMismatchedRecord)
	}
	c.Records[record].Landmarks[landmark] = p.Clone()
	c.version++

	return nil
}

// Snapshot returns a deep copy sharing ID and version.
func (c *Collection) Snapshot() *Collection {
	out := &Collection{
		ID:            c.ID,
		Dimension:     c.Dimension,
		LandmarkCount: c.LandmarkCount,
		Records:       make([]*Record, len(c.Records)),
		version:       c.version,
	}
	for i, r := range c.Records {
		out.Records[i] = r.Clone()
	}
	if c.Edges != nil {
		out.Edges = append([][2]int(nil), c.Edges...)
	}
	if c.GroupNames != nil {
		out.GroupNames = append([]string(nil), c.GroupNames...)
	}

	return out
}

// Validate checks the collection header and every record, joining all failures.
func (c *Collection) Validate() error {
	if c.Dimension != 2 && c.Dimension != 3 {
		return fmt.Errorf("shape: validate dimension %d: %w", c.Dimension, ErrBadDimension)
	}
	var errs []error
	for _, r := range c.Records {
		if err := c.check(r); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range c.Edges {
		if e[0] < 0 || e[0] >= c.LandmarkCount || e[1] < 0 || e[1] >= c.LandmarkCount {
			errs = append(errs, fmt.Errorf("shape: edge %v: %w", e, ErrOutOfRange))
		}
	}

	return errors.Join(errs...)
}

// Complete returns a snapshot restricted to records without missing landmarks,
// and the indices those records had in c.
func (c *Collection) Complete() (*Collection, []int) {
	out := &Collection{
		ID:            c.ID,
		Dimension:     c.Dimension,
		LandmarkCount: c.LandmarkCount,
		version:       c.version,
	}
	var idx []int
	for i, r := range c.Records {
		if r != nil && !r.HasMissing() {
			out.Records = append(out.Records, r.Clone())
			idx = append(idx, i)
		}
	}

	return out, idx
}

// DataMatrix flattens every complete record into one row and returns the rows
// together with the record indices they came from.
func (c *Collection) DataMatrix() ([][]float64, []int) {
	var (
		rows [][]float64
		idx  []int
	)
	for i, r := range c.Records {
		if r == nil {
			continue
		}
		row, err := r.Flatten()
		if err != nil {
			continue
		}
		rows = append(rows, row)
		idx = append(idx, i)
	}

	return rows, idx
}

// GroupColumn returns the label of group column index for every record,
// UnknownGroup where a record has none.
func (c *Collection) GroupColumn(index int) []string {
	out := make([]string, len(c.Records))
	for i, r := range c.Records {
		if r == nil {
			out[i] = UnknownGroup
			continue
		}
		out[i] = r.Group(index)
	}

	return out
}
