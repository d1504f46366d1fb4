// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/katalvlaran/morphometrics/shape"
)

// DatasetFile is the JSON interchange form of a dataset. A missing landmark
// is written as null.
type DatasetFile struct {
	Name       string       `json:"name"`
	Dimension  int          `json:"dimension,omitempty"`
	GroupNames []string     `json:"group_names,omitempty"`
	Edges      [][2]int     `json:"edges,omitempty"`
	Objects    []ObjectFile `json:"objects"`
}

// ObjectFile is one specimen of a DatasetFile.
type ObjectFile struct {
	ID           string        `json:"id"`
	Landmarks    []shape.Point `json:"landmarks"`
	Groups       []string      `json:"groups,omitempty"`
	CentroidSize *float64      `json:"csize,omitempty"`
}

// DecodeDataset reads a DatasetFile from r.
func DecodeDataset(r io.Reader) (*DatasetFile, error) {
	var f DatasetFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	return &f, nil
}

// Collection converts f into a validated collection. A zero Dimension is
// taken from the first present landmark.
func (f *DatasetFile) Collection() (*shape.Collection, error) {
	if len(f.Objects) == 0 {
		return nil, fmt.Errorf("%w: no objects", ErrInvalidDataset)
	}
	dim := f.Dimension
	if dim == 0 {
	scan:
		for _, o := range f.Objects {
			for _, p := range o.Landmarks {
				if !p.IsMissing() {
					dim = len(p)
					break scan
				}
			}
		}
	}
	c, err := shape.NewCollection(dim, len(f.Objects[0].Landmarks))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	c.GroupNames = f.GroupNames
	c.Edges = f.Edges
	for i, o := range f.Objects {
		id := o.ID
		if id == "" {
			id = fmt.Sprintf("object-%d", i+1)
		}
		err = c.Add(&shape.Record{ID: id, Landmarks: o.Landmarks, Groups: o.Groups, CentroidSize: o.CentroidSize})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
	}
	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	return c, nil
}

// Import decodes a DatasetFile from r and stores it, returning the dataset ID.
func (s *Store) Import(ctx context.Context, r io.Reader) (string, error) {
	f, err := DecodeDataset(r)
	if err != nil {
		return "", err
	}
	c, err := f.Collection()
	if err != nil {
		return "", err
	}

	return s.CreateDataset(ctx, f.Name, c)
}
