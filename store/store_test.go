// SPDX-License-Identifier: MIT

package store_test

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/katalvlaran/morphometrics/analysis"
	"github.com/katalvlaran/morphometrics/missing"
	"github.com/katalvlaran/morphometrics/shape"
	"github.com/katalvlaran/morphometrics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "morpho.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// triangles returns a DatasetFile of n noisy, rotated triangles per group; the
// last object of group "b" lacks its second landmark.
func triangles(rng *rand.Rand, n int) *store.DatasetFile {
	base := []shape.Point{{0, 0}, {1, 0}, {0.5, 0.9}, {0.5, 0.3}}
	f := &store.DatasetFile{Name: "triangles", Dimension: 2, GroupNames: []string{"species"}, Edges: [][2]int{{0, 1}, {1, 2}, {2, 0}}}
	for g, label := range []string{"a", "b"} {
		for k := 0; k < n; k++ {
			theta := rng.Float64() * math.Pi
			pts := make([]shape.Point, len(base))
			for i, p := range base {
				x, y := p[0]+rng.NormFloat64()*0.01, p[1]+rng.NormFloat64()*0.01
				if g == 1 && i == 2 {
					y += 0.2
				}
				pts[i] = shape.Point{x*math.Cos(theta) - y*math.Sin(theta) + 3, x*math.Sin(theta) + y*math.Cos(theta)}
			}
			f.Objects = append(f.Objects, store.ObjectFile{ID: label + strings.Repeat("'", k), Landmarks: pts, Groups: []string{label}})
		}
	}
	f.Objects[len(f.Objects)-1].Landmarks[1] = shape.Missing()

	return f
}

func importFile(t *testing.T, s *store.Store, f *store.DatasetFile) string {
	t.Helper()
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	require.Contains(t, string(raw), "null", "missing landmark is written as null")
	id, err := s.Import(context.Background(), bytes.NewReader(raw))
	require.NoError(t, err)

	return id
}

func TestStore_DatasetRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	f := triangles(rand.New(rand.NewSource(1)), 4)
	csize := 2.5
	f.Objects[0].CentroidSize = &csize

	id := importFile(t, s, f)

	c, err := s.LoadDataset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID.String())
	assert.Equal(t, 2, c.Dimension)
	assert.Equal(t, 4, c.LandmarkCount)
	assert.Equal(t, []string{"species"}, c.GroupNames)
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 0}}, c.Edges)
	require.Equal(t, 8, c.Len())
	for i, r := range c.Records {
		assert.Equal(t, f.Objects[i].ID, r.ID, "sequence order is kept")
	}
	require.NotNil(t, c.Records[0].CentroidSize)
	assert.Equal(t, 2.5, *c.Records[0].CentroidSize)
	assert.Nil(t, c.Records[1].CentroidSize)
	assert.True(t, c.Records[7].Landmarks[1].IsMissing())
	assert.True(t, c.Records[7].HasMissing())
	assert.InDeltaSlice(t, f.Objects[3].Landmarks[2], c.Records[3].Landmarks[2], 1e-15)

	extra := &shape.Record{ID: "late", Landmarks: []shape.Point{{0, 0}, {1, 0}, {0.5, 1}, shape.Missing()}, Groups: []string{"a"}}
	require.NoError(t, s.AddObject(ctx, id, extra))
	assert.ErrorIs(t, s.AddObject(ctx, id, &shape.Record{ID: "short", Landmarks: []shape.Point{{0, 0}}}), store.ErrInvalidDataset)
	assert.ErrorIs(t, s.AddObject(ctx, "nope", extra), store.ErrNotFound)
	c, err = s.LoadDataset(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 9, c.Len())
	assert.Equal(t, "late", c.Records[8].ID)
	assert.True(t, c.Records[8].Landmarks[3].IsMissing())

	list, err := s.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "triangles", list[0].Name)
	assert.Equal(t, 4, list[0].LandmarkCount)

	require.NoError(t, s.DeleteDataset(ctx, id))
	_, err = s.LoadDataset(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDataset(ctx, id), store.ErrNotFound)
}

func TestStore_ImportRejectsMalformed(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, strings.NewReader("{not json"))
	assert.ErrorIs(t, err, store.ErrInvalidDataset)

	_, err = s.Import(ctx, strings.NewReader(`{"name":"empty","objects":[]}`))
	assert.ErrorIs(t, err, store.ErrInvalidDataset)

	_, err = s.Import(ctx, strings.NewReader(`{"objects":[{"landmarks":[[0,0],[1,1]]},{"landmarks":[[0,0]]}]}`))
	assert.ErrorIs(t, err, store.ErrInvalidDataset, "landmark counts differ")

	_, err = s.Import(ctx, strings.NewReader(`{"objects":[{"landmarks":[[0,0,0,0],[1,1,1,1]]}]}`))
	assert.ErrorIs(t, err, store.ErrInvalidDataset, "four-dimensional points")
}

func TestDatasetFile_InfersDimension(t *testing.T) {
	f, err := store.DecodeDataset(strings.NewReader(
		`{"objects":[{"landmarks":[null,[0,0,1],[1,0,0]]},{"id":"x","landmarks":[[0,1,0],[0,0,1],[1,0,0]]}]}`))
	require.NoError(t, err)
	c, err := f.Collection()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Dimension)
	assert.Equal(t, "object-1", c.Records[0].ID)
	assert.Equal(t, "x", c.Records[1].ID)
	assert.True(t, c.Records[0].Landmarks[0].IsMissing())
}

func TestStore_AnalysisRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	id := importFile(t, s, triangles(rand.New(rand.NewSource(2)), 8))

	o, err := analysis.New(s)
	require.NoError(t, err)
	group := 0
	rec, err := o.Run(ctx, analysis.Request{DatasetID: id, Name: "run", CVAGroupBy: &group, MANOVAGroupBy: &group})
	require.NoError(t, err)
	require.NotNil(t, rec.PCA)

	got, err := s.GetAnalysis(ctx, rec.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, "run", got.Name)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, rec.Observations, got.Observations)
	assert.Len(t, got.Objects, 16)
	assert.True(t, got.RawLandmarks[15][1].IsMissing())
	assert.InDeltaSlice(t, rec.PCA.Eigenvalues, got.PCA.Eigenvalues, 1e-12)
	assert.Equal(t, rec.CVA != nil, got.CVA != nil)
	assert.Equal(t, rec.CVAError, got.CVAError)
	if rec.MANOVA != nil {
		require.NotNil(t, got.MANOVA)
		assert.Equal(t, rec.MANOVA.Order, got.MANOVA.Order)
	}

	list, err := s.ListAnalyses(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.RunID.String(), list[0].ID)
	assert.Equal(t, id, list[0].DatasetID)

	all, err := s.ListAnalyses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.GetAnalysis(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_ReloadKeepsCacheKey(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	id := importFile(t, s, triangles(rand.New(rand.NewSource(3)), 3))

	before, err := s.LoadDataset(ctx, id)
	require.NoError(t, err)
	e := missing.New()
	stale, err := e.MeanShape(before)
	require.NoError(t, err)

	odd := &shape.Record{ID: "odd", Landmarks: []shape.Point{{0, 0}, {4, 0}, {0.5, 3}, {2, 0.2}}, Groups: []string{"a"}}
	require.NoError(t, s.AddObject(ctx, id, odd))
	after, err := s.LoadDataset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.Version(), after.Version())

	cached, err := e.MeanShape(after)
	require.NoError(t, err)
	assert.Same(t, &stale[0], &cached[0], "same key serves the cached mean")

	e.Invalidate(after.ID)
	fresh, err := e.MeanShape(after)
	require.NoError(t, err)
	assert.NotSame(t, &stale[0], &fresh[0])
	assert.NotEqual(t, stale, fresh)
}
