// SPDX-License-Identifier: MIT

package analysis_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/analysis"
	"github.com/katalvlaran/morphometrics/metrics"
	"github.com/katalvlaran/morphometrics/shape"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

var errStoreDown = errors.New("store down")

// memoryRepo is an in-memory Repository.
type memoryRepo struct {
	mu       sync.Mutex
	datasets map[string]*shape.Collection
	saved    []*analysis.Record
	saveErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{datasets: map[string]*shape.Collection{}}
}

func (r *memoryRepo) LoadDataset(_ context.Context, id string) (*shape.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.datasets[id]
	if !ok {
		return nil, errors.New("not found")
	}

	return c, nil
}

func (r *memoryRepo) SaveAnalysis(_ context.Context, rec *analysis.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, rec)

	return nil
}

var pentagon = []shape.Point{{0, 1}, {0.95, 0.31}, {0.59, -0.81}, {-0.59, -0.81}, {-0.95, 0.31}}

// specimens returns perSide specimens of two groups ("a", "b") under random
// similarity transforms; group b has its first landmark pushed outwards.
func specimens(rng *rand.Rand, perSide int) *shape.Collection {
	c, err := shape.NewCollection(2, len(pentagon))
	So(err, ShouldBeNil)
	c.GroupNames = []string{"side", "batch"}
	for g, label := range []string{"a", "b"} {
		for k := 0; k < perSide; k++ {
			theta := rng.Float64() * 2 * math.Pi
			s := 1 + rng.Float64()
			tx, ty := rng.NormFloat64()*5, rng.NormFloat64()*5
			pts := make([]shape.Point, len(pentagon))
			for i, p := range pentagon {
				x := p[0] + rng.NormFloat64()*0.02
				y := p[1] + rng.NormFloat64()*0.02
				if g == 1 && i == 0 {
					y += 0.3
				}
				pts[i] = shape.Point{
					s*(x*math.Cos(theta)-y*math.Sin(theta)) + tx,
					s*(x*math.Sin(theta)+y*math.Cos(theta)) + ty,
				}
			}
			batch := "early"
			if k%2 == 1 {
				batch = "late"
			}
			So(c.Add(&shape.Record{ID: label + string(rune('0'+k)), Landmarks: pts, Groups: []string{label, batch}}), ShouldBeNil)
		}
	}

	return c
}

func intPtr(v int) *int { return &v }

func TestOrchestratorRun(t *testing.T) {
	Convey("Given an orchestrator over a two-group dataset", t, func() {
		rng := rand.New(rand.NewSource(5))
		repo := newMemoryRepo()
		repo.datasets["shapes"] = specimens(rng, 10)
		registry := prometheus.NewRegistry()
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
		o, err := analysis.New(repo,
			analysis.WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(registry))),
			analysis.WithClock(func() time.Time { return fixed }),
		)
		So(err, ShouldBeNil)

		Convey("When running PCA, CVA and MANOVA", func() {
			rec, err := o.Run(context.Background(), analysis.Request{
				DatasetID:     "shapes",
				CVAGroupBy:    intPtr(0),
				MANOVAGroupBy: intPtr(0),
			})

			Convey("Then every stage result is recorded and saved", func() {
				So(err, ShouldBeNil)
				So(repo.saved, ShouldHaveLength, 1)
				So(repo.saved[0], ShouldEqual, rec)

				So(rec.Name, ShouldStartWith, "Analysis ")
				So(rec.CreatedAt.Equal(fixed), ShouldBeTrue)
				So(rec.CreatedAt.Location(), ShouldEqual, time.UTC)
				So(rec.Superimposition, ShouldEqual, "Procrustes")
				So(rec.Dimension, ShouldEqual, 2)
				So(rec.GroupNames, ShouldResemble, []string{"side", "batch"})
				So(rec.Objects, ShouldHaveLength, 20)
				So(rec.Objects[0].Sequence, ShouldEqual, 1)
				So(rec.Objects[0].CentroidSize, ShouldBeGreaterThan, 0)
				So(rec.Observations, ShouldHaveLength, 20)
				So(rec.Consensus, ShouldHaveLength, len(pentagon))

				So(rec.PCA, ShouldNotBeNil)
				So(rec.PCA.Scores, ShouldHaveLength, 20)
				So(rec.PCA.EffectiveComponents, ShouldBeGreaterThan, 0)

				So(rec.CVAError, ShouldBeEmpty)
				So(rec.CVA, ShouldNotBeNil)
				So(rec.CVAInput, ShouldBeIn, []string{analysis.CVAInputCoordinates, analysis.CVAInputScores})
				So(rec.CVA.Scores, ShouldHaveLength, 20)
				So(rec.CVA.Scores[0], ShouldHaveLength, analysis.DefaultCVAAxes)
				So(*rec.CVA.Accuracy, ShouldEqual, 100)

				So(rec.MANOVAError, ShouldBeEmpty)
				So(rec.MANOVA, ShouldNotBeNil)
				So(rec.MANOVA.NGroups, ShouldEqual, 2)
				So(rec.MANOVA.Columns[0], ShouldEqual, "PC1")
			})

			Convey("Then each stage is counted once as a success", func() {
				expected := `
# HELP morphometrics_analysis_analyses_total Analysis stages run, by kind and outcome
# TYPE morphometrics_analysis_analyses_total counter
morphometrics_analysis_analyses_total{kind="cva",outcome="success"} 1
morphometrics_analysis_analyses_total{kind="manova",outcome="success"} 1
morphometrics_analysis_analyses_total{kind="pca",outcome="success"} 1
morphometrics_analysis_analyses_total{kind="procrustes",outcome="success"} 1
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected),
					"morphometrics_analysis_analyses_total"), ShouldBeNil)
			})
		})

		Convey("When the request names axes and a title", func() {
			rec, err := o.Run(context.Background(), analysis.Request{
				DatasetID:  "shapes",
				Name:       "wings",
				CVAGroupBy: intPtr(0),
				Axes:       5,
			})

			Convey("Then CVA scores are padded to the requested width", func() {
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "wings")
				So(rec.CVA.Scores[0], ShouldHaveLength, 5)
				So(rec.MANOVA, ShouldBeNil)
			})
		})

		Convey("When saving fails", func() {
			repo.saveErr = errStoreDown
			rec, err := o.Run(context.Background(), analysis.Request{DatasetID: "shapes"})

			Convey("Then the run fails with the repository error", func() {
				So(rec, ShouldBeNil)
				So(errors.Is(err, errStoreDown), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := o.Run(ctx, analysis.Request{DatasetID: "shapes"})

			Convey("Then the run stops before saving", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(repo.saved, ShouldBeEmpty)
			})
		})

		Convey("When the request is malformed", func() {
			_, errEmpty := o.Run(context.Background(), analysis.Request{})
			_, errAxes := o.Run(context.Background(), analysis.Request{DatasetID: "shapes", Axes: -1})
			_, errMissing := o.Run(context.Background(), analysis.Request{DatasetID: "nope"})

			Convey("Then it is rejected", func() {
				So(errors.Is(errEmpty, analysis.ErrBadRequest), ShouldBeTrue)
				So(errors.Is(errAxes, analysis.ErrBadRequest), ShouldBeTrue)
				So(errMissing, ShouldNotBeNil)
				So(repo.saved, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a nil repository", t, func() {
		o, err := analysis.New(nil)

		Convey("Then construction fails", func() {
			So(o, ShouldBeNil)
			So(errors.Is(err, analysis.ErrNilRepository), ShouldBeTrue)
		})
	})
}

func TestOrchestratorSuppression(t *testing.T) {
	Convey("Given groups too small for CVA and MANOVA", t, func() {
		rng := rand.New(rand.NewSource(8))
		repo := newMemoryRepo()
		repo.datasets["tiny"] = specimens(rng, 3)
		registry := prometheus.NewRegistry()
		o, err := analysis.New(repo, analysis.WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(registry))))
		So(err, ShouldBeNil)

		Convey("When the run asks for both", func() {
			rec, err := o.Run(context.Background(), analysis.Request{
				DatasetID:     "tiny",
				CVAGroupBy:    intPtr(0),
				MANOVAGroupBy: intPtr(0),
			})

			Convey("Then PCA survives and the others are suppressed", func() {
				So(err, ShouldBeNil)
				So(rec.PCA, ShouldNotBeNil)
				So(rec.CVA, ShouldBeNil)
				So(rec.CVAError, ShouldNotBeEmpty)
				So(rec.MANOVA, ShouldBeNil)
				So(rec.MANOVAError, ShouldNotBeEmpty)
				So(repo.saved, ShouldHaveLength, 1)
			})

			Convey("Then the singular CVA counts as suppressed", func() {
				expected := `
# HELP morphometrics_analysis_analyses_total Analysis stages run, by kind and outcome
# TYPE morphometrics_analysis_analyses_total counter
morphometrics_analysis_analyses_total{kind="cva",outcome="suppressed"} 1
morphometrics_analysis_analyses_total{kind="manova",outcome="failure"} 1
morphometrics_analysis_analyses_total{kind="pca",outcome="success"} 1
morphometrics_analysis_analyses_total{kind="procrustes",outcome="success"} 1
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected),
					"morphometrics_analysis_analyses_total"), ShouldBeNil)
			})
		})

		Convey("When every specimen shares one CVA label", func() {
			rec, err := o.Run(context.Background(), analysis.Request{DatasetID: "tiny", CVAGroupBy: intPtr(5)})

			Convey("Then CVA reports insufficient groups without failing the run", func() {
				So(err, ShouldBeNil)
				So(rec.CVA, ShouldBeNil)
				So(rec.CVAError, ShouldContainSubstring, morphometrics.ErrInsufficientGroups.Error())
			})
		})
	})
}

func TestOrchestratorUtilities(t *testing.T) {
	Convey("Given a dataset with an incomplete specimen", t, func() {
		rng := rand.New(rand.NewSource(13))
		c := specimens(rng, 6)
		target := c.Records[2].Clone()
		truth := target.Landmarks[3].Clone()
		target.ID = "gap"
		target.Landmarks[3] = shape.Missing()
		sparse := c.Records[4].Clone()
		sparse.ID = "sparse"
		for i := 1; i < len(sparse.Landmarks); i++ {
			sparse.Landmarks[i] = shape.Missing()
		}
		So(c.Add(target), ShouldBeNil)
		So(c.Add(sparse), ShouldBeNil)

		repo := newMemoryRepo()
		repo.datasets["shapes"] = c
		o, err := analysis.New(repo)
		So(err, ShouldBeNil)

		Convey("When estimating missing landmarks", func() {
			out, err := o.EstimateMissing(context.Background(), "shapes")

			Convey("Then the gap is filled and the sparse specimen is reported", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 2)

				So(out[0].ID, ShouldEqual, "gap")
				So(out[0].Estimated, ShouldBeTrue)
				So(out[0].Original[3].IsMissing(), ShouldBeTrue)
				So(out[0].Landmarks[3].IsMissing(), ShouldBeFalse)
				// Noise and the group shift keep the estimate near, not on, the truth.
				So(shape.Dist(out[0].Landmarks[3], truth), ShouldBeLessThan, 0.5*c.Records[2].ComputeCentroidSize(nil))

				So(out[1].ID, ShouldEqual, "sparse")
				So(out[1].Estimated, ShouldBeFalse)
				So(out[1].Error, ShouldContainSubstring, morphometrics.ErrInsufficientLandmarks.Error())
			})
		})

		Convey("When building a deformation grid", func() {
			d, err := o.DeformationGrid(context.Background(), "shapes", 7, 5)

			Convey("Then the grid and its warp have matching shape", func() {
				So(err, ShouldBeNil)
				So(d.Index, ShouldEqual, 7)
				So(d.Grid, ShouldHaveLength, len(d.Warped))
				So(len(d.Grid), ShouldBeGreaterThan, 0)
				So(d.Specimen, ShouldHaveLength, len(pentagon))
				So(d.BendingEnergy, ShouldBeGreaterThanOrEqualTo, 0)
			})
		})

		Convey("When the deformation request is out of range", func() {
			_, err := o.DeformationGrid(context.Background(), "shapes", 99, 0)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, analysis.ErrBadRequest), ShouldBeTrue)
			})
		})
	})
}
