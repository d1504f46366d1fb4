// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/procrustes"
	"github.com/katalvlaran/morphometrics/shape"
	"github.com/katalvlaran/morphometrics/tps"
)

// Grid defaults for DeformationGrid.
const (
	DefaultGridLines   = 11
	DefaultGridPadding = 0.1
	defaultAnchors     = 12
)

// Estimate is the missing-landmark outcome for one incomplete specimen.
// Original is kept as stored; Landmarks holds the estimate.
type Estimate struct {
	Index     int           `json:"index"`
	ID        string        `json:"id"`
	Original  []shape.Point `json:"original"`
	Landmarks []shape.Point `json:"landmarks"`
	Estimated bool          `json:"estimated"`
	Error     string        `json:"error,omitempty"`
}

// EstimateMissing estimates the missing landmarks of every incomplete
// specimen of a dataset from the mean shape of its complete specimens.
// Insufficient reference data or landmarks are reported per specimen, which
// then keeps its original shape.
func (o *Orchestrator) EstimateMissing(ctx context.Context, datasetID string) ([]Estimate, error) {
	snap, err := o.load(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	// The repository cannot tell us whether the stored dataset changed since
	// the last call, so the mean shape is rebuilt once per call.
	o.estimator.Invalidate(snap.ID)

	var out []Estimate
	for i, r := range snap.Records {
		if !r.HasMissing() {
			continue
		}
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		est, eerr := o.estimator.EstimateMissing(snap, r)
		e := Estimate{Index: i, ID: r.ID, Original: r.Landmarks}
		switch {
		case eerr == nil:
			e.Landmarks, e.Estimated = est.Landmarks, true
		case errors.Is(eerr, morphometrics.ErrInsufficientReferenceData),
			errors.Is(eerr, morphometrics.ErrInsufficientLandmarks):
			o.logger.Warn(ctx, "landmark estimation skipped",
				logger.String("dataset_id", datasetID), logger.String("record", r.ID), logger.Error(eerr))
			e.Landmarks, e.Error = r.Landmarks, eerr.Error()
		default:
			return nil, fmt.Errorf("analysis: estimate %q: %w", r.ID, eerr)
		}
		out = append(out, e)
	}

	return out, nil
}

// Deformation is a thin-plate-spline grid from the consensus to one specimen.
type Deformation struct {
	Index         int             `json:"index"`
	Consensus     []shape.Point   `json:"consensus"`
	Specimen      []shape.Point   `json:"specimen"`
	Grid          [][]shape.Point `json:"grid"`
	Warped        [][]shape.Point `json:"warped"`
	BendingEnergy float64         `json:"bending_energy"`
}

// DeformationGrid aligns a 2-D dataset, fits a spline from the consensus to
// the aligned specimen at index (boundary anchors on both sides) and warps an
// n×n grid spanning the consensus. n < 2 uses DefaultGridLines.
func (o *Orchestrator) DeformationGrid(ctx context.Context, datasetID string, index, n int) (*Deformation, error) {
	if n < 2 {
		n = DefaultGridLines
	}
	snap, err := o.load(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if snap.Dimension != 2 {
		return nil, fmt.Errorf("%w: deformation grids need 2-D landmarks, got %d-D", ErrBadRequest, snap.Dimension)
	}
	if index < 0 || index >= snap.Len() {
		return nil, fmt.Errorf("%w: specimen %d of %d", ErrBadRequest, index, snap.Len())
	}
	aligned, err := procrustes.Align(snap, o.procrustesOpts...)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	specimen := aligned.Aligned[index]
	if specimen == nil {
		return nil, fmt.Errorf("analysis: specimen %d could not be aligned: %w", index, morphometrics.ErrInsufficientLandmarks)
	}

	valid := shape.ValidIndices(specimen)
	ctrl := make([]shape.Point, len(valid))
	target := make([]shape.Point, len(valid))
	for k, i := range valid {
		ctrl[k], target[k] = aligned.Consensus[i], specimen[i]
	}
	t, err := tps.Solve(ctrl, target, tps.WithBoundary(defaultAnchors, tps.DefaultBoundaryFactor))
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	lo, hi := tps.Bounds(aligned.Consensus, DefaultGridPadding)
	grid, err := tps.Grid(lo, hi, n, n)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	return &Deformation{
		Index:         index,
		Consensus:     aligned.Consensus,
		Specimen:      specimen,
		Grid:          grid,
		Warped:        tps.WarpGrid(t, grid),
		BendingEnergy: t.BendingEnergy(),
	}, nil
}

// load fetches, snapshots and validates a dataset.
func (o *Orchestrator) load(ctx context.Context, datasetID string) (*shape.Collection, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("%w: empty dataset id", ErrBadRequest)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := o.repo.LoadDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("analysis: load dataset %s: %w", datasetID, err)
	}
	snap := src.Snapshot()
	if err = snap.Validate(); err != nil {
		return nil, fmt.Errorf("analysis: dataset %s: %w", datasetID, err)
	}

	return snap, nil
}
