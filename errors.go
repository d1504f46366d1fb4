// SPDX-License-Identifier: MIT

package morphometrics

import "errors"

// Error kinds shared by every engine. Engines wrap them with context, e.g.
// fmt.Errorf("cva: within-group covariance: %w", ErrSingularMatrix), so callers
// always match with errors.Is.
var (
	// ErrInsufficientData: too few specimens (or complete specimens) to analyze.
	// The analysis is aborted and no partial result is returned.
	ErrInsufficientData = errors.New("morphometrics: insufficient data")

	// ErrInsufficientGroups: fewer than two distinct group labels.
	ErrInsufficientGroups = errors.New("morphometrics: insufficient groups")

	// ErrDegenerateInput: zero variance, or a covariance that stays singular after
	// exclusion. Callers may retry with a reduced variable set.
	ErrDegenerateInput = errors.New("morphometrics: degenerate input")

	// ErrSingularMatrix: un-invertible within-group covariance (CVA) or
	// degenerate control points (TPS). Recoverable at the call site.
	ErrSingularMatrix = errors.New("morphometrics: singular matrix")

	// ErrInsufficientReferenceData: fewer than two complete specimens to build a
	// reference mean shape. Non-fatal.
	ErrInsufficientReferenceData = errors.New("morphometrics: insufficient reference data")

	// ErrInsufficientLandmarks: fewer than two valid landmarks on the specimen
	// being estimated. Non-fatal.
	ErrInsufficientLandmarks = errors.New("morphometrics: insufficient landmarks")
)
