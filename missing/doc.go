// SPDX-License-Identifier: MIT

// Package missing estimates missing landmarks from the Procrustes mean shape of
// the complete specimens of a collection.
//
// For a target record with missing points:
//
//   - the mean shape of the complete specimens is computed (at least two are
//     required) and memoized per (collection ID, version);
//   - over the target's present landmarks, scale = target centroid size / mean
//     centroid size and translation = target centroid − scale·mean centroid;
//   - each missing landmark becomes scale·mean[i] + translation.
//
// No rotation is estimated, so the target must share the orientation of the
// aligned mean (callers pass Procrustes-aligned or consistently digitized
// specimens). The input record is never modified; estimation returns a copy.
//
// Errors (both non-fatal, returned with an unchanged copy of the target):
//
//   - morphometrics.ErrInsufficientReferenceData: fewer than two complete specimens.
//   - morphometrics.ErrInsufficientLandmarks: fewer than two present landmarks.
package missing
