// SPDX-License-Identifier: MIT

// Package procrustes implements generalized Procrustes superimposition (GPA) of a
// landmark collection, plus the ordinary (two-configuration) fit and the full
// Procrustes distance it is built on.
//
// Overview:
//
//   - Every complete specimen is centered on its centroid and scaled to unit
//     centroid size.
//   - The consensus starts as the first complete specimen. Each iteration rotates
//     every specimen onto the consensus (SVD of the d×d cross-covariance), then
//     replaces the consensus with the coordinate-wise mean rescaled to unit size.
//   - Iteration stops when the squared change of the consensus drops below
//     Tolerance, or after MaxIterations. Hitting the cap is not an error: the best
//     alignment so far is returned with Converged=false and a warning is logged.
//   - Specimens with missing landmarks never enter the consensus. They receive a
//     similarity fit of their present points onto the matching consensus points.
//     A specimen with fewer than two present points (or zero size) is flagged.
//
// Reflection is excluded by default: when the optimal orthogonal matrix has
// determinant −1 the axis of the smallest singular value is flipped.
//
// Errors:
//
//   - morphometrics.ErrInsufficientData: nil collection, mismatched records, or
//     fewer than two usable complete specimens.
//   - morphometrics.ErrInsufficientLandmarks: FitOrdinary with fewer than two
//     shared landmarks.
//   - morphometrics.ErrDegenerateInput: all fitted points coincide.
//   - shape.ErrMismatchedRecord: FitOrdinary or Distance given points of
//     differing dimension.
//   - ErrBadOption: non-positive MaxIterations or negative/NaN Tolerance.
//
// Complexity:
//
//   - Time O(I·N·k·d²) for I iterations, N specimens, k landmarks, d ≤ 3.
//   - Space O(N·k·d).
package procrustes
