// SPDX-License-Identifier: MIT

// Package tps implements thin-plate spline interpolation between two landmark
// configurations in 2-D or 3-D.
//
// Overview:
//
//   - Solve builds K[i,j] = U(‖cᵢ − cⱼ‖) with U(r) = r²·ln(r + ε), the affine
//     block P = [1, x, y(, z)], and solves [[K, P], [Pᵗ, 0]]·[W; A] = [target; 0]
//     with partial-pivot LU.
//   - Transform.Apply evaluates Σ wᵢ·U(‖p − cᵢ‖) + A₀ + A₁·x + A₂·y (+ A₃·z)
//     independently per output dimension.
//   - WithBoundary appends synthetic anchor points on a circle (2-D) or a
//     Fibonacci sphere (3-D) of radius factor × max landmark distance from the
//     centroid, identical on both sides, so a warped grid stays calm at its edges.
//   - Grid, WarpGrid and Interpolate are the visualization helpers that consume
//     a solved transform.
//
// Errors:
//
//   - morphometrics.ErrInsufficientData: mismatched lengths, fewer than d+1
//     points, missing points, or a dimension other than 2 or 3.
//   - morphometrics.ErrSingularMatrix: collinear (coplanar in 3-D) or duplicated
//     control points.
//   - ErrBadOption: invalid epsilon, condition limit or boundary parameters.
//
// Complexity:
//
//   - Solve: O((n+d+1)³) time, O((n+d+1)²) space.
//   - Apply: O(n·d) per point.
package tps
