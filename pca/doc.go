// SPDX-License-Identifier: MIT

// Package pca implements principal component analysis of a data matrix
// (one row per specimen, one column per flattened coordinate).
//
// Overview:
//
//   - Columns are mean-centered on a copy; the caller's matrix is never touched.
//   - The covariance uses the population divisor n.
//   - SVD of the covariance gives eigenvalues (descending) and the rotation,
//     whose columns are the components.
//   - Scores = centered data × rotation.
//   - Percentage of component i = eigenvalue[i] / Σ eigenvalues.
//
// Two informational cutoffs are reported: SignificantComponents, the number of
// components whose cumulative percentage first exceeds Significance (0.95), and
// EffectiveComponents, the number of components before the first one whose
// percentage drops below Negligible (1e-5).
//
// Errors:
//
//   - morphometrics.ErrDegenerateInput: fewer than two observations, ragged or
//     non-finite rows, or zero total variance.
package pca
