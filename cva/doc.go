// SPDX-License-Identifier: MIT

// Package cva implements canonical variate analysis: the axes that maximize
// between-group relative to within-group variance.
//
// Steps:
//
//   - Constant variables are excluded; RetainedVariables lists the survivors.
//   - Within-group covariance is divided by N − g, between-group covariance is
//     weighted by group size and divided by g.
//   - SVD of W⁻¹·B gives eigenvalues (normalized to percentages) and the
//     discriminant rotation, scattered back to the full variable count with
//     zero rows for excluded variables.
//   - Scores = raw (uncentered) data × rotation.
//
// Groups are handled in lexicographic label order. Each specimen is also
// classified to the nearest group centroid in the space of the non-trivial
// axes (min(g − 1, retained variables)); Accuracy is the percentage of
// specimens whose classification matches their label.
//
// Errors:
//
//   - morphometrics.ErrInsufficientGroups: fewer than two distinct labels.
//   - morphometrics.ErrDegenerateInput: ragged input, no varying variable, or
//     identical group means.
//   - morphometrics.ErrSingularMatrix: the within-group covariance cannot be
//     inverted. Callers should drop this analysis and keep the others.
package cva
