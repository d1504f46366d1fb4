// SPDX-License-Identifier: MIT

// Package manova tests whether group means differ across several score
// columns at once (one-way multivariate analysis of variance).
//
// With E the residual and H the hypothesis sums of squares and cross-products,
// the eigenvalues λ of (E+H)⁻¹·H drive four classical statistics, each with an
// F approximation and p-value:
//
//	Wilks' lambda           Π (1 − λ)
//	Pillai's trace          Σ λ
//	Hotelling-Lawley trace  Σ λ/(1 − λ)
//	Roy's greatest root     max λ/(1 − λ)
//
// Degrees of freedom follow the conventions of statsmodels' MANOVA, so tables
// can be compared with results computed there.
//
// Errors:
//
//   - morphometrics.ErrInsufficientGroups: fewer than two distinct labels.
//   - morphometrics.ErrDegenerateInput: a group has fewer observations than
//     score columns, mismatched lengths, or a singular residual matrix.
package manova
