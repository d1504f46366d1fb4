// SPDX-License-Identifier: MIT

// Package result holds the JSON-serializable payloads produced by the engines:
// Analysis for PCA and CVA, StatisticTable for MANOVA. Values are created by one
// Analyze call and never mutated afterwards; Truncate and PadScores return copies.
package result
