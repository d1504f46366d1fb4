// SPDX-License-Identifier: MIT

// Package analysis sequences a full morphometric run and is the only
// component that talks to persistence.
//
// Run loads a dataset through a Repository, works on a private snapshot, and
// chains the engines:
//
//	Procrustes → PCA → CVA (optional) → MANOVA on PCA scores (optional)
//
// Procrustes or PCA failures abort the run. CVA and MANOVA failures are
// logged, recorded on the payload and counted as suppressed; the run goes on.
// The context is checked between stages; the engines themselves run to
// completion once started.
//
// The orchestrator also offers the on-demand utilities: missing-landmark
// estimation over a dataset and thin-plate-spline deformation grids from the
// consensus to a specimen.
package analysis
