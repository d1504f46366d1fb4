// Package morphometrics is a shape-alignment and multivariate-analysis engine
// for landmark-based geometric morphometrics.
//
// What is inside?
//
//	A pure-Go toolkit that takes labeled landmark configurations ("shapes")
//	collected across many specimens and:
//		• removes translation, rotation and scale (generalized Procrustes)
//		• decomposes shape variation (PCA) and group separation (CVA)
//		• tests group differences on component scores (MANOVA)
//		• visualizes deformation with thin-plate splines
//		• estimates missing landmarks from a Procrustes mean shape
//
// Under the hood, everything is organized under small subpackages:
//
//	shape/      - Point, Record and Collection data model
//	matrix/     - dense matrices, statistics kernels, Jacobi eigen, SVD/LU/Cholesky
//	procrustes/ - generalized and ordinary Procrustes superimposition
//	tps/        - thin-plate spline solve/apply, boundary points, grid warping
//	missing/    - mean-shape based missing-landmark estimation with a cache
//	pca/        - principal component analysis
//	cva/        - canonical variate analysis
//	manova/     - Wilks, Pillai, Hotelling-Lawley and Roy multivariate tests
//	result/     - JSON payload types shared by the engines
//	analysis/   - orchestrator: Procrustes → PCA/CVA/MANOVA → persisted payload
//	store/      - gorm/sqlite persistence adapter for datasets and analyses
//	config/, logger/, metrics/ - ambient plumbing
//	cmd/morpho/ - command-line front end
//
// All analyses are synchronous, deterministic and operate on a complete,
// in-memory shape collection. The error kinds shared by the engines live in
// this package and are matched with errors.Is.
package morphometrics
