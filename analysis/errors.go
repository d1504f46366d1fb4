// SPDX-License-Identifier: MIT

package analysis

import "errors"

// Sentinel errors for this package.
var (
	ErrNilRepository = errors.New("analysis: nil repository")
	ErrBadRequest    = errors.New("analysis: invalid request")
)
