// SPDX-License-Identifier: MIT

package config

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("config: invalid config")
	ErrLoadConfig    = errors.New("config: load config failed")
)
