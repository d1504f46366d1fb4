// SPDX-License-Identifier: MIT

package store

import "errors"

var (
	// ErrNotFound is returned when a dataset or analysis does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrInvalidDataset is returned when an imported dataset is malformed.
	ErrInvalidDataset = errors.New("store: invalid dataset")
)
