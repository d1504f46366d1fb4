// SPDX-License-Identifier: MIT

package shape

import "errors"

var (
	// ErrBadDimension indicates a dimension other than 2 or 3.
	ErrBadDimension = errors.New("shape: dimension must be 2 or 3")

	// ErrMismatchedRecord indicates a record disagreeing with its collection's
	// landmark count or dimension.
	ErrMismatchedRecord = errors.New("shape: record does not match collection")

	// ErrMissingLandmark indicates an operation that needs every landmark present.
	ErrMissingLandmark = errors.New("shape: missing landmark")

	// ErrOutOfRange indicates a record or landmark index outside the collection.
	ErrOutOfRange = errors.New("shape: index out of range")

	// ErrNilRecord indicates a nil record.
	ErrNilRecord = errors.New("shape: nil record")
)
