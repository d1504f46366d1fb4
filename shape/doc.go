// SPDX-License-Identifier: MIT

// Package shape defines the landmark data model consumed by every engine.
//
// Overview:
//
//   - Point is one landmark: 2 or 3 coordinates, or nil for a missing landmark.
//   - Record is one specimen: an ordered landmark list, group labels and an
//     optional centroid size.
//   - Collection is an ordered set of records sharing landmark count and
//     dimension, plus a wireframe edge list used only for rendering.
//
// Collections carry a monotonic version that every mutator bumps. Caches keyed by
// (ID, Version) stay valid exactly as long as the collection is unchanged.
// Snapshot returns a deep copy that analyses may read while the original keeps
// being edited.
//
// Flattening order is interleaved: x1, y1[, z1], x2, y2[, z2], ...
//
// Errors:
//
//   - ErrBadDimension: dimension other than 2 or 3, or a point of the wrong length.
//   - ErrMismatchedRecord: a record whose landmark count or dimension disagrees
//     with its collection.
//   - ErrMissingLandmark: flattening a record that has missing points.
//   - ErrOutOfRange: record or landmark index outside the collection.
//   - ErrNilRecord: nil record passed to a mutator.
package shape
