// SPDX-License-Identifier: MIT

// Package store persists datasets and analysis payloads in SQLite through
// gorm. It implements analysis.Repository.
//
// Landmarks, group labels, wireframe edges and analysis payloads are kept as
// JSON columns (gorm.io/datatypes); a missing landmark is stored as null.
package store
