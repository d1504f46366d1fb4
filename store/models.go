// SPDX-License-Identifier: MIT

package store

import (
	"time"

	"gorm.io/datatypes"
)

// Dataset is one landmark collection.
type Dataset struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Name          string `gorm:"index;not null"`
	Dimension     int    `gorm:"not null"`
	LandmarkCount int    `gorm:"not null"`
	GroupNames    datatypes.JSON
	Edges         datatypes.JSON
	Objects       []Object `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Dataset) TableName() string { return "datasets" }

// Object is one specimen of a dataset. Sequence preserves input order.
type Object struct {
	ID           uint   `gorm:"primaryKey"`
	DatasetID    string `gorm:"index;not null;type:varchar(36)"`
	Sequence     int    `gorm:"not null"`
	Name         string
	Landmarks    datatypes.JSON `gorm:"not null"`
	Groups       datatypes.JSON
	CentroidSize *float64
}

func (Object) TableName() string { return "objects" }

// Analysis is one persisted run payload.
type Analysis struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)"`
	DatasetID string         `gorm:"index;not null;type:varchar(36)"`
	Name      string         `gorm:"not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"index"`
}

func (Analysis) TableName() string { return "analyses" }
