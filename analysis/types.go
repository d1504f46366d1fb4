// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/morphometrics/result"
	"github.com/katalvlaran/morphometrics/shape"
)

// Repository is the persistence collaborator.
type Repository interface {
	// LoadDataset returns the dataset as a collection. The orchestrator never
	// mutates it.
	LoadDataset(ctx context.Context, id string) (*shape.Collection, error)
	// SaveAnalysis persists one run payload.
	SaveAnalysis(ctx context.Context, rec *Record) error
}

// Request selects a dataset and the optional grouped analyses.
type Request struct {
	DatasetID string
	Name      string
	// CVAGroupBy and MANOVAGroupBy index the records' group columns; nil
	// skips the analysis.
	CVAGroupBy    *int
	MANOVAGroupBy *int
	// Axes is the number of CVA score columns kept; 0 uses the orchestrator default.
	Axes int
}

// ObjectInfo describes one specimen of the run.
type ObjectInfo struct {
	ID           string   `json:"id"`
	Sequence     int      `json:"sequence"`
	CentroidSize float64  `json:"csize"`
	Groups       []string `json:"variable_list"`
}

// Record is the JSON-serializable payload of one run.
type Record struct {
	RunID           uuid.UUID `json:"run_id"`
	DatasetID       string    `json:"dataset_id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	Superimposition string    `json:"superimposition_method"`
	CVAGroupBy      *int      `json:"cva_group_by,omitempty"`
	MANOVAGroupBy   *int      `json:"manova_group_by,omitempty"`
	Dimension       int       `json:"dimension"`
	Edges           [][2]int  `json:"wireframe,omitempty"`
	GroupNames      []string  `json:"group_names,omitempty"`

	Objects      []ObjectInfo    `json:"object_info"`
	RawLandmarks [][]shape.Point `json:"raw_landmarks"`
	Superimposed [][]shape.Point `json:"superimposed_landmarks"`
	Consensus    []shape.Point   `json:"consensus"`
	Flagged      []int           `json:"flagged,omitempty"`
	Iterations   int             `json:"iterations"`
	Converged    bool            `json:"converged"`
	// Observations lists the record indices that became analysis rows.
	Observations []int `json:"observations"`

	PCA         *result.Analysis       `json:"pca"`
	CVA         *result.Analysis       `json:"cva,omitempty"`
	CVAInput    string                 `json:"cva_input,omitempty"`
	CVAError    string                 `json:"cva_error,omitempty"`
	MANOVA      *result.StatisticTable `json:"manova,omitempty"`
	MANOVAError string                 `json:"manova_error,omitempty"`
}
