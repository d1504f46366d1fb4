// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/katalvlaran/morphometrics/analysis"
	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/shape"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ analysis.Repository = (*Store)(nil)

var errNilRecord = errors.New("store: nil analysis record")

// Store is a SQLite-backed dataset and analysis repository.
type Store struct {
	db       *gorm.DB
	logger   logger.Logger
	sqlLevel gormlogger.LogLevel
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSQLLogging sets gorm's own statement logging level (silent by default).
func WithSQLLogging(level gormlogger.LogLevel) Option {
	return func(s *Store) { s.sqlLevel = level }
}

// DatasetSummary lists a dataset without its objects.
type DatasetSummary struct {
	ID            string
	Name          string
	Dimension     int
	LandmarkCount int
	CreatedAt     time.Time
}

// AnalysisSummary lists an analysis without its payload.
type AnalysisSummary struct {
	ID        string
	DatasetID string
	Name      string
	CreatedAt time.Time
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{logger: logger.Nop(), sqlLevel: gormlogger.Silent}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.Named("store")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(s.sqlLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err = db.AutoMigrate(&Dataset{}, &Object{}, &Analysis{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	s.db = db
	s.logger.Debug(context.Background(), "database ready", logger.String("path", path))

	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// CreateDataset stores c under its collection ID and returns that ID.
// An empty name defaults to "Dataset <short id>".
func (s *Store) CreateDataset(ctx context.Context, name string, c *shape.Collection) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: nil collection", ErrInvalidDataset)
	}
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	id := c.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	if name == "" {
		name = "Dataset " + id.String()[:8]
	}

	ds := Dataset{
		ID:            id.String(),
		Name:          name,
		Dimension:     c.Dimension,
		LandmarkCount: c.LandmarkCount,
		Objects:       make([]Object, len(c.Records)),
	}
	var err error
	if ds.GroupNames, err = encode(c.GroupNames); err != nil {
		return "", err
	}
	if ds.Edges, err = encode(c.Edges); err != nil {
		return "", err
	}
	for i, r := range c.Records {
		o := Object{DatasetID: ds.ID, Sequence: i, Name: r.ID, CentroidSize: r.CentroidSize}
		if o.Landmarks, err = encode(r.Landmarks); err != nil {
			return "", err
		}
		if o.Groups, err = encode(r.Groups); err != nil {
			return "", err
		}
		ds.Objects[i] = o
	}

	if err = s.db.WithContext(ctx).Create(&ds).Error; err != nil {
		return "", fmt.Errorf("store: create dataset: %w", err)
	}
	s.logger.Info(ctx, "dataset created",
		logger.String("dataset_id", ds.ID), logger.String("name", name), logger.Int("objects", len(ds.Objects)))

	return ds.ID, nil
}

// AddObject appends r to dataset id after checking it against the dataset's
// landmark count and dimension.
func (s *Store) AddObject(ctx context.Context, id string, r *shape.Record) error {
	if r == nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, shape.ErrNilRecord)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ds Dataset
		err := tx.First(&ds, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: dataset %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("store: add object: %w", err)
		}
		scratch, err := shape.NewCollection(ds.Dimension, ds.LandmarkCount)
		if err != nil {
			return fmt.Errorf("store: dataset %s: %w", id, err)
		}
		if err = scratch.Add(r); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}

		var next int64
		if err = tx.Model(&Object{}).Where("dataset_id = ?", id).Count(&next).Error; err != nil {
			return fmt.Errorf("store: add object: %w", err)
		}
		o := Object{DatasetID: id, Sequence: int(next), Name: r.ID, CentroidSize: r.CentroidSize}
		if o.Landmarks, err = encode(r.Landmarks); err != nil {
			return err
		}
		if o.Groups, err = encode(r.Groups); err != nil {
			return err
		}
		if err = tx.Create(&o).Error; err != nil {
			return fmt.Errorf("store: add object: %w", err)
		}

		return nil
	})
}

// LoadDataset rebuilds the collection stored under id. The collection keeps
// the stored ID so caches keyed by it survive reloads, and every load starts
// at version 0: a reload after AddObject carries the same (ID, version) key
// as the load before it. Callers caching per collection, such as
// missing.Estimator, must Invalidate the ID after changing the dataset.
func (s *Store) LoadDataset(ctx context.Context, id string) (*shape.Collection, error) {
	var ds Dataset
	err := s.db.WithContext(ctx).
		Preload("Objects", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		First(&ds, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: dataset %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load dataset %s: %w", id, err)
	}

	c, err := shape.NewCollection(ds.Dimension, ds.LandmarkCount)
	if err != nil {
		return nil, fmt.Errorf("store: dataset %s: %w", id, err)
	}
	if parsed, perr := uuid.Parse(ds.ID); perr == nil {
		c.ID = parsed
	}
	if err = decode(ds.GroupNames, &c.GroupNames); err != nil {
		return nil, err
	}
	if err = decode(ds.Edges, &c.Edges); err != nil {
		return nil, err
	}
	for _, o := range ds.Objects {
		r := &shape.Record{ID: o.Name, CentroidSize: o.CentroidSize}
		if err = decode(o.Landmarks, &r.Landmarks); err != nil {
			return nil, err
		}
		if err = decode(o.Groups, &r.Groups); err != nil {
			return nil, err
		}
		if err = c.Add(r); err != nil {
			return nil, fmt.Errorf("store: dataset %s object %d: %w", id, o.Sequence, err)
		}
	}

	return c, nil
}

// ListDatasets returns every dataset, newest first.
func (s *Store) ListDatasets(ctx context.Context) ([]DatasetSummary, error) {
	var out []DatasetSummary
	if err := s.db.WithContext(ctx).Model(&Dataset{}).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: list datasets: %w", err)
	}

	return out, nil
}

// DeleteDataset removes a dataset with its objects and analyses.
func (s *Store) DeleteDataset(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dataset_id = ?", id).Delete(&Object{}).Error; err != nil {
			return fmt.Errorf("store: delete objects: %w", err)
		}
		if err := tx.Where("dataset_id = ?", id).Delete(&Analysis{}).Error; err != nil {
			return fmt.Errorf("store: delete analyses: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&Dataset{})
		if res.Error != nil {
			return fmt.Errorf("store: delete dataset: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: dataset %s", ErrNotFound, id)
		}

		return nil
	})
}

// SaveAnalysis stores rec as a JSON payload keyed by its run ID.
func (s *Store) SaveAnalysis(ctx context.Context, rec *analysis.Record) error {
	if rec == nil {
		return errNilRecord
	}
	payload, err := encode(rec)
	if err != nil {
		return err
	}
	row := Analysis{
		ID:        rec.RunID.String(),
		DatasetID: rec.DatasetID,
		Name:      rec.Name,
		Payload:   payload,
		CreatedAt: rec.CreatedAt,
	}
	if err = s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store: save analysis: %w", err)
	}

	return nil
}

// GetAnalysis returns the record stored under runID.
func (s *Store) GetAnalysis(ctx context.Context, runID string) (*analysis.Record, error) {
	var row Analysis
	err := s.db.WithContext(ctx).First(&row, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: analysis %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get analysis %s: %w", runID, err)
	}
	rec := new(analysis.Record)
	if err = decode(row.Payload, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// ListAnalyses returns the analyses of a dataset, newest first. An empty
// datasetID lists all of them.
func (s *Store) ListAnalyses(ctx context.Context, datasetID string) ([]AnalysisSummary, error) {
	q := s.db.WithContext(ctx).Model(&Analysis{})
	if datasetID != "" {
		q = q.Where("dataset_id = ?", datasetID)
	}
	var out []AnalysisSummary
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: list analyses: %w", err)
	}

	return out, nil
}

func encode(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}

	return datatypes.JSON(b), nil
}

func decode(raw datatypes.JSON, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("store: decode: %w", err)
	}

	return nil
}
