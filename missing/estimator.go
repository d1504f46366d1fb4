// SPDX-License-Identifier: MIT

package missing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/procrustes"
	"github.com/katalvlaran/morphometrics/shape"
)

type cacheEntry struct {
	version uint64
	mean    []shape.Point
}

// Estimator fills missing landmarks. It is safe for concurrent use.
type Estimator struct {
	mu     sync.Mutex
	cache  map[uuid.UUID]cacheEntry
	align  []procrustes.Option
	logger logger.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithAligner passes options to the Procrustes run that builds the mean shape.
func WithAligner(opts ...procrustes.Option) Option {
	return func(e *Estimator) { e.align = append(e.align, opts...) }
}

// WithLogger sets the logger used for estimation events.
func WithLogger(l logger.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Estimator with an empty cache.
func New(opts ...Option) *Estimator {
	e := &Estimator{cache: make(map[uuid.UUID]cacheEntry), logger: logger.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

// Invalidate drops the cached mean shape of collection id.
func (e *Estimator) Invalidate(id uuid.UUID) {
	e.mu.Lock()
	delete(e.cache, id)
	e.mu.Unlock()
}

// MeanShape returns the Procrustes mean of c's complete specimens, served from
// the cache while c's version is unchanged.
func (e *Estimator) MeanShape(c *shape.Collection) ([]shape.Point, error) {
	if c == nil {
		return nil, fmt.Errorf("missing: nil collection: %w", morphometrics.ErrInsufficientReferenceData)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if hit, ok := e.cache[c.ID]; ok && hit.version == c.Version() {
		return hit.mean, nil
	}
	complete, _ := c.Complete()
	if complete.Len() < 2 {
		return nil, fmt.Errorf("missing: %d complete specimens: %w",
			complete.Len(), morphometrics.ErrInsufficientReferenceData)
	}
	res, err := procrustes.Align(complete, e.align...)
	if err != nil {
		if errors.Is(err, morphometrics.ErrInsufficientData) {
			return nil, fmt.Errorf("missing: %w: %w", morphometrics.ErrInsufficientReferenceData, err)
		}
		return nil, fmt.Errorf("missing: mean shape: %w", err)
	}
	e.cache[c.ID] = cacheEntry{version: c.Version(), mean: res.Consensus}

	return res.Consensus, nil
}

// EstimateMissing returns a copy of target with missing landmarks estimated.
// A target without missing landmarks is returned as an unchanged copy.
// On ErrInsufficientReferenceData, ErrInsufficientLandmarks or
// shape.ErrMismatchedRecord the unchanged copy is returned together with the
// error.
func (e *Estimator) EstimateMissing(c *shape.Collection, target *shape.Record) (*shape.Record, error) {
	if target == nil {
		return nil, shape.ErrNilRecord
	}
	out := target.Clone()
	if _, ok := shape.CommonDimension(target.Landmarks); !ok {
		return out, fmt.Errorf("missing: record %q mixes point dimensions: %w", target.ID, shape.ErrMismatchedRecord)
	}
	if !target.HasMissing() {
		return out, nil
	}
	valid := target.ValidIndices()
	if len(valid) < 2 {
		return out, fmt.Errorf("missing: record %q has %d landmarks: %w",
			target.ID, len(valid), morphometrics.ErrInsufficientLandmarks)
	}
	mean, err := e.MeanShape(c)
	if err != nil {
		return out, err
	}
	if len(mean) != len(target.Landmarks) || target.Dimension() != c.Dimension {
		return out, fmt.Errorf("missing: record %q: %w", target.ID, shape.ErrMismatchedRecord)
	}

	tc := shape.Centroid(target.Landmarks, valid)
	mc := shape.Centroid(mean, valid)
	scale := 1.0
	if ms := shape.CentroidSize(mean, valid); ms > 0 {
		scale = shape.CentroidSize(target.Landmarks, valid) / ms
	}

	imputed := 0
	for i, p := range out.Landmarks {
		if !p.IsMissing() || mean[i].IsMissing() {
			continue
		}
		q := make(shape.Point, len(mean[i]))
		for k := range q {
			q[k] = (mean[i][k]-mc[k])*scale + tc[k]
		}
		out.Landmarks[i] = q
		imputed++
	}
	e.logger.Debug(context.Background(), "estimated missing landmarks",
		logger.String("record", target.ID), logger.Int("imputed", imputed), logger.Float64("scale", scale))

	return out, nil
}
