// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/morphometrics"
	"github.com/katalvlaran/morphometrics/config"
	"github.com/katalvlaran/morphometrics/cva"
	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/manova"
	"github.com/katalvlaran/morphometrics/metrics"
	"github.com/katalvlaran/morphometrics/missing"
	"github.com/katalvlaran/morphometrics/pca"
	"github.com/katalvlaran/morphometrics/procrustes"
	"github.com/katalvlaran/morphometrics/result"
	"github.com/katalvlaran/morphometrics/shape"
)

// Stage names, used as the metrics kind label.
const (
	StageProcrustes = "procrustes"
	StagePCA        = "pca"
	StageCVA        = "cva"
	StageMANOVA     = "manova"
)

// CVA input kinds.
const (
	CVAInputCoordinates = "coordinates"
	CVAInputScores      = "pc_scores"
)

// DefaultCVAAxes is the number of CVA score columns kept when neither the
// request nor an option sets one.
const DefaultCVAAxes = 3

// Orchestrator runs analyses against a Repository.
type Orchestrator struct {
	repo      Repository
	logger    logger.Logger
	metrics   *metrics.Manager
	estimator *missing.Estimator
	clock     func() time.Time

	procrustesOpts []procrustes.Option
	pcaOpts        []pca.Option
	cvaOpts        []cva.Option
	cvaAxes        int
}

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithProcrustes sets the aligner options, also used for mean shapes in
// missing-landmark estimation.
func WithProcrustes(opts ...procrustes.Option) Option {
	return func(o *Orchestrator) { o.procrustesOpts = opts }
}

// WithPCA sets the PCA options.
func WithPCA(opts ...pca.Option) Option {
	return func(o *Orchestrator) { o.pcaOpts = opts }
}

// WithCVA sets the CVA options.
func WithCVA(opts ...cva.Option) Option {
	return func(o *Orchestrator) { o.cvaOpts = opts }
}

// WithCVAAxes sets the default number of CVA score columns.
func WithCVAAxes(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.cvaAxes = n
		}
	}
}

// WithClock overrides time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.clock = now
		}
	}
}

// ConfigOptions maps a loaded configuration onto orchestrator options.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithProcrustes(cfg.ProcrustesOptions()...),
		WithPCA(cfg.PCAOptions()...),
		WithCVA(cfg.CVAOptions()...),
		WithCVAAxes(cfg.CVAAxes),
	}
}

// New returns an Orchestrator over repo.
func New(repo Repository, opts ...Option) (*Orchestrator, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	o := &Orchestrator{
		repo:    repo,
		logger:  logger.Nop(),
		clock:   time.Now,
		cvaAxes: DefaultCVAAxes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.logger = o.logger.Named("analysis")
	o.estimator = missing.New(missing.WithAligner(o.procrustesOpts...), missing.WithLogger(o.logger))

	return o, nil
}

// Run executes one analysis and persists its payload.
// Implementation:
//   - Stage 1: load, snapshot and validate the dataset.
//   - Stage 2: Procrustes superimposition (fatal on error).
//   - Stage 3: PCA on the flattened aligned rows (fatal on error).
//   - Stage 4: CVA grouped by req.CVAGroupBy, retried on the effective PCA
//     scores when the coordinates give a singular within-group covariance
//     (suppressed on error).
//   - Stage 5: MANOVA on PCA scores truncated to the effective components,
//     grouped by req.MANOVAGroupBy (suppressed on error).
//   - Stage 6: SaveAnalysis.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Record, error) {
	if req.DatasetID == "" {
		return nil, fmt.Errorf("%w: empty dataset id", ErrBadRequest)
	}
	if req.Axes < 0 {
		return nil, fmt.Errorf("%w: axes %d", ErrBadRequest, req.Axes)
	}
	runID := uuid.New()
	log := o.logger
	fields := []logger.Field{logger.String("run_id", runID.String()), logger.String("dataset_id", req.DatasetID)}

	snap, err := o.load(ctx, req.DatasetID)
	if err != nil {
		return nil, err
	}
	o.metrics.SetSpecimenCount(snap.Len())
	log.Info(ctx, "analysis started", append(fields, logger.Int("specimens", snap.Len()))...)

	// Procrustes.
	start := time.Now()
	aligned, err := procrustes.Align(snap, o.procrustesOpts...)
	if err != nil {
		o.metrics.ObserveStage(StageProcrustes, metrics.OutcomeFailure, time.Since(start))
		log.Error(ctx, "procrustes failed", append(fields, logger.Error(err))...)
		return nil, fmt.Errorf("analysis: %w", err)
	}
	o.metrics.ObserveStage(StageProcrustes, metrics.OutcomeSuccess, time.Since(start))
	o.metrics.SetProcrustesIterations(aligned.Iterations)
	if len(aligned.Flagged) > 0 {
		log.Warn(ctx, "specimens could not be aligned", append(fields, logger.Any("flagged", aligned.Flagged))...)
	}

	rec := o.newRecord(runID, req, snap, aligned)
	rows, idx := aligned.DataMatrix()
	rec.Observations = idx
	if len(rows) < 2 {
		return nil, fmt.Errorf("analysis: %d complete aligned specimens: %w", len(rows), morphometrics.ErrInsufficientData)
	}

	// PCA.
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	rec.PCA, err = pca.Analyze(rows, o.pcaOpts...)
	if err != nil {
		o.metrics.ObserveStage(StagePCA, metrics.OutcomeFailure, time.Since(start))
		log.Error(ctx, "pca failed", append(fields, logger.Error(err))...)
		return nil, fmt.Errorf("analysis: %w", err)
	}
	o.metrics.ObserveStage(StagePCA, metrics.OutcomeSuccess, time.Since(start))

	// CVA.
	if req.CVAGroupBy != nil {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		axes := req.Axes
		if axes == 0 {
			axes = o.cvaAxes
		}
		labels := pick(snap.GroupColumn(*req.CVAGroupBy), idx)
		start = time.Now()
		res, cerr := cva.Analyze(rows, labels, o.cvaOpts...)
		rec.CVAInput = CVAInputCoordinates
		// Superimposed coordinates lose dimensions to the alignment, so their
		// within-group covariance is usually singular. Retry on the
		// non-negligible principal components.
		if k := rec.PCA.EffectiveComponents; errors.Is(cerr, morphometrics.ErrSingularMatrix) && k > 0 {
			log.Info(ctx, "cva retried on principal component scores", append(fields, logger.Int("components", k))...)
			res, cerr = cva.Analyze(rec.PCA.Truncate(k).Scores, labels, o.cvaOpts...)
			rec.CVAInput = CVAInputScores
		}
		if cerr != nil {
			o.suppress(ctx, StageCVA, cerr, time.Since(start), fields)
			rec.CVAError = cerr.Error()
		} else {
			o.metrics.ObserveStage(StageCVA, metrics.OutcomeSuccess, time.Since(start))
			res.Scores = res.PadScores(axes)
			rec.CVA = res
		}
	}

	// MANOVA.
	if req.MANOVAGroupBy != nil {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		labels := pick(snap.GroupColumn(*req.MANOVAGroupBy), idx)
		start = time.Now()
		table, merr := o.manova(rec.PCA, labels)
		if merr != nil {
			o.suppress(ctx, StageMANOVA, merr, time.Since(start), fields)
			rec.MANOVAError = merr.Error()
		} else {
			o.metrics.ObserveStage(StageMANOVA, metrics.OutcomeSuccess, time.Since(start))
			rec.MANOVA = table
		}
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if err = o.repo.SaveAnalysis(ctx, rec); err != nil {
		log.Error(ctx, "save analysis failed", append(fields, logger.Error(err))...)
		return nil, fmt.Errorf("analysis: save: %w", err)
	}
	log.Info(ctx, "analysis completed", append(fields,
		logger.Int("iterations", aligned.Iterations),
		logger.Bool("converged", aligned.Converged),
		logger.Bool("cva", rec.CVA != nil),
		logger.Bool("manova", rec.MANOVA != nil))...)

	return rec, nil
}

// manova runs MANOVA on the PCA scores truncated to the effective components.
func (o *Orchestrator) manova(p *result.Analysis, labels []string) (*result.StatisticTable, error) {
	k := p.EffectiveComponents
	if k < 1 {
		return nil, fmt.Errorf("analysis: no effective principal components: %w", morphometrics.ErrDegenerateInput)
	}

	return manova.Analyze(p.Truncate(k).Scores, labels, manova.ColumnNames("PC", k))
}

// suppress records a failed optional stage; the run continues.
func (o *Orchestrator) suppress(ctx context.Context, stage string, err error, d time.Duration, fields []logger.Field) {
	outcome := metrics.OutcomeFailure
	if errors.Is(err, morphometrics.ErrSingularMatrix) {
		outcome = metrics.OutcomeSuppressed
	}
	o.metrics.ObserveStage(stage, outcome, d)
	o.logger.Warn(ctx, stage+" skipped", append(fields, logger.String("outcome", outcome), logger.Error(err))...)
}

func (o *Orchestrator) newRecord(runID uuid.UUID, req Request, c *shape.Collection, a *procrustes.Result) *Record {
	rec := &Record{
		RunID:           runID,
		DatasetID:       req.DatasetID,
		Name:            req.Name,
		CreatedAt:       o.clock().UTC(),
		Superimposition: "Procrustes",
		CVAGroupBy:      req.CVAGroupBy,
		MANOVAGroupBy:   req.MANOVAGroupBy,
		Dimension:       c.Dimension,
		Edges:           c.Edges,
		GroupNames:      c.GroupNames,
		Objects:         make([]ObjectInfo, c.Len()),
		RawLandmarks:    make([][]shape.Point, c.Len()),
		Superimposed:    a.Aligned,
		Consensus:       a.Consensus,
		Flagged:         a.Flagged,
		Iterations:      a.Iterations,
		Converged:       a.Converged,
	}
	if rec.Name == "" {
		rec.Name = "Analysis " + runID.String()[:8]
	}
	for i, r := range c.Records {
		info := ObjectInfo{ID: r.ID, Sequence: i + 1, Groups: r.Groups}
		if r.CentroidSize != nil {
			info.CentroidSize = *r.CentroidSize
		} else if i < len(a.CentroidSizes) {
			info.CentroidSize = a.CentroidSizes[i]
		}
		rec.Objects[i] = info
		rec.RawLandmarks[i] = r.Landmarks
	}

	return rec
}

// pick returns labels[idx[k]] for every k.
func pick(labels []string, idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = labels[i]
	}

	return out
}
