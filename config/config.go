// SPDX-License-Identifier: MIT

// Package config defines the engine and CLI configuration and its loading.
//
// Values are layered (low -> high precedence):
//  1. defaults (New)
//  2. a YAML file, from the explicit path or MORPHO_CONFIG
//  3. environment variables with prefix MORPHO_, e.g. MORPHO_LOG_LEVEL
package config

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/morphometrics/cva"
	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/matrix"
	"github.com/katalvlaran/morphometrics/pca"
	"github.com/katalvlaran/morphometrics/procrustes"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DatabasePath is the sqlite file backing the store.
	DatabasePath string `koanf:"database_path"`

	// Procrustes superimposition.
	ProcrustesMaxIterations   int     `koanf:"procrustes_max_iterations"`
	ProcrustesTolerance       float64 `koanf:"procrustes_tolerance"`
	ProcrustesAllowReflection bool    `koanf:"procrustes_allow_reflection"`

	// PCA cutoffs.
	PCASignificance float64 `koanf:"pca_significance"`
	PCANegligible   float64 `koanf:"pca_negligible"`

	// CVAAxes is the number of score columns kept (zero padded) in CVA output.
	CVAAxes int `koanf:"cva_axes"`

	// ConditionLimit is the singularity threshold for matrix inversions.
	ConditionLimit float64 `koanf:"condition_limit"`

	// Metrics.
	MetricsEnabled   bool   `koanf:"metrics_enabled"`
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		DatabasePath:            "morphometrics.db",
		ProcrustesMaxIterations: procrustes.DefaultMaxIterations,
		ProcrustesTolerance:     procrustes.DefaultTolerance,
		PCASignificance:         pca.DefaultSignificance,
		PCANegligible:           pca.DefaultNegligible,
		CVAAxes:                 3,
		ConditionLimit:          matrix.DefaultConditionLimit,
		MetricsEnabled:          true,
		MetricsNamespace:        "morphometrics",
	}
}

// Validate reports every invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path must not be empty"))
	}
	if c.ProcrustesMaxIterations < 1 {
		errs = append(errs, fmt.Errorf("procrustes_max_iterations must be >= 1, got %d", c.ProcrustesMaxIterations))
	}
	if !(c.ProcrustesTolerance >= 0) {
		errs = append(errs, fmt.Errorf("procrustes_tolerance must be >= 0, got %g", c.ProcrustesTolerance))
	}
	if !(c.PCASignificance > 0 && c.PCASignificance <= 1) {
		errs = append(errs, fmt.Errorf("pca_significance must be in (0, 1], got %g", c.PCASignificance))
	}
	if !(c.PCANegligible >= 0 && c.PCANegligible < 1) {
		errs = append(errs, fmt.Errorf("pca_negligible must be in [0, 1), got %g", c.PCANegligible))
	}
	if c.CVAAxes < 1 {
		errs = append(errs, fmt.Errorf("cva_axes must be >= 1, got %d", c.CVAAxes))
	}
	if !(c.ConditionLimit > 1) {
		errs = append(errs, fmt.Errorf("condition_limit must be > 1, got %g", c.ConditionLimit))
	}
	if c.MetricsEnabled && c.MetricsNamespace == "" {
		errs = append(errs, errors.New("metrics_namespace must not be empty"))
	}
	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ProcrustesOptions converts the procrustes_* keys into aligner options.
func (c *Config) ProcrustesOptions() []procrustes.Option {
	return []procrustes.Option{
		procrustes.WithMaxIterations(c.ProcrustesMaxIterations),
		procrustes.WithTolerance(c.ProcrustesTolerance),
		procrustes.WithReflection(c.ProcrustesAllowReflection),
	}
}

// PCAOptions converts the pca_* keys into PCA options.
func (c *Config) PCAOptions() []pca.Option {
	return []pca.Option{
		pca.WithSignificance(c.PCASignificance),
		pca.WithNegligible(c.PCANegligible),
	}
}

// CVAOptions converts condition_limit into CVA options.
func (c *Config) CVAOptions() []cva.Option {
	return []cva.Option{cva.WithConditionLimit(c.ConditionLimit)}
}
