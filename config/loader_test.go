// SPDX-License-Identifier: MIT

package config_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/morphometrics/config"
	"github.com/katalvlaran/morphometrics/procrustes"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"MORPHO_CONFIG",
	"MORPHO_LOG_LEVEL",
	"MORPHO_DATABASE_PATH",
	"MORPHO_PROCRUSTES_MAX_ITERATIONS",
	"MORPHO_PROCRUSTES_ALLOW_REFLECTION",
	"MORPHO_PCA_SIGNIFICANCE",
	"MORPHO_CVA_AXES",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "morpho.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "morphometrics.db")
				convey.So(cfg.ProcrustesMaxIterations, convey.ShouldEqual, 100)
				convey.So(cfg.ProcrustesTolerance, convey.ShouldEqual, 1e-10)
				convey.So(cfg.ProcrustesAllowReflection, convey.ShouldBeFalse)
				convey.So(cfg.PCASignificance, convey.ShouldEqual, 0.95)
				convey.So(cfg.CVAAxes, convey.ShouldEqual, 3)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading with environment variables", func() {
			_ = os.Setenv("MORPHO_LOG_LEVEL", "debug")
			_ = os.Setenv("MORPHO_PROCRUSTES_MAX_ITERATIONS", "250")
			_ = os.Setenv("MORPHO_PROCRUSTES_ALLOW_REFLECTION", "true")
			_ = os.Setenv("MORPHO_PCA_SIGNIFICANCE", "0.9")

			cfg, err := config.Load("")

			convey.Convey("Then env values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.ProcrustesMaxIterations, convey.ShouldEqual, 250)
				convey.So(cfg.ProcrustesAllowReflection, convey.ShouldBeTrue)
				convey.So(cfg.PCASignificance, convey.ShouldEqual, 0.9)
			})
		})

		convey.Convey("When loading a YAML file with env overrides", func() {
			path := writeConfigFile(t, `
database_path: /tmp/shapes.db
cva_axes: 2
procrustes_max_iterations: 40
`)
			_ = os.Setenv("MORPHO_CONFIG", path)
			_ = os.Setenv("MORPHO_CVA_AXES", "5")

			cfg, err := config.Load("")

			convey.Convey("Then file values apply and env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "/tmp/shapes.db")
				convey.So(cfg.ProcrustesMaxIterations, convey.ShouldEqual, 40)
				convey.So(cfg.CVAAxes, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When an explicit path is given", func() {
			path := writeConfigFile(t, "log_level: warn\n")

			cfg, err := config.Load(path)

			convey.Convey("Then it is read without MORPHO_CONFIG", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When the YAML file is malformed", func() {
			path := writeConfigFile(t, "invalid: yaml: content: [")

			cfg, err := config.Load(path)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("MORPHO_PCA_SIGNIFICANCE", "1.5")
			_ = os.Setenv("MORPHO_LOG_LEVEL", "chatty")

			cfg, err := config.Load("")

			convey.Convey("Then ErrInvalidConfig lists every problem", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "pca_significance")
				convey.So(err.Error(), convey.ShouldContainSubstring, "chatty")
			})
		})
	})
}

func TestConfigOptions(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("Then it validates and yields engine options", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.ProcrustesOptions(), convey.ShouldHaveLength, 3)
			convey.So(cfg.PCAOptions(), convey.ShouldHaveLength, 2)
			convey.So(cfg.CVAOptions(), convey.ShouldHaveLength, 1)
		})
	})

	convey.Convey("Given a procrustes tolerance", t, func() {
		cfg := config.New()

		convey.Convey("Then zero is accepted as the engine accepts it", func() {
			cfg.ProcrustesTolerance = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			_, err := procrustes.Align(nil, cfg.ProcrustesOptions()...)
			convey.So(errors.Is(err, procrustes.ErrBadOption), convey.ShouldBeFalse)
		})

		convey.Convey("Then negative and NaN values are rejected", func() {
			cfg.ProcrustesTolerance = -1e-9
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			cfg.ProcrustesTolerance = math.NaN()
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
