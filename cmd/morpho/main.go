// SPDX-License-Identifier: MIT

// Command morpho imports landmark datasets into a SQLite store and runs
// morphometric analyses on them, printing results as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/katalvlaran/morphometrics/analysis"
	"github.com/katalvlaran/morphometrics/config"
	"github.com/katalvlaran/morphometrics/logger"
	"github.com/katalvlaran/morphometrics/metrics"
	"github.com/katalvlaran/morphometrics/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

type options struct {
	configPath  string
	importPath  string
	datasetID   string
	showRun     string
	name        string
	cvaGroup    int
	manovaGroup int
	axes        int
	grid        int
	gridLines   int
	estimate    bool
	list        bool
	dumpMetrics bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to a YAML config file (default $MORPHO_CONFIG)")
	flag.StringVar(&o.importPath, "import", "", "Import a dataset JSON file and print its ID")
	flag.StringVar(&o.datasetID, "dataset", "", "Dataset ID to analyse")
	flag.StringVar(&o.showRun, "show", "", "Print a stored analysis by run ID")
	flag.StringVar(&o.name, "name", "", "Analysis name")
	flag.IntVar(&o.cvaGroup, "cva-group", -1, "Group column for CVA (-1 skips CVA)")
	flag.IntVar(&o.manovaGroup, "manova-group", -1, "Group column for MANOVA (-1 skips MANOVA)")
	flag.IntVar(&o.axes, "axes", 0, "CVA score columns (0 uses the configured default)")
	flag.IntVar(&o.grid, "grid", -1, "Print the deformation grid of this specimen index instead of analysing")
	flag.IntVar(&o.gridLines, "grid-lines", analysis.DefaultGridLines, "Grid lines per axis")
	flag.BoolVar(&o.estimate, "estimate", false, "Estimate missing landmarks instead of analysing")
	flag.BoolVar(&o.list, "list", false, "List datasets and analyses")
	flag.BoolVar(&o.dumpMetrics, "metrics", false, "Write Prometheus metrics to stderr on exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "morpho: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, out io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err = logger.Init(); err != nil {
		return err
	}
	if err = logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("morpho")

	registry := prometheus.NewRegistry()
	manager := metrics.NewManager(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithPrometheusRegistry(registry),
	)
	if o.dumpMetrics {
		defer func() {
			if derr := writeMetrics(registry, os.Stderr); derr != nil {
				log.Warn(ctx, "metrics dump failed", logger.Error(derr))
			}
		}()
	}

	db, err := store.Open(cfg.DatabasePath, store.WithLogger(logger.Get()))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn(ctx, "closing store", logger.Error(cerr))
		}
	}()

	orch, err := analysis.New(db, append(analysis.ConfigOptions(cfg),
		analysis.WithLogger(logger.Get()),
		analysis.WithMetrics(manager),
	)...)
	if err != nil {
		return err
	}

	switch {
	case o.importPath != "":
		f, ferr := os.Open(o.importPath)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		id, ierr := db.Import(ctx, f)
		if ierr != nil {
			return ierr
		}
		return writeJSON(out, map[string]string{"dataset_id": id})

	case o.list:
		datasets, lerr := db.ListDatasets(ctx)
		if lerr != nil {
			return lerr
		}
		runs, lerr := db.ListAnalyses(ctx, o.datasetID)
		if lerr != nil {
			return lerr
		}
		return writeJSON(out, map[string]any{"datasets": datasets, "analyses": runs})

	case o.showRun != "":
		rec, gerr := db.GetAnalysis(ctx, o.showRun)
		if gerr != nil {
			return gerr
		}
		return writeJSON(out, rec)

	case o.datasetID == "":
		return errors.New("one of -import, -list, -show or -dataset is required")

	case o.estimate:
		est, eerr := orch.EstimateMissing(ctx, o.datasetID)
		if eerr != nil {
			return eerr
		}
		return writeJSON(out, est)

	case o.grid >= 0:
		d, gerr := orch.DeformationGrid(ctx, o.datasetID, o.grid, o.gridLines)
		if gerr != nil {
			return gerr
		}
		return writeJSON(out, d)
	}

	req := analysis.Request{DatasetID: o.datasetID, Name: o.name, Axes: o.axes}
	if o.cvaGroup >= 0 {
		req.CVAGroupBy = &o.cvaGroup
	}
	if o.manovaGroup >= 0 {
		req.MANOVAGroupBy = &o.manovaGroup
	}
	rec, err := orch.Run(ctx, req)
	if err != nil {
		return err
	}

	return writeJSON(out, rec)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))

	return err
}

func writeMetrics(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err = enc.Encode(mf); err != nil {
			return err
		}
	}

	return nil
}
