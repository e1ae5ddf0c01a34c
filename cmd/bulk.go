package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"tour-sync/internal/api"
	"tour-sync/internal/config"
	"tour-sync/internal/extraction"
	"tour-sync/internal/metrics"
	"tour-sync/internal/models"
	"tour-sync/internal/report"
	"tour-sync/internal/repository"
	"tour-sync/internal/services"
	"tour-sync/internal/watch"
)

func bulkCommand() cli.Command {
	return cli.Command{
		Name:  "bulk",
		Usage: "upload every tour folder under the source root",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "path, p", Usage: "source root or archive (overrides VIRTUAL_TOURS_PATH)"},
			cli.StringFlag{Name: "tour, t", Usage: "process only this tour folder (overrides TOUR_NAME)"},
			cli.StringFlag{Name: "type", Usage: "default tour type: automotive or spaces (overrides TOUR_TYPE)"},
			cli.StringFlag{Name: "report", Usage: "write an xlsx report to this file (overrides REPORT_PATH)"},
			cli.BoolFlag{Name: "watch, w", Usage: "re-run whenever the source root changes"},
		},
		Action: runBulk,
	}
}

func runBulk(c *cli.Context) error {
	cfg, err := InitConfig(c)
	if err != nil {
		return exitError(err)
	}
	if v := c.String("path"); v != "" {
		cfg.SourceRoot = v
	}
	if v := c.String("tour"); v != "" {
		cfg.TourFilter = v
	}
	if v := c.String("report"); v != "" {
		cfg.ReportPath = v
	}
	if v := c.String("type"); v != "" {
		t, ok := models.ParseTourType(v)
		if !ok {
			return cli.NewExitError("invalid --type "+v+" (expected automotive or spaces)", 2)
		}
		cfg.TourType = t
	}
	if err := cfg.Validate(); err != nil {
		return exitError(err)
	}

	logger, err := InitLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	root, cleanup, err := openSource(ctx, cfg.SourceRoot, logger)
	if err != nil {
		return exitError(err)
	}
	defer cleanup()
	if c.Bool("watch") && root != cfg.SourceRoot {
		return cli.NewExitError("--watch needs a folder, not an archive", 2)
	}

	m := metrics.NewMetrics()
	client := api.NewClient(cfg, logger)
	ledger := openLedger(cfg, logger)

	run := func(ctx context.Context) error {
		svc := services.NewBulkService(cfg, osfs.New(root), client, m, logger)
		rep, err := svc.Run(ctx)
		if rep != nil {
			finishBulk(ctx, cfg, rep, ledger, m, logger)
		}
		return err
	}

	if err := run(ctx); err != nil {
		return exitError(err)
	}
	if !c.Bool("watch") {
		return nil
	}

	w, err := watch.New(root, watch.DefaultDelay, logger)
	if err != nil {
		return exitError(err)
	}
	return w.Run(ctx, func(ctx context.Context) {
		if err := run(ctx); err != nil {
			logger.Error("Bulk run failed", zap.Error(err))
		}
	})
}

// openSource returns the folder holding the tours. Archives are extracted to a
// temporary folder that cleanup removes.
func openSource(ctx context.Context, source string, logger *zap.Logger) (string, func(), error) {
	if !extraction.IsArchive(source) {
		return source, func() {}, nil
	}
	files, dir, err := extraction.ExtractArchive(ctx, source)
	if err != nil {
		return "", func() {}, &models.FatalError{Reason: "cannot read archive " + source, Err: err}
	}
	root := extraction.SourceRoot(dir, isTourFolder)
	logger.Info("Extracted archive",
		zap.String("archive", source),
		zap.Int("files", len(files)),
		zap.String("root", root),
	)
	return root, func() { os.RemoveAll(dir) }, nil
}

func isTourFolder(dir string) bool {
	for _, marker := range []string{config.TourConfigFile, "_colors", "external", "exterior", "internal", "interior", "scenes"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

func openLedger(cfg config.RunConfig, logger *zap.Logger) *repository.RunRepository {
	if cfg.LedgerDSN == "" {
		return nil
	}
	db, err := config.ConnectDatabase(cfg.LedgerDSN)
	if err != nil {
		logger.Warn("Run ledger disabled", zap.Error(err))
		return nil
	}
	repo := repository.NewRunRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.Warn("Run ledger disabled", zap.Error(err))
		return nil
	}
	return repo
}

// finishBulk prints the result table and hands the report to the optional sinks.
// Sink failures are logged and never change the outcome of the run.
func finishBulk(ctx context.Context, cfg config.RunConfig, rep *models.RunReport, ledger *repository.RunRepository, m *metrics.Metrics, logger *zap.Logger) {
	if err := report.RenderTable(os.Stdout, rep); err != nil {
		logger.Warn("Could not print results", zap.Error(err))
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, rep); err != nil {
			logger.Warn("Could not write report", zap.String("path", cfg.ReportPath), zap.Error(err))
		} else {
			logger.Info("Report written", zap.String("path", cfg.ReportPath))
		}
	}

	if ledger != nil {
		if err := ledger.SaveRun(models.NewRunRecord(cfg.Domain, cfg.SourceRoot, rep)); err != nil {
			logger.Warn("Could not record run", zap.Error(err))
		}
	}

	if cfg.MetricsPushURL != "" {
		if err := m.Push(ctx, cfg.MetricsPushURL, "tour_sync_bulk"); err != nil {
			logger.Warn("Could not push metrics", zap.Error(err))
		}
	}
}

func writeReport(path string, rep *models.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteExcel(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
