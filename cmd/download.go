package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"tour-sync/internal/api"
	"tour-sync/internal/extraction"
	"tour-sync/internal/metrics"
	"tour-sync/internal/models"
	"tour-sync/internal/report"
	"tour-sync/internal/services"
	"tour-sync/internal/storage"
)

func downloadCommand() cli.Command {
	return cli.Command{
		Name:      "download",
		Usage:     "download tours by id into the folder layout bulk reads",
		ArgsUsage: "<tour id> [tour id...]",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "output, o", Usage: "destination folder (defaults to the source root)"},
			cli.BoolFlag{Name: "archive", Usage: "also zip every downloaded tour folder"},
			cli.BoolFlag{Name: "mirror", Usage: "also copy every downloaded tour to the MinIO bucket"},
		},
		Action: runDownload,
	}
}

func runDownload(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("missing tour id", 2)
	}
	cfg, err := InitConfig(c)
	if err != nil {
		return exitError(err)
	}
	if err := cfg.Validate(); err != nil {
		return exitError(err)
	}
	out := c.String("output")
	if out == "" {
		out = cfg.SourceRoot
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return exitError(err)
	}

	logger, err := InitLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	fs := osfs.New(out)
	m := metrics.NewMetrics()
	svc := services.NewDownloadService(api.NewClient(cfg, logger), fs, m, logger)

	var mirror *storage.Mirror
	if c.Bool("mirror") {
		if !cfg.Minio.Enabled() {
			return cli.NewExitError("--mirror needs MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET", 2)
		}
		client, err := storage.NewMinioClient(ctx, cfg.Minio, logger)
		if err != nil {
			return exitError(fmt.Errorf("connect to bucket: %w", err))
		}
		mirror = storage.NewMirror(storage.NewInstrumentedPutter(client, m, logger), cfg.Minio.Bucket, cfg.Minio.Prefix, logger)
	}

	var (
		results []*models.DownloadResult
		failed  int
	)
	for _, id := range c.Args() {
		if ctx.Err() != nil {
			break
		}
		res, err := svc.DownloadByID(ctx, id)
		if err != nil {
			failed++
			logger.Error("Download failed", zap.String("id", id), zap.Error(err))
			continue
		}
		results = append(results, res)

		if c.Bool("archive") {
			archive := filepath.Join(out, res.TourPath+".zip")
			if err := extraction.CreateArchive(ctx, filepath.Join(out, res.TourPath), archive); err != nil {
				logger.Warn("Could not archive tour", zap.String("tour", res.TourPath), zap.Error(err))
			} else {
				logger.Info("Tour archived", zap.String("archive", archive))
			}
		}
		if mirror != nil {
			if _, err := mirror.Sync(ctx, fs, res.TourPath); err != nil {
				logger.Warn("Could not mirror tour", zap.String("tour", res.TourPath), zap.Error(err))
			}
		}
	}

	if err := report.RenderDownloads(os.Stdout, results); err != nil {
		logger.Warn("Could not print results", zap.Error(err))
	}
	if cfg.MetricsPushURL != "" {
		if err := m.Push(ctx, cfg.MetricsPushURL, "tour_sync_download"); err != nil {
			logger.Warn("Could not push metrics", zap.Error(err))
		}
	}
	if err := ctx.Err(); err != nil {
		return exitError(err)
	}
	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d of %d downloads failed", failed, c.NArg()), 1)
	}
	return nil
}
