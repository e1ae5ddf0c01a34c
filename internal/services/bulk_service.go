package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"tour-sync/internal/config"
	"tour-sync/internal/metrics"
	"tour-sync/internal/models"
	"tour-sync/internal/naming"
)

// BulkService uploads every tour folder under the source root.
type BulkService struct {
	cfg        config.RunConfig
	fs         billy.Filesystem
	assembler  *TourAssembler
	strategies map[models.TourType]TourStrategy
	collector  *Collector
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewBulkService creates a BulkService reading tours from fs, which is rooted at the
// source root.
func NewBulkService(cfg config.RunConfig, fs billy.Filesystem, client TourAPI, m *metrics.Metrics, logger *zap.Logger) *BulkService {
	collector := NewCollector(logger, m)
	colors := NewColorRegistry(client, cfg.ColorPause, collector, m, logger)
	strategies := make(map[models.TourType]TourStrategy)
	for _, st := range []TourStrategy{
		NewAutomotiveStrategy(colors, collector, logger),
		NewSpacesStrategy(collector, logger),
	} {
		strategies[st.Type()] = st
	}
	return &BulkService{
		cfg:        cfg,
		fs:         fs,
		assembler:  NewTourAssembler(client, m, logger),
		strategies: strategies,
		collector:  collector,
		metrics:    m,
		logger:     logger,
	}
}

// Collector exposes the per-item failure log of the current run.
func (s *BulkService) Collector() *Collector {
	return s.collector
}

// DiscoverTours lists the tour folders to process, honoring the tour filter.
func (s *BulkService) DiscoverTours() ([]string, error) {
	if _, err := s.fs.Stat("."); err != nil {
		return nil, &models.FatalError{
			Reason: fmt.Sprintf("source root %s does not exist", s.cfg.SourceRoot),
			Err:    models.ErrSourceNotFound,
		}
	}

	tours := naming.SubDirs(s.fs, ".")
	if s.cfg.TourFilter != "" {
		for _, t := range tours {
			if t == s.cfg.TourFilter {
				return []string{t}, nil
			}
		}
		return nil, &models.FatalError{
			Reason: fmt.Sprintf("tour %q not found in %s", s.cfg.TourFilter, s.cfg.SourceRoot),
			Err:    models.ErrTourNotFound,
		}
	}
	if len(tours) == 0 {
		return nil, &models.FatalError{
			Reason: fmt.Sprintf("no tour folders in %s", s.cfg.SourceRoot),
			Err:    models.ErrNoTours,
		}
	}
	return tours, nil
}

// Run processes every discovered tour in order. It fails only on discovery errors or
// cancellation; tour failures are reported in the results.
func (s *BulkService) Run(ctx context.Context) (*models.RunReport, error) {
	tours, err := s.DiscoverTours()
	if err != nil {
		return nil, err
	}

	s.collector.Reset()
	report := &models.RunReport{StartedAt: time.Now()}
	s.logger.Info("Starting bulk upload",
		zap.String("source", s.cfg.SourceRoot),
		zap.Int("tours", len(tours)),
		zap.String("default_type", string(s.cfg.TourType)),
	)

	for _, name := range tours {
		if ctx.Err() != nil {
			break
		}
		report.Results = append(report.Results, s.ProcessTour(ctx, name))
	}
	report.Failures = s.collector.Failures()
	report.TotalTime = time.Since(report.StartedAt)

	summary := metrics.RunSummary{
		Tours:    len(report.Results),
		Failed:   len(report.Results) - report.Succeeded(),
		Skipped:  len(report.Failures),
		Duration: report.TotalTime,
	}
	for _, r := range report.Results {
		summary.Colors += r.ColorsCount
		summary.Scenes += r.ScenesCount
		summary.FloorPlans += r.FloorPlansCount
	}
	s.logger.Info(summary.GetSummary())
	return report, ctx.Err()
}

// ProcessTour uploads one tour folder. It never returns an error: failures end up in
// the result.
func (s *BulkService) ProcessTour(ctx context.Context, name string) (result models.TourResult) {
	timings := metrics.NewTourTimings(name)
	result = models.TourResult{Tour: name}
	logger := s.logger.With(zap.String("tour", name))

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = (&models.TourError{Tour: name, Phase: "process", Err: fmt.Errorf("%v", r)}).Error()
		}
		result.Duration = timings.Finalize()
		result.Skipped = len(s.collector.ForTour(name))
		s.metrics.RecordTour(result.Success, result.Duration)
		if result.Success {
			logger.Info("Tour uploaded",
				zap.String("id", result.VirtualTourID),
				zap.Int("scenes", result.ScenesCount),
				zap.Int("colors", result.ColorsCount),
				zap.Int("floor_plans", result.FloorPlansCount),
				zap.Int("skipped", result.Skipped),
				zap.String("timings", timings.Summary()),
			)
		} else {
			logger.Error("Tour failed", zap.String("error", result.Error))
		}
	}()

	fail := func(phase string, err error) models.TourResult {
		result.Success = false
		result.Error = (&models.TourError{Tour: name, Phase: phase, Err: err}).Error()
		return result
	}

	tourFS, err := s.fs.Chroot(name)
	if err != nil {
		return fail("open folder", err)
	}
	folder := TourFolder{Name: name, FS: tourFS}

	tourCfg, err := config.LoadTourConfig(tourFS, ".")
	if err != nil {
		logger.Warn("Ignoring unreadable tour config", zap.Error(err))
	}
	tourType := config.ResolveTourType(tourCfg, s.cfg.TourType)
	strategy := s.strategies[tourType]
	logger.Info("Processing tour", zap.String("type", string(tourType)))

	timings.StartPhase("colors")
	colors, err := strategy.UploadColors(ctx, folder)
	timings.EndPhase("colors")
	if err != nil {
		return fail("upload colors", err)
	}
	result.ColorsCount = colors.Len()

	timings.StartPhase("create_tour")
	tour, err := s.assembler.CreateTour(ctx, name, tourCfg, strategy.BuildTypeConfig(colors, tourCfg), tourType)
	timings.EndPhase("create_tour")
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return result
	}
	result.VirtualTourID = tour.RemoteID
	result.VirtualTourName = tour.DisplayName

	timings.StartPhase("scenes")
	sceneIDs, err := s.createScenes(ctx, folder, strategy.LocateScenes(folder, colors))
	timings.EndPhase("scenes")
	if err != nil {
		return fail("create scenes", err)
	}
	result.ScenesCount = len(sceneIDs)

	timings.StartPhase("floor_plans")
	floorPlanIDs, err := s.createFloorPlans(ctx, folder, strategy.LocateFloorPlans(folder))
	timings.EndPhase("floor_plans")
	if err != nil {
		return fail("create floor plans", err)
	}
	result.FloorPlansCount = len(floorPlanIDs)

	timings.StartPhase("link")
	err = s.assembler.LinkEntities(ctx, tour.RemoteID, sceneIDs, floorPlanIDs)
	timings.EndPhase("link")
	if err != nil {
		return fail("link entities", err)
	}

	result.Success = true
	return result
}

// createScenes creates scenes one by one. A failed scene is recorded and skipped;
// only cancellation aborts.
func (s *BulkService) createScenes(ctx context.Context, folder TourFolder, specs []models.SceneSpec) ([]string, error) {
	ids := make([]string, 0, len(specs))
	for i, spec := range specs {
		id, err := s.assembler.CreateScene(ctx, folder.FS, spec)
		if err != nil {
			if ctx.Err() != nil {
				return ids, ctx.Err()
			}
			s.collector.Record(folder.Name, models.ItemScene, spec.Name,
				&models.UploadError{Kind: models.ItemScene, Item: spec.Name, Err: err})
		} else {
			ids = append(ids, id)
			s.metrics.RecordItem(string(models.ItemScene), nil)
			s.logger.Info("Scene created",
				zap.String("tour", folder.Name),
				zap.String("scene", spec.Name),
				zap.String("type", string(spec.SceneType)),
				zap.Int("files", len(spec.Files)),
				zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(specs))),
			)
		}
		if err := pause(ctx, s.cfg.ScenePause); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

func (s *BulkService) createFloorPlans(ctx context.Context, folder TourFolder, plans []models.FloorPlan) ([]string, error) {
	ids := make([]string, 0, len(plans))
	for _, plan := range plans {
		id, err := s.assembler.CreateFloorPlan(ctx, folder.FS, plan)
		if err != nil {
			if ctx.Err() != nil {
				return ids, ctx.Err()
			}
			s.collector.Record(folder.Name, models.ItemFloorPlan, plan.File,
				&models.UploadError{Kind: models.ItemFloorPlan, Item: plan.Name, Err: err})
		} else {
			ids = append(ids, id)
			s.metrics.RecordItem(string(models.ItemFloorPlan), nil)
		}
		if err := pause(ctx, s.cfg.ScenePause); err != nil {
			return ids, err
		}
	}
	return ids, nil
}
