package services

import (
	"context"
	"path"

	"go.uber.org/zap"

	"tour-sync/internal/models"
	"tour-sync/internal/naming"
)

// TourStrategy holds everything that differs between automotive and spaces tours.
type TourStrategy interface {
	Type() models.TourType
	UploadColors(ctx context.Context, folder TourFolder) (*models.ColorMap, error)
	BuildTypeConfig(colors *models.ColorMap, cfg *models.TourConfig) map[string]any
	LocateScenes(folder TourFolder, colors *models.ColorMap) []models.SceneSpec
	LocateFloorPlans(folder TourFolder) []models.FloorPlan
}

func userTheme(cfg *models.TourConfig, fallback string) string {
	if cfg != nil {
		if theme, ok := cfg.Config["theme"].(string); ok && theme != "" {
			return theme
		}
	}
	return fallback
}

// AutomotiveStrategy handles tours laid out as {external,internal}/{color}/ with
// color swatches under _colors/.
type AutomotiveStrategy struct {
	colors    *ColorRegistry
	collector *Collector
	logger    *zap.Logger
}

// NewAutomotiveStrategy creates an AutomotiveStrategy.
func NewAutomotiveStrategy(colors *ColorRegistry, collector *Collector, logger *zap.Logger) *AutomotiveStrategy {
	return &AutomotiveStrategy{colors: colors, collector: collector, logger: logger}
}

// sceneFolders maps accepted top-level folder names onto automotive types, in
// processing order.
var sceneFolders = []struct {
	dir            string
	automotiveType models.AutomotiveType
}{
	{"external", models.AutomotiveExternal},
	{"exterior", models.AutomotiveExternal},
	{"internal", models.AutomotiveInternal},
	{"interior", models.AutomotiveInternal},
}

func (s *AutomotiveStrategy) Type() models.TourType { return models.TourTypeAutomotive }

func (s *AutomotiveStrategy) UploadColors(ctx context.Context, folder TourFolder) (*models.ColorMap, error) {
	return s.colors.Upload(ctx, folder)
}

func (s *AutomotiveStrategy) BuildTypeConfig(colors *models.ColorMap, cfg *models.TourConfig) map[string]any {
	return map[string]any{
		"theme": userTheme(cfg, "flow"),
		"automotiveColors": map[string]any{
			"external": colors.IDs(models.AutomotiveExternal),
			"internal": colors.IDs(models.AutomotiveInternal),
		},
	}
}

func (s *AutomotiveStrategy) LocateScenes(folder TourFolder, colors *models.ColorMap) []models.SceneSpec {
	var scenes []models.SceneSpec
	for _, sf := range sceneFolders {
		for _, colorDir := range naming.SubDirs(folder.FS, sf.dir) {
			dir := path.Join(sf.dir, colorDir)
			files := naming.ImageFiles(folder.FS, dir)
			if len(files) == 0 {
				s.logger.Warn("Empty scene folder skipped", zap.String("tour", folder.Name), zap.String("folder", dir))
				continue
			}

			classified, errs := naming.ClassifyFiles(dir, files)
			for _, err := range errs {
				s.collector.Record(folder.Name, models.ItemClassification, err.File, err)
			}

			color, ok := colors.Lookup(sf.automotiveType, colorDir)
			if !ok {
				s.logger.Warn("No color registered for folder, scenes are created without color",
					zap.String("tour", folder.Name),
					zap.String("folder", dir),
				)
			}
			scenes = append(scenes, naming.GroupScenes(classified, colorDir, sf.automotiveType, color)...)
		}
	}
	return scenes
}

func (s *AutomotiveStrategy) LocateFloorPlans(TourFolder) []models.FloorPlan { return nil }

// SpacesStrategy handles tours with a flat scenes/ folder and optional floor plans.
type SpacesStrategy struct {
	collector *Collector
	logger    *zap.Logger
}

// NewSpacesStrategy creates a SpacesStrategy.
func NewSpacesStrategy(collector *Collector, logger *zap.Logger) *SpacesStrategy {
	return &SpacesStrategy{collector: collector, logger: logger}
}

const (
	spacesSceneDir = "scenes"
	floorPlanDir   = "_floorplans"
)

func (s *SpacesStrategy) Type() models.TourType { return models.TourTypeSpaces }

// UploadColors uploads nothing; spaces tours have no colors.
func (s *SpacesStrategy) UploadColors(context.Context, TourFolder) (*models.ColorMap, error) {
	return models.NewColorMap(), nil
}

func (s *SpacesStrategy) BuildTypeConfig(_ *models.ColorMap, cfg *models.TourConfig) map[string]any {
	return map[string]any{
		"theme": userTheme(cfg, "cascade"),
		"automotiveColors": map[string]any{
			"external": []string{},
			"internal": []string{},
		},
		"floorPlan": map[string]any{"showOpened": true},
		"hotspots": map[string]any{
			"enableAudio":       true,
			"allowToggle":       false,
			"showInfospotTitle": true,
		},
		"navigation": map[string]any{
			"mode":       "normal",
			"legacyMode": "initial",
		},
	}
}

// LocateScenes classifies scenes/. Files that match no naming rule are treated as
// panoramas.
func (s *SpacesStrategy) LocateScenes(folder TourFolder, _ *models.ColorMap) []models.SceneSpec {
	files := naming.ImageFiles(folder.FS, spacesSceneDir)
	if len(files) == 0 {
		s.logger.Warn("No scenes found", zap.String("tour", folder.Name), zap.String("folder", spacesSceneDir))
		return nil
	}

	classified := make([]naming.ClassifiedFile, 0, len(files))
	for _, name := range files {
		c, err := naming.Classify(name)
		if err != nil {
			base := naming.BaseName(name)
			c = naming.Classification{
				SceneType:    models.SceneType360,
				SceneName:    naming.SlugToName(base),
				OriginalName: base,
				Prefix:       models.SceneType360.Prefix(),
				AutoDetected: true,
			}
			s.logger.Debug("Unprefixed file treated as 360 scene", zap.String("tour", folder.Name), zap.String("file", name))
		}
		classified = append(classified, naming.ClassifiedFile{Path: path.Join(spacesSceneDir, name), Classification: c})
	}
	return naming.GroupScenes(classified, spacesSceneDir, models.AutomotiveExternal, nil)
}

func (s *SpacesStrategy) LocateFloorPlans(folder TourFolder) []models.FloorPlan {
	var plans []models.FloorPlan
	for _, name := range naming.ImageFiles(folder.FS, floorPlanDir) {
		plans = append(plans, models.FloorPlan{
			Name: naming.SlugToName(naming.BaseName(name)),
			File: path.Join(floorPlanDir, name),
		})
	}
	return plans
}
