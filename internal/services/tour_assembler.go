package services

import (
	"context"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tour-sync/internal/api"
	"tour-sync/internal/metrics"
	"tour-sync/internal/models"
	"tour-sync/internal/naming"
)

// TourAssembler creates the remote tour and the entities that belong to it.
type TourAssembler struct {
	api     TourAPI
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewTourAssembler creates a TourAssembler.
func NewTourAssembler(client TourAPI, m *metrics.Metrics, logger *zap.Logger) *TourAssembler {
	return &TourAssembler{api: client, metrics: m, logger: logger}
}

// baseConfig is the viewer configuration shared by every tour.
func baseConfig(tourType models.TourType) map[string]any {
	spaces := tourType == models.TourTypeSpaces
	limitDown, limitUp := 50, 180
	if spaces {
		limitDown, limitUp = 90, 115
	}
	return map[string]any{
		"ui": map[string]any{
			"fullscreen":        true,
			"enableRibbon":      true,
			"hideRibbonAtStart": false,
			"splash":            map[string]any{"enabled": false},
			"isHideShareButton": false,
		},
		"panorama": map[string]any{
			"tinyPlanet":      false,
			"autoRotate":      true,
			"autoRotateSpeed": 1,
		},
		"camera": map[string]any{
			"lockHorizontalFov":   spaces,
			"enableLimits":        true,
			"limitDown":           limitDown,
			"limitUp":             limitUp,
			"disableZoomInIframe": true,
		},
		"sequence": map[string]any{
			"drag":     map[string]any{"enabled": true, "swipeable": true, "speed": 100, "reverse": false},
			"autoplay": map[string]any{"enabled": false, "speed": 100},
			"zoom":     map[string]any{"pointerZoom": false, "scale": 1.5},
			"ui":       map[string]any{"showBadge": false, "showFrameIndicator": true},
		},
	}
}

// BuildPayload assembles the tour creation request. Config blocks merge at the top
// level: baseline, then typeConfig, then the tour's own config.
func (a *TourAssembler) BuildPayload(folderName string, cfg *models.TourConfig, typeConfig map[string]any, tourType models.TourType) map[string]any {
	if cfg == nil {
		cfg = &models.TourConfig{}
	}
	name := cfg.VirtualTourName
	if name == "" {
		name = naming.SlugToName(folderName)
	}
	description := cfg.Description
	if description == "" {
		description = "Virtual tour: " + name
	}

	merged := baseConfig(tourType)
	for k, v := range typeConfig {
		merged[k] = v
	}
	for k, v := range cfg.Config {
		merged[k] = v
	}

	return map[string]any{
		"virtualTourName": name,
		"virtualTourCode": folderName,
		"description":     description,
		"eventType":       tourType.EventType(),
		"config":          merged,
	}
}

// CreateTour creates the remote tour.
func (a *TourAssembler) CreateTour(ctx context.Context, folderName string, cfg *models.TourConfig, typeConfig map[string]any, tourType models.TourType) (*models.Tour, error) {
	payload := a.BuildPayload(folderName, cfg, typeConfig, tourType)

	start := time.Now()
	created, err := a.api.CreateVirtualTour(ctx, payload)
	a.metrics.ObserveRequest("create_tour", time.Since(start))
	if err != nil {
		return nil, &models.TourError{Tour: folderName, Phase: "create tour", Err: err}
	}

	name := created.VirtualTourName
	if name == "" {
		name = payload["virtualTourName"].(string)
	}
	return &models.Tour{
		RemoteID:    created.ID,
		Code:        folderName,
		DisplayName: name,
		Description: payload["description"].(string),
		Type:        tourType,
		Config:      payload["config"].(map[string]any),
	}, nil
}

// CreateScene uploads one scene with its media read from fs.
func (a *TourAssembler) CreateScene(ctx context.Context, fs billy.Filesystem, spec models.SceneSpec) (string, error) {
	parts, closeAll, err := openParts(fs, spec.Files)
	if err != nil {
		return "", errors.Wrap(err, "open scene media")
	}
	defer closeAll()

	start := time.Now()
	id, err := a.api.CreateScene(ctx, api.SceneUpload{
		Name:           spec.Name,
		SceneType:      spec.SceneType,
		AutomotiveType: spec.AutomotiveType,
		ColorID:        spec.ColorID(),
		Media:          parts,
	})
	a.metrics.ObserveRequest("create_scene", time.Since(start))
	return id, err
}

// CreateFloorPlan uploads one floor plan image read from fs.
func (a *TourAssembler) CreateFloorPlan(ctx context.Context, fs billy.Filesystem, plan models.FloorPlan) (string, error) {
	parts, closeAll, err := openParts(fs, []string{plan.File})
	if err != nil {
		return "", errors.Wrap(err, "open floor plan")
	}
	defer closeAll()

	start := time.Now()
	id, err := a.api.CreateFloorPlan(ctx, plan.Name, parts[0])
	a.metrics.ObserveRequest("create_floorplan", time.Since(start))
	return id, err
}

// LinkEntities attaches scenes and floor plans to the tour in a single update.
// Empty collections are left out; nothing is sent when both are empty.
func (a *TourAssembler) LinkEntities(ctx context.Context, tourID string, sceneIDs, floorPlanIDs []string) error {
	fields := make(map[string]any)
	if len(sceneIDs) > 0 {
		fields["scenes"] = sceneIDs
	}
	if len(floorPlanIDs) > 0 {
		fields["floorPlans"] = floorPlanIDs
	}
	if len(fields) == 0 {
		return nil
	}

	start := time.Now()
	err := a.api.UpdateVirtualTour(ctx, tourID, fields)
	a.metrics.ObserveRequest("link_entities", time.Since(start))
	return err
}
