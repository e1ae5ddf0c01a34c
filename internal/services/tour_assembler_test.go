package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tour-sync/internal/api"
	"tour-sync/internal/models"
)

type recordingAPI struct {
	payloads  []map[string]any
	updates   []map[string]any
	createErr error
}

func (r *recordingAPI) UploadColorFile(context.Context, api.ColorUpload) (string, error) {
	return "file", nil
}

func (r *recordingAPI) CreateVirtualTour(_ context.Context, payload map[string]any) (*api.CreatedTour, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.payloads = append(r.payloads, payload)
	return &api.CreatedTour{ID: "tour-1"}, nil
}

func (r *recordingAPI) UpdateVirtualTour(_ context.Context, _ string, fields map[string]any) error {
	r.updates = append(r.updates, fields)
	return nil
}

func (r *recordingAPI) CreateScene(context.Context, api.SceneUpload) (string, error) {
	return "scene", nil
}

func (r *recordingAPI) CreateFloorPlan(context.Context, string, api.Part) (string, error) {
	return "plan", nil
}

func TestBuildPayloadDefaults(t *testing.T) {
	a := NewTourAssembler(&recordingAPI{}, nil, zap.NewNop())

	payload := a.BuildPayload("summer-house", nil, nil, models.TourTypeAutomotive)
	assert.Equal(t, "Summer House", payload["virtualTourName"])
	assert.Equal(t, "summer-house", payload["virtualTourCode"])
	assert.Equal(t, "Virtual tour: Summer House", payload["description"])
	assert.Equal(t, "Automotive", payload["eventType"])

	cfg := payload["config"].(map[string]any)
	for _, key := range []string{"ui", "panorama", "camera", "sequence"} {
		assert.Contains(t, cfg, key)
	}
	camera := cfg["camera"].(map[string]any)
	assert.Equal(t, false, camera["lockHorizontalFov"])
	assert.Equal(t, 50, camera["limitDown"])
}

func TestBuildPayloadMergeOrder(t *testing.T) {
	a := NewTourAssembler(&recordingAPI{}, nil, zap.NewNop())
	typeConfig := map[string]any{
		"theme":  "cascade",
		"camera": map[string]any{"limitDown": 10},
	}
	tourCfg := &models.TourConfig{
		VirtualTourName: "Custom",
		Description:     "Hand written",
		Config:          map[string]any{"theme": "night"},
	}

	payload := a.BuildPayload("folder", tourCfg, typeConfig, models.TourTypeSpaces)
	assert.Equal(t, "Custom", payload["virtualTourName"])
	assert.Equal(t, "folder", payload["virtualTourCode"])
	assert.Equal(t, "Hand written", payload["description"])
	assert.Equal(t, "Spaces", payload["eventType"])

	cfg := payload["config"].(map[string]any)
	assert.Equal(t, "night", cfg["theme"])
	// Top-level keys replace whole blocks.
	assert.Equal(t, map[string]any{"limitDown": 10}, cfg["camera"])
}

func TestBaseConfigPerTourType(t *testing.T) {
	spaces := baseConfig(models.TourTypeSpaces)["camera"].(map[string]any)
	assert.Equal(t, true, spaces["lockHorizontalFov"])
	assert.Equal(t, 90, spaces["limitDown"])
	assert.Equal(t, 115, spaces["limitUp"])

	automotive := baseConfig(models.TourTypeAutomotive)["camera"].(map[string]any)
	assert.Equal(t, 180, automotive["limitUp"])
}

func TestCreateTourWrapsFailure(t *testing.T) {
	a := NewTourAssembler(&recordingAPI{createErr: errors.New("boom")}, nil, zap.NewNop())

	_, err := a.CreateTour(context.Background(), "t", nil, nil, models.TourTypeAutomotive)
	var tourErr *models.TourError
	require.ErrorAs(t, err, &tourErr)
	assert.Equal(t, "create tour", tourErr.Phase)
	assert.False(t, models.IsFatal(err))
}

func TestCreateTourFallsBackToPayloadName(t *testing.T) {
	rec := &recordingAPI{}
	a := NewTourAssembler(rec, nil, zap.NewNop())

	tour, err := a.CreateTour(context.Background(), "red-barn", nil, nil, models.TourTypeAutomotive)
	require.NoError(t, err)
	assert.Equal(t, "tour-1", tour.RemoteID)
	assert.Equal(t, "Red Barn", tour.DisplayName)
	assert.Equal(t, "red-barn", tour.Code)
	require.Len(t, rec.payloads, 1)
}

func TestLinkEntities(t *testing.T) {
	rec := &recordingAPI{}
	a := NewTourAssembler(rec, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, a.LinkEntities(ctx, "tour-1", nil, nil))
	assert.Empty(t, rec.updates)

	require.NoError(t, a.LinkEntities(ctx, "tour-1", []string{"s1", "s2"}, nil))
	require.NoError(t, a.LinkEntities(ctx, "tour-1", nil, []string{"f1"}))
	require.NoError(t, a.LinkEntities(ctx, "tour-1", []string{"s1"}, []string{"f1"}))

	require.Len(t, rec.updates, 3)
	assert.Equal(t, map[string]any{"scenes": []string{"s1", "s2"}}, rec.updates[0])
	assert.Equal(t, map[string]any{"floorPlans": []string{"f1"}}, rec.updates[1])
	assert.Len(t, rec.updates[2], 2)
}
