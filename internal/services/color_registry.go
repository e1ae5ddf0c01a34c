package services

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"

	"tour-sync/internal/api"
	"tour-sync/internal/metrics"
	"tour-sync/internal/models"
	"tour-sync/internal/naming"
)

const colorDir = "_colors"

// ColorRegistry uploads the color swatches of an automotive tour.
type ColorRegistry struct {
	api       TourAPI
	pause     time.Duration
	collector *Collector
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewColorRegistry creates a ColorRegistry that waits pause after every upload.
func NewColorRegistry(client TourAPI, pause time.Duration, collector *Collector, m *metrics.Metrics, logger *zap.Logger) *ColorRegistry {
	return &ColorRegistry{
		api:       client,
		pause:     pause,
		collector: collector,
		metrics:   m,
		logger:    logger,
	}
}

// Upload stores every swatch under _colors/{external,internal}/ and returns the
// resulting ColorMap. Each slug is uploaded at most once per namespace; later files
// with the same slug are recorded as duplicates. Failed uploads are recorded and left
// out of the map; only a cancelled context stops the upload early.
func (r *ColorRegistry) Upload(ctx context.Context, folder TourFolder) (*models.ColorMap, error) {
	colors := models.NewColorMap()
	for _, automotiveType := range models.AutomotiveTypes {
		dir := path.Join(colorDir, string(automotiveType))
		for _, file := range naming.ImageFiles(folder.FS, dir) {
			slug := naming.BaseName(file)
			name := naming.SlugToName(slug)
			filePath := path.Join(dir, file)

			if _, dup := colors.Lookup(automotiveType, slug); dup {
				r.collector.Record(folder.Name, models.ItemColor, filePath,
					&models.UploadError{Kind: models.ItemColor, Item: name, Err: models.ErrDuplicateColor})
				continue
			}

			id, err := r.uploadOne(ctx, folder, automotiveType, slug, name, filePath)
			if err != nil {
				r.collector.Record(folder.Name, models.ItemColor, filePath,
					&models.UploadError{Kind: models.ItemColor, Item: name, Err: err})
			} else {
				colors.Add(models.Color{
					Slug:           slug,
					DisplayName:    name,
					AutomotiveType: automotiveType,
					RemoteFileID:   id,
				})
				r.metrics.RecordItem(string(models.ItemColor), nil)
				r.logger.Info("Color uploaded",
					zap.String("tour", folder.Name),
					zap.String("type", string(automotiveType)),
					zap.String("color", name),
					zap.String("id", id),
				)
			}

			if err := pause(ctx, r.pause); err != nil {
				return colors, err
			}
		}
	}
	return colors, nil
}

func (r *ColorRegistry) uploadOne(ctx context.Context, folder TourFolder, automotiveType models.AutomotiveType, slug, name, filePath string) (string, error) {
	f, err := folder.FS.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	start := time.Now()
	id, err := r.api.UploadColorFile(ctx, api.ColorUpload{
		AutomotiveType: automotiveType,
		Slug:           slug,
		Name:           name,
		File:           api.Part{FileName: path.Base(filePath), Reader: f},
	})
	r.metrics.ObserveRequest("upload_color", time.Since(start))
	return id, err
}
