package config

import (
	"encoding/json"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"

	"tour-sync/internal/models"
)

// TourConfigFile is the per-tour settings file.
const TourConfigFile = "_config.json"

// LoadTourConfig reads dir/_config.json. A missing file yields an empty config.
func LoadTourConfig(fs billy.Filesystem, dir string) (*models.TourConfig, error) {
	data, err := util.ReadFile(fs, path.Join(dir, TourConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &models.TourConfig{}, nil
		}
		return &models.TourConfig{}, errors.Wrap(err, "read tour config")
	}
	var cfg models.TourConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return &models.TourConfig{}, errors.Wrap(err, "parse tour config")
	}
	return &cfg, nil
}

// ResolveTourType picks the tour type: an eventType in the tour config wins over the
// run default.
func ResolveTourType(cfg *models.TourConfig, fallback models.TourType) models.TourType {
	if cfg != nil {
		if t, ok := models.ParseTourType(cfg.EventType); ok {
			return t
		}
	}
	return fallback
}
