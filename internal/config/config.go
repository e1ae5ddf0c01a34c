package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tour-sync/internal/models"
)

const (
	DefaultSourceRoot = "./virtualTours"
	DefaultColorPause = 100 * time.Millisecond
	DefaultScenePause = 200 * time.Millisecond
)

// MinioConfig configures the optional bucket mirror of downloaded tours.
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	SSL       bool   `toml:"ssl"`
}

// Enabled reports whether enough settings are present to build a client.
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != "" && m.AccessKey != "" && m.SecretKey != "" && m.Bucket != ""
}

// RunConfig holds every setting of a run. It is built once at startup and passed by
// value to the components that need it.
type RunConfig struct {
	Domain     string
	APIKey     string
	SourceRoot string
	TourFilter string
	TourType   models.TourType

	ColorPause     time.Duration
	ScenePause     time.Duration
	RequestTimeout time.Duration
	FileTimeout    time.Duration
	SceneTimeout   time.Duration

	LogLevel  string
	LogFormat string

	LedgerDSN      string
	ReportPath     string
	MetricsPushURL string
	Minio          MinioConfig
}

// fileConfig is the TOML layout of the optional config file.
type fileConfig struct {
	Domain         string      `toml:"domain"`
	APIKey         string      `toml:"api_key"`
	SourceRoot     string      `toml:"source_root"`
	Tour           string      `toml:"tour"`
	TourType       string      `toml:"tour_type"`
	ColorPause     string      `toml:"color_pause"`
	ScenePause     string      `toml:"scene_pause"`
	RequestTimeout string      `toml:"request_timeout"`
	LogLevel       string      `toml:"log_level"`
	LogFormat      string      `toml:"log_format"`
	LedgerDSN      string      `toml:"ledger_dsn"`
	ReportPath     string      `toml:"report_path"`
	MetricsPushURL string      `toml:"metrics_pushgateway"`
	Minio          MinioConfig `toml:"minio"`
}

// Default returns a RunConfig with every optional setting at its default.
func Default() RunConfig {
	return RunConfig{
		SourceRoot:     DefaultSourceRoot,
		TourType:       models.TourTypeAutomotive,
		ColorPause:     DefaultColorPause,
		ScenePause:     DefaultScenePause,
		RequestTimeout: 30 * time.Second,
		FileTimeout:    60 * time.Second,
		SceneTimeout:   300 * time.Second,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// LoadConfig layers the optional TOML file at path and then the environment over the
// defaults. It does not check required settings; call Validate for that.
func LoadConfig(path string) (RunConfig, error) {
	cfg := Default()

	var fc fileConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return cfg, errors.Wrapf(err, "read config file %s", path)
		}
	}
	applyEnv(&fc)

	cfg.Domain = fc.Domain
	cfg.APIKey = fc.APIKey
	cfg.TourFilter = fc.Tour
	cfg.LedgerDSN = fc.LedgerDSN
	cfg.ReportPath = fc.ReportPath
	cfg.MetricsPushURL = fc.MetricsPushURL
	cfg.Minio = fc.Minio
	if fc.SourceRoot != "" {
		cfg.SourceRoot = fc.SourceRoot
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.TourType != "" {
		t, ok := models.ParseTourType(fc.TourType)
		if !ok {
			return cfg, fmt.Errorf("invalid tour type %q (expected automotive or spaces)", fc.TourType)
		}
		cfg.TourType = t
	}

	var err error
	if cfg.ColorPause, err = parseDuration("color_pause", fc.ColorPause, cfg.ColorPause); err != nil {
		return cfg, err
	}
	if cfg.ScenePause, err = parseDuration("scene_pause", fc.ScenePause, cfg.ScenePause); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", fc.RequestTimeout, cfg.RequestTimeout); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(fc *fileConfig) {
	setFromEnv(&fc.Domain, "DOMAIN")
	setFromEnv(&fc.APIKey, "API_KEY")
	setFromEnv(&fc.SourceRoot, "VIRTUAL_TOURS_PATH")
	setFromEnv(&fc.Tour, "TOUR_NAME")
	setFromEnv(&fc.TourType, "TOUR_TYPE")
	setFromEnv(&fc.ColorPause, "COLOR_PAUSE")
	setFromEnv(&fc.ScenePause, "SCENE_PAUSE")
	setFromEnv(&fc.RequestTimeout, "REQUEST_TIMEOUT")
	setFromEnv(&fc.LogLevel, "LOG_LEVEL")
	setFromEnv(&fc.LogFormat, "LOG_FORMAT")
	setFromEnv(&fc.LedgerDSN, "LEDGER_DSN")
	setFromEnv(&fc.ReportPath, "REPORT_PATH")
	setFromEnv(&fc.MetricsPushURL, "METRICS_PUSHGATEWAY")
	setFromEnv(&fc.Minio.Endpoint, "MINIO_ENDPOINT")
	setFromEnv(&fc.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setFromEnv(&fc.Minio.SecretKey, "MINIO_SECRET_KEY")
	setFromEnv(&fc.Minio.Bucket, "MINIO_BUCKET")
	setFromEnv(&fc.Minio.Prefix, "MINIO_PREFIX")
	if v := os.Getenv("MINIO_SSL"); v != "" {
		if ssl, err := strconv.ParseBool(v); err == nil {
			fc.Minio.SSL = ssl
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	// bare integers are milliseconds
	ms, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s value %q", name, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Validate checks the settings every remote operation needs.
func (c RunConfig) Validate() error {
	var missing []string
	if c.Domain == "" {
		missing = append(missing, "DOMAIN")
	}
	if c.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if len(missing) > 0 {
		return &models.FatalError{
			Reason: "configuration is incomplete, set " + strings.Join(missing, " and "),
			Err:    models.ErrMissingConfig,
		}
	}
	return nil
}

// BaseURL returns the API root, defaulting to https when the domain has no scheme.
func (c RunConfig) BaseURL() string {
	d := strings.TrimRight(c.Domain, "/")
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		return d
	}
	return "https://" + d
}

// ConnectDatabase opens the run ledger database.
func ConnectDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "connect ledger database")
	}
	return db, nil
}
