package services

import (
	"path"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"tour-sync/internal/api"
	"tour-sync/internal/apitest"
	"tour-sync/internal/config"
	"tour-sync/internal/metrics"
)

var (
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01")
	webpData = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

type harness struct {
	srv     *apitest.Server
	client  *api.Client
	cfg     config.RunConfig
	fs      billy.Filesystem
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := apitest.New()
	logger := zaptest.NewLogger(t)
	cfg := srv.Config()
	cfg.SourceRoot = "memfs"
	return &harness{
		srv:     srv,
		client:  api.NewClient(cfg, logger, api.WithTransport(srv.Transport())),
		cfg:     cfg,
		fs:      memfs.New(),
		metrics: metrics.NewMetrics(),
		logger:  logger,
	}
}

func (h *harness) bulk() *BulkService {
	return NewBulkService(h.cfg, h.fs, h.client, h.metrics, h.logger)
}

func (h *harness) write(t *testing.T, files ...string) {
	t.Helper()
	for _, name := range files {
		data := pngData
		switch path.Ext(name) {
		case ".jpg", ".jpeg":
			data = jpegData
		case ".webp":
			data = webpData
		}
		require.NoError(t, util.WriteFile(h.fs, name, data, 0o644))
	}
}

func (h *harness) writeConfig(t *testing.T, tour, body string) {
	t.Helper()
	require.NoError(t, util.WriteFile(h.fs, tour+"/"+config.TourConfigFile, []byte(body), 0o644))
}
