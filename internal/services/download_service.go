package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tour-sync/internal/config"
	"tour-sync/internal/metrics"
	"tour-sync/internal/models"
	"tour-sync/internal/naming"
)

const defaultMediaExt = ".png"

// DownloadService writes a remote tour to disk in the layout BulkService reads.
type DownloadService struct {
	source    TourSource
	fs        billy.Filesystem
	collector *Collector
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewDownloadService creates a DownloadService writing below the root of fs.
func NewDownloadService(source TourSource, fs billy.Filesystem, m *metrics.Metrics, logger *zap.Logger) *DownloadService {
	return &DownloadService{
		source:    source,
		fs:        fs,
		collector: NewCollector(logger, m),
		metrics:   m,
		logger:    logger,
	}
}

// DownloadByID fetches the tour document and downloads it.
func (s *DownloadService) DownloadByID(ctx context.Context, id string) (*models.DownloadResult, error) {
	doc, err := s.source.FetchTour(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Download(ctx, doc)
}

// TourCode returns the folder name a document is written to.
func TourCode(doc *models.TourDocument) string {
	if doc.VirtualTourCode != "" {
		return doc.VirtualTourCode
	}
	if slug := naming.NameToSlug(doc.VirtualTourName); slug != "" {
		return slug
	}
	return naming.NameToSlug(doc.ID)
}

// tourDownload is the state of one Download call.
type tourDownload struct {
	fs       billy.Filesystem
	tour     string
	files    int
	bytes    int64
	failures []models.ItemFailure
	used     map[string]bool
	counters map[string]int
}

// numbered returns the first unused dir/{stem}NNN{ext}. Numbering is kept per
// dir and stem so scenes sharing a folder never overwrite each other.
func (d *tourDownload) numbered(dir, stem, ext string) string {
	key := path.Join(dir, stem)
	for {
		d.counters[key]++
		name := path.Join(dir, fmt.Sprintf("%s%03d%s", stem, d.counters[key], ext))
		if !d.used[name] {
			return name
		}
	}
}

// Download writes doc below {tourCode}/. Media that cannot be fetched is recorded
// and skipped; only filesystem errors on the tour folder itself abort.
func (s *DownloadService) Download(ctx context.Context, doc *models.TourDocument) (*models.DownloadResult, error) {
	start := time.Now()
	code := TourCode(doc)
	if code == "" {
		return nil, errors.New("tour has neither code, name nor id")
	}
	if err := s.fs.MkdirAll(code, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create tour folder %s", code)
	}
	tourFS, err := s.fs.Chroot(code)
	if err != nil {
		return nil, errors.Wrapf(err, "open tour folder %s", code)
	}
	d := &tourDownload{
		fs:       tourFS,
		tour:     code,
		used:     make(map[string]bool),
		counters: make(map[string]int),
	}

	spaces := doc.IsSpaces()
	dirs := []string{"_colors/external", "_colors/internal", "external", "internal"}
	if spaces {
		dirs = []string{spacesSceneDir, floorPlanDir}
	}
	for _, dir := range dirs {
		if err := tourFS.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", dir)
		}
	}

	if err := writeTourConfig(tourFS, doc, code); err != nil {
		return nil, err
	}

	colorSlugs := make(map[string]string)
	if !spaces {
		colorSlugs = s.downloadColors(ctx, d, doc)
	}
	s.downloadScenes(ctx, d, doc, spaces, colorSlugs)
	if spaces {
		s.downloadFloorPlans(ctx, d, doc)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("Tour downloaded",
		zap.String("tour", code),
		zap.Int("files", d.files),
		zap.Int64("bytes", d.bytes),
		zap.Int("skipped", len(d.failures)),
		zap.Duration("duration", time.Since(start)),
	)
	return &models.DownloadResult{
		TourPath:   code,
		TotalFiles: d.files,
		Bytes:      d.bytes,
		Failures:   d.failures,
	}, nil
}

// writeTourConfig stores the tour metadata under the resolved code, without the color
// references, which are rebuilt from _colors/ on upload.
func writeTourConfig(fs billy.Filesystem, doc *models.TourDocument, code string) error {
	cfg := make(map[string]any, len(doc.Config))
	for k, v := range doc.Config {
		if k != "automotiveColors" {
			cfg[k] = v
		}
	}
	data, err := json.MarshalIndent(models.TourConfig{
		VirtualTourName: doc.VirtualTourName,
		VirtualTourCode: code,
		Description:     doc.Description,
		EventType:       doc.EventType,
		Config:          cfg,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode tour config")
	}
	return util.WriteFile(fs, config.TourConfigFile, data, 0o644)
}

func (s *DownloadService) downloadColors(ctx context.Context, d *tourDownload, doc *models.TourDocument) map[string]string {
	slugs := make(map[string]string)
	for _, automotiveType := range models.AutomotiveTypes {
		dir := path.Join(colorDir, string(automotiveType))
		for _, color := range doc.AutomotiveColors(automotiveType) {
			if color.URL == "" || color.Meta.Name == "" {
				s.skip(d, models.ItemColor, color.ID, errors.New("color has no url or name"))
				continue
			}
			slug := naming.NameToSlug(color.Meta.Name)
			_, err := s.saveMedia(ctx, d, color.URL, func(ext string) string {
				return path.Join(dir, slug+ext)
			})
			if err != nil {
				s.skip(d, models.ItemColor, color.Meta.Name, err)
				continue
			}
			slugs[color.ID] = slug
		}
	}
	return slugs
}

func (s *DownloadService) downloadScenes(ctx context.Context, d *tourDownload, doc *models.TourDocument, spaces bool, colorSlugs map[string]string) {
	for n, scene := range doc.Scenes {
		sceneType := models.SceneType(scene.SceneType)
		if sceneType == "" {
			sceneType = models.SceneType360
		}
		sceneSlug := naming.NameToSlug(scene.SceneName)
		if sceneSlug == "" {
			sceneSlug = naming.NameToSlug(scene.ID)
		}
		if sceneSlug == "" {
			sceneSlug = fmt.Sprintf("scene-%d", n+1)
		}

		dir := spacesSceneDir
		if !spaces {
			automotiveType := scene.AutomotiveType
			if automotiveType == "" {
				automotiveType = string(models.AutomotiveExternal)
			}
			folder, ok := colorSlugs[scene.ColorID()]
			if !ok {
				folder = sceneSlug
			}
			dir = path.Join(automotiveType, folder)
		}

		for i, media := range scene.Media {
			if media.URL == "" {
				continue
			}
			original := urlBase(media.URL)
			_, err := s.saveMedia(ctx, d, media.URL, func(ext string) string {
				if sceneType == models.SceneTypeSequence {
					if name := path.Join(dir, original); strings.HasPrefix(strings.ToLower(original), "seq_") && !d.used[name] {
						return name
					}
					return d.numbered(dir, "seq_", ext)
				}
				return d.numbered(dir, sceneType.Prefix()+sceneSlug+"_", ext)
			})
			if err != nil {
				s.skip(d, models.ItemScene, fmt.Sprintf("%s #%d", scene.SceneName, i+1), err)
			}
		}
	}
}

func (s *DownloadService) downloadFloorPlans(ctx context.Context, d *tourDownload, doc *models.TourDocument) {
	for _, plan := range doc.FloorPlans {
		if plan.Media == nil || plan.Media.URL == "" {
			continue
		}
		name := plan.FloorPlanName
		if name == "" {
			name = "floorplan"
		}
		slug := naming.NameToSlug(name)
		_, err := s.saveMedia(ctx, d, plan.Media.URL, func(ext string) string {
			return path.Join(floorPlanDir, slug+ext)
		})
		if err != nil {
			s.skip(d, models.ItemFloorPlan, name, err)
		}
	}
}

// saveMedia downloads rawURL and writes it to the path nameFor returns. The extension
// comes from the URL, or is sniffed from the content when the URL has none.
func (s *DownloadService) saveMedia(ctx context.Context, d *tourDownload, rawURL string, nameFor func(ext string) string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	start := time.Now()
	n, _, err := s.source.Download(ctx, rawURL, &buf)
	s.metrics.ObserveRequest("download_media", time.Since(start))
	if err != nil {
		return "", err
	}

	ext := path.Ext(urlBase(rawURL))
	if ext == "" {
		ext = mimetype.Detect(buf.Bytes()).Extension()
	}
	if ext == "" {
		ext = defaultMediaExt
	}
	name := nameFor(ext)
	if err := util.WriteFile(d.fs, name, buf.Bytes(), 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", name)
	}
	d.used[name] = true

	d.files++
	d.bytes += n
	s.metrics.AddDownloadedBytes(n)
	s.metrics.RecordItem(string(models.ItemDownload), nil)
	return name, nil
}

func (s *DownloadService) skip(d *tourDownload, kind models.ItemKind, item string, err error) {
	d.failures = append(d.failures, models.ItemFailure{Tour: d.tour, Kind: kind, Item: item, Reason: err.Error()})
	s.collector.Record(d.tour, kind, item, err)
}

// urlBase returns the last path segment of a URL, without query or fragment.
func urlBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}
