// Package apitest runs an in-memory copy of the virtual tour API for tests.
package apitest

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"tour-sync/internal/config"
	"tour-sync/internal/models"
)

const (
	Domain    = "api.test"
	CDNDomain = "cdn.test"
	APIKey    = "test-key"
)

// FileRecord is a stored color swatch upload.
type FileRecord struct {
	ID       string
	FileName string
	FilePath string
	IsPublic string
	MetaID   string
	MetaName string
	MetaHex  string
	MetaCode string
	MetaType string
}

// SceneRecord is a created scene.
type SceneRecord struct {
	ID              string
	Name            string
	SceneType       string
	AutomotiveType  string
	AutomotiveColor string
	Media           []string
	ContentTypes    []string
}

// FloorPlanRecord is a created floor plan.
type FloorPlanRecord struct {
	ID    string
	Name  string
	Media string
}

// TourRecord is a created tour and the entities linked to it.
type TourRecord struct {
	ID         string
	Payload    map[string]any
	Patches    []map[string]any
	Scenes     []string
	FloorPlans []string
}

// Server is the fake API. Fail* hooks make matching requests answer 500.
type Server struct {
	App *fiber.App

	FailColor func(name string) bool
	FailScene func(name string) bool
	FailTour  func(code string) bool

	mu         sync.Mutex
	seq        int
	files      []FileRecord
	scenes     []SceneRecord
	floorPlans []FloorPlanRecord
	tours      []*TourRecord
	views      map[string]any
	media      map[string][]byte
	mediaAuth  []string
}

// New creates a Server with all routes registered.
func New() *Server {
	s := &Server{
		App:   fiber.New(fiber.Config{DisableStartupMessage: true, BodyLimit: 64 * 1024 * 1024}),
		views: make(map[string]any),
		media: make(map[string][]byte),
	}
	h := &handler{s: s}

	v2 := s.App.Group("/v2", h.requireBearer)
	v2.Post("/file", h.uploadFile)
	v2.Post("/virtualtour", h.createTour)
	v2.Patch("/virtualtour/:id", h.updateTour)
	v2.Post("/scene/", h.createScene)
	v2.Post("/floorPlan/", h.createFloorPlan)
	v2.Get("/virtualTour/view/:id", h.viewTour)

	s.App.Get("/media/:name", h.serveMedia)
	s.App.Get("/bucket/:name", h.serveSignedMedia)
	s.App.Get("/redirect/:name", func(c *fiber.Ctx) error {
		return c.Redirect("/media/"+c.Params("name"), fiber.StatusFound)
	})
	return s
}

// Config returns a RunConfig pointing at the fake API with pauses disabled.
func (s *Server) Config() config.RunConfig {
	cfg := config.Default()
	cfg.Domain = Domain
	cfg.APIKey = APIKey
	cfg.ColorPause = 0
	cfg.ScenePause = 0
	return cfg
}

// Transport returns a RoundTripper that serves every request from the fake API.
func (s *Server) Transport() http.RoundTripper {
	return roundTripper{app: s.App}
}

type roundTripper struct {
	app *fiber.App
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.app.Test(req, -1)
}

// MediaURL returns the absolute URL under which AddMedia serves name.
func MediaURL(name string) string {
	return fmt.Sprintf("https://%s/media/%s", Domain, name)
}

// RedirectURL returns a URL that redirects to MediaURL(name).
func RedirectURL(name string) string {
	return fmt.Sprintf("https://%s/redirect/%s", Domain, name)
}

// SignedMediaURL returns a pre-signed style URL on another host. Like a real
// signed bucket URL it rejects requests that carry credentials.
func SignedMediaURL(name string) string {
	return fmt.Sprintf("https://%s/bucket/%s?X-Amz-Signature=abc", CDNDomain, name)
}

// MediaAuthorizations returns the Authorization header of every media request, in order.
func (s *Server) MediaAuthorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.mediaAuth...)
}

// AddMedia makes data downloadable from MediaURL(name) and SignedMediaURL(name).
func (s *Server) AddMedia(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[name] = data
}

// AddView registers the document returned by the tour view endpoint.
func (s *Server) AddView(doc *models.TourDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[doc.ID] = doc
}

// AddRawView registers an arbitrary JSON body for the tour view endpoint.
func (s *Server) AddRawView(id string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[id] = body
}

func (s *Server) nextID(kind string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", kind, s.seq)
}

// Files returns the stored color uploads.
func (s *Server) Files() []FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FileRecord(nil), s.files...)
}

// Scenes returns the created scenes in creation order.
func (s *Server) Scenes() []SceneRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SceneRecord(nil), s.scenes...)
}

// FloorPlans returns the created floor plans in creation order.
func (s *Server) FloorPlans() []FloorPlanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FloorPlanRecord(nil), s.floorPlans...)
}

// Tours returns the created tours in creation order.
func (s *Server) Tours() []TourRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TourRecord, 0, len(s.tours))
	for _, t := range s.tours {
		out = append(out, *t)
	}
	return out
}

// Tour finds a created tour by its code.
func (s *Server) Tour(code string) (TourRecord, bool) {
	for _, t := range s.Tours() {
		if t.Payload["virtualTourCode"] == code {
			return t, true
		}
	}
	return TourRecord{}, false
}

// FileByID finds a stored color upload.
func (s *Server) FileByID(id string) (FileRecord, bool) {
	for _, f := range s.Files() {
		if f.ID == id {
			return f, true
		}
	}
	return FileRecord{}, false
}

func (s *Server) findTour(id string) *TourRecord {
	for _, t := range s.tours {
		if strings.EqualFold(t.ID, id) {
			return t
		}
	}
	return nil
}
