package apitest

import (
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const errRemote = "simulated remote failure"

type handler struct {
	s *Server
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": true, "message": message,
	})
}

func (h *handler) requireBearer(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) != "Bearer "+APIKey {
		return fail(c, fiber.StatusUnauthorized, "invalid api key")
	}
	return c.Next()
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// uploadFile handles POST /v2/file.
func (h *handler) uploadFile(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "failed to read form: "+err.Error())
	}
	files := form.File["file"]
	if len(files) != 1 {
		return fail(c, fiber.StatusBadRequest, "exactly one file is required")
	}
	name := formValue(form, "meta.name")
	if h.s.FailColor != nil && h.s.FailColor(name) {
		return fail(c, fiber.StatusInternalServerError, errRemote)
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	rec := FileRecord{
		ID:       h.s.nextID("file"),
		FileName: files[0].Filename,
		FilePath: formValue(form, "filePath"),
		IsPublic: formValue(form, "isPublic"),
		MetaID:   formValue(form, "meta.id"),
		MetaName: name,
		MetaHex:  formValue(form, "meta.hex"),
		MetaCode: formValue(form, "meta.code"),
		MetaType: formValue(form, "meta.type"),
	}
	h.s.files = append(h.s.files, rec)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"_id": rec.ID, "fileName": rec.FileName})
}

// createTour handles POST /v2/virtualtour.
func (h *handler) createTour(c *fiber.Ctx) error {
	var payload map[string]any
	if err := c.BodyParser(&payload); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	code, _ := payload["virtualTourCode"].(string)
	if h.s.FailTour != nil && h.s.FailTour(code) {
		return fail(c, fiber.StatusInternalServerError, errRemote)
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	rec := &TourRecord{ID: h.s.nextID("tour"), Payload: payload}
	h.s.tours = append(h.s.tours, rec)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"_id":             rec.ID,
		"virtualTourName": payload["virtualTourName"],
	})
}

// updateTour handles PATCH /v2/virtualtour/:id.
func (h *handler) updateTour(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body: "+err.Error())
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	tour := h.s.findTour(c.Params("id"))
	if tour == nil {
		return fail(c, fiber.StatusNotFound, "virtual tour not found")
	}
	tour.Patches = append(tour.Patches, body)
	if ids, ok := body["scenes"]; ok {
		tour.Scenes = toStrings(ids)
	}
	if ids, ok := body["floorPlans"]; ok {
		tour.FloorPlans = toStrings(ids)
	}
	return c.JSON(fiber.Map{"_id": tour.ID})
}

func toStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// createScene handles POST /v2/scene/.
func (h *handler) createScene(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "failed to read form: "+err.Error())
	}
	name := formValue(form, "sceneName")
	if h.s.FailScene != nil && h.s.FailScene(name) {
		return fail(c, fiber.StatusInternalServerError, errRemote)
	}
	media := form.File["media"]
	if len(media) == 0 {
		return fail(c, fiber.StatusBadRequest, "at least one media file is required")
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	rec := SceneRecord{
		ID:              h.s.nextID("scene"),
		Name:            name,
		SceneType:       formValue(form, "sceneType"),
		AutomotiveType:  formValue(form, "automotiveType"),
		AutomotiveColor: formValue(form, "automotiveColor"),
	}
	for _, fh := range media {
		rec.Media = append(rec.Media, fh.Filename)
		rec.ContentTypes = append(rec.ContentTypes, fh.Header.Get(fiber.HeaderContentType))
	}
	h.s.scenes = append(h.s.scenes, rec)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"_id": rec.ID, "sceneName": rec.Name})
}

// createFloorPlan handles POST /v2/floorPlan/.
func (h *handler) createFloorPlan(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "failed to read form: "+err.Error())
	}
	media := form.File["media"]
	if len(media) != 1 {
		return fail(c, fiber.StatusBadRequest, "exactly one media file is required")
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	rec := FloorPlanRecord{
		ID:    h.s.nextID("floorplan"),
		Name:  formValue(form, "floorPlanName"),
		Media: media[0].Filename,
	}
	h.s.floorPlans = append(h.s.floorPlans, rec)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"_id": rec.ID})
}

// viewTour handles GET /v2/virtualTour/view/:id.
func (h *handler) viewTour(c *fiber.Ctx) error {
	h.s.mu.Lock()
	doc, ok := h.s.views[c.Params("id")]
	h.s.mu.Unlock()
	if !ok {
		return fail(c, fiber.StatusNotFound, "virtual tour not found")
	}
	return c.JSON(doc)
}

// serveMedia handles GET /media/:name.
func (h *handler) serveMedia(c *fiber.Ctx) error {
	h.s.mu.Lock()
	h.s.mediaAuth = append(h.s.mediaAuth, c.Get(fiber.HeaderAuthorization))
	data, ok := h.s.media[c.Params("name")]
	h.s.mu.Unlock()
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}

// serveSignedMedia handles GET /bucket/:name. A signed URL is its own credential.
func (h *handler) serveSignedMedia(c *fiber.Ctx) error {
	if c.Query("X-Amz-Signature") == "" {
		return c.SendStatus(fiber.StatusForbidden)
	}
	if c.Get(fiber.HeaderAuthorization) != "" || c.Cookies("apiKey") != "" {
		h.s.mu.Lock()
		h.s.mediaAuth = append(h.s.mediaAuth, c.Get(fiber.HeaderAuthorization))
		h.s.mu.Unlock()
		return c.Status(fiber.StatusBadRequest).SendString("only one auth mechanism allowed")
	}
	return h.serveMedia(c)
}
