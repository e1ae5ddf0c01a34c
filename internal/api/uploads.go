package api

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tour-sync/internal/models"
)

var nonCodeChars = regexp.MustCompile(`[^A-Z0-9]`)

// ColorCode derives the short color code stored in the file metadata.
func ColorCode(slug string) string {
	code := nonCodeChars.ReplaceAllString(strings.ToUpper(slug), "-")
	if len(code) > 20 {
		code = code[:20]
	}
	return code
}

// ColorUpload describes one color swatch file.
type ColorUpload struct {
	AutomotiveType models.AutomotiveType
	Slug           string
	Name           string
	File           Part
}

// UploadColorFile stores a color swatch as a public file and returns its id.
func (c *Client) UploadColorFile(ctx context.Context, u ColorUpload) (string, error) {
	ctx, cancel := withTimeout(ctx, c.fileTimeout)
	defer cancel()

	var out idResponse
	resp, err := c.request(ctx).
		SetMultipartFormData(map[string]string{
			"isPublic":  "true",
			"filePath":  fmt.Sprintf(".api/virtualTour/config.%s/%d_%s", u.AutomotiveType, time.Now().UnixMilli(), u.File.FileName),
			"meta.id":   uuid.New().String(),
			"meta.name": u.Name,
			"meta.hex":  "#000000",
			"meta.code": ColorCode(u.Slug),
			"meta.type": "automotive-color",
		}).
		SetMultipartFields(multipartField("file", u.File)).
		SetResult(&out).
		Post("/v2/file")
	if err := checkResponse("upload color file", resp, err); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("upload color file: response has no _id")
	}
	return out.ID, nil
}

// SceneUpload describes one scene and its ordered media.
type SceneUpload struct {
	Name           string
	SceneType      models.SceneType
	AutomotiveType models.AutomotiveType
	ColorID        string
	Media          []Part
}

// CreateScene uploads a scene with all its media in one request.
func (c *Client) CreateScene(ctx context.Context, u SceneUpload) (string, error) {
	ctx, cancel := withTimeout(ctx, c.sceneTimeout)
	defer cancel()

	colorID := u.ColorID
	if colorID == "" {
		colorID = "null"
	}
	fields := make([]*resty.MultipartField, 0, len(u.Media))
	for _, p := range u.Media {
		fields = append(fields, multipartField("media", p))
	}

	var out idResponse
	resp, err := c.request(ctx).
		SetMultipartFormData(map[string]string{
			"sceneName":       u.Name,
			"sceneType":       string(u.SceneType),
			"automotiveType":  string(u.AutomotiveType),
			"automotiveColor": colorID,
		}).
		SetMultipartFields(fields...).
		SetResult(&out).
		Post("/v2/scene/")
	if err := checkResponse("create scene", resp, err); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("create scene: response has no _id")
	}
	c.logger.Debug("Scene created",
		zap.String("id", out.ID),
		zap.String("name", u.Name),
		zap.Int("media", len(u.Media)),
	)
	return out.ID, nil
}

// CreateFloorPlan uploads one floor plan image.
func (c *Client) CreateFloorPlan(ctx context.Context, name string, media Part) (string, error) {
	ctx, cancel := withTimeout(ctx, c.fileTimeout)
	defer cancel()

	var out idResponse
	resp, err := c.request(ctx).
		SetMultipartFormData(map[string]string{"floorPlanName": name}).
		SetMultipartFields(multipartField("media", media)).
		SetResult(&out).
		Post("/v2/floorPlan/")
	if err := checkResponse("create floor plan", resp, err); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("create floor plan: response has no _id")
	}
	return out.ID, nil
}
