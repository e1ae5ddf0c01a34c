package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tour-sync/internal/models"
)

// CreatedTour is the answer to a tour creation.
type CreatedTour struct {
	ID              string `json:"_id"`
	VirtualTourName string `json:"virtualTourName"`
}

// CreateVirtualTour posts a new tour.
func (c *Client) CreateVirtualTour(ctx context.Context, payload map[string]any) (*CreatedTour, error) {
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	var out CreatedTour
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&out).
		Post("/v2/virtualtour")
	if err := checkResponse("create virtual tour", resp, err); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("create virtual tour: response has no _id")
	}
	c.logger.Debug("Virtual tour created", zap.String("id", out.ID), zap.String("name", out.VirtualTourName))
	return &out, nil
}

// UpdateVirtualTour patches fields of an existing tour.
func (c *Client) UpdateVirtualTour(ctx context.Context, id string, fields map[string]any) error {
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", id).
		SetBody(fields).
		Patch("/v2/virtualtour/{id}")
	return checkResponse("update virtual tour", resp, err)
}

// FetchTour loads the full view of a tour, including scenes, floor plans and colors.
func (c *Client) FetchTour(ctx context.Context, id string) (*models.TourDocument, error) {
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	var doc models.TourDocument
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetCookie(&http.Cookie{Name: "apiKey", Value: c.apiKey}).
		SetResult(&doc).
		Get("/v2/virtualTour/view/{id}")
	if err := checkResponse("fetch virtual tour", resp, err); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, errors.Wrapf(models.ErrTourNotFound, "virtual tour %s", id)
		}
		return nil, err
	}
	if doc.ID == "" {
		return nil, errors.Wrapf(models.ErrTourNotFound, "virtual tour %s: response has no _id", id)
	}
	return &doc, nil
}
