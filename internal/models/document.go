package models

import (
	"bytes"
	"encoding/json"
)

// TourDocument is the tour as returned by the remote view endpoint.
type TourDocument struct {
	ID              string              `json:"_id"`
	VirtualTourName string              `json:"virtualTourName"`
	VirtualTourCode string              `json:"virtualTourCode"`
	Description     string              `json:"description"`
	EventType       string              `json:"eventType"`
	Config          map[string]any      `json:"config"`
	Scenes          []SceneDocument     `json:"scenes"`
	FloorPlans      []FloorPlanDocument `json:"floorPlans"`
}

// IsSpaces reports whether the document describes a spaces tour.
func (d *TourDocument) IsSpaces() bool {
	return d.EventType == TourTypeSpaces.EventType()
}

// ColorDocument is an entry of config.automotiveColors.
type ColorDocument struct {
	ID   string `json:"_id"`
	URL  string `json:"url"`
	Meta struct {
		Name string `json:"name"`
		Code string `json:"code"`
		Hex  string `json:"hex"`
	} `json:"meta"`
}

// AutomotiveColors decodes config.automotiveColors for one namespace. Entries that do not
// decode as color objects are dropped.
func (d *TourDocument) AutomotiveColors(t AutomotiveType) []ColorDocument {
	groups, ok := d.Config["automotiveColors"].(map[string]any)
	if !ok {
		return nil
	}
	raw, err := json.Marshal(groups[string(t)])
	if err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	colors := make([]ColorDocument, 0, len(items))
	for _, item := range items {
		var c ColorDocument
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		colors = append(colors, c)
	}
	return colors
}

// SceneDocument is a scene embedded in a TourDocument.
type SceneDocument struct {
	ID              string          `json:"_id"`
	SceneName       string          `json:"sceneName"`
	SceneType       string          `json:"sceneType"`
	AutomotiveType  string          `json:"automotiveType"`
	AutomotiveColor json.RawMessage `json:"automotiveColor,omitempty"`
	Media           []MediaDocument `json:"media"`
}

// ColorID resolves automotiveColor, which the API returns either as an id string or as
// a populated color object.
func (s SceneDocument) ColorID() string {
	raw := bytes.TrimSpace(s.AutomotiveColor)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}

// MediaDocument is a stored media file.
type MediaDocument struct {
	ID  string `json:"_id,omitempty"`
	URL string `json:"url"`
}

// FloorPlanDocument is a floor plan embedded in a TourDocument.
type FloorPlanDocument struct {
	ID            string         `json:"_id"`
	FloorPlanName string         `json:"floorPlanName"`
	Media         *MediaDocument `json:"media"`
}
