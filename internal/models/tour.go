package models

import "strings"

// TourType selects how a tour folder is laid out and which remote defaults apply.
type TourType string

const (
	TourTypeAutomotive TourType = "automotive"
	TourTypeSpaces     TourType = "spaces"
)

// ParseTourType maps a free-form value onto a TourType. The second return value is false
// when the value names neither type.
func ParseTourType(s string) (TourType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automotive":
		return TourTypeAutomotive, true
	case "spaces":
		return TourTypeSpaces, true
	}
	return "", false
}

// EventType is the value the remote API stores for the tour type.
func (t TourType) EventType() string {
	if t == TourTypeSpaces {
		return "Spaces"
	}
	return "Automotive"
}

// Tour is a remote virtual tour created from one local tour folder.
type Tour struct {
	RemoteID    string
	Code        string
	DisplayName string
	Description string
	Type        TourType
	Config      map[string]any
}

// TourConfig mirrors the optional _config.json stored at the root of a tour folder.
type TourConfig struct {
	VirtualTourName string         `json:"virtualTourName,omitempty"`
	VirtualTourCode string         `json:"virtualTourCode,omitempty"`
	Description     string         `json:"description,omitempty"`
	EventType       string         `json:"eventType,omitempty"`
	Config          map[string]any `json:"config,omitempty"`
}

// FloorPlan is one image under _floorplans/ in a spaces tour.
type FloorPlan struct {
	Name string
	File string
}
