package models

import "time"

// TourResult is the outcome of processing one tour folder.
type TourResult struct {
	Tour            string        `json:"tour"`
	Success         bool          `json:"success"`
	VirtualTourID   string        `json:"virtualTourId,omitempty"`
	VirtualTourName string        `json:"virtualTourName,omitempty"`
	ColorsCount     int           `json:"colorsCount"`
	ScenesCount     int           `json:"scenesCount"`
	FloorPlansCount int           `json:"floorPlansCount"`
	Skipped         int           `json:"skippedCount"`
	Error           string        `json:"error,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// ItemKind names the kind of entity or file an item is.
type ItemKind string

const (
	ItemClassification ItemKind = "classification"
	ItemColor          ItemKind = "color"
	ItemScene          ItemKind = "scene"
	ItemFloorPlan      ItemKind = "floorplan"
	ItemDownload       ItemKind = "download"
)

// ItemFailure records a single file or entity that was skipped.
type ItemFailure struct {
	Tour   string   `json:"tour"`
	Kind   ItemKind `json:"kind"`
	Item   string   `json:"item"`
	Reason string   `json:"reason"`
}

// RunReport collects the results of one bulk run.
type RunReport struct {
	StartedAt time.Time     `json:"startedAt"`
	Results   []TourResult  `json:"results"`
	Failures  []ItemFailure `json:"failures"`
	TotalTime time.Duration `json:"totalTime"`
}

// Succeeded counts the tours that completed.
func (r *RunReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// DownloadResult summarizes a tour written to disk.
type DownloadResult struct {
	TourPath   string
	TotalFiles int
	Bytes      int64
	Failures   []ItemFailure
}
