package models

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is the persisted ledger entry for one bulk run.
type RunRecord struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Domain     string       `json:"domain"`
	SourceRoot string       `json:"source_root"`
	TourCount  int          `json:"tour_count"`
	Failed     int          `json:"failed"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Tours      []TourRecord `gorm:"foreignKey:RunID" json:"tours,omitempty"`
}

// TourRecord is the persisted outcome of one tour within a run.
type TourRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RunID           uuid.UUID `gorm:"type:uuid;index" json:"run_id"`
	Tour            string    `json:"tour"`
	Success         bool      `json:"success"`
	VirtualTourID   string    `json:"virtual_tour_id"`
	VirtualTourName string    `json:"virtual_tour_name"`
	ColorsCount     int       `json:"colors_count"`
	ScenesCount     int       `json:"scenes_count"`
	FloorPlansCount int       `json:"floor_plans_count"`
	Error           string    `json:"error"`
	DurationMs      int64     `json:"duration_ms"`
}

// NewRunRecord converts a RunReport into ledger rows with fresh ids.
func NewRunRecord(domain, sourceRoot string, report *RunReport) *RunRecord {
	run := &RunRecord{
		ID:         uuid.New(),
		Domain:     domain,
		SourceRoot: sourceRoot,
		TourCount:  len(report.Results),
		Failed:     len(report.Results) - report.Succeeded(),
		StartedAt:  report.StartedAt,
		FinishedAt: report.StartedAt.Add(report.TotalTime),
	}
	for _, res := range report.Results {
		run.Tours = append(run.Tours, TourRecord{
			ID:              uuid.New(),
			RunID:           run.ID,
			Tour:            res.Tour,
			Success:         res.Success,
			VirtualTourID:   res.VirtualTourID,
			VirtualTourName: res.VirtualTourName,
			ColorsCount:     res.ColorsCount,
			ScenesCount:     res.ScenesCount,
			FloorPlansCount: res.FloorPlansCount,
			Error:           res.Error,
			DurationMs:      res.Duration.Milliseconds(),
		})
	}
	return run
}
