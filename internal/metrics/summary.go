package metrics

import (
	"fmt"
	"time"
)

// RunSummary aggregates the counters of a bulk run for the final log line.
type RunSummary struct {
	Tours      int
	Failed     int
	Colors     int
	Scenes     int
	FloorPlans int
	Skipped    int
	Duration   time.Duration
}

// GetSummary returns a human-readable summary of the run.
func (s RunSummary) GetSummary() string {
	successRate := 0.0
	if s.Tours > 0 {
		successRate = float64(s.Tours-s.Failed) / float64(s.Tours) * 100
	}
	return fmt.Sprintf(
		"Run Summary: %d tours (%.2f%% success), %d colors, %d scenes, %d floor plans, %d items skipped, Duration: %s",
		s.Tours, successRate, s.Colors, s.Scenes, s.FloorPlans, s.Skipped, s.Duration.Round(time.Millisecond),
	)
}
