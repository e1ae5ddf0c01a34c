// Package report renders run results for the terminal and as spreadsheets.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"tour-sync/internal/models"
)

// RenderTable writes one row per tour followed by a totals line.
func RenderTable(w io.Writer, report *models.RunReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOUR\tSTATUS\tSCENES\tCOLORS\tFLOOR PLANS\tDETAILS")
	for _, r := range report.Results {
		status, details := "OK", r.VirtualTourID
		if !r.Success {
			status, details = "FAIL", r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Tour, status, r.ScenesCount, r.ColorsCount, r.FloorPlansCount, details)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d/%d tours uploaded, %d items skipped, took %s\n",
		report.Succeeded(), len(report.Results), len(report.Failures), report.TotalTime.Round(1e6))
	return err
}

// RenderDownloads writes one row per downloaded tour.
func RenderDownloads(w io.Writer, results []*models.DownloadResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FOLDER\tFILES\tBYTES\tSKIPPED")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", r.TourPath, r.TotalFiles, r.Bytes, len(r.Failures))
	}
	return tw.Flush()
}

// RenderRuns writes the ledger entries of past bulk runs.
func RenderRuns(w io.Writer, runs []models.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tDOMAIN\tSOURCE\tTOURS\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Domain, r.SourceRoot, r.TourCount, r.Failed)
	}
	return tw.Flush()
}
