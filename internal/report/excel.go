package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tour-sync/internal/models"
)

const (
	ResultsSheet  = "Results"
	FailuresSheet = "Failures"
)

var (
	resultsHeader  = []string{"Tour", "Status", "Virtual Tour ID", "Name", "Scenes", "Colors", "Floor Plans", "Skipped", "Duration (s)", "Error"}
	failuresHeader = []string{"Tour", "Kind", "Item", "Reason"}
)

// WriteExcel writes the run report as an xlsx workbook with a results sheet and a
// failures sheet.
func WriteExcel(w io.Writer, report *models.RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	results := make([][]any, 0, len(report.Results))
	for _, r := range report.Results {
		status := "OK"
		if !r.Success {
			status = "FAIL"
		}
		results = append(results, []any{
			r.Tour, status, r.VirtualTourID, r.VirtualTourName,
			r.ScenesCount, r.ColorsCount, r.FloorPlansCount, r.Skipped,
			r.Duration.Seconds(), r.Error,
		})
	}
	failures := make([][]any, 0, len(report.Failures))
	for _, fl := range report.Failures {
		failures = append(failures, []any{fl.Tour, string(fl.Kind), fl.Item, fl.Reason})
	}

	index, err := f.NewSheet(ResultsSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeSheet(f, ResultsSheet, resultsHeader, results, headerStyle); err != nil {
		return err
	}
	if _, err := f.NewSheet(FailuresSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeSheet(f, FailuresSheet, failuresHeader, failures, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, style int) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}
